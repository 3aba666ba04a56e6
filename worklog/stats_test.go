package worklog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// combo builds an item for the number/reference/department combination
// key used by the in-progress scoring.
func combo(id, number, status string) WorkItem {
	w := item(id)
	w.Number = number
	w.Status = status
	return w
}

func TestCountUniqueInProgress(t *testing.T) {
	tests := []struct {
		name  string
		works []WorkItem
		want  int
	}{
		{
			name:  "in progress only scores one",
			works: []WorkItem{combo("a", "100", "In Progress")},
			want:  1,
		},
		{
			name:  "started only scores one",
			works: []WorkItem{combo("a", "100", "Cancelled")},
			want:  1,
		},
		{
			name: "started then in progress still scores one",
			works: []WorkItem{
				combo("a", "100", "Cancelled"),
				combo("b", "100", "In Progress"),
			},
			want: 1,
		},
		{
			name: "completed combination scores zero",
			works: []WorkItem{
				combo("a", "100", "Cancelled"),
				combo("b", "100", "In Progress"),
				combo("c", "100", "Completed"),
			},
			want: 0,
		},
		{
			name: "completed without in progress scores zero",
			works: []WorkItem{
				combo("a", "100", "Cancelled"),
				combo("b", "100", "Completed"),
			},
			want: 0,
		},
		{
			name: "combinations count independently",
			works: []WorkItem{
				combo("a", "100", "In Progress"),
				combo("b", "200", "Cancelled"),
				combo("c", "300", "Completed"),
			},
			want: 2,
		},
		{
			name:  "pending and on hold alone score zero",
			works: []WorkItem{combo("a", "100", "Pending"), combo("b", "200", "On Hold")},
			want:  0,
		},
		{
			name:  "empty input",
			works: nil,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountUniqueInProgress(tt.works))
		})
	}
}

func TestCountByStatus(t *testing.T) {
	works := []WorkItem{
		combo("a", "100", "Pending"),
		combo("b", "200", "Pending"),
		combo("c", "300", "Completed"),
	}
	counts := CountByStatus(works)
	assert.Equal(t, 2, counts["Pending"])
	assert.Equal(t, 1, counts["Completed"])
}

func TestSummarize(t *testing.T) {
	a := combo("a", "100", "In Progress")
	b := combo("b", "200", "Completed")
	b.Department = "Electrical"

	p := YearPartition{
		"2025-01-01": {a},
		"2025-01-02": {b},
	}

	s := Summarize(p)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.ByStatus["In Progress"])
	assert.Equal(t, 1, s.ByStatus["Completed"])
	assert.Equal(t, 1, s.ByDepartment["Mechanical"])
	assert.Equal(t, 1, s.ByDepartment["Electrical"])
	assert.Equal(t, 1, s.UniqueInProgress)
}

func TestDatesWithWorks(t *testing.T) {
	p := YearPartition{
		"2025-02-01": {item("a")},
		"2025-01-01": {item("b")},
		"2025-03-01": {}, // emptied bucket keeps its key but is not listed
	}

	assert.Equal(t, []string{"2025-01-01", "2025-02-01"}, DatesWithWorks(p))
}
