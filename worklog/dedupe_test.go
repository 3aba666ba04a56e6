package worklog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func item(id string) WorkItem {
	return WorkItem{
		ID:          id,
		Number:      "1",
		Reference:   "R",
		Description: "D",
		Department:  "Mechanical",
		Status:      "Pending",
		Remarks:     "",
		Date:        "2025-01-01",
	}
}

func TestReconcile_DuplicateDiffersOnlyByID(t *testing.T) {
	existing := []WorkItem{item("a")}
	incoming := []WorkItem{item("b")}

	kept, removed := Reconcile(existing, incoming)

	assert.Len(t, kept, 1)
	assert.Equal(t, 1, removed)
	// First occurrence wins: the existing record is retained.
	assert.Equal(t, "a", kept[0].ID)
}

func TestReconcile_AnySingleFieldDifferenceIsNotADuplicate(t *testing.T) {
	base := item("a")

	mutations := map[string]func(*WorkItem){
		"number":      func(w *WorkItem) { w.Number = "2" },
		"reference":   func(w *WorkItem) { w.Reference = "R2" },
		"description": func(w *WorkItem) { w.Description = "other" },
		"department":  func(w *WorkItem) { w.Department = "Electrical" },
		"status":      func(w *WorkItem) { w.Status = "Completed" },
		"remarks":     func(w *WorkItem) { w.Remarks = "note" },
		"date":        func(w *WorkItem) { w.Date = "2025-01-02" },
	}

	for field, mutate := range mutations {
		variant := item("b")
		mutate(&variant)

		kept, removed := Reconcile([]WorkItem{base}, []WorkItem{variant})
		assert.Len(t, kept, 2, "differing %s must not be a duplicate", field)
		assert.Zero(t, removed, "differing %s must not be removed", field)
	}
}

func TestReconcile_PreservesFirstOccurrenceOrder(t *testing.T) {
	a := item("a")
	b := item("b")
	b.Number = "2"
	c := item("c")
	c.Number = "3"

	kept, removed := Reconcile([]WorkItem{a, b}, []WorkItem{c, item("dup-of-a"), b})

	assert.Equal(t, 2, removed) // duplicate of a, duplicate of b
	assert.Equal(t, []string{"a", "b", "c"}, []string{kept[0].ID, kept[1].ID, kept[2].ID})
}

func TestReconcile_LengthInvariant(t *testing.T) {
	existing := []WorkItem{item("a"), item("a2")} // a2 duplicates a
	incoming := []WorkItem{item("b")}

	kept, removed := Reconcile(existing, incoming)
	assert.Equal(t, len(existing)+len(incoming), len(kept)+removed)
}

func TestReconcile_EmptyInputs(t *testing.T) {
	kept, removed := Reconcile(nil, nil)
	assert.Empty(t, kept)
	assert.Zero(t, removed)

	kept, removed = Reconcile(nil, []WorkItem{item("a")})
	assert.Len(t, kept, 1)
	assert.Zero(t, removed)
}
