/*
stats.go - Reporting helpers over year partitions

PURPOSE:
  Read-only aggregations consumed by the summary view. These are
  presentation-layer policy, not part of the persistence contract; the
  point-based in-progress count in particular encodes how field crews
  combine status tokens over a work's lifetime and should be confirmed
  with stakeholders before it is relied on elsewhere.
*/
package worklog

import "sort"

// Summary aggregates one partition for the reporting view.
type Summary struct {
	Total            int            `json:"total"`
	ByStatus         map[string]int `json:"by_status"`
	ByDepartment     map[string]int `json:"by_department"`
	UniqueInProgress int            `json:"unique_in_progress"`
}

// Summarize computes the reporting aggregates for a partition.
func Summarize(p YearPartition) Summary {
	items := p.Items()
	s := Summary{
		Total:        len(items),
		ByStatus:     CountByStatus(items),
		ByDepartment: make(map[string]int),
	}
	for _, item := range items {
		s.ByDepartment[item.Department]++
	}
	s.UniqueInProgress = CountUniqueInProgress(items)
	return s
}

// CountByStatus tallies items per status token.
func CountByStatus(works []WorkItem) map[string]int {
	counts := make(map[string]int)
	for _, w := range works {
		counts[w.Status]++
	}
	return counts
}

// statusFlags records which lifecycle tokens a number/reference/department
// combination has gone through.
type statusFlags struct {
	started    bool // Cancelled token, displayed as "Start"
	inProgress bool
	completed  bool
}

// CountUniqueInProgress scores each number+reference+department
// combination by the statuses recorded against it and counts the ones
// still considered in progress:
//
//	started + in progress, not completed  -> 1
//	started only                          -> 1
//	in progress only                      -> 1
//	anything completed                    -> 0
func CountUniqueInProgress(works []WorkItem) int {
	combos := make(map[[3]string]*statusFlags)

	for _, w := range works {
		key := [3]string{w.Number, w.Reference, w.Department}
		flags, ok := combos[key]
		if !ok {
			flags = &statusFlags{}
			combos[key] = flags
		}
		switch Status(w.Status) {
		case StatusCancelled:
			flags.started = true
		case StatusInProgress:
			flags.inProgress = true
		case StatusCompleted:
			flags.completed = true
		}
	}

	points := 0
	for _, f := range combos {
		switch {
		case f.started && f.inProgress && !f.completed:
			points++
		case f.started && !f.inProgress && !f.completed:
			points++
		case !f.started && f.inProgress && !f.completed:
			points++
		}
	}
	return points
}

// DatesWithWorks lists the dates holding at least one item, ascending.
func DatesWithWorks(p YearPartition) []string {
	dates := make([]string, 0, len(p))
	for date, bucket := range p {
		if len(bucket) > 0 {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates
}
