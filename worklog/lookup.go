/*
lookup.go - Cross-date lookup engine

PURPOSE:
  Finds the most recently dated WorkItem matching a work-order number or
  reference, across all dates of a bounded set of years. Drives the
  auto-fill feature: an operator typing a known number expects the prior
  description/department/status/remarks to populate.

MATCHING:
  Case-insensitive exact match on the full field value, not substring.

RECENCY:
  Among all matches the lexicographically greatest date string wins
  (dates are YYYY-MM-DD so that is chronological order). Among items
  sharing that maximal date, the first one encountered wins - stable for
  a given partition but not guaranteed across store-iteration-order
  changes.

SCOPE:
  Lookups fan out one Load per year, so the scanned window is bounded:
  the scope year plus at most a few preceding years. Unbounded
  full-history scans are deliberately not offered.
*/
package worklog

import (
	"context"
	"strings"
)

// DefaultLookBack is how many preceding years a lookup scans in
// addition to the scope year.
const DefaultLookBack = 2

// Scope bounds the years a lookup scans: Year itself plus LookBack
// preceding years.
type Scope struct {
	Year     int
	LookBack int
}

// Years lists the scanned years, most recent first.
func (s Scope) Years() []int {
	lb := s.LookBack
	if lb < 0 {
		lb = 0
	}
	years := make([]int, 0, lb+1)
	for y := s.Year; y >= s.Year-lb; y-- {
		years = append(years, y)
	}
	return years
}

// Lookup resolves most-recent-match queries against a Store.
type Lookup struct {
	store Store
}

// NewLookup creates a lookup engine over store.
func NewLookup(store Store) *Lookup {
	return &Lookup{store: store}
}

// MostRecentByNumber returns the most recent item whose number equals
// number (case-insensitively) within scope, or nil when no match exists
// anywhere in scope.
func (l *Lookup) MostRecentByNumber(ctx context.Context, number string, scope Scope) (*WorkItem, error) {
	return l.scan(ctx, scope, func(w WorkItem) bool {
		return strings.EqualFold(w.Number, number)
	})
}

// MostRecentByReference is MostRecentByNumber for the reference field.
func (l *Lookup) MostRecentByReference(ctx context.Context, reference string, scope Scope) (*WorkItem, error) {
	return l.scan(ctx, scope, func(w WorkItem) bool {
		return strings.EqualFold(w.Reference, reference)
	})
}

func (l *Lookup) scan(ctx context.Context, scope Scope, match func(WorkItem) bool) (*WorkItem, error) {
	var best *WorkItem
	var bestDate string

	for _, year := range scope.Years() {
		part, err := l.store.Load(ctx, year)
		if err != nil {
			return nil, err
		}
		if item, date := MostRecentMatch(part, match); item != nil && date > bestDate {
			best, bestDate = item, date
		}
	}
	return best, nil
}

// MostRecentMatch scans a single partition and returns a copy of the
// first matching item on the greatest date holding one, plus that date.
// Returns (nil, "") when nothing matches. Exported for client-side
// wrappers that already hold a merged partition.
func MostRecentMatch(p YearPartition, match func(WorkItem) bool) (*WorkItem, string) {
	var best *WorkItem
	var bestDate string

	for date, bucket := range p {
		for _, item := range bucket {
			if !match(item) {
				continue
			}
			if best == nil || date > bestDate {
				found := item
				best, bestDate = &found, date
			}
			break // first match per bucket decides for that date
		}
	}
	return best, bestDate
}
