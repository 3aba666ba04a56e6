/*
partition.go - Date/year partitioning resolver

PURPOSE:
  Pure functions mapping date strings to year partitions and assembling
  multi-year views. No I/O; the store and lookup layers compose these.

DATE FORMAT:
  Dates are YYYY-MM-DD strings throughout. Lexicographic order on the
  string equals chronological order, which the lookup engine relies on.
*/
package worklog

import "time"

// DateLayout is the wire and storage format for dates.
const DateLayout = "2006-01-02"

// YearOf returns the calendar year a date string belongs to. An
// unparsable date falls back to fallback (the request-resolved current
// year): a malformed date only affects which partition it is written
// to, it is never dropped.
func YearOf(date string, fallback int) int {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return fallback
	}
	return t.Year()
}

// YearsInRange returns every year whose partition could contain dates in
// [start, end], in ascending order. Start and end in the same year yield
// a single element so callers avoid unnecessary loads. A reversed range
// is normalized rather than rejected.
func YearsInRange(start, end string, fallback int) []int {
	a := YearOf(start, fallback)
	b := YearOf(end, fallback)
	if a > b {
		a, b = b, a
	}
	years := make([]int, 0, b-a+1)
	for y := a; y <= b; y++ {
		years = append(years, y)
	}
	return years
}

// MergeAcrossYears unions date buckets across the given partitions.
// Two different years never legitimately share a date string, so this is
// a plain key union; on an (unexpected) collision the later partition
// wins.
func MergeAcrossYears(parts ...YearPartition) YearPartition {
	out := make(YearPartition)
	for _, p := range parts {
		for date, bucket := range p {
			items := make([]WorkItem, len(bucket))
			copy(items, bucket)
			out[date] = items
		}
	}
	return out
}
