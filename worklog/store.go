/*
store.go - Persistence contract for year partitions

PURPOSE:
  Defines the interface between the domain logic and durable storage.
  One backing unit (file or table segment) per calendar year.

MERGE CONTRACT:
  Save is a merge, not an overwrite. The store reads the current
  partition, shallow-merges the caller-supplied partial partition on top
  of it keyed by date, and writes the result back. A date bucket present
  in the partial replaces the stored bucket for that date wholesale;
  callers pre-merge at the bucket level. Date keys absent from the
  partial are never touched, and writing one year never touches another.

EMPTY STATE:
  Load for a year that was never written returns an empty partition.
  First access is a legitimate empty state, not a fault.

CONCURRENCY:
  Load-then-mutate-then-Save across two concurrent callers is an
  accepted race at date-bucket granularity (last write wins on a
  bucket). Implementations may serialize per year to narrow the window;
  that is a strengthening, not part of the contract.

IMPLEMENTATIONS:
  - store/jsonfile: one JSON file per year (production default)
  - store/sqlite:   SQL table segmented by year
  - store/memory:   in-memory, for tests

SEE ALSO:
  - errors.go: ErrStorageUnavailable semantics
  - lookup.go: read-only consumer fanning out one Load per year
*/
package worklog

import "context"

// Store persists one YearPartition per year.
type Store interface {
	// Load returns the partition for year. A year never written yields an
	// empty partition and a nil error; malformed persisted content is
	// treated the same way. Environmental failures wrap
	// ErrStorageUnavailable.
	Load(ctx context.Context, year int) (YearPartition, error)

	// Save shallow-merges partial into the stored partition for year at
	// date-bucket granularity and persists the result atomically: a
	// failure mid-write leaves the previous persisted state intact.
	Save(ctx context.Context, year int, partial YearPartition) error
}
