/*
errors.go - Centralized error types for the work tracker core

PURPOSE:
  All sentinel errors in one place. The HTTP layer maps these onto
  status codes; stores and the lookup engine only ever return values
  from this taxonomy (or wrap them with context).

ERROR CATEGORIES:
  Storage errors    - the durable medium cannot be reached
  Not-found errors  - a delete targeted an id that is absent
  Input errors      - a payload failed boundary validation

NOT ERRORS:
  "Partition does not exist yet" is an empty partition, not a fault.
  "Lookup found nothing" is a nil result, not a fault.
  "Persisted content failed to parse" is treated as an empty partition;
  the next successful write re-establishes valid content.

USAGE:
  if errors.Is(err, worklog.ErrStorageUnavailable) {
      // 503, tell the caller to fall back to its local cache
  }

SEE ALSO:
  - store.go: which operations produce which errors
  - api/handlers.go: status code mapping
*/
package worklog

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable is returned when the backing medium cannot be
	// read or written for environmental reasons (missing mount, permission
	// denied, disk or connection failure). Never used for "no data yet".
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound is returned when a delete targets an id absent from
	// every date bucket of the target year's partition.
	ErrNotFound = errors.New("work item not found")

	// ErrInvalidInput is returned when a payload fails boundary validation.
	ErrInvalidInput = errors.New("invalid input")
)

// StorageError carries the operation and path that failed.
type StorageError struct {
	Op   string // "load" or "save"
	Path string // file path or DSN
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return ErrStorageUnavailable }

// ValidationError describes a single failing field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
