// Package memory provides an in-memory Store implementation for tests
// and development. Partitions are deep-copied on every call so callers
// never alias internal state.
package memory

import (
	"context"
	"sync"

	"github.com/warp/worklog-engine/worklog"
)

type Store struct {
	mu          sync.RWMutex
	years       map[int]worklog.YearPartition
	unavailable bool
}

func New() *Store {
	return &Store{years: make(map[int]worklog.YearPartition)}
}

// SetUnavailable toggles simulated storage failure; while set, Load and
// Save return errors wrapping worklog.ErrStorageUnavailable.
func (s *Store) SetUnavailable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = v
}

func (s *Store) Load(_ context.Context, year int) (worklog.YearPartition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.unavailable {
		return nil, &worklog.StorageError{Op: "load", Path: "memory", Err: worklog.ErrStorageUnavailable}
	}
	part, ok := s.years[year]
	if !ok {
		return worklog.YearPartition{}, nil
	}
	return part.Clone(), nil
}

func (s *Store) Save(_ context.Context, year int, partial worklog.YearPartition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unavailable {
		return &worklog.StorageError{Op: "save", Path: "memory", Err: worklog.ErrStorageUnavailable}
	}
	current, ok := s.years[year]
	if !ok {
		current = worklog.YearPartition{}
	}
	merged := current.Clone()
	for date, bucket := range partial.Clone() {
		merged[date] = bucket
	}
	s.years[year] = merged
	return nil
}
