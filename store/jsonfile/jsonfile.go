/*
Package jsonfile persists year partitions as one JSON file per year.

PURPOSE:
  Production default backend. The data directory typically lives on a
  shared network mount, so every failure mode of "the mount is gone"
  must map to ErrStorageUnavailable while "the file does not exist yet"
  stays a legitimate empty state.

FILE LAYOUT:
  <dir>/works-<year>.json    pretty-printed YearPartition
  <dir>/works-<year>.lock    flock sidecar for cross-process exclusion

ERROR POLICY:
  missing file        -> empty partition, nil error
  unparsable content  -> empty partition, nil error (a corrupted file
                         must not permanently lock out the application;
                         the next save re-establishes valid content)
  any other I/O error -> wraps worklog.ErrStorageUnavailable

ATOMICITY:
  Saves write to a temp file in the same directory and rename it over
  the target, so a failure mid-write leaves the previous state intact.

CONCURRENCY:
  A per-year in-process mutex serializes read-merge-write cycles within
  one server, and flock extends that across processes sharing the mount.
  This narrows (does not remove) the documented last-write-wins window
  between independent HTTP clients.

SEE ALSO:
  - worklog/store.go: the contract implemented here
  - store/sqlite: the SQL variant of the same contract
*/
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/warp/worklog-engine/worklog"
)

// Store keeps one works-<year>.json per year under dir.
type Store struct {
	dir string

	mu    sync.Mutex
	years map[int]*sync.Mutex
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &worklog.StorageError{Op: "init", Path: dir, Err: err}
	}
	return &Store{dir: dir, years: make(map[int]*sync.Mutex)}, nil
}

func (s *Store) dataPath(year int) string {
	return filepath.Join(s.dir, fmt.Sprintf("works-%d.json", year))
}

func (s *Store) lockPath(year int) string {
	return s.dataPath(year) + ".lock"
}

// yearMu returns the serialization mutex for year, creating it lazily.
func (s *Store) yearMu(year int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.years[year]
	if !ok {
		mu = &sync.Mutex{}
		s.years[year] = mu
	}
	return mu
}

// Load returns the partition for year. Missing or malformed files yield
// an empty partition.
func (s *Store) Load(ctx context.Context, year int) (worklog.YearPartition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	flk := flock.New(s.lockPath(year))
	if err := flk.RLock(); err != nil {
		return nil, &worklog.StorageError{Op: "load", Path: s.dataPath(year), Err: err}
	}
	defer func() { _ = flk.Unlock() }()

	return s.read(year)
}

// read loads and parses the year file. Callers hold the flock.
func (s *Store) read(year int) (worklog.YearPartition, error) {
	path := s.dataPath(year)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return worklog.YearPartition{}, nil
		}
		return nil, &worklog.StorageError{Op: "load", Path: path, Err: err}
	}

	var part worklog.YearPartition
	if err := json.Unmarshal(data, &part); err != nil {
		// Corrupted content is recoverable: treat as fresh.
		return worklog.YearPartition{}, nil
	}
	if part == nil {
		part = worklog.YearPartition{}
	}
	return part, nil
}

// Save merges partial into the stored partition for year and writes the
// result atomically. Date buckets in partial replace stored buckets
// wholesale; other dates and other years are untouched.
func (s *Store) Save(ctx context.Context, year int, partial worklog.YearPartition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mu := s.yearMu(year)
	mu.Lock()
	defer mu.Unlock()

	flk := flock.New(s.lockPath(year))
	if err := flk.Lock(); err != nil {
		return &worklog.StorageError{Op: "save", Path: s.dataPath(year), Err: err}
	}
	defer func() { _ = flk.Unlock() }()

	current, err := s.read(year)
	if err != nil {
		return err
	}
	merged := current.Clone()
	for date, bucket := range partial {
		items := make([]worklog.WorkItem, len(bucket))
		copy(items, bucket)
		merged[date] = items
	}

	return s.write(year, merged)
}

// write marshals part and renames it over the year file.
func (s *Store) write(year int, part worklog.YearPartition) error {
	path := s.dataPath(year)

	data, err := json.MarshalIndent(part, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal partition %d: %w", year, err)
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf("works-%d-*.tmp", year))
	if err != nil {
		return &worklog.StorageError{Op: "save", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &worklog.StorageError{Op: "save", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &worklog.StorageError{Op: "save", Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return &worklog.StorageError{Op: "save", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return &worklog.StorageError{Op: "save", Path: path, Err: err}
	}
	return nil
}
