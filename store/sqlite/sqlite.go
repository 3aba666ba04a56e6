/*
Package sqlite provides a SQLite-backed implementation of the partition
store contract.

PURPOSE:
  SQL variant of the JSON file backend: same Load/Save merge semantics,
  rows instead of files. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

SCHEMA:
  work_items(id PRIMARY KEY, number, reference, description, department,
             status, remarks, date, year, position)

  The (year, date) pair is the partition/bucket key; position preserves
  insertion order within a bucket.

MERGE SEMANTICS:
  Save runs one transaction per call: delete the rows of every date key
  present in the partial partition, then insert the replacement buckets.
  Date keys absent from the partial are never touched, and the year
  column scopes every statement so one year's save cannot affect
  another's rows. Transactionality gives the "previous state intact on
  failure" guarantee for free.

ERROR POLICY:
  Driver and I/O failures wrap worklog.ErrStorageUnavailable. An empty
  result set is an empty partition, never an error.

WAL MODE:
  Opened with WAL so readers do not block the single writer.

SEE ALSO:
  - worklog/store.go: interface definition
  - store/jsonfile: file-based implementation of the same contract
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/worklog-engine/worklog"
)

// Store implements worklog.Store on SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Single writer; avoids connection-pool surprises with :memory: too.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, path: dbPath}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS work_items (
		id          TEXT PRIMARY KEY,
		number      TEXT NOT NULL,
		reference   TEXT NOT NULL,
		description TEXT NOT NULL,
		department  TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT '',
		remarks     TEXT NOT NULL DEFAULT '',
		date        TEXT NOT NULL,
		year        INTEGER NOT NULL,
		position    INTEGER NOT NULL DEFAULT 0
	);

	-- Bucket reads and bucket replacement both key on (year, date)
	CREATE INDEX IF NOT EXISTS idx_work_items_year_date
		ON work_items(year, date, position);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load returns the partition for year, grouping rows into date buckets
// ordered by position.
func (s *Store) Load(ctx context.Context, year int) (worklog.YearPartition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, reference, description, department, status, remarks, date
		FROM work_items
		WHERE year = ?
		ORDER BY date, position`, year)
	if err != nil {
		return nil, &worklog.StorageError{Op: "load", Path: s.path, Err: err}
	}
	defer rows.Close()

	part := worklog.YearPartition{}
	for rows.Next() {
		var item worklog.WorkItem
		if err := rows.Scan(&item.ID, &item.Number, &item.Reference, &item.Description,
			&item.Department, &item.Status, &item.Remarks, &item.Date); err != nil {
			return nil, &worklog.StorageError{Op: "load", Path: s.path, Err: err}
		}
		part[item.Date] = append(part[item.Date], item)
	}
	if err := rows.Err(); err != nil {
		return nil, &worklog.StorageError{Op: "load", Path: s.path, Err: err}
	}
	return part, nil
}

// Save replaces the rows of every date key present in partial inside a
// single transaction.
func (s *Store) Save(ctx context.Context, year int, partial worklog.YearPartition) error {
	if len(partial) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &worklog.StorageError{Op: "save", Path: s.path, Err: err}
	}
	defer tx.Rollback()

	// Deterministic date order keeps the write pattern reproducible.
	dates := make([]string, 0, len(partial))
	for date := range partial {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(dates)), ",")
	args := make([]any, 0, len(dates)+1)
	args = append(args, year)
	for _, d := range dates {
		args = append(args, d)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM work_items WHERE year = ? AND date IN (`+placeholders+`)`,
		args...); err != nil {
		return &worklog.StorageError{Op: "save", Path: s.path, Err: err}
	}

	// OR REPLACE keeps the id-unique-across-years invariant: a row whose
	// date moved into another year displaces its old-year row instead of
	// conflicting on the primary key.
	insert, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO work_items (id, number, reference, description, department, status, remarks, date, year, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return &worklog.StorageError{Op: "save", Path: s.path, Err: err}
	}
	defer insert.Close()

	for _, date := range dates {
		for pos, item := range partial[date] {
			if _, err := insert.ExecContext(ctx, item.ID, item.Number, item.Reference,
				item.Description, item.Department, item.Status, item.Remarks,
				date, year, pos); err != nil {
				return &worklog.StorageError{Op: "save", Path: s.path, Err: err}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &worklog.StorageError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}
