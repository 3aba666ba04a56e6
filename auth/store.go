/*
store.go - User persistence for the auth module

PURPOSE:
  Defines the UserStore interface and its SQLite implementation. Kept
  inside the auth package: the work-item stores know nothing about
  accounts, and nothing outside auth reads the users table.
*/
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// UserRecord is a stored account, password hash included.
type UserRecord struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    string
}

// UserStore persists accounts.
type UserStore interface {
	// Create inserts a new account and returns its public view.
	Create(ctx context.Context, username, passwordHash string) (*User, error)

	// GetByUsername returns the public view, or ErrUserNotFound.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetRecordByUsername returns the full record, or ErrUserNotFound.
	GetRecordByUsername(ctx context.Context, username string) (*UserRecord, error)

	// GetRecordByID returns the full record, or ErrUserNotFound.
	GetRecordByID(ctx context.Context, id int64) (*UserRecord, error)

	// UpdatePassword replaces the stored hash.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// SQLiteUsers implements UserStore on SQLite.
type SQLiteUsers struct {
	db *sql.DB
}

// OpenSQLiteUsers opens (or creates) the users database at dbPath.
func OpenSQLiteUsers(dbPath string) (*SQLiteUsers, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open users database: %w", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL DEFAULT (datetime('now'))
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate users database: %w", err)
	}
	return &SQLiteUsers{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteUsers) Close() error {
	return s.db.Close()
}

func (s *SQLiteUsers) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`, username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &User{ID: id, Username: username}, nil
}

func (s *SQLiteUsers) GetByUsername(ctx context.Context, username string) (*User, error) {
	rec, err := s.GetRecordByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &User{ID: rec.ID, Username: rec.Username, CreatedAt: rec.CreatedAt}, nil
}

func (s *SQLiteUsers) GetRecordByUsername(ctx context.Context, username string) (*UserRecord, error) {
	return s.getRecord(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
}

func (s *SQLiteUsers) GetRecordByID(ctx context.Context, id int64) (*UserRecord, error) {
	return s.getRecord(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (s *SQLiteUsers) getRecord(ctx context.Context, query string, arg any) (*UserRecord, error) {
	var rec UserRecord
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&rec.ID, &rec.Username, &rec.PasswordHash, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteUsers) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
