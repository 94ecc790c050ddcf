// Package storage is the SQLite ledger behind the commit and aggregation
// services, and the home of the conversation session table.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/celengan/internal/common"
	"github.com/Veraticus/celengan/internal/service"
	"github.com/mattn/go-sqlite3"
)

var (
	_ service.CommitService      = (*SQLiteStorage)(nil)
	_ service.AggregationService = (*SQLiteStorage)(nil)
)

// dateLayout keeps stored timestamps lexically ordered.
const dateLayout = time.RFC3339

// SQLiteStorage implements the ledger using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	now    func() time.Time
	dbPath string
}

// NewSQLiteStorage opens (creating if needed) the database at dbPath.
// Use ":memory:" for a throwaway database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite serializes writers anyway, and ":memory:" is per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}, nil
}

// DB exposes the connection for stores that share the database.
func (s *SQLiteStorage) DB() *sql.DB {
	return s.db
}

// Path returns the database location.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// wrapDBError marks lock contention and deadlines as retryable. Everything
// else is still a RetryableError so callers can tell infrastructure failures
// from rejections.
func wrapDBError(op string, err error) error {
	retryable := errors.Is(err, context.DeadlineExceeded)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		retryable = sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	return &common.RetryableError{
		Err:       fmt.Errorf("failed to %s: %w", op, err),
		Retryable: retryable,
	}
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func monthBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

// SetClock replaces the clock used for month boundaries. Tests use it to
// pin "this month".
func (s *SQLiteStorage) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}
