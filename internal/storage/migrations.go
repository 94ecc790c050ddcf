package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Ledger tables",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS incomes (
					id TEXT PRIMARY KEY,
					request_id TEXT UNIQUE NOT NULL,
					user_id TEXT NOT NULL,
					amount INTEGER NOT NULL CHECK (amount > 0),
					category TEXT,
					source TEXT,
					date TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS expenses (
					id TEXT PRIMARY KEY,
					request_id TEXT UNIQUE NOT NULL,
					user_id TEXT NOT NULL,
					amount INTEGER NOT NULL CHECK (amount > 0),
					category TEXT NOT NULL,
					item TEXT,
					date TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS goals (
					id TEXT PRIMARY KEY,
					last_request_id TEXT NOT NULL,
					user_id TEXT NOT NULL,
					item TEXT NOT NULL,
					target_amount INTEGER NOT NULL CHECK (target_amount > 0),
					saved INTEGER NOT NULL DEFAULT 0,
					target_date TEXT,
					status TEXT NOT NULL DEFAULT 'active',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE (user_id, item)
				)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Conversation sessions",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS conversation_sessions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					language TEXT NOT NULL DEFAULT 'id',
					turns TEXT NOT NULL DEFAULT '[]',
					pending_action TEXT,
					snapshot TEXT,
					snapshot_stale BOOLEAN NOT NULL DEFAULT 0,
					created_at TEXT NOT NULL,
					last_activity TEXT NOT NULL
				)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Indexes and goal timestamps",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE INDEX IF NOT EXISTS idx_incomes_user_date ON incomes(user_id, date)`,
				`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses(user_id, date)`,
				`CREATE INDEX IF NOT EXISTS idx_expenses_user_category ON expenses(user_id, category)`,
				`CREATE INDEX IF NOT EXISTS idx_sessions_user ON conversation_sessions(user_id)`,
				`CREATE TRIGGER IF NOT EXISTS update_goals_updated_at
				AFTER UPDATE ON goals
				FOR EACH ROW
				BEGIN
					UPDATE goals SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
				END`,
			})
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
