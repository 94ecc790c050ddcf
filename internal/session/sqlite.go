package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/celengan/internal/common"
	"github.com/Veraticus/celengan/internal/model"
)

// SQLiteStore persists sessions in the conversation_sessions table. The
// table is created by the storage package migrations.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store on an open database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type sessionColumns struct {
	turns    string
	pending  sql.NullString
	snapshot sql.NullString
}

func encode(sess *model.Session) (sessionColumns, error) {
	var cols sessionColumns

	turns := sess.Turns
	if turns == nil {
		turns = []model.Turn{}
	}
	data, err := json.Marshal(turns)
	if err != nil {
		return cols, fmt.Errorf("failed to marshal turns: %w", err)
	}
	cols.turns = string(data)

	if sess.Pending != nil {
		data, err := json.Marshal(sess.Pending)
		if err != nil {
			return cols, fmt.Errorf("failed to marshal pending action: %w", err)
		}
		cols.pending = sql.NullString{String: string(data), Valid: true}
	}

	if sess.Snapshot != nil {
		data, err := json.Marshal(sess.Snapshot)
		if err != nil {
			return cols, fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		cols.snapshot = sql.NullString{String: string(data), Valid: true}
	}

	return cols, nil
}

// Create inserts a new session.
func (s *SQLiteStore) Create(ctx context.Context, sess *model.Session) error {
	if err := validate(ctx, sess); err != nil {
		return err
	}

	cols, err := encode(sess)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_sessions (
			id, user_id, language, turns, pending_action, snapshot,
			snapshot_stale, created_at, last_activity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.UserID,
		string(sess.Language),
		cols.turns,
		cols.pending,
		cols.snapshot,
		sess.SnapshotStale,
		sess.CreatedAt.UTC().Format(time.RFC3339Nano),
		sess.LastActivity.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", common.ErrSessionExists, sess.ID)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	slog.Debug("Created conversation session in database",
		"session_id", sess.ID,
		"user_id", sess.UserID)

	return nil
}

// Get loads a session.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Session, error) {
	sess := &model.Session{ID: id}
	var (
		language, turnsJSON         string
		pendingJSON, snapshotJSON   sql.NullString
		createdAtStr, lastActiveStr string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, language, turns, pending_action, snapshot,
			snapshot_stale, created_at, last_activity
		FROM conversation_sessions
		WHERE id = ?`, id).Scan(
		&sess.UserID,
		&language,
		&turnsJSON,
		&pendingJSON,
		&snapshotJSON,
		&sess.SnapshotStale,
		&createdAtStr,
		&lastActiveStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", common.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	sess.Language = model.ParseLanguage(language)

	if err := json.Unmarshal([]byte(turnsJSON), &sess.Turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal turns: %w", err)
	}
	if pendingJSON.Valid {
		sess.Pending = &model.PendingAction{}
		if err := json.Unmarshal([]byte(pendingJSON.String), sess.Pending); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pending action: %w", err)
		}
	}
	if snapshotJSON.Valid {
		sess.Snapshot = &model.FinancialSnapshot{}
		if err := json.Unmarshal([]byte(snapshotJSON.String), sess.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
	}

	sess.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	sess.LastActivity, err = time.Parse(time.RFC3339Nano, lastActiveStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last_activity: %w", err)
	}

	return sess, nil
}

// Save overwrites an existing session.
func (s *SQLiteStore) Save(ctx context.Context, sess *model.Session) error {
	if err := validate(ctx, sess); err != nil {
		return err
	}

	cols, err := encode(sess)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE conversation_sessions SET
			language = ?,
			turns = ?,
			pending_action = ?,
			snapshot = ?,
			snapshot_stale = ?,
			last_activity = ?
		WHERE id = ?`,
		string(sess.Language),
		cols.turns,
		cols.pending,
		cols.snapshot,
		sess.SnapshotStale,
		sess.LastActivity.UTC().Format(time.RFC3339Nano),
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", common.ErrSessionNotFound, sess.ID)
	}

	return nil
}

// Delete removes a session.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversation_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", common.ErrSessionNotFound, id)
	}

	slog.Debug("Deleted conversation session", "session_id", id)
	return nil
}

// List returns every session id in lexical order.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM conversation_sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
