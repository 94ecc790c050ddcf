package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/celengan/internal/common"
	"github.com/Veraticus/celengan/internal/model"
	"github.com/Veraticus/celengan/internal/service"
	"github.com/Veraticus/celengan/internal/session"
	"github.com/google/uuid"
)

// Pending action defaults.
const (
	DefaultPendingTTL        = 15 * time.Minute
	DefaultMaxUnrelatedTurns = 3
)

// PendingManager owns the lifecycle of a session's pending action. Callers
// hold the session lock for every call.
type PendingManager struct {
	commits      service.CommitService
	logger       *slog.Logger
	newID        func() string
	retry        service.RetryOptions
	ttl          time.Duration
	maxUnrelated int
}

// PendingOptions tunes a PendingManager. Zero values use the defaults.
type PendingOptions struct {
	Logger       *slog.Logger
	NewID        func() string
	Retry        service.RetryOptions
	TTL          time.Duration
	MaxUnrelated int
}

// NewPendingManager creates a manager that commits through commits.
func NewPendingManager(commits service.CommitService, opts PendingOptions) *PendingManager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultPendingTTL
	}
	if opts.MaxUnrelated <= 0 {
		opts.MaxUnrelated = DefaultMaxUnrelatedTurns
	}
	if opts.Retry.MaxAttempts <= 0 {
		// one retry on transient failure
		opts.Retry.MaxAttempts = 2
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &PendingManager{
		commits:      commits,
		logger:       opts.Logger,
		newID:        opts.NewID,
		retry:        opts.Retry,
		ttl:          opts.TTL,
		maxUnrelated: opts.MaxUnrelated,
	}
}

func checkStatement(stmt model.Statement) error {
	if !stmt.Intent.Actionable() {
		return fmt.Errorf("%w: %s", ErrNotActionable, stmt.Intent)
	}
	if stmt.Amount <= 0 {
		return ErrZeroAmount
	}
	return nil
}

// Propose parks stmt as the session's pending action.
func (m *PendingManager) Propose(sess *model.Session, stmt model.Statement, now time.Time) (*model.PendingAction, error) {
	if sess.Pending.Live() {
		return nil, ErrPendingExists
	}
	if err := checkStatement(stmt); err != nil {
		return nil, err
	}

	sess.Pending = &model.PendingAction{
		ID:         m.newID(),
		State:      model.StateProposed,
		Statement:  stmt,
		ProposedAt: now,
		UpdatedAt:  now,
	}

	m.logger.Debug("Proposed pending action",
		"session_id", sess.ID,
		"action_id", sess.Pending.ID,
		"intent", stmt.Intent,
		"amount", stmt.Amount)
	return sess.Pending, nil
}

// Amend replaces the pending statement with stmt. Nothing from the old
// statement is carried over. The action gets a new ID so a commit of the
// old statement can never be mistaken for this one.
func (m *PendingManager) Amend(sess *model.Session, stmt model.Statement, now time.Time) (*model.PendingAction, error) {
	pa := sess.Pending
	if !pa.Live() {
		return nil, ErrNoPendingAction
	}
	if err := checkStatement(stmt); err != nil {
		return nil, err
	}

	pa.State = model.StateAmended
	previous := pa.Statement
	pa.Statement = stmt
	pa.ID = m.newID()
	pa.Amendments++
	pa.UnrelatedTurns = 0
	pa.LastError = ""
	pa.UpdatedAt = now
	pa.State = model.StateProposed

	m.logger.Debug("Amended pending action",
		"session_id", sess.ID,
		"action_id", pa.ID,
		"old_amount", previous.Amount,
		"new_amount", stmt.Amount,
		"amendments", pa.Amendments)
	return pa, nil
}

// Confirm commits the pending action. On success the action is cleared and
// the snapshot marked stale. On failure the action stays proposed with the
// error recorded, and a *CommitError is returned.
func (m *PendingManager) Confirm(ctx context.Context, sess *model.Session, now time.Time) (*model.PendingAction, service.CommitReceipt, error) {
	pa := sess.Pending
	if !pa.Live() {
		return nil, service.CommitReceipt{}, ErrNoPendingAction
	}

	var receipt service.CommitReceipt
	err := common.WithRetry(ctx, func() error {
		var commitErr error
		receipt, commitErr = m.commit(ctx, sess.UserID, pa, now)
		return commitErr
	}, m.retry)
	if err != nil {
		reason := receipt.ReasonCode
		if reason == "" {
			reason = service.ReasonUnavailable
		}
		if errors.Is(err, service.ErrCommitRejected) {
			reason = service.ReasonInvalid
		}
		pa.State = model.StateProposed
		pa.LastError = err.Error()
		pa.UpdatedAt = now

		m.logger.Warn("Commit failed, action stays proposed",
			"session_id", sess.ID,
			"action_id", pa.ID,
			"reason", reason,
			"error", err)
		return nil, receipt, &CommitError{Err: err, ActionID: pa.ID, ReasonCode: reason}
	}

	committed := *pa
	committed.State = model.StateCommitted
	committed.UpdatedAt = now
	sess.Pending = nil
	session.InvalidateSnapshot(sess)

	m.logger.Info("Committed pending action",
		"session_id", sess.ID,
		"action_id", committed.ID,
		"intent", committed.Statement.Intent,
		"amount", committed.Statement.Amount,
		"record_id", receipt.ID,
		"reason", receipt.ReasonCode)
	return &committed, receipt, nil
}

// commit routes the statement to the matching commit call. The action ID
// is the request ID, so a retried or repeated commit is deduplicated.
func (m *PendingManager) commit(ctx context.Context, userID string, pa *model.PendingAction, now time.Time) (service.CommitReceipt, error) {
	stmt := pa.Statement
	date := now
	if stmt.TargetDate != nil {
		date = *stmt.TargetDate
	}

	switch stmt.Intent {
	case model.IntentIncome:
		return m.commits.CreateIncome(ctx, service.IncomeRecord{
			Date:      date,
			RequestID: pa.ID,
			UserID:    userID,
			Category:  stmt.Category,
			Source:    stmt.Source,
			Amount:    stmt.Amount,
		})
	case model.IntentExpense:
		return m.commits.CreateExpense(ctx, service.ExpenseRecord{
			Date:      date,
			RequestID: pa.ID,
			UserID:    userID,
			Category:  stmt.Category,
			Item:      stmt.Item,
			Amount:    stmt.Amount,
		})
	case model.IntentSavingsGoal:
		return m.commits.CreateOrUpdateGoal(ctx, service.GoalRecord{
			TargetDate:   stmt.TargetDate,
			RequestID:    pa.ID,
			UserID:       userID,
			Item:         stmt.Item,
			TargetAmount: stmt.Amount,
		})
	default:
		return service.CommitReceipt{ReasonCode: service.ReasonInvalid},
			fmt.Errorf("%w: %w: %s", service.ErrCommitRejected, ErrNotActionable, stmt.Intent)
	}
}

// Reject drops the pending action without side effects.
func (m *PendingManager) Reject(sess *model.Session, now time.Time) (*model.PendingAction, error) {
	pa := sess.Pending
	if !pa.Live() {
		return nil, ErrNoPendingAction
	}

	rejected := *pa
	rejected.State = model.StateRejected
	rejected.UpdatedAt = now
	sess.Pending = nil

	m.logger.Debug("Rejected pending action",
		"session_id", sess.ID,
		"action_id", rejected.ID)
	return &rejected, nil
}

// NoteUnrelated counts a message that left the pending action parked.
func (m *PendingManager) NoteUnrelated(sess *model.Session) {
	if sess.Pending.Live() {
		sess.Pending.UnrelatedTurns++
	}
}

// ExpireIfStale expires the pending action when it has waited past the TTL
// or outlived the allowed number of unrelated turns. The expired action
// stays on the session, no longer live, until the next message clears it.
func (m *PendingManager) ExpireIfStale(sess *model.Session, now time.Time) bool {
	pa := sess.Pending
	if !pa.Live() {
		return false
	}

	age := now.Sub(pa.UpdatedAt)
	if age < m.ttl && pa.UnrelatedTurns < m.maxUnrelated {
		return false
	}

	pa.State = model.StateExpired
	pa.UpdatedAt = now

	m.logger.Info("Pending action expired",
		"session_id", sess.ID,
		"action_id", pa.ID,
		"age", age,
		"unrelated_turns", pa.UnrelatedTurns)
	return true
}
