// Package dialogue is the conversation engine: it turns each chat message
// into a proposal, a commit, a rejection, an answer or a clarification, and
// keeps at most one action per session waiting for confirmation.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/celengan/internal/classification"
	"github.com/Veraticus/celengan/internal/common"
	"github.com/Veraticus/celengan/internal/model"
	"github.com/Veraticus/celengan/internal/parser"
	"github.com/Veraticus/celengan/internal/reply"
	"github.com/Veraticus/celengan/internal/service"
	"github.com/Veraticus/celengan/internal/session"
	"github.com/google/uuid"
)

// DefaultSnapshotTTL is how long a cached snapshot answers questions
// before it is fetched again.
const DefaultSnapshotTTL = 10 * time.Minute

// Dependencies are the collaborators an Engine is built from. Store,
// Classifier, Commits and Aggregation are required.
type Dependencies struct {
	Store       session.Store
	Classifier  Classifier
	Commits     service.CommitService
	Aggregation service.AggregationService
	Parser      *parser.Parser
	Composer    *reply.Composer
	Lexicon     *Lexicon
}

// Options tunes an Engine. Zero values use the defaults.
type Options struct {
	Logger            *slog.Logger
	Now               func() time.Time
	NewID             func() string
	Language          model.Language
	Retry             service.RetryOptions
	MaxTurns          int
	MaxUnrelatedTurns int
	PendingTTL        time.Duration
	SnapshotTTL       time.Duration
}

// Response is the engine's answer to one message.
type Response struct {
	Reply    reply.Reply
	Text     string
	Metadata reply.Metadata
}

// Engine processes chat messages. Messages for one session are handled one
// at a time; different sessions proceed in parallel.
type Engine struct {
	store       session.Store
	locker      *session.Locker
	classifier  Classifier
	aggregation service.AggregationService
	parser      *parser.Parser
	composer    *reply.Composer
	resolver    *Resolver
	pending     *PendingManager
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
	language    model.Language
	maxTurns    int
	snapshotTTL time.Duration
}

// NewEngine wires an engine. The engine owns the classifier from here on
// and closes it in Close when it holds resources.
func NewEngine(deps Dependencies, opts Options) (*Engine, error) {
	switch {
	case deps.Store == nil:
		return nil, fmt.Errorf("%w: session store", common.ErrMissingConfig)
	case deps.Classifier == nil:
		return nil, fmt.Errorf("%w: classifier", common.ErrMissingConfig)
	case deps.Commits == nil:
		return nil, fmt.Errorf("%w: commit service", common.ErrMissingConfig)
	case deps.Aggregation == nil:
		return nil, fmt.Errorf("%w: aggregation service", common.ErrMissingConfig)
	}

	if deps.Parser == nil {
		deps.Parser = parser.New(parser.DefaultOptions(), nil)
	}
	if opts.Language == "" {
		opts.Language = model.LanguageIndonesian
	}
	if deps.Composer == nil {
		deps.Composer = reply.NewComposer(opts.Language)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = session.DefaultMaxTurns
	}
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = DefaultSnapshotTTL
	}

	return &Engine{
		store:       deps.Store,
		locker:      session.NewLocker(),
		classifier:  deps.Classifier,
		aggregation: deps.Aggregation,
		parser:      deps.Parser,
		composer:    deps.Composer,
		resolver:    NewResolver(deps.Lexicon, deps.Classifier, deps.Parser),
		pending: NewPendingManager(deps.Commits, PendingOptions{
			Logger:       opts.Logger,
			NewID:        opts.NewID,
			Retry:        opts.Retry,
			TTL:          opts.PendingTTL,
			MaxUnrelated: opts.MaxUnrelatedTurns,
		}),
		logger:      opts.Logger,
		now:         opts.Now,
		newID:       opts.NewID,
		language:    opts.Language,
		maxTurns:    opts.MaxTurns,
		snapshotTTL: opts.SnapshotTTL,
	}, nil
}

// CreateSession starts a conversation for userID and returns its ID. The
// financial snapshot is fetched up front; a failed fetch is retried on the
// first question.
func (e *Engine) CreateSession(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrMissingUser
	}

	now := e.now()
	sess := &model.Session{
		ID:           e.newID(),
		UserID:       userID,
		Language:     e.language,
		Turns:        []model.Turn{},
		CreatedAt:    now,
		LastActivity: now,
	}
	e.refreshSnapshot(ctx, sess, now)

	if err := e.store.Create(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	e.logger.Info("Created session",
		"session_id", sess.ID,
		"user_id", userID)
	return sess.ID, nil
}

// ClearSession removes a session and everything it holds.
func (e *Engine) ClearSession(ctx context.Context, sessionID string) error {
	unlock, err := e.locker.Lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := e.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	e.logger.Info("Cleared session", "session_id", sessionID)
	return nil
}

// GetPendingAction returns the action waiting for confirmation, or nil.
func (e *Engine) GetPendingAction(ctx context.Context, sessionID string) (*model.PendingAction, error) {
	var out *model.PendingAction
	err := e.withSession(ctx, sessionID, func(sess *model.Session) (bool, error) {
		expired := e.pending.ExpireIfStale(sess, e.now())
		if sess.Pending.Live() {
			pa := *sess.Pending
			out = &pa
		}
		return expired, nil
	})
	return out, err
}

// ExpireIfStale expires the session's pending action when it has waited
// too long. It reports whether an action expired.
func (e *Engine) ExpireIfStale(ctx context.Context, sessionID string) (bool, error) {
	var expired bool
	err := e.withSession(ctx, sessionID, func(sess *model.Session) (bool, error) {
		expired = e.pending.ExpireIfStale(sess, e.now())
		return expired, nil
	})
	return expired, err
}

// SweepExpired runs ExpireIfStale over every session and returns how many
// actions expired. Sessions cleared during the sweep are skipped.
func (e *Engine) SweepExpired(ctx context.Context) (int, error) {
	ids, err := e.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	count := 0
	for _, id := range ids {
		expired, err := e.ExpireIfStale(ctx, id)
		if errors.Is(err, common.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return count, fmt.Errorf("failed to sweep session %s: %w", id, err)
		}
		if expired {
			count++
		}
	}

	if count > 0 {
		e.logger.Info("Expired stale pending actions", "count", count, "sessions", len(ids))
	}
	return count, nil
}

// SetLanguage sets the reply language of a session.
func (e *Engine) SetLanguage(ctx context.Context, sessionID string, lang model.Language) error {
	return e.withSession(ctx, sessionID, func(sess *model.Session) (bool, error) {
		sess.Language = model.ParseLanguage(string(lang))
		return true, nil
	})
}

// Close releases the classifier's caches and limiters.
func (e *Engine) Close() error {
	if closer, ok := e.classifier.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// withSession runs fn on the locked session and saves it when fn reports
// a change.
func (e *Engine) withSession(ctx context.Context, sessionID string, fn func(*model.Session) (bool, error)) error {
	unlock, err := e.locker.Lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	sess, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	changed, err := fn(sess)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := e.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// refreshSnapshot fetches the snapshot. Failures are logged and leave the
// previous snapshot in place, still marked for refresh.
func (e *Engine) refreshSnapshot(ctx context.Context, sess *model.Session, now time.Time) {
	snap, err := e.aggregation.GetFinancialSnapshot(ctx, sess.UserID)
	if err != nil {
		e.logger.Warn("Failed to refresh financial snapshot",
			"session_id", sess.ID,
			"user_id", sess.UserID,
			"error", err)
		session.InvalidateSnapshot(sess)
		return
	}
	session.SetSnapshot(sess, snap, now)
}
