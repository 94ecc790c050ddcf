package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/celengan/internal/classification"
	"github.com/Veraticus/celengan/internal/common"
	"github.com/Veraticus/celengan/internal/model"
	"github.com/Veraticus/celengan/internal/parser"
	"github.com/Veraticus/celengan/internal/reply"
	"github.com/Veraticus/celengan/internal/session"
)

// turn is the working state of one message.
type turn struct {
	sess       *model.Session
	now        time.Time
	normalized string
	statement  *model.Statement
	committed  bool
	reminder   bool
}

// HandleMessage processes one chat message for a session that belongs to
// userID. Unknown sessions, or sessions of another user, return
// common.ErrSessionNotFound. Only session store failures are returned as
// errors; everything else becomes a reply.
func (e *Engine) HandleMessage(ctx context.Context, sessionID, userID, text string) (Response, error) {
	unlock, err := e.locker.Lock(ctx, sessionID)
	if err != nil {
		return Response{}, err
	}
	defer unlock()

	sess, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return Response{}, err
	}
	if sess.UserID != userID {
		return Response{}, fmt.Errorf("%w: %s", common.ErrSessionNotFound, sessionID)
	}

	t := &turn{
		sess:       sess,
		now:        e.now(),
		normalized: parser.Normalize(text),
	}

	r := e.respond(ctx, t)
	if t.committed {
		e.refreshSnapshot(ctx, sess, t.now)
	}

	out := e.composer.Render(sess.Language, r)
	md := reply.MetadataOf(r)
	if t.reminder && sess.Pending.Live() {
		out += " " + e.composer.Reminder(sess.Language, sess.Pending.Statement)
		md.Parked = true
	}

	session.AppendTurn(sess, model.Turn{
		At:         t.now,
		Role:       model.RoleUser,
		Raw:        text,
		Normalized: t.normalized,
		Statement:  t.statement,
	}, e.maxTurns)
	session.AppendTurn(sess, model.Turn{
		At:   t.now,
		Role: model.RoleAssistant,
		Raw:  out,
	}, e.maxTurns)

	if err := e.store.Save(ctx, sess); err != nil {
		return Response{}, fmt.Errorf("failed to save session: %w", err)
	}

	e.logger.Debug("Handled message",
		"session_id", sess.ID,
		"kind", md.Kind,
		"intent", md.Intent,
		"parked", md.Parked)
	return Response{Reply: r, Text: out, Metadata: md}, nil
}

func (e *Engine) respond(ctx context.Context, t *turn) reply.Reply {
	sess := t.sess
	e.pending.ExpireIfStale(sess, t.now)

	if pa := sess.Pending; pa != nil && !pa.Live() {
		// an expired action is reported once, to a late confirmation
		sess.Pending = nil
		if pa.State == model.StateExpired && e.resolver.Lexicon().Affirmative(t.normalized) {
			return reply.ExpiredNotice{Statement: pa.Statement}
		}
	}

	if !sess.Pending.Live() {
		return e.fresh(ctx, t, e.classifier.Classify(ctx, t.normalized, classification.KindIntent))
	}

	res := e.resolver.Resolve(ctx, t.normalized, sess.Pending, t.now)
	switch res.Kind {
	case ResolveConfirm:
		return e.confirm(ctx, t)
	case ResolveReject:
		rejected, err := e.pending.Reject(sess, t.now)
		if err != nil {
			return reply.Fallback{Reason: reply.FallbackUnknown}
		}
		return reply.RejectionAck{Statement: rejected.Statement}
	case ResolveAmend:
		stmt := e.refine(ctx, res.Statement, t.normalized)
		t.statement = &stmt
		pa, err := e.pending.Amend(sess, stmt, t.now)
		if err != nil {
			return reply.Clarification{Reason: reply.ClarifyZeroAmount, Statement: stmt}
		}
		return reply.Proposal{ActionID: pa.ID, Statement: pa.Statement, Amended: true}
	default:
		e.pending.NoteUnrelated(sess)
		if e.pending.ExpireIfStale(sess, t.now) {
			// the parked action ran out of turns, so this message stands alone
			return e.fresh(ctx, t, res.Intent)
		}
		r := e.fresh(ctx, t, res.Intent)
		if _, asking := r.(reply.Clarification); !asking {
			t.reminder = true
		}
		return r
	}
}

func (e *Engine) confirm(ctx context.Context, t *turn) reply.Reply {
	stmt := t.sess.Pending.Statement
	committed, receipt, err := e.pending.Confirm(ctx, t.sess, t.now)
	if err != nil {
		var commitErr *CommitError
		if errors.As(err, &commitErr) {
			return reply.ConfirmationResult{
				ActionID:  commitErr.ActionID,
				Reason:    commitErr.ReasonCode,
				Statement: stmt,
			}
		}
		return reply.Fallback{Reason: reply.FallbackUnknown}
	}

	t.committed = true
	return reply.ConfirmationResult{
		ActionID:  committed.ID,
		Reason:    receipt.ReasonCode,
		Statement: committed.Statement,
		Success:   true,
	}
}

// fresh handles a message on its own merits: questions are answered,
// financial statements proposed and everything else falls back.
func (e *Engine) fresh(ctx context.Context, t *turn, intent classification.Result) reply.Reply {
	label, known := model.ParseIntent(intent.Label)

	if !known || label == model.IntentNonFinancial {
		if q := e.classifier.Classify(ctx, t.normalized, classification.KindQuery); q.Label == classification.LabelQuery {
			label, known = model.IntentQuery, true
		}
	}

	if !known || label == model.IntentNonFinancial {
		if stmt, ok := e.completeAmount(t); ok {
			t.statement = &stmt
			return e.propose(t, stmt)
		}
	}

	switch {
	case !known:
		if _, err := e.parser.Amount(t.normalized); err == nil {
			// money was mentioned, so ask what kind of entry it is
			return reply.Clarification{Reason: reply.ClarifyIntent}
		}
		return reply.Fallback{Reason: reply.FallbackUnknown}
	case label == model.IntentQuery:
		t.statement = &model.Statement{Intent: model.IntentQuery, Text: t.normalized, IntentConfidence: intent.Confidence}
		return e.answer(ctx, t)
	case label == model.IntentNonFinancial:
		return reply.Fallback{Reason: reply.FallbackNonFinancial}
	}

	stmt, err := e.parser.Extract(t.normalized, label, t.now)
	stmt.IntentConfidence = intent.Confidence
	stmt = e.refine(ctx, stmt, t.normalized)
	t.statement = &stmt

	if errors.Is(err, parser.ErrNoAmount) {
		return reply.Clarification{Reason: reply.ClarifyAmount, Statement: stmt}
	}
	return e.propose(t, stmt)
}

// completeAmount reads a bare amount as the answer to the previous turn's
// statement when that statement was missing one, as in "bayar kos"
// followed by "1.2 juta".
func (e *Engine) completeAmount(t *turn) (model.Statement, bool) {
	last, ok := session.LastTurn(t.sess, model.RoleUser)
	if !ok || last.Statement == nil || t.now.Sub(last.At) >= e.pending.ttl {
		return model.Statement{}, false
	}
	stmt := *last.Statement
	if !stmt.Intent.Actionable() || stmt.Amount != 0 {
		return model.Statement{}, false
	}

	amount, err := e.parser.Amount(t.normalized)
	if err != nil {
		return model.Statement{}, false
	}
	stmt.Amount = amount.Value

	e.logger.Debug("Completed statement from previous turn",
		"session_id", t.sess.ID,
		"intent", stmt.Intent,
		"amount", stmt.Amount)
	return stmt, true
}

// propose parks stmt for confirmation unless another action is waiting.
func (e *Engine) propose(t *turn, stmt model.Statement) reply.Reply {
	if t.sess.Pending.Live() {
		parked := t.sess.Pending.Statement
		return reply.Clarification{Reason: reply.ClarifyPending, Statement: stmt, Pending: &parked}
	}

	pa, err := e.pending.Propose(t.sess, stmt, t.now)
	switch {
	case errors.Is(err, ErrZeroAmount):
		return reply.Clarification{Reason: reply.ClarifyZeroAmount, Statement: stmt}
	case err != nil:
		e.logger.Warn("Failed to propose action", "session_id", t.sess.ID, "error", err)
		return reply.Fallback{Reason: reply.FallbackUnknown}
	}
	return reply.Proposal{ActionID: pa.ID, Statement: pa.Statement}
}

// refine asks the category classifier about expenses the vocabulary could
// not place.
func (e *Engine) refine(ctx context.Context, stmt model.Statement, normalized string) model.Statement {
	if stmt.Intent != model.IntentExpense || stmt.Category != parser.CategoryOther {
		return stmt
	}
	result := e.classifier.Classify(ctx, normalized, classification.KindCategory)
	if result.Unknown() || result.Label == parser.CategoryOther {
		return stmt
	}
	stmt.Category = result.Label
	stmt.LabelConfidence = result.Confidence
	return stmt
}

// answer replies to a question from the snapshot, refreshing it first when
// it is missing, invalidated or too old.
func (e *Engine) answer(ctx context.Context, t *turn) reply.Reply {
	sess := t.sess
	if session.NeedsSnapshot(sess, t.now, e.snapshotTTL) {
		e.refreshSnapshot(ctx, sess, t.now)
	}

	var snap *model.FinancialSnapshot
	if sess.Snapshot != nil {
		s := *sess.Snapshot
		snap = &s
	}
	return reply.QueryAnswer{Topic: queryTopic(strings.TrimSpace(t.normalized)), Snapshot: snap}
}
