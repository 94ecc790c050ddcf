package session

import (
	"time"

	"github.com/Veraticus/celengan/internal/model"
)

// DefaultMaxTurns bounds the turn history when no limit is configured.
const DefaultMaxTurns = 20

// AppendTurn adds turn to the history and evicts the oldest turns beyond
// maxTurns. Existing turns are never modified.
func AppendTurn(sess *model.Session, turn model.Turn, maxTurns int) {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	sess.Turns = append(sess.Turns, turn)
	if over := len(sess.Turns) - maxTurns; over > 0 {
		// copy so the evicted prefix is not kept alive by the backing array
		kept := make([]model.Turn, maxTurns)
		copy(kept, sess.Turns[over:])
		sess.Turns = kept
	}
	if turn.At.After(sess.LastActivity) {
		sess.LastActivity = turn.At
	}
}

// NeedsSnapshot reports whether the cached snapshot must be fetched again:
// it is missing, was invalidated by a commit, or is older than ttl.
// A zero ttl never expires by age.
func NeedsSnapshot(sess *model.Session, now time.Time, ttl time.Duration) bool {
	if sess.Snapshot == nil || sess.SnapshotStale {
		return true
	}
	return ttl > 0 && now.Sub(sess.Snapshot.FetchedAt) >= ttl
}

// SetSnapshot stores a freshly fetched snapshot.
func SetSnapshot(sess *model.Session, snap model.FinancialSnapshot, now time.Time) {
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = now
	}
	sess.Snapshot = &snap
	sess.SnapshotStale = false
}

// InvalidateSnapshot marks the snapshot stale so the next reader refreshes it.
func InvalidateSnapshot(sess *model.Session) {
	sess.SnapshotStale = true
}

// LastTurn returns the newest turn by role.
func LastTurn(sess *model.Session, role model.Role) (model.Turn, bool) {
	for i := len(sess.Turns) - 1; i >= 0; i-- {
		if sess.Turns[i].Role == role {
			return sess.Turns[i], true
		}
	}
	return model.Turn{}, false
}
