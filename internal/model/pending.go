package model

import "time"

// ActionState is the lifecycle state of a pending action.
type ActionState string

// Pending action states.
const (
	StateProposed  ActionState = "PROPOSED"
	StateAmended   ActionState = "AMENDED"
	StateCommitted ActionState = "COMMITTED"
	StateRejected  ActionState = "REJECTED"
	StateExpired   ActionState = "EXPIRED"
)

// Terminal reports whether no further transition is possible.
func (s ActionState) Terminal() bool {
	return s == StateCommitted || s == StateRejected || s == StateExpired
}

// PendingAction is an extracted statement waiting for the user to confirm it.
type PendingAction struct {
	ProposedAt     time.Time   `json:"proposed_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	ID             string      `json:"id"`
	State          ActionState `json:"state"`
	LastError      string      `json:"last_error,omitempty"`
	Statement      Statement   `json:"statement"`
	UnrelatedTurns int         `json:"unrelated_turns"`
	Amendments     int         `json:"amendments"`
}

// Live reports whether the action can still be confirmed, rejected or amended.
func (p *PendingAction) Live() bool {
	return p != nil && !p.State.Terminal()
}
