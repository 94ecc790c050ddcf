package dialogue

import (
	"errors"
	"fmt"
)

// Pending action errors.
var (
	ErrPendingExists   = errors.New("a pending action is already waiting for confirmation")
	ErrZeroAmount      = errors.New("amount must be greater than zero")
	ErrNotActionable   = errors.New("statement intent cannot be committed")
	ErrNoPendingAction = errors.New("no pending action")
	ErrMissingUser     = errors.New("user ID is required")
)

// CommitError reports a confirmed action the commit service did not save.
// The action stays proposed so the user can retry.
type CommitError struct {
	Err        error
	ActionID   string
	ReasonCode string
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit of action %s failed (%s): %v", e.ActionID, e.ReasonCode, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
