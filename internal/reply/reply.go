// Package reply turns dialogue outcomes into user-facing text. Every outcome
// is one of a closed set of Reply types and each renders from a fixed
// template in Indonesian or English.
package reply

import (
	"github.com/Veraticus/celengan/internal/model"
)

// Kind names an outcome.
type Kind string

// Outcome kinds.
const (
	KindProposal      Kind = "proposal"
	KindConfirmation  Kind = "confirmation_result"
	KindRejection     Kind = "rejection_ack"
	KindClarification Kind = "clarification_request"
	KindQueryAnswer   Kind = "query_answer"
	KindFallback      Kind = "fallback"
	KindExpired       Kind = "expired_notice"
)

// Reply is implemented only by the outcome types in this package.
type Reply interface {
	Kind() Kind
	reply()
}

// Proposal asks the user to confirm an extracted statement.
type Proposal struct {
	ActionID  string
	Statement model.Statement
	Amended   bool
}

// ConfirmationResult reports the outcome of a commit.
type ConfirmationResult struct {
	ActionID  string
	Reason    string
	Statement model.Statement
	Success   bool
}

// RejectionAck acknowledges a cancelled proposal.
type RejectionAck struct {
	Statement model.Statement
}

// ClarifyReason says what a clarification asks for.
type ClarifyReason string

// Clarification reasons.
const (
	ClarifyAmount     ClarifyReason = "missing_amount"
	ClarifyZeroAmount ClarifyReason = "zero_amount"
	ClarifyIntent     ClarifyReason = "ambiguous_intent"
	ClarifyPending    ClarifyReason = "pending_exists"
)

// Clarification asks the user for something the engine could not decide.
// Pending is the parked statement for ClarifyPending.
type Clarification struct {
	Pending   *model.Statement
	Reason    ClarifyReason
	Statement model.Statement
}

// Topic is the subject of a financial question.
type Topic string

// Query topics.
const (
	TopicSummary     Topic = "summary"
	TopicBalance     Topic = "balance"
	TopicIncome      Topic = "income"
	TopicExpense     Topic = "expense"
	TopicGoals       Topic = "goals"
	TopicHealth      Topic = "health"
	TopicTopCategory Topic = "top_category"
)

// QueryAnswer answers a question from the financial snapshot. Snapshot is
// nil when the aggregation service could not be reached.
type QueryAnswer struct {
	Snapshot *model.FinancialSnapshot
	Topic    Topic
}

// FallbackReason says why no financial handling applied.
type FallbackReason string

// Fallback reasons.
const (
	FallbackNonFinancial FallbackReason = "non_financial"
	FallbackUnknown      FallbackReason = "unknown"
)

// Fallback is the reply for messages outside the tracker's domain.
type Fallback struct {
	Reason FallbackReason
}

// ExpiredNotice tells the user a confirmation came too late.
type ExpiredNotice struct {
	Statement model.Statement
}

func (Proposal) Kind() Kind           { return KindProposal }
func (ConfirmationResult) Kind() Kind { return KindConfirmation }
func (RejectionAck) Kind() Kind       { return KindRejection }
func (Clarification) Kind() Kind      { return KindClarification }
func (QueryAnswer) Kind() Kind        { return KindQueryAnswer }
func (Fallback) Kind() Kind           { return KindFallback }
func (ExpiredNotice) Kind() Kind      { return KindExpired }

func (Proposal) reply()           {}
func (ConfirmationResult) reply() {}
func (RejectionAck) reply()       {}
func (Clarification) reply()      {}
func (QueryAnswer) reply()        {}
func (Fallback) reply()           {}
func (ExpiredNotice) reply()      {}

// Metadata is the structured part of a reply for transports.
type Metadata struct {
	Kind     Kind         `json:"kind"`
	ActionID string       `json:"action_id,omitempty"`
	Intent   model.Intent `json:"intent,omitempty"`
	Topic    Topic        `json:"topic,omitempty"`
	Amount   int64        `json:"amount,omitempty"`
	Success  bool         `json:"success,omitempty"`
	// Parked is set when a pending action is still waiting after this reply.
	Parked bool `json:"parked,omitempty"`
}

// MetadataOf extracts the metadata of r.
func MetadataOf(r Reply) Metadata {
	md := Metadata{Kind: r.Kind()}
	switch r := r.(type) {
	case Proposal:
		md.ActionID = r.ActionID
		md.Intent = r.Statement.Intent
		md.Amount = r.Statement.Amount
		md.Parked = true
	case ConfirmationResult:
		md.ActionID = r.ActionID
		md.Intent = r.Statement.Intent
		md.Amount = r.Statement.Amount
		md.Success = r.Success
		md.Parked = !r.Success
	case RejectionAck:
		md.Intent = r.Statement.Intent
		md.Amount = r.Statement.Amount
	case Clarification:
		md.Intent = r.Statement.Intent
		md.Parked = r.Pending != nil
	case QueryAnswer:
		md.Intent = model.IntentQuery
		md.Topic = r.Topic
	case Fallback:
		md.Intent = model.IntentNonFinancial
	case ExpiredNotice:
		md.Intent = r.Statement.Intent
		md.Amount = r.Statement.Amount
	}
	return md
}
