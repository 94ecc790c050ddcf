package dialogue

import (
	"context"
	"time"

	"github.com/Veraticus/celengan/internal/classification"
	"github.com/Veraticus/celengan/internal/model"
	"github.com/Veraticus/celengan/internal/parser"
)

// ResolutionKind is how a message relates to the pending action.
type ResolutionKind string

// Resolution kinds, in the order they are tried.
const (
	ResolveConfirm   ResolutionKind = "CONFIRM"
	ResolveReject    ResolutionKind = "REJECT"
	ResolveAmend     ResolutionKind = "AMEND"
	ResolveUnrelated ResolutionKind = "UNRELATED"
)

// Resolution is the resolver's decision. Statement is the restated
// statement for AMEND. Intent carries the intent classification when one
// was made so the caller does not classify twice.
type Resolution struct {
	Kind       ResolutionKind
	Statement  model.Statement
	Intent     classification.Result
	Classified bool
}

// Classifier is the part of the classification gateway the dialogue uses.
// Implementations never fail; unavailable backends answer LabelUnknown.
type Classifier interface {
	Classify(ctx context.Context, text string, kind classification.Kind) classification.Result
}

// Resolver decides what a message means while an action is pending.
type Resolver struct {
	lexicon    *Lexicon
	classifier Classifier
	parser     *parser.Parser
}

// NewResolver creates a resolver. A nil lexicon uses DefaultLexicon.
func NewResolver(lexicon *Lexicon, classifier Classifier, p *parser.Parser) *Resolver {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Resolver{lexicon: lexicon, classifier: classifier, parser: p}
}

// Resolve applies the rules in order and returns the first that matches:
// an affirmative reply confirms, a negative reply rejects, a restatement
// with the same intent and a new amount amends, anything else is unrelated.
func (r *Resolver) Resolve(ctx context.Context, normalized string, pending *model.PendingAction, now time.Time) Resolution {
	if r.lexicon.Affirmative(normalized) {
		return Resolution{Kind: ResolveConfirm}
	}
	if r.lexicon.Negative(normalized) {
		return Resolution{Kind: ResolveReject}
	}

	intent := r.classifier.Classify(ctx, normalized, classification.KindIntent)
	res := Resolution{Kind: ResolveUnrelated, Intent: intent, Classified: true}

	if intent.Unknown() || pending == nil || intent.Label != string(pending.Statement.Intent) {
		return res
	}

	stmt, err := r.parser.Extract(normalized, pending.Statement.Intent, now)
	if err != nil || stmt.Amount <= 0 {
		return res
	}
	stmt.IntentConfidence = intent.Confidence

	res.Kind = ResolveAmend
	res.Statement = stmt
	return res
}

// Lexicon returns the resolver's lexicon.
func (r *Resolver) Lexicon() *Lexicon {
	return r.lexicon
}
