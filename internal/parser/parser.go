package parser

import (
	"time"

	"github.com/Veraticus/celengan/internal/model"
)

// CategoryOther is used for expenses that match no vocabulary entry.
const CategoryOther = "lainnya"

// Label confidences. A vocabulary hit is near certain; a fallback label is a guess.
const (
	matchedLabelConfidence  = 0.9
	fallbackLabelConfidence = 0.3
)

// Options tunes amount extraction.
type Options struct {
	Pick          PickPolicy
	MinBareAmount int64
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{Pick: PickLast, MinBareAmount: 100}
}

// Parser extracts financial statements from normalized text.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	vocab *Vocabulary
	opts  Options
}

// New creates a parser. A nil vocabulary uses the built-in defaults.
func New(opts Options, vocab *Vocabulary) *Parser {
	if opts.Pick == "" {
		opts.Pick = PickLast
	}
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Parser{opts: opts, vocab: vocab}
}

// Vocabulary returns the parser's keyword sets.
func (p *Parser) Vocabulary() *Vocabulary {
	return p.vocab
}

// Extract builds a statement for an already classified intent. For actionable
// intents without an amount it returns the partial statement together with
// ErrNoAmount so the caller can ask for the missing value.
func (p *Parser) Extract(normalized string, intent model.Intent, now time.Time) (model.Statement, error) {
	stmt := model.Statement{
		Intent: intent,
		Text:   normalized,
	}
	if !intent.Actionable() {
		return stmt, nil
	}

	p.fillLabels(&stmt, normalized)

	if date, ok := ExtractDate(normalized, now, intent == model.IntentSavingsGoal); ok {
		stmt.TargetDate = &date
	}

	amount, err := p.Amount(normalized)
	if err != nil {
		return stmt, err
	}
	stmt.Amount = amount.Value
	stmt.AmountConfidence = amount.Confidence()

	return stmt, nil
}

func (p *Parser) fillLabels(stmt *model.Statement, normalized string) {
	stmt.LabelConfidence = matchedLabelConfidence

	switch stmt.Intent {
	case model.IntentIncome:
		if span, ok := p.vocab.First(normalized, GroupSource); ok {
			stmt.Source = span.Label
			return
		}
	case model.IntentExpense:
		if span, ok := p.vocab.First(normalized, GroupNeeds, GroupWants, GroupSavings); ok {
			stmt.Category = span.Label
		}
		if span, ok := p.vocab.First(normalized, GroupGoal); ok {
			stmt.Item = span.Label
			if stmt.Category == "" {
				stmt.Category = "belanja"
			}
		}
		if stmt.Category != "" {
			return
		}
		stmt.Category = CategoryOther
	case model.IntentSavingsGoal:
		if span, ok := p.vocab.First(normalized, GroupGoal, GroupSavings); ok {
			stmt.Item = span.Label
			return
		}
	}

	stmt.LabelConfidence = fallbackLabelConfidence
}

// Category returns the vocabulary category for normalized text, if any.
func (p *Parser) Category(normalized string) (Span, bool) {
	return p.vocab.First(normalized, GroupNeeds, GroupWants, GroupSavings)
}
