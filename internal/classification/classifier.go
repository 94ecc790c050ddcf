// Package classification is the seam between the dialogue core and the
// intent, category and query classifiers. Any backend that returns a label
// with a confidence can be plugged in behind the Gateway.
package classification

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind selects which classifier answers.
type Kind string

// Classifier kinds.
const (
	KindIntent   Kind = "intent"
	KindCategory Kind = "category"
	KindQuery    Kind = "query"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindIntent, KindCategory, KindQuery:
		return k, nil
	default:
		return "", fmt.Errorf("unknown classifier kind %q", s)
	}
}

// Labels shared by every backend.
const (
	LabelUnknown = "unknown"

	// query kind
	LabelQuery     = "query"
	LabelStatement = "statement"
)

// ErrUnavailable marks a backend that could not produce an answer.
var ErrUnavailable = errors.New("classifier unavailable")

// Result is a classifier answer. Confidence is in [0, 1].
type Result struct {
	Label      string
	Confidence float64
	// Degraded is set when the backend failed and the result is a placeholder.
	Degraded bool
}

// Unknown reports whether the result carries no usable label.
func (r Result) Unknown() bool {
	return r.Label == "" || r.Label == LabelUnknown
}

// Classifier is implemented by every backend.
type Classifier interface {
	Classify(ctx context.Context, text string, kind Kind) (Result, error)
}

// IntentLabels are the labels the intent classifier may return.
var IntentLabels = []string{"income", "expense", "savings_goal", "query", "non_financial"}

// CategoryLabels are the expense categories the category classifier may return.
var CategoryLabels = []string{
	"kos", "makan", "transportasi", "pulsa", "listrik", "kuliah", "buku", "kesehatan", "laundry",
	"jajan", "bubble tea", "kopi", "nonton", "game", "belanja", "langganan", "nongkrong",
	"tabungan", "investasi", "dana darurat", "lainnya",
}

// QueryLabels are the labels of the query-versus-statement classifier.
var QueryLabels = []string{LabelQuery, LabelStatement}

// LabelsFor returns the closed label set for kind.
func LabelsFor(kind Kind) []string {
	switch kind {
	case KindIntent:
		return IntentLabels
	case KindCategory:
		return CategoryLabels
	case KindQuery:
		return QueryLabels
	default:
		return nil
	}
}

func validLabel(kind Kind, label string) bool {
	if label == LabelUnknown {
		return true
	}
	for _, l := range LabelsFor(kind) {
		if l == label {
			return true
		}
	}
	return false
}

func clamp(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
