package classification

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Pattern maps a regular expression to a label for one classifier kind.
type Pattern struct {
	Name       string
	Kind       Kind
	Label      string
	Regex      string
	Priority   int     // Higher priority patterns are checked first
	Confidence float64 // Base confidence when pattern matches (0.0-1.0)
}

type compiledPattern struct {
	compiledRegex *regexp.Regexp
	Pattern
}

// RuleClassifier is a keyword backend built from prioritized regex patterns.
// Patterns are fixed at construction, so it is safe for concurrent use.
type RuleClassifier struct {
	patterns []compiledPattern
}

// NewRuleClassifier compiles patterns into a classifier.
func NewRuleClassifier(patterns []Pattern) (*RuleClassifier, error) {
	compiled, err := compilePatterns(patterns)
	if err != nil {
		return nil, err
	}
	return &RuleClassifier{patterns: compiled}, nil
}

// NewDefaultRuleClassifier returns a classifier with the built-in Indonesian patterns.
func NewDefaultRuleClassifier() *RuleClassifier {
	rc, err := NewRuleClassifier(DefaultPatterns())
	if err != nil {
		panic(fmt.Sprintf("default patterns do not compile: %v", err))
	}
	return rc
}

func compilePatterns(patterns []Pattern) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))

	for _, p := range patterns {
		regexStr := p.Regex
		if !strings.HasPrefix(regexStr, "(?i)") {
			regexStr = "(?i)" + regexStr // Make case-insensitive by default
		}

		regex, err := regexp.Compile(regexStr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}
		if !validLabel(p.Kind, p.Label) {
			return nil, fmt.Errorf("pattern %s: label %q is not valid for kind %s", p.Name, p.Label, p.Kind)
		}

		compiled = append(compiled, compiledPattern{
			Pattern:       p,
			compiledRegex: regex,
		})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return compiled, nil
}

// Classify returns the label of the highest priority pattern of kind that
// matches text. A second matching pattern with the same label raises the
// confidence slightly. No match yields LabelUnknown with zero confidence.
func (rc *RuleClassifier) Classify(ctx context.Context, text string, kind Kind) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	text = strings.ToLower(text)

	var best *compiledPattern
	for i := range rc.patterns {
		p := &rc.patterns[i]
		if p.Kind != kind || !p.compiledRegex.MatchString(text) {
			continue
		}
		if best == nil {
			best = p
			continue
		}
		if p.Label == best.Label {
			return Result{Label: best.Label, Confidence: min(best.Confidence+0.05, 1.0)}, nil
		}
	}

	if best == nil {
		return Result{Label: LabelUnknown}, nil
	}
	return Result{Label: best.Label, Confidence: best.Confidence}, nil
}
