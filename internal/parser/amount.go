package parser

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ErrNoAmount is returned when a message contains no usable amount.
// Callers ask the user to clarify instead of guessing.
var ErrNoAmount = errors.New("no amount found")

// Amounts beyond this cannot be stored as whole rupiah.
var maxAmount = decimal.NewFromInt(math.MaxInt64)

// AmountKind records how an amount was written.
type AmountKind string

// Amount kinds.
const (
	KindNumeric AmountKind = "numeric"
	KindSpelled AmountKind = "spelled"
)

// AmountCandidate is one monetary value found in normalized text.
type AmountCandidate struct {
	Raw        string
	Kind       AmountKind
	Value      int64
	Multiplier int64
	Start      int
	End        int
	Currency   bool
}

// Explicit reports whether the amount carried a magnitude suffix or currency
// marker, as opposed to a bare numeral.
func (a AmountCandidate) Explicit() bool {
	return a.Multiplier > 1 || a.Currency
}

// Confidence is the parser's confidence that the candidate is a monetary amount.
func (a AmountCandidate) Confidence() float64 {
	switch {
	case a.Explicit():
		return 1.0
	case a.Kind == KindSpelled:
		return 0.9
	default:
		return 0.8
	}
}

// PickPolicy chooses among several amounts in one message.
type PickPolicy string

// Pick policies. Indonesian phrasing usually describes the item before the
// price, so the last amount wins by default.
const (
	PickLast    PickPolicy = "last"
	PickFirst   PickPolicy = "first"
	PickLargest PickPolicy = "largest"
)

var magnitudes = map[string]int64{
	"rb":      1_000,
	"ribu":    1_000,
	"rebu":    1_000,
	"k":       1_000,
	"jt":      1_000_000,
	"juta":    1_000_000,
	"m":       1_000_000,
	"miliar":  1_000_000_000,
	"milyar":  1_000_000_000,
	"triliun": 1_000_000_000_000,
}

// Single-letter suffixes must touch the numeral ("50k", "2m"); word suffixes
// may be separated by a space ("50 ribu").
var numericAmount = regexp.MustCompile(
	`(rp\s?)?(\d+(?:[.,]\d+)*)(?:\s?(ribu|rebu|rb|juta|jt|miliar|milyar|triliun)|(k|m))?\b`)

// Bare numerals next to these words are dates, counts or durations, not money.
var (
	nonMoneyBefore = wordSet("tanggal", "tgl", "tahun", "thn", "jam", "pukul", "lantai", "nomor", "no",
		"januari", "februari", "maret", "april", "mei", "juni", "juli", "agustus",
		"september", "oktober", "november", "desember", "semester", "kelas", "umur", "usia")
	nonMoneyAfter = wordSet("hari", "minggu", "bulan", "tahun", "jam", "menit", "detik", "kali", "x",
		"orang", "porsi", "pcs", "buah", "biji", "gelas", "bungkus", "lembar", "persen", "sks",
		"semester", "kg", "km", "liter", "gb")
)

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Amounts returns every amount candidate in normalized text, ordered by position.
func (p *Parser) Amounts(normalized string) []AmountCandidate {
	tokens := tokenize(normalized)
	candidates := numericAmounts(normalized)
	candidates = append(candidates, spelledAmounts(normalized, tokens)...)

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Start < candidates[j].Start
	})

	candidates = mergeCompound(normalized, candidates)

	kept := candidates[:0]
	for _, c := range candidates {
		if c.Value <= 0 {
			continue
		}
		if !c.Explicit() && (c.Value < p.opts.MinBareAmount || nonMoneyContext(tokens, c)) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// Amount picks one candidate according to the parser's policy.
func (p *Parser) Amount(normalized string) (AmountCandidate, error) {
	candidates := p.Amounts(normalized)
	if len(candidates) == 0 {
		return AmountCandidate{}, ErrNoAmount
	}

	switch p.opts.Pick {
	case PickFirst:
		return candidates[0], nil
	case PickLargest:
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.Value > best.Value {
				best = c
			}
		}
		return best, nil
	default:
		return candidates[len(candidates)-1], nil
	}
}

func numericAmounts(s string) []AmountCandidate {
	var out []AmountCandidate

	for _, m := range numericAmount.FindAllStringSubmatchIndex(s, -1) {
		start, digitsStart := m[0], m[4]
		currency := m[2] >= 0 && !letterBefore(s, m[2])
		if m[2] >= 0 && !currency {
			start = digitsStart
		}
		if !currency && letterBefore(s, digitsStart) {
			// digits glued to a word, e.g. "mp3"
			continue
		}
		if (m[1] < len(s) && s[m[1]] == '/') || (digitsStart > 0 && s[digitsStart-1] == '/') {
			// part of a date like 25/12
			continue
		}

		value, err := parseNumeral(s[m[4]:m[5]])
		if err != nil {
			continue
		}

		multiplier := int64(1)
		switch {
		case m[6] >= 0:
			multiplier = magnitudes[s[m[6]:m[7]]]
		case m[8] >= 0:
			multiplier = magnitudes[s[m[8]:m[9]]]
		}

		total := value.Mul(decimal.NewFromInt(multiplier)).Round(0)
		if total.GreaterThan(maxAmount) {
			continue
		}

		out = append(out, AmountCandidate{
			Raw:        s[start:m[1]],
			Kind:       KindNumeric,
			Value:      total.IntPart(),
			Multiplier: multiplier,
			Start:      start,
			End:        m[1],
			Currency:   currency,
		})
	}

	return out
}

func letterBefore(s string, i int) bool {
	if i <= 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsLetter(r)
}

// parseNumeral reads Indonesian and English digit grouping. A separator
// followed by exactly three digits groups thousands; otherwise it is a
// decimal mark. With both separators present the last one is the decimal mark.
func parseNumeral(raw string) (decimal.Decimal, error) {
	dots := strings.Count(raw, ".")
	commas := strings.Count(raw, ",")

	var plain string
	switch {
	case dots == 0 && commas == 0:
		plain = raw
	case dots > 0 && commas > 0:
		lastDot := strings.LastIndex(raw, ".")
		lastComma := strings.LastIndex(raw, ",")
		if lastDot > lastComma {
			plain = strings.ReplaceAll(raw, ",", "")
		} else {
			plain = strings.ReplaceAll(raw, ".", "")
			plain = strings.Replace(plain, ",", ".", 1)
		}
	default:
		sep := "."
		if commas > 0 {
			sep = ","
		}
		parts := strings.Split(raw, sep)
		if len(parts) > 2 || len(parts[len(parts)-1]) == 3 {
			for _, part := range parts[1:] {
				if len(part) != 3 {
					return decimal.Zero, fmt.Errorf("malformed digit grouping %q", raw)
				}
			}
			plain = strings.Join(parts, "")
		} else {
			plain = parts[0] + "." + parts[1]
		}
	}

	return decimal.NewFromString(plain)
}

// mergeCompound joins adjacent amounts of strictly decreasing magnitude, so
// "1 juta 200 ribu" is read as one amount rather than two.
func mergeCompound(s string, candidates []AmountCandidate) []AmountCandidate {
	if len(candidates) < 2 {
		return candidates
	}

	merged := []AmountCandidate{candidates[0]}
	for _, c := range candidates[1:] {
		last := &merged[len(merged)-1]
		between := strings.TrimSpace(s[last.End:c.Start])
		if between == "" && last.Multiplier > c.Multiplier && c.Multiplier > 1 && c.Value < last.Multiplier {
			last.Value += c.Value
			last.End = c.End
			last.Raw = s[last.Start:last.End]
			last.Currency = last.Currency || c.Currency
			last.Multiplier = c.Multiplier
			continue
		}
		merged = append(merged, c)
	}
	return merged
}

func nonMoneyContext(tokens []token, c AmountCandidate) bool {
	var prev, next string
	for _, t := range tokens {
		if t.end <= c.Start {
			prev = t.text
		}
		if t.start >= c.End {
			next = t.text
			break
		}
	}
	return nonMoneyBefore[prev] || nonMoneyAfter[next]
}
