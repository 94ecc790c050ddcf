package dialogue

import (
	"strings"
)

// Lexicon holds the short replies that confirm or reject without a
// classifier call. Entries may span several words.
type Lexicon struct {
	affirmative [][]string
	negative    [][]string
	fillers     map[string]bool
}

var (
	defaultAffirmative = []string{
		"ya", "iya", "iy", "y", "yoi", "benar", "bener", "betul", "ok", "oke", "okay", "okey", "sip", "siap",
		"setuju", "boleh", "lanjut", "gas", "mantap", "simpan", "catat", "yes", "yep", "yup", "confirm",
	}
	defaultNegative = []string{
		"tidak", "nggak", "ngga", "gak", "ga", "enggak", "engga", "ndak", "batal", "batalin", "salah",
		"bukan", "jangan", "gak jadi", "ga jadi", "nggak jadi", "tidak jadi", "ga usah", "gak usah",
		"no", "nope", "cancel",
	}
	defaultFillers = []string{
		"dong", "deh", "aja", "saja", "kak", "min", "sih", "ya", "yah", "lah", "kok", "udah", "sudah",
		"simpan", "catat", "tolong", "bang", "sis",
	}
)

// DefaultLexicon returns the built-in Indonesian and English lexicon.
func DefaultLexicon() *Lexicon {
	return NewLexicon(defaultAffirmative, defaultNegative, defaultFillers)
}

// NewLexicon builds a lexicon from normalized phrases.
func NewLexicon(affirmative, negative, fillers []string) *Lexicon {
	l := &Lexicon{
		affirmative: phrases(affirmative),
		negative:    phrases(negative),
		fillers:     make(map[string]bool, len(fillers)),
	}
	for _, f := range fillers {
		l.fillers[squeeze(f)] = true
	}
	return l
}

func phrases(entries []string) [][]string {
	out := make([][]string, 0, len(entries))
	for _, e := range entries {
		words := strings.Fields(e)
		for i := range words {
			words[i] = squeeze(words[i])
		}
		if len(words) > 0 {
			out = append(out, words)
		}
	}
	return out
}

// Affirmative reports whether normalized text is a confirmation.
func (l *Lexicon) Affirmative(normalized string) bool {
	return l.matches(normalized, l.affirmative)
}

// Negative reports whether normalized text is a rejection.
func (l *Lexicon) Negative(normalized string) bool {
	return l.matches(normalized, l.negative)
}

// matches accepts text made only of lexicon phrases and filler particles,
// with at least one phrase: "ya", "oke simpan", "gak jadi deh".
func (l *Lexicon) matches(normalized string, entries [][]string) bool {
	words := strings.Fields(normalized)
	for i := range words {
		words[i] = squeeze(words[i])
	}

	hits := 0
	for i := 0; i < len(words); {
		if n := longestPhrase(words[i:], entries); n > 0 {
			hits++
			i += n
			continue
		}
		if l.fillers[words[i]] {
			i++
			continue
		}
		return false
	}
	return hits > 0
}

func longestPhrase(words []string, entries [][]string) int {
	best := 0
	for _, e := range entries {
		if len(e) <= best || len(e) > len(words) {
			continue
		}
		match := true
		for j, w := range e {
			if words[j] != w {
				match = false
				break
			}
		}
		if match {
			best = len(e)
		}
	}
	return best
}

// squeeze collapses runs of a repeated letter: "iyaaa" and "okee" become
// "iya" and "oke". Lexicon entries are squeezed the same way.
func squeeze(word string) string {
	var b strings.Builder
	var prev rune
	for i, r := range word {
		if i > 0 && r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
