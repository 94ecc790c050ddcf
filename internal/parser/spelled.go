package parser

import "math"

var spelledDigits = map[string]int64{
	"satu": 1, "dua": 2, "tiga": 3, "empat": 4, "lima": 5,
	"enam": 6, "tujuh": 7, "delapan": 8, "sembilan": 9,
}

// Words that are a complete group on their own.
var spelledGroups = map[string]int64{
	"sepuluh": 10,
	"sebelas": 11,
	"seratus": 100,
}

var spelledMagnitudes = map[string]int64{
	"ribu":    1_000,
	"rebu":    1_000,
	"rb":      1_000,
	"juta":    1_000_000,
	"jt":      1_000_000,
	"miliar":  1_000_000_000,
	"milyar":  1_000_000_000,
	"triliun": 1_000_000_000_000,
}

// "se" + magnitude means one of that magnitude.
var spelledOne = map[string]int64{
	"seribu":   1_000,
	"sejuta":   1_000_000,
	"semiliar": 1_000_000_000,
	"semilyar": 1_000_000_000,
}

type spelledRun struct {
	first, last int
	total       int64
	group       int64
	digit       int64
	smallest    int64
	words       int
}

func (r *spelledRun) groupValue() int64 { return r.group + r.digit }

// accept folds one token into the run and reports whether it belonged.
func (r *spelledRun) accept(tokens []token, i int) (consumed int, ok bool) {
	w := tokens[i].text

	if d, found := spelledDigits[w]; found {
		// units close the group after sepuluh, sebelas and the belas forms
		if r.digit != 0 || r.group%10 != 0 || r.group%100 == 10 {
			return 0, false
		}
		r.digit = d
		return 1, true
	}
	if g, found := spelledGroups[w]; found {
		switch {
		case g == 100 && r.groupValue() != 0:
			return 0, false
		case g < 100 && (r.digit != 0 || r.group%100 != 0):
			return 0, false
		}
		r.group += g
		return 1, true
	}

	switch w {
	case "puluh", "belas", "ratus":
		if r.digit == 0 {
			return 0, false
		}
		switch w {
		case "puluh", "belas":
			if r.group%100 != 0 {
				return 0, false
			}
			if w == "puluh" {
				r.group += r.digit * 10
			} else {
				r.group += r.digit + 10
			}
		case "ratus":
			if r.group != 0 {
				return 0, false
			}
			r.group = r.digit * 100
		}
		r.digit = 0
		return 1, true
	case "setengah":
		if r.groupValue() != 0 || i+1 >= len(tokens) {
			return 0, false
		}
		m, found := spelledMagnitudes[tokens[i+1].text]
		if !found || !r.fits(m) {
			return 0, false
		}
		r.total += m / 2
		r.smallest = m
		return 2, true
	}

	if m, found := spelledOne[w]; found {
		if r.groupValue() != 0 || !r.fits(m) {
			return 0, false
		}
		r.total += m
		r.smallest = m
		return 1, true
	}
	if m, found := spelledMagnitudes[w]; found {
		g := r.groupValue()
		if g == 0 || !r.fits(m) || g > (math.MaxInt64-r.total)/m {
			return 0, false
		}
		r.total += g * m
		r.group, r.digit = 0, 0
		r.smallest = m
		return 1, true
	}

	return 0, false
}

// fits reports whether magnitude m can follow the magnitudes already used.
func (r *spelledRun) fits(m int64) bool {
	return r.smallest == 0 || m < r.smallest
}

func (r *spelledRun) candidate(s string, tokens []token) AmountCandidate {
	multiplier := r.smallest
	if multiplier == 0 {
		multiplier = 1
	}
	start, end := tokens[r.first].start, tokens[r.last].end
	return AmountCandidate{
		Raw:        s[start:end],
		Kind:       KindSpelled,
		Value:      r.total + r.groupValue(),
		Multiplier: multiplier,
		Start:      start,
		End:        end,
	}
}

// spelledAmounts reads numbers written as Indonesian words, such as
// "lima puluh ribu" or "satu juta dua ratus ribu".
func spelledAmounts(s string, tokens []token) []AmountCandidate {
	var out []AmountCandidate
	run := spelledRun{}

	flush := func() {
		if run.words > 0 {
			if c := run.candidate(s, tokens); c.Value > 0 {
				out = append(out, c)
			}
		}
		run = spelledRun{}
	}

	for i := 0; i < len(tokens); {
		n, ok := run.accept(tokens, i)
		if ok {
			if run.words == 0 {
				run.first = i
			}
			run.last = i + n - 1
			run.words += n
			i += n
			continue
		}
		if run.words > 0 {
			// retry the token as the start of a new run
			flush()
			continue
		}
		i++
	}
	flush()

	return out
}
