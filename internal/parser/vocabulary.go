package parser

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Group names a keyword set.
type Group string

// Keyword groups.
const (
	GroupNeeds   Group = "needs"
	GroupWants   Group = "wants"
	GroupSavings Group = "savings"
	GroupSource  Group = "income_source"
	GroupGoal    Group = "goal_item"
)

// Span is a vocabulary match in normalized text.
type Span struct {
	Label string
	Group Group
	Start int
	End   int
}

// Vocabulary maps multi-word phrases to canonical labels per group.
type Vocabulary struct {
	// entries sorted by descending word count so longer phrases win
	entries []vocabEntry
}

type vocabEntry struct {
	label  string
	group  Group
	phrase []string
}

// VocabularySpec is the on-disk shape of a vocabulary file:
// group -> label -> phrases.
type VocabularySpec map[Group]map[string][]string

var defaultVocabulary = VocabularySpec{
	GroupNeeds: {
		"kos":          {"kos", "kost", "kosan", "sewa kamar", "bayar kos"},
		"makan":        {"makan", "makan siang", "makan malam", "sarapan", "nasi", "warteg", "groceries", "belanja bulanan"},
		"transportasi": {"transport", "transportasi", "ojol", "ojek", "gojek", "grab", "bensin", "angkot", "krl", "busway", "parkir"},
		"pulsa":        {"pulsa", "kuota", "paket data", "internet", "wifi"},
		"listrik":      {"listrik", "token listrik", "pln", "air", "pdam"},
		"kuliah":       {"kuliah", "ukt", "spp", "uang kuliah", "semesteran"},
		"buku":         {"buku", "fotokopi", "print", "alat tulis", "atk"},
		"kesehatan":    {"obat", "dokter", "apotek", "klinik", "rumah sakit", "bpjs"},
		"laundry":      {"laundry", "cuci baju"},
	},
	GroupWants: {
		"jajan":      {"jajan", "snack", "cemilan", "gorengan", "martabak"},
		"bubble tea": {"bubble tea", "boba", "milk tea", "chatime", "mixue"},
		"kopi":       {"kopi", "ngopi", "starbucks", "kopken", "latte"},
		"nonton":     {"nonton", "bioskop", "film", "konser", "tiket"},
		"game":       {"game", "top up", "topup", "diamond", "voucher game", "steam"},
		"belanja":    {"belanja", "baju", "sepatu", "shopee", "tokopedia", "skincare"},
		"langganan":  {"langganan", "netflix", "spotify", "youtube premium", "disney"},
		"nongkrong":  {"nongkrong", "hangout", "cafe", "kafe"},
	},
	GroupSavings: {
		"tabungan":     {"tabungan", "nabung", "menabung", "celengan"},
		"investasi":    {"investasi", "reksadana", "reksa dana", "saham", "emas", "deposito"},
		"dana darurat": {"dana darurat", "darurat"},
	},
	GroupSource: {
		"gaji":      {"gaji", "gajian", "salary"},
		"freelance": {"freelance", "project", "proyek", "job", "ngelesin", "les privat"},
		"beasiswa":  {"beasiswa", "kip", "scholarship"},
		"uang saku": {"uang saku", "kiriman", "kiriman ortu", "transferan ortu", "dikirim ortu", "dari ortu", "dari mama", "dari papa", "dari ibu", "dari ayah"},
		"jualan":    {"jualan", "dagang", "penjualan", "laku"},
		"bonus":     {"bonus", "thr", "insentif"},
		"hadiah":    {"hadiah", "angpao", "kado", "menang lomba"},
		"part time": {"part time", "parttime", "shift", "kerja sampingan"},
	},
	GroupGoal: {
		"laptop":   {"laptop", "macbook", "notebook"},
		"hp":       {"hp", "handphone", "iphone", "smartphone", "ponsel"},
		"motor":    {"motor", "sepeda motor"},
		"liburan":  {"liburan", "traveling", "jalan jalan", "mudik", "tiket pesawat"},
		"kamera":   {"kamera", "camera"},
		"konser":   {"tiket konser"},
		"wisuda":   {"wisuda"},
		"menikah":  {"nikah", "menikah", "pernikahan"},
		"rumah":    {"rumah", "dp rumah"},
		"sepeda":   {"sepeda"},
		"tablet":   {"tablet", "ipad"},
	},
}

// DefaultVocabulary returns the built-in keyword sets.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(defaultVocabulary)
}

// NewVocabulary builds a vocabulary from spec. Phrases are normalized so
// they match text produced by Normalize.
func NewVocabulary(spec VocabularySpec) *Vocabulary {
	v := &Vocabulary{}
	v.merge(spec)
	return v
}

func (v *Vocabulary) merge(spec VocabularySpec) {
	// drop phrases the override redefines so the new label takes effect
	redefined := make(map[string]bool)
	for group, labels := range spec {
		for _, phrases := range labels {
			for _, phrase := range phrases {
				redefined[string(group)+"|"+Normalize(phrase)] = true
			}
		}
	}
	kept := v.entries[:0]
	for _, e := range v.entries {
		if !redefined[string(e.group)+"|"+strings.Join(e.phrase, " ")] {
			kept = append(kept, e)
		}
	}
	v.entries = kept

	for group, labels := range spec {
		for label, phrases := range labels {
			for _, phrase := range phrases {
				words := strings.Fields(Normalize(phrase))
				if len(words) == 0 {
					continue
				}
				v.entries = append(v.entries, vocabEntry{label: label, group: group, phrase: words})
			}
		}
	}

	sort.Slice(v.entries, func(i, j int) bool {
		a, b := v.entries[i], v.entries[j]
		if len(a.phrase) != len(b.phrase) {
			return len(a.phrase) > len(b.phrase)
		}
		if a.group != b.group {
			return a.group < b.group
		}
		if a.label != b.label {
			return a.label < b.label
		}
		return strings.Join(a.phrase, " ") < strings.Join(b.phrase, " ")
	})
}

// LoadVocabulary reads a YAML vocabulary file and merges it over the
// defaults. An empty path returns the defaults.
func LoadVocabulary(path string) (*Vocabulary, error) {
	v := DefaultVocabulary()
	if path == "" {
		return v, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's own config
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var spec VocabularySpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file %s: %w", path, err)
	}
	for group := range spec {
		switch group {
		case GroupNeeds, GroupWants, GroupSavings, GroupSource, GroupGoal:
		default:
			return nil, fmt.Errorf("vocabulary file %s: unknown group %q", path, group)
		}
	}

	v.merge(spec)
	return v, nil
}

// Match returns non-overlapping vocabulary spans in normalized text, longest
// phrase first, ordered by position.
func (v *Vocabulary) Match(normalized string, groups ...Group) []Span {
	tokens := tokenize(normalized)
	taken := make([]bool, len(tokens))
	allowed := make(map[Group]bool, len(groups))
	for _, g := range groups {
		allowed[g] = true
	}

	var spans []Span
	for _, e := range v.entries {
		if len(groups) > 0 && !allowed[e.group] {
			continue
		}
		n := len(e.phrase)
		for i := 0; i+n <= len(tokens); i++ {
			if !phraseAt(tokens, taken, i, e.phrase) {
				continue
			}
			for j := i; j < i+n; j++ {
				taken[j] = true
			}
			spans = append(spans, Span{
				Label: e.label,
				Group: e.group,
				Start: tokens[i].start,
				End:   tokens[i+n-1].end,
			})
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

func phraseAt(tokens []token, taken []bool, i int, phrase []string) bool {
	for j, w := range phrase {
		if taken[i+j] || tokens[i+j].text != w {
			return false
		}
	}
	return true
}

// First returns the first span from any of groups, in group order.
func (v *Vocabulary) First(normalized string, groups ...Group) (Span, bool) {
	spans := v.Match(normalized, groups...)
	for _, g := range groups {
		for _, s := range spans {
			if s.Group == g {
				return s, true
			}
		}
	}
	return Span{}, false
}
