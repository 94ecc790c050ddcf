package reply

import (
	"fmt"
	"strings"

	"github.com/Veraticus/celengan/internal/model"
)

// Composer renders replies. The zero value renders Indonesian by default.
type Composer struct {
	fallback model.Language
}

// NewComposer creates a composer that uses lang when a session has no
// language preference.
func NewComposer(lang model.Language) *Composer {
	return &Composer{fallback: lang}
}

func (c *Composer) language(lang model.Language) model.Language {
	switch lang {
	case model.LanguageIndonesian, model.LanguageEnglish:
		return lang
	}
	if c != nil && c.fallback == model.LanguageEnglish {
		return model.LanguageEnglish
	}
	return model.LanguageIndonesian
}

// Render returns the text for r.
func (c *Composer) Render(lang model.Language, r Reply) string {
	lang = c.language(lang)
	t := text{lang: lang}

	switch r := r.(type) {
	case Proposal:
		return t.proposal(r)
	case ConfirmationResult:
		return t.confirmation(r)
	case RejectionAck:
		return t.pick(
			fmt.Sprintf("Oke, %s dibatalkan. Tidak ada yang dicatat.", t.describe(r.Statement)),
			fmt.Sprintf("Okay, the %s is cancelled. Nothing was recorded.", t.describe(r.Statement)))
	case Clarification:
		return t.clarification(r)
	case QueryAnswer:
		return t.query(r)
	case Fallback:
		return t.fallback(r)
	case ExpiredNotice:
		return t.pick(
			fmt.Sprintf("Catatan %s sudah kedaluwarsa dan tidak disimpan. Kirim ulang kalau masih mau dicatat.", t.describe(r.Statement)),
			fmt.Sprintf("The %s expired and was not saved. Send it again if you still want it recorded.", t.describe(r.Statement)))
	default:
		panic(fmt.Sprintf("reply: unhandled reply type %T", r))
	}
}

// Reminder is appended to replies while a confirmation is parked.
func (c *Composer) Reminder(lang model.Language, stmt model.Statement) string {
	t := text{lang: c.language(lang)}
	return t.pick(
		fmt.Sprintf("(Catatan %s masih menunggu konfirmasi: balas \"ya\" atau \"tidak\".)", t.describe(stmt)),
		fmt.Sprintf("(The %s is still waiting: reply \"yes\" or \"no\".)", t.describe(stmt)))
}

type text struct {
	lang model.Language
}

func (t text) pick(id, en string) string {
	if t.lang == model.LanguageEnglish {
		return en
	}
	return id
}

func (t text) amount(v int64) string {
	return FormatAmount(t.lang, v)
}

func (t text) intentName(intent model.Intent) string {
	switch intent {
	case model.IntentIncome:
		return t.pick("pemasukan", "income")
	case model.IntentExpense:
		return t.pick("pengeluaran", "expense")
	case model.IntentSavingsGoal:
		return t.pick("target tabungan", "savings goal")
	default:
		return t.pick("catatan", "entry")
	}
}

// describe renders a statement as a noun phrase, such as
// "pengeluaran Rp28.000 untuk bubble tea".
func (t text) describe(s model.Statement) string {
	var b strings.Builder
	b.WriteString(t.intentName(s.Intent))

	switch s.Intent {
	case model.IntentIncome:
		b.WriteString(" " + t.amount(s.Amount))
		if s.Source != "" {
			b.WriteString(t.pick(" dari ", " from ") + s.Source)
		}
	case model.IntentExpense:
		b.WriteString(" " + t.amount(s.Amount))
		label := s.Category
		if s.Item != "" {
			label = s.Item
		}
		if label != "" {
			b.WriteString(t.pick(" untuk ", " for ") + label)
		}
	case model.IntentSavingsGoal:
		if s.Item != "" {
			b.WriteString(" " + s.Item)
		}
		b.WriteString(t.pick(" sebesar ", " of ") + t.amount(s.Amount))
		if s.TargetDate != nil {
			b.WriteString(t.pick(" sampai ", " by ") + FormatDate(t.lang, *s.TargetDate))
		}
	default:
		if s.Amount > 0 {
			b.WriteString(" " + t.amount(s.Amount))
		}
	}
	return b.String()
}

func (t text) proposal(p Proposal) string {
	var b strings.Builder
	if p.Amended {
		b.WriteString(t.pick("Oke, aku ganti. ", "Okay, updated. "))
	}

	s := p.Statement
	switch s.Intent {
	case model.IntentSavingsGoal:
		b.WriteString(t.pick("Aku buat ", "I'll set a "))
	default:
		b.WriteString(t.pick("Aku catat ", "I'll record "))
	}
	b.WriteString(t.describe(s))
	if s.Intent != model.IntentSavingsGoal && s.TargetDate != nil {
		b.WriteString(t.pick(" tanggal ", " on ") + FormatDate(t.lang, *s.TargetDate))
	}
	b.WriteString(t.pick(". Benar? (ya/tidak)", ". Correct? (yes/no)"))
	return b.String()
}

func (t text) confirmation(r ConfirmationResult) string {
	if r.Success {
		return t.pick(
			fmt.Sprintf("Sip, %s sudah dicatat.", t.describe(r.Statement)),
			fmt.Sprintf("Done, the %s is saved.", t.describe(r.Statement)))
	}
	return t.pick(
		fmt.Sprintf("Maaf, %s belum berhasil disimpan. Balas \"ya\" untuk coba lagi atau \"batal\" untuk membatalkan.", t.describe(r.Statement)),
		fmt.Sprintf("Sorry, the %s could not be saved. Reply \"yes\" to try again or \"cancel\" to drop it.", t.describe(r.Statement)))
}

func (t text) clarification(c Clarification) string {
	switch c.Reason {
	case ClarifyAmount:
		label := c.Statement.Label()
		if label != "" && label != "lainnya" {
			return t.pick(
				fmt.Sprintf("Berapa nominal %s untuk %s? Contoh: \"%s 50rb\".", t.intentName(c.Statement.Intent), label, label),
				fmt.Sprintf("How much was the %s for %s? For example: \"%s 50k\".", t.intentName(c.Statement.Intent), label, label))
		}
		return t.pick(
			fmt.Sprintf("Berapa nominal %s-nya? Contoh: \"50rb\" atau \"1,2 juta\".", t.intentName(c.Statement.Intent)),
			fmt.Sprintf("How much was the %s? For example: \"50k\" or \"1.2 juta\".", t.intentName(c.Statement.Intent)))
	case ClarifyZeroAmount:
		return t.pick("Nominalnya harus lebih dari nol. Berapa jumlahnya?",
			"The amount has to be more than zero. How much was it?")
	case ClarifyPending:
		pending := "-"
		if c.Pending != nil {
			pending = t.describe(*c.Pending)
		}
		return t.pick(
			fmt.Sprintf("Masih ada catatan yang menunggu konfirmasi: %s. Balas \"ya\" untuk simpan atau \"tidak\" untuk batal dulu.", pending),
			fmt.Sprintf("There's still an entry waiting for confirmation: %s. Reply \"yes\" to save it or \"no\" to cancel first.", pending))
	default:
		return t.pick(
			"Maaf, aku kurang yakin maksudmu. Ini pemasukan, pengeluaran, atau target tabungan?",
			"Sorry, I'm not sure what you mean. Is this income, an expense or a savings goal?")
	}
}

func (t text) fallback(f Fallback) string {
	if f.Reason == FallbackNonFinancial {
		return t.pick(
			"Aku bisa bantu catat pemasukan, pengeluaran, dan target tabungan. Contoh: \"dapet 50rb dari freelance\".",
			"I can record income, expenses and savings goals. For example: \"dapet 50rb dari freelance\".")
	}
	return t.pick(
		"Maaf, aku belum paham. Coba tulis seperti \"beli kopi 25rb\" atau \"saldo aku berapa?\".",
		"Sorry, I didn't get that. Try something like \"beli kopi 25rb\" or \"saldo aku berapa?\".")
}
