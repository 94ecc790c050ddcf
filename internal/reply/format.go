package reply

import (
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/celengan/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printers = map[model.Language]*message.Printer{
	model.LanguageIndonesian: message.NewPrinter(language.Indonesian),
	model.LanguageEnglish:    message.NewPrinter(language.English),
}

func printer(lang model.Language) *message.Printer {
	if p, ok := printers[lang]; ok {
		return p
	}
	return printers[model.LanguageIndonesian]
}

// FormatAmount renders whole rupiah with the language's digit grouping:
// "Rp50.000" in Indonesian, "Rp50,000" in English.
func FormatAmount(lang model.Language, amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "Rp" + printer(lang).Sprintf("%d", amount)
}

// FormatPercent rounds p to a whole percent.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%d%%", int64(math.Round(p)))
}

var monthNames = map[model.Language][12]string{
	model.LanguageIndonesian: {
		"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember",
	},
	model.LanguageEnglish: {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
}

// FormatDate renders a calendar date such as "31 Desember 2026".
func FormatDate(lang model.Language, t time.Time) string {
	names, ok := monthNames[lang]
	if !ok {
		names = monthNames[model.LanguageIndonesian]
	}
	return fmt.Sprintf("%d %s %d", t.Day(), names[t.Month()-1], t.Year())
}
