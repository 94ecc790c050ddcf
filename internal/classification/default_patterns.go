package classification

const (
	intentIncome       = "income"
	intentExpense      = "expense"
	intentSavingsGoal  = "savings_goal"
	intentQuery        = "query"
	intentNonFinancial = "non_financial"
)

// Questions about the user's own finances.
const queryRegex = `\b(berapa|brp|gimana|bagaimana|gmn|apakah|kesehatan keuangan|kondisi keuangan|saldo|sisa uang|sisa duit|ringkasan|rekap|laporan|analisis|boros|hemat gak|progress|progres|pengeluaran terbesar|paling banyak)\b`

// DefaultPatterns returns the built-in Indonesian patterns for every kind.
func DefaultPatterns() []Pattern {
	patterns := []Pattern{
		// Intent: questions win over everything else
		{
			Name:       "Finance Question",
			Kind:       KindIntent,
			Label:      intentQuery,
			Regex:      queryRegex,
			Priority:   100,
			Confidence: 0.85,
		},
		{
			Name:       "Thanks",
			Kind:       KindIntent,
			Label:      intentNonFinancial,
			Regex:      `^(makasih|terima kasih|trims|thanks|thank you|thx|tq)( (ya|yaa|kak|min|banyak|bang|sis))*$`,
			Priority:   95,
			Confidence: 0.9,
		},
		{
			Name:       "Greeting",
			Kind:       KindIntent,
			Label:      intentNonFinancial,
			Regex:      `^(halo|hallo|hai|hi|hello|hey|pagi|siang|sore|malam|assalamualaikum|permisi|tes|test)( (kak|min|bang|sis|semua|bot))*$`,
			Priority:   95,
			Confidence: 0.9,
		},
		{
			Name:       "Received Money",
			Kind:       KindIntent,
			Label:      intentIncome,
			Regex:      `\b(dapet|dapat|nerima|terima|diterima|gajian|cair|dikirim|dikirimin|kiriman|transferan|pemasukan|masuk|untung|menang)\b`,
			Priority:   90,
			Confidence: 0.85,
		},
		{
			Name:       "Income Source",
			Kind:       KindIntent,
			Label:      intentIncome,
			Regex:      `\b(gaji|uang saku|beasiswa|bonus|thr|honor|freelance|jualan|laku|angpao)\b`,
			Priority:   88,
			Confidence: 0.75,
		},
		{
			Name:       "Savings Goal",
			Kind:       KindIntent,
			Label:      intentSavingsGoal,
			Regex:      `\b(nabung|menabung|tabung|target|pengen beli|ingin beli|impian|goal|celengan|dana darurat|ngumpulin)\b`,
			Priority:   85,
			Confidence: 0.85,
		},
		{
			Name:       "Spending Verb",
			Kind:       KindIntent,
			Label:      intentExpense,
			Regex:      `\b(beli|bayar|belanja|jajan|keluar|habis|abis|pengeluaran|top ?up|isi|ngopi|nonton|langganan|sewa|ongkos|traktir|makan|checkout)\b`,
			Priority:   80,
			Confidence: 0.85,
		},
		{
			Name:       "Spending Object",
			Kind:       KindIntent,
			Label:      intentExpense,
			Regex:      `\b(kos|kost|ukt|spp|pulsa|kuota|listrik|bensin|ojol|gojek|grab|laundry|bubble tea|boba|kopi)\b`,
			Priority:   75,
			Confidence: 0.7,
		},

		// Query versus statement
		{
			Name:       "Question Words",
			Kind:       KindQuery,
			Label:      LabelQuery,
			Regex:      queryRegex,
			Priority:   100,
			Confidence: 0.85,
		},
		{
			Name:       "Question Particle",
			Kind:       KindQuery,
			Label:      LabelQuery,
			Regex:      `\b(kah|dong jelasin|tolong cek|cek|lihat|liat)\b`,
			Priority:   90,
			Confidence: 0.6,
		},
		{
			Name:       "Report Verb",
			Kind:       KindQuery,
			Label:      LabelStatement,
			Regex:      `\b(beli|bayar|dapet|dapat|nabung|gajian|jajan|belanja|terima)\b`,
			Priority:   50,
			Confidence: 0.7,
		},
	}

	return append(patterns, categoryPatterns()...)
}

func categoryPatterns() []Pattern {
	keywords := []struct {
		label string
		regex string
	}{
		{"kos", `\b(kos|kost|kosan|sewa kamar)\b`},
		{"makan", `\b(makan|sarapan|nasi|warteg|lauk|groceries)\b`},
		{"transportasi", `\b(ojol|ojek|gojek|grab|bensin|angkot|krl|busway|parkir|transport)\b`},
		{"pulsa", `\b(pulsa|kuota|paket data|wifi|internet)\b`},
		{"listrik", `\b(listrik|token|pln|pdam)\b`},
		{"kuliah", `\b(ukt|spp|kuliah|semesteran)\b`},
		{"buku", `\b(buku|fotokopi|print|atk|alat tulis)\b`},
		{"kesehatan", `\b(obat|dokter|apotek|klinik|bpjs)\b`},
		{"laundry", `\b(laundry|cuci baju)\b`},
		{"bubble tea", `\b(bubble tea|boba|milk tea|chatime|mixue)\b`},
		{"kopi", `\b(kopi|ngopi|latte|starbucks)\b`},
		{"jajan", `\b(jajan|snack|cemilan|gorengan|martabak)\b`},
		{"nonton", `\b(nonton|bioskop|film|konser)\b`},
		{"game", `\b(game|top ?up|diamond|steam)\b`},
		{"belanja", `\b(belanja|baju|sepatu|shopee|tokopedia|skincare)\b`},
		{"langganan", `\b(langganan|netflix|spotify|youtube premium)\b`},
		{"nongkrong", `\b(nongkrong|hangout|cafe|kafe)\b`},
		{"tabungan", `\b(tabungan|nabung|menabung)\b`},
		{"investasi", `\b(investasi|reksadana|reksa dana|saham|emas|deposito)\b`},
		{"dana darurat", `\b(dana darurat)\b`},
	}

	patterns := make([]Pattern, 0, len(keywords))
	for i, k := range keywords {
		patterns = append(patterns, Pattern{
			Name:       "Category " + k.label,
			Kind:       KindCategory,
			Label:      k.label,
			Regex:      k.regex,
			Priority:   100 - i,
			Confidence: 0.8,
		})
	}
	return patterns
}
