package dialogue

import (
	"strings"

	"github.com/Veraticus/celengan/internal/reply"
)

// topicKeywords picks the subject of a question. The first topic with a
// matching keyword wins.
var topicKeywords = []struct {
	topic    reply.Topic
	keywords []string
}{
	{reply.TopicHealth, []string{"kesehatan", "sehat", "kondisi keuangan", "keuangan", "health", "hemat gak", "boros gak"}},
	{reply.TopicGoals, []string{"target", "tabungan", "nabung", "goal", "progress", "progres", "impian"}},
	{reply.TopicTopCategory, []string{"paling banyak", "terbesar", "paling boros", "kategori", "boros"}},
	{reply.TopicBalance, []string{"saldo", "sisa uang", "sisa duit", "balance", "uang aku", "duit aku"}},
	{reply.TopicIncome, []string{"pemasukan", "pendapatan", "income", "gaji", "dapet berapa", "dapat berapa"}},
	{reply.TopicExpense, []string{"pengeluaran", "habis", "keluar", "spending", "belanja", "jajan"}},
}

// queryTopic picks what a normalized question asks about.
func queryTopic(normalized string) reply.Topic {
	padded := " " + normalized + " "
	for _, tk := range topicKeywords {
		for _, kw := range tk.keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return tk.topic
			}
		}
	}
	return reply.TopicSummary
}
