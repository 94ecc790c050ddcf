package dialogue

import (
	"testing"

	"github.com/Veraticus/celengan/internal/parser"
	"github.com/Veraticus/celengan/internal/reply"
	"github.com/stretchr/testify/assert"
)

func TestQueryTopic(t *testing.T) {
	tests := []struct {
		text string
		want reply.Topic
	}{
		{"Kesehatan keuangan saya gimana?", reply.TopicHealth},
		{"saldo aku berapa", reply.TopicBalance},
		{"progress target laptop gimana", reply.TopicGoals},
		{"pengeluaran terbesar bulan ini apa", reply.TopicTopCategory},
		{"pemasukan bulan ini berapa", reply.TopicIncome},
		{"udah habis berapa bulan ini", reply.TopicExpense},
		{"rekap dong", reply.TopicSummary},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, queryTopic(parser.Normalize(tt.text)))
		})
	}
}
