package dialogue

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/celengan/internal/classification"
	"github.com/Veraticus/celengan/internal/model"
	"github.com/Veraticus/celengan/internal/parser"
	"github.com/stretchr/testify/assert"
)

func TestLexicon(t *testing.T) {
	l := DefaultLexicon()

	tests := []struct {
		text        string
		affirmative bool
		negative    bool
	}{
		{text: "ya", affirmative: true},
		{text: "iyaaa", affirmative: true},
		{text: "ya betul", affirmative: true},
		{text: "oke simpan", affirmative: true},
		{text: "okee deh", affirmative: true},
		{text: "siip kak", affirmative: true},
		{text: "simpan aja", affirmative: true},
		{text: "yes", affirmative: true},
		{text: "tidak", negative: true},
		{text: "nggak", negative: true},
		{text: "gak jadi deh", negative: true},
		{text: "batal aja ya", negative: true},
		{text: "salah", negative: true},
		{text: "cancel", negative: true},
		{text: "ya tapi 25rb"},
		{text: "mungkin"},
		{text: "aja deh"},
		{text: "okelah kalau begitu"},
		{text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			normalized := parser.Normalize(tt.text)
			assert.Equal(t, tt.affirmative, l.Affirmative(normalized))
			assert.Equal(t, tt.negative, l.Negative(normalized))
		})
	}
}

func TestSqueeze(t *testing.T) {
	assert.Equal(t, "iya", squeeze("iyaaaa"))
	assert.Equal(t, "ngak", squeeze("nggak"))
	assert.Equal(t, "sip", squeeze("siiiip"))
}

func TestResolver_Resolve(t *testing.T) {
	gateway := classification.NewGateway(classification.NewDefaultRuleClassifier(), classification.DefaultGatewayConfig(), quietLogger())
	defer func() {
		_ = gateway.Close()
	}()

	r := NewResolver(nil, gateway, parser.New(parser.DefaultOptions(), nil))
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	pending := &model.PendingAction{
		ID:        "a1",
		State:     model.StateProposed,
		Statement: model.Statement{Intent: model.IntentExpense, Category: "bubble tea", Amount: 28_000},
	}

	tests := []struct {
		text   string
		want   ResolutionKind
		amount int64
	}{
		{text: "oke", want: ResolveConfirm},
		{text: "gak jadi", want: ResolveReject},
		{text: "beli bubble tea 25 ribu", want: ResolveAmend, amount: 25_000},
		{text: "eh salah, bayar 30rb", want: ResolveAmend, amount: 30_000},
		{text: "beli bubble tea", want: ResolveUnrelated},
		{text: "dapet 50rb dari freelance", want: ResolveUnrelated},
		{text: "saldo aku berapa", want: ResolveUnrelated},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res := r.Resolve(context.Background(), parser.Normalize(tt.text), pending, now)
			assert.Equal(t, tt.want, res.Kind)
			if tt.want == ResolveAmend {
				assert.Equal(t, tt.amount, res.Statement.Amount)
				assert.Equal(t, model.IntentExpense, res.Statement.Intent)
			}
			if tt.want == ResolveUnrelated {
				assert.True(t, res.Classified)
			}
		})
	}
}
