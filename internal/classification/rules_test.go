package classification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleClassifier(t *testing.T) {
	tests := []struct {
		name     string
		errMsg   string
		patterns []Pattern
		wantErr  bool
	}{
		{
			name: "valid patterns",
			patterns: []Pattern{
				{Name: "Gaji", Kind: KindIntent, Label: "income", Regex: `gaji`, Priority: 100, Confidence: 0.9},
				{Name: "Beli", Kind: KindIntent, Label: "expense", Regex: `beli`, Priority: 50, Confidence: 0.8},
			},
		},
		{
			name: "invalid regex",
			patterns: []Pattern{
				{Name: "Bad Pattern", Kind: KindIntent, Label: "income", Regex: `[invalid regex`},
			},
			wantErr: true,
			errMsg:  "failed to compile pattern",
		},
		{
			name: "label outside kind",
			patterns: []Pattern{
				{Name: "Wrong", Kind: KindQuery, Label: "expense", Regex: `x`},
			},
			wantErr: true,
			errMsg:  "not valid for kind",
		},
		{
			name:     "empty patterns",
			patterns: []Pattern{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := NewRuleClassifier(tt.patterns)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rc.patterns, len(tt.patterns))
		})
	}
}

func TestRuleClassifier_PriorityOrder(t *testing.T) {
	rc, err := NewRuleClassifier([]Pattern{
		{Name: "Low", Kind: KindIntent, Label: "expense", Regex: `uang`, Priority: 10, Confidence: 0.5},
		{Name: "High", Kind: KindIntent, Label: "query", Regex: `berapa`, Priority: 100, Confidence: 0.9},
	})
	require.NoError(t, err)

	got, err := rc.Classify(context.Background(), "uang aku berapa", KindIntent)
	require.NoError(t, err)
	assert.Equal(t, "query", got.Label)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
}

func TestRuleClassifier_DefaultIntents(t *testing.T) {
	rc := NewDefaultRuleClassifier()

	tests := []struct {
		text string
		want string
	}{
		{"dapet 50rb dari freelance", "income"},
		{"gajian 3 juta", "income"},
		{"bayar kos 1.2 juta", "expense"},
		{"beli bubble tea 28 ribu", "expense"},
		{"bayar kos", "expense"},
		{"mau nabung 5 juta buat laptop", "savings_goal"},
		{"pengen beli hp 4 juta desember", "savings_goal"},
		{"kesehatan keuangan saya gimana", "query"},
		{"saldo aku berapa", "query"},
		{"makasih ya kak", "non_financial"},
		{"halo", "non_financial"},
		{"cuaca hari ini cerah", LabelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := rc.Classify(context.Background(), tt.text, KindIntent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Label)
		})
	}
}

func TestRuleClassifier_CorroborationBoost(t *testing.T) {
	rc := NewDefaultRuleClassifier()

	single, err := rc.Classify(context.Background(), "beli sesuatu 10rb", KindIntent)
	require.NoError(t, err)
	double, err := rc.Classify(context.Background(), "bayar kos 1 juta", KindIntent)
	require.NoError(t, err)

	assert.Equal(t, "expense", single.Label)
	assert.Equal(t, "expense", double.Label)
	assert.Greater(t, double.Confidence, single.Confidence)
}

func TestRuleClassifier_OtherKinds(t *testing.T) {
	rc := NewDefaultRuleClassifier()
	ctx := context.Background()

	got, err := rc.Classify(ctx, "beli boba 25rb", KindCategory)
	require.NoError(t, err)
	assert.Equal(t, "bubble tea", got.Label)

	got, err = rc.Classify(ctx, "sisa uang aku berapa", KindQuery)
	require.NoError(t, err)
	assert.Equal(t, LabelQuery, got.Label)

	got, err = rc.Classify(ctx, "beli kopi 20rb", KindQuery)
	require.NoError(t, err)
	assert.Equal(t, LabelStatement, got.Label)
}

func TestRuleClassifier_CanceledContext(t *testing.T) {
	rc := NewDefaultRuleClassifier()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rc.Classify(ctx, "bayar kos", KindIntent)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRuleClassifier_OnlyItsOwnPatterns(t *testing.T) {
	rc, err := NewRuleClassifier([]Pattern{
		{Name: "Only", Kind: KindIntent, Label: "income", Regex: `cuan`, Priority: 1, Confidence: 0.7},
	})
	require.NoError(t, err)

	got, err := rc.Classify(context.Background(), "cuan 100rb", KindIntent)
	require.NoError(t, err)
	assert.Equal(t, "income", got.Label)

	got, err = rc.Classify(context.Background(), "bayar kos", KindIntent)
	require.NoError(t, err)
	assert.Equal(t, LabelUnknown, got.Label)
	assert.Zero(t, got.Confidence)
}
