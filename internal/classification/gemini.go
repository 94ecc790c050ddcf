package classification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/celengan/internal/common"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKey    string
	Model     string
	RateLimit int
}

// generateFunc sends a prompt to the model and returns its text answer.
type generateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiClassifier asks a Gemini model to pick one label from the closed
// label set of the requested kind.
type GeminiClassifier struct {
	generate generateFunc
	limiter  *rate.Limiter
	model    string
}

// NewGeminiClassifier creates a Gemini-backed classifier.
func NewGeminiClassifier(ctx context.Context, cfg GeminiConfig) (*GeminiClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	generate := func(ctx context.Context, prompt string) (string, error) {
		contents := []*genai.Content{
			{
				Role:  "user",
				Parts: []*genai.Part{{Text: prompt}},
			},
		}
		resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
		if err != nil {
			return "", fmt.Errorf("generate content: %w", err)
		}
		return resp.Text(), nil
	}

	return newGeminiClassifier(generate, model, cfg.RateLimit), nil
}

func newGeminiClassifier(generate generateFunc, model string, rateLimit int) *GeminiClassifier {
	return &GeminiClassifier{
		generate: generate,
		model:    model,
		limiter:  newLimiter(rateLimit),
	}
}

// Classify prompts the model and parses its JSON answer.
func (c *GeminiClassifier) Classify(ctx context.Context, text string, kind Kind) (Result, error) {
	labels := LabelsFor(kind)
	if len(labels) == 0 {
		return Result{}, fmt.Errorf("unknown classifier kind %q", kind)
	}

	if err := throttle(ctx, c.limiter); err != nil {
		return Result{}, err
	}

	raw, err := c.generate(ctx, buildPrompt(text, kind, labels))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if strings.TrimSpace(raw) == "" {
		return Result{}, fmt.Errorf("%w: empty response from model", ErrUnavailable)
	}

	var out struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &out); err != nil {
		return Result{}, fmt.Errorf("unmarshal model answer: %w (raw response: %s)", err, raw)
	}

	return Result{Label: out.Label, Confidence: out.Confidence}, nil
}

var kindInstructions = map[Kind]string{
	KindIntent:   "Decide what the user of an Indonesian student finance chat wants: report income, report an expense, set a savings goal, ask about their finances (query), or something unrelated to money (non_financial).",
	KindCategory: "Pick the spending category of the expense described in this Indonesian chat message.",
	KindQuery:    "Decide whether this Indonesian chat message asks a question about the user's finances (query) or reports a transaction (statement).",
}

func buildPrompt(text string, kind Kind, labels []string) string {
	var b strings.Builder
	b.WriteString(kindInstructions[kind])
	b.WriteString("\n\nAllowed labels: ")
	b.WriteString(strings.Join(labels, ", "))
	b.WriteString("\nIf none fits, use \"")
	b.WriteString(LabelUnknown)
	b.WriteString("\".\n\nMessage: ")
	b.WriteString(text)
	b.WriteString("\n\nRespond with ONLY a JSON object of the form {\"label\": \"...\", \"confidence\": 0.0} where confidence is between 0 and 1. No markdown, no commentary.")
	return b.String()
}

// cleanModelJSON strips markdown fences and any text around the JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}
