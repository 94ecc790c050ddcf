package classification

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by NewBackend.
const (
	BackendRules  = "rules"
	BackendHTTP   = "http"
	BackendGemini = "gemini"
)

// BackendConfig selects and configures a classifier backend.
type BackendConfig struct {
	Name      string
	Endpoint  string
	APIKey    string
	Model     string
	RateLimit int
}

// NewBackend creates the classifier backend named in cfg.
func NewBackend(ctx context.Context, cfg BackendConfig) (Classifier, error) {
	switch strings.ToLower(cfg.Name) {
	case "", BackendRules:
		return NewDefaultRuleClassifier(), nil
	case BackendHTTP:
		c, err := NewHTTPClassifier(HTTPConfig{
			Endpoint:  cfg.Endpoint,
			Token:     cfg.APIKey,
			RateLimit: cfg.RateLimit,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendGemini:
		c, err := NewGeminiClassifier(ctx, GeminiConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			RateLimit: cfg.RateLimit,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported classifier backend: %s", cfg.Name)
	}
}
