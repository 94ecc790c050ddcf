package classification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Veraticus/celengan/internal/common"
	"golang.org/x/time/rate"
)

// HTTPConfig configures a remote classifier endpoint.
type HTTPConfig struct {
	Endpoint  string
	Token     string
	Timeout   time.Duration
	RateLimit int
}

// HTTPClassifier calls an independently deployed model server. The server
// receives {"text","kind"} and answers {"label","confidence"}.
type HTTPClassifier struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	endpoint   string
	token      string
}

type httpRequest struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

type httpResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// NewHTTPClassifier creates a client for cfg.Endpoint.
func NewHTTPClassifier(cfg HTTPConfig) (*HTTPClassifier, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: classifier endpoint is required", common.ErrMissingConfig)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &HTTPClassifier{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		limiter:  newLimiter(cfg.RateLimit),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Classify sends one classification request.
func (c *HTTPClassifier) Classify(ctx context.Context, text string, kind Kind) (Result, error) {
	if err := throttle(ctx, c.limiter); err != nil {
		return Result{}, err
	}

	body, err := json.Marshal(httpRequest{Text: text, Kind: kind})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{}, &common.RetryableError{Err: common.ErrRateLimit, Retryable: true}
	case resp.StatusCode >= 500:
		return Result{}, &common.RetryableError{
			Err:       fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(payload)),
			Retryable: true,
		}
	case resp.StatusCode != http.StatusOK:
		return Result{}, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(payload))
	}

	var out httpResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return Result{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Label == "" {
		return Result{}, fmt.Errorf("%w: response carried no label", ErrUnavailable)
	}

	return Result{Label: out.Label, Confidence: out.Confidence}, nil
}

// Close drops idle keep-alive connections to the endpoint.
func (c *HTTPClassifier) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
