package classification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// GatewayConfig tunes the gateway.
type GatewayConfig struct {
	Threshold float64
	Timeout   time.Duration
	CacheTTL  time.Duration
}

// DefaultGatewayConfig returns the gateway defaults.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Threshold: 0.3,
		Timeout:   2500 * time.Millisecond,
		CacheTTL:  5 * time.Minute,
	}
}

// Gateway fronts a backend with a timeout, a confidence threshold and a
// short-lived cache. It never returns an error: failures degrade to an
// unknown label so the dialogue can fall back to a clarification.
type Gateway struct {
	backend Classifier
	cache   *resultCache
	logger  *slog.Logger
	cfg     GatewayConfig
}

// NewGateway wraps backend. A nil logger uses slog.Default.
func NewGateway(backend Classifier, cfg GatewayConfig, logger *slog.Logger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultGatewayConfig().Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gateway{
		backend: backend,
		cfg:     cfg,
		logger:  logger,
	}
	if cfg.CacheTTL > 0 {
		g.cache = newResultCache(cfg.CacheTTL, 0)
	}
	return g
}

// Threshold is the minimum confidence for a label to count.
func (g *Gateway) Threshold() float64 {
	return g.cfg.Threshold
}

// Classify asks the backend for a label. Answers below the threshold come
// back as LabelUnknown with the backend's confidence; failures and timeouts
// come back as LabelUnknown with zero confidence and Degraded set.
func (g *Gateway) Classify(ctx context.Context, text string, kind Kind) Result {
	key := cacheKey(kind, text)
	if g.cache != nil {
		if cached, ok := g.cache.get(key); ok {
			return cached
		}
	}

	result, err := g.call(ctx, text, kind)
	if err != nil {
		g.logger.Warn("Classifier unavailable, degrading to unknown",
			"kind", kind,
			"error", err)
		return Result{Label: LabelUnknown, Degraded: true}
	}

	result.Confidence = clamp(result.Confidence)
	if !validLabel(kind, result.Label) {
		g.logger.Warn("Classifier returned a label outside its set",
			"kind", kind,
			"label", result.Label)
		result = Result{Label: LabelUnknown, Confidence: result.Confidence}
	}
	if result.Confidence < g.cfg.Threshold {
		result.Label = LabelUnknown
	}

	if g.cache != nil {
		g.cache.set(key, result)
	}
	return result
}

type callResult struct {
	err    error
	result Result
}

func (g *Gateway) call(ctx context.Context, text string, kind Kind) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	// buffered: the sender must not block once the caller has timed out
	done := make(chan callResult, 1)
	go func() {
		r, err := g.backend.Classify(ctx, text, kind)
		done <- callResult{result: r, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, ErrUnavailable) {
				return Result{}, out.err
			}
			return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, out.err)
		}
		return out.result, nil
	case <-ctx.Done():
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
}

// Close releases the cache and, when the backend holds resources, the backend.
func (g *Gateway) Close() error {
	if g.cache != nil {
		g.cache.Close()
	}
	if closer, ok := g.backend.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
