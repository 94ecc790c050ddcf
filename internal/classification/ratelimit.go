package classification

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

const defaultRequestsPerMinute = 60

// newLimiter admits requestsPerMinute remote calls per minute, evenly
// spaced, with up to a minute's allowance available at once.
func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultRequestsPerMinute
	}
	every := time.Minute / time.Duration(requestsPerMinute)
	return rate.NewLimiter(rate.Every(every), requestsPerMinute)
}

// throttle blocks until l admits one call. It fails early when the wait
// would outlast ctx.
func throttle(ctx context.Context, l *rate.Limiter) error {
	if err := l.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}
