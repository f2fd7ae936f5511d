package api

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter paces outgoing API calls. It never re-issues a call.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a token bucket of rps requests per second with a
// burst of 2*rps. A non-positive rps disables pacing.
func NewRateLimiter(rps int) *RateLimiter {
	if rps <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), rps*2),
	}
}

// Wait blocks until the rate limiter allows an action
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
