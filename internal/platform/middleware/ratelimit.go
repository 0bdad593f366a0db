package middleware

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds client-side throttling settings.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// Enabled reports whether the config limits anything. A zero or negative
// rate means unlimited.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0
}

// Limiter builds the token bucket for c. A burst below one is raised to one
// so a single request can always proceed.
func (c RateLimitConfig) Limiter() *rate.Limiter {
	if !c.Enabled() {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := c.BurstSize
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(c.RequestsPerSecond), burst)
}

// RateLimit holds each request until the limiter grants a token. A request
// whose context ends while waiting is never sent.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if err := limiter.Wait(req.Context()); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
			return next.RoundTrip(req)
		})
	}
}
