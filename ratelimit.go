package gcontacts

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// feedType identifies a GData feed for rate limiting purposes.
type feedType string

const (
	feedContacts feedType = "contacts"
	feedGroups   feedType = "groups"
)

// RateLimitConfig holds rate limiting configuration for a feed.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// defaultRateLimits stays well below the provider's documented quotas.
var defaultRateLimits = map[feedType]RateLimitConfig{
	feedContacts: {RequestsPerSecond: 5.0, BurstSize: 10},
	feedGroups:   {RequestsPerSecond: 5.0, BurstSize: 10},
}

// RateLimiter paces GData requests with a token bucket and backs off after
// 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// newRateLimiter creates a rate limiter for the given feed.
func newRateLimiter(feed feedType) *RateLimiter {
	cfg, ok := defaultRateLimits[feed]
	if !ok {
		cfg = RateLimitConfig{RequestsPerSecond: 5.0, BurstSize: 10}
	}
	return NewRateLimiterWithConfig(cfg)
}

// NewRateLimiterWithConfig creates a rate limiter with custom limits.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Wait blocks until a request can be made without exceeding the rate
// limit. It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError sets a backoff period after a 429 response.
func (r *RateLimiter) RecordRateLimitError(retryAfterSeconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfterSeconds <= 0 {
		retryAfterSeconds = 60
	}
	r.retryAt = time.Now().Add(time.Duration(retryAfterSeconds) * time.Second)
}

// Allow reports whether a request can be made immediately.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}
