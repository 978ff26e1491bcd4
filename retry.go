package gcontacts

import (
	"context"
	"log"
	"time"
)

const (
	// DefaultRetryAttempts bounds how many times a group operation is
	// tried before its error is surfaced.
	DefaultRetryAttempts = 5

	// DefaultRetryDelay is the fixed pause between attempts.
	DefaultRetryDelay = 3 * time.Second
)

// withRetry runs fn up to attempts times with a fixed delay between tries.
// The error from the last attempt is returned unchanged, never wrapped.
// Only group operations go through this path; contact operations surface
// transport failures immediately.
func withRetry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		log.Printf("gcontacts: attempt %d/%d failed, retrying: %v", attempt, attempts, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
