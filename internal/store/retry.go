package store

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures exponential backoff for connecting to a backend.
type RetryConfig struct {
	MaxRetries     int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	BackoffFactor  float64
	JitterFraction float64 // 0.0 to 1.0
}

// DefaultConnectRetry covers a database that is still starting alongside the
// server, e.g. a Cloud SQL proxy sidecar.
var DefaultConnectRetry = RetryConfig{
	MaxRetries:     4,
	InitialDelay:   500 * time.Millisecond,
	MaxDelay:       8 * time.Second,
	BackoffFactor:  2.0,
	JitterFraction: 0.2,
}

// withRetry calls fn until it succeeds, the context is cancelled, or
// MaxRetries retries have failed. The last error is returned.
func withRetry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(cfg, attempt)):
		}
	}
	return lastErr
}

func backoff(cfg RetryConfig, attempt int) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.JitterFraction > 0 {
		delay += delay * cfg.JitterFraction * (rand.Float64()*2 - 1)
		if delay < 0 {
			delay = float64(cfg.InitialDelay)
		}
	}
	return time.Duration(delay)
}
