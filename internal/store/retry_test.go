package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryConfig{
	MaxRetries:    2,
	InitialDelay:  time.Millisecond,
	MaxDelay:      5 * time.Millisecond,
	BackoffFactor: 2.0,
}

func TestWithRetry(t *testing.T) {
	t.Run("transient then success", func(t *testing.T) {
		attempts := 0
		err := withRetry(context.Background(), fastRetry, func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("connection refused")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("exhausts all attempts", func(t *testing.T) {
		attempts := 0
		err := withRetry(context.Background(), fastRetry, func(ctx context.Context) error {
			attempts++
			return errors.New("connection refused")
		})
		require.EqualError(t, err, "connection refused")
		// initial attempt + 2 retries
		assert.Equal(t, 3, attempts)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		slow := fastRetry
		slow.InitialDelay = time.Hour
		slow.MaxDelay = time.Hour

		attempts := 0
		err := withRetry(ctx, slow, func(ctx context.Context) error {
			attempts++
			cancel()
			return errors.New("connection refused")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})
}

func TestBackoffCapsAtMaxDelay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 3 * time.Second, BackoffFactor: 2}
	assert.Equal(t, time.Second, backoff(cfg, 0))
	assert.Equal(t, 2*time.Second, backoff(cfg, 1))
	assert.Equal(t, 3*time.Second, backoff(cfg, 5))

	cfg.JitterFraction = 0.5
	for i := 0; i < 20; i++ {
		d := backoff(cfg, 1)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 3*time.Second)
	}
}
