package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryEventuallySucceeds(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NopLogger()}
	attempts := 0
	err := r.Do(context.Background(), "fetch", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryGivesUp(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: NopLogger()}
	boom := errors.New("boom")
	err := r.Do(context.Background(), "fetch", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRetryStopsOnPermanent(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, Logger: NopLogger()}
	missing := errors.New("missing worksheet")
	attempts := 0
	err := r.Do(context.Background(), "fetch", func(context.Context) error {
		attempts++
		return Permanent(missing)
	})
	assert.Equal(t, missing, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryHonoursContext(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour, Logger: NopLogger()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Do(ctx, "fetch", func(context.Context) error { return errors.New("transient") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}
