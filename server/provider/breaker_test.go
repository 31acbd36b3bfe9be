package provider

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/recipegen/recipegen/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 3,
	}
}

func TestBreakerPassesSuccessThrough(t *testing.T) {
	inner := &funcProvider{name: "ok", fn: func(ctx context.Context, prompt string) (string, error) {
		return "text", nil
	}}
	b := NewBreaker(inner, breakerConfig(), zap.NewNop())

	text, err := b.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "text", text)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	inner := &funcProvider{name: "flaky", fn: func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", Wrap(fmt.Errorf("upstream status 503"))
	}}
	b := NewBreaker(inner, breakerConfig(), zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := b.Generate(context.Background(), "p")
		require.Error(t, err)
	}
	assert.Equal(t, 3, calls)

	// Circuit is open now; calls fail fast without reaching the adapter.
	_, err := b.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, KindUpstream, KindOf(err))
}

func TestBreakerErrorsAreClassified(t *testing.T) {
	inner := &funcProvider{name: "quota", fn: func(ctx context.Context, prompt string) (string, error) {
		return "", Wrap(fmt.Errorf("you exceeded your current quota"))
	}}
	b := NewBreaker(inner, breakerConfig(), zap.NewNop())

	_, err := b.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, KindQuota, KindOf(err), "classified kinds survive the breaker")
}

func TestBreakerDelegatesName(t *testing.T) {
	inner := &funcProvider{name: "adapter"}
	b := NewBreaker(inner, breakerConfig(), zap.NewNop())
	assert.Equal(t, "adapter", b.Name())
}
