package provider

import (
	"context"
	"fmt"

	"github.com/recipegen/recipegen/config"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Breaker wraps a provider with a circuit breaker so a flapping upstream is
// cut off instead of burning the request timeout on every call. An open
// circuit surfaces as an upstream failure and maps to the generic 500.
//
// The breaker sits inside the timeout guard so it records real call
// outcomes, including ones the guard has already abandoned.
type Breaker struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker
}

// NewBreaker wraps p with a circuit breaker tuned by cfg.
func NewBreaker(p Provider, cfg config.CircuitBreakerConfig, logger *zap.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Breaker{
		inner: p,
		cb:    gobreaker.NewCircuitBreaker(settings),
	}
}

// Name implements Provider.
func (b *Breaker) Name() string { return b.inner.Name() }

// Generate implements Provider.
func (b *Breaker) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Generate(ctx, prompt)
	})
	if err != nil {
		return "", Wrap(fmt.Errorf("circuit: %w", err))
	}
	return res.(string), nil
}
