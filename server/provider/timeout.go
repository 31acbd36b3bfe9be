package provider

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TimeoutGuard bounds the wall-clock duration of a single Generate call.
// When the deadline elapses the call is abandoned from the pipeline's
// perspective: the goroutine keeps running and its eventual result is
// discarded. Generate delivers exactly one outcome, either the provider's
// text or a timeout error, never both.
//
// Abandonment is deliberate. The wrapped call receives a context detached
// from the request's cancellation, so neither the guard's deadline nor a
// client disconnect propagates upstream.
type TimeoutGuard struct {
	inner   Provider
	timeout time.Duration
	logger  *zap.Logger
}

// NewTimeoutGuard wraps p with a per-call deadline.
func NewTimeoutGuard(p Provider, timeout time.Duration, logger *zap.Logger) *TimeoutGuard {
	return &TimeoutGuard{
		inner:   p,
		timeout: timeout,
		logger:  logger,
	}
}

// Name implements Provider.
func (g *TimeoutGuard) Name() string { return g.inner.Name() }

// Generate implements Provider.
func (g *TimeoutGuard) Generate(ctx context.Context, prompt string) (string, error) {
	type result struct {
		text string
		err  error
	}

	// Buffered so the abandoned goroutine can deliver and exit.
	ch := make(chan result, 1)

	go func() {
		text, err := g.inner.Generate(context.WithoutCancel(ctx), prompt)
		ch <- result{text: text, err: err}
	}()

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.text, res.err
	case <-timer.C:
		g.logger.Warn("abandoning in-flight generation",
			zap.String("provider", g.inner.Name()),
			zap.Duration("timeout", g.timeout),
		)
		return "", &Error{Kind: KindTimeout}
	}
}
