// Package provider implements the upstream text-generation adapters. Each
// adapter speaks one provider's wire format; the rest of the pipeline is
// provider-agnostic and sees only the Provider interface. Exactly one
// variant is active per deployment, selected at configuration time.
//
// Adapters differ only in the request shape sent upstream, the
// response-extraction path, and the default model identifier. Every failure
// surfaces as a *Error carrying a Kind; a raw upstream error never escapes
// unclassified.
package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/recipegen/recipegen/config"
	"go.uber.org/zap"
)

// Provider is the capability the pipeline depends on: given a prompt,
// produce a text completion or fail.
type Provider interface {
	// Name returns the adapter identifier used in logs and metrics.
	Name() string

	// Generate produces a completion for prompt. The returned error, if
	// any, is always a *Error.
	Generate(ctx context.Context, prompt string) (string, error)
}

// New creates the adapter selected by cfg.Name.
func New(cfg config.ProviderConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Name {
	case "openai":
		return NewOpenAI(cfg, logger), nil
	case "openai-responses":
		return NewOpenAIResponses(cfg, logger), nil
	case "gemini":
		return NewGemini(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", cfg.Name)
	}
}

// newHTTPClient returns the client shared by the adapters. It carries no
// timeout of its own; the timeout guard bounds the pipeline's wait while
// the underlying call is left to run to completion (abandonment, not
// cancellation).
func newHTTPClient() *http.Client {
	return &http.Client{}
}
