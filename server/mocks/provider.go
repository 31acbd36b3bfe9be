// Package mocks provides test doubles for the provider package.
package mocks

import (
	"context"
	"sync"
)

// Provider implements provider.Provider for tests. It counts invocations
// and records the prompts it was called with so cache behavior can be
// asserted without a real upstream.
type Provider struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	NameValue    string

	mu      sync.Mutex
	prompts []string
}

// NewProvider creates a mock with the given generate function. If
// generateFunc is nil, Generate returns an empty string with no error.
func NewProvider(generateFunc func(ctx context.Context, prompt string) (string, error)) *Provider {
	return &Provider{
		GenerateFunc: generateFunc,
		NameValue:    "mock",
	}
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return p.NameValue }

// Generate implements provider.Provider.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()

	if p.GenerateFunc != nil {
		return p.GenerateFunc(ctx, prompt)
	}
	return "", nil
}

// Calls returns the number of Generate invocations so far.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

// Prompts returns the prompts passed to Generate, in call order.
func (p *Provider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.prompts))
	copy(out, p.prompts)
	return out
}
