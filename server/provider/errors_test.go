package provider

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapClassifiesQuotaByWording(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"quota lowercase", fmt.Errorf("insufficient quota"), KindQuota},
		{"quota capitalized", fmt.Errorf("Quota exceeded for project"), KindQuota},
		{"quota mid-sentence", fmt.Errorf("upstream status 429: you exceeded your current quota"), KindQuota},
		{"rate limit without quota wording", fmt.Errorf("upstream status 429: rate limit reached"), KindUpstream},
		{"plain failure", fmt.Errorf("connection reset"), KindUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err)
			assert.Equal(t, tt.want, KindOf(wrapped))
		})
	}
}

func TestWrapPassesThroughClassifiedErrors(t *testing.T) {
	// A timeout wrapped again must stay a timeout even if the message
	// mentions quota somewhere in the chain.
	orig := &Error{Kind: KindTimeout, err: fmt.Errorf("quota wording in the cause")}
	wrapped := Wrap(fmt.Errorf("outer: %w", orig))

	assert.Equal(t, KindTimeout, KindOf(wrapped))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	wrapped := Wrap(cause)

	require.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindUpstream, KindOf(fmt.Errorf("anything")))
}
