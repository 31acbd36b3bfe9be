package provider

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind distinguishes the failure classes a provider call can produce.
type Kind string

const (
	// KindTimeout means the timeout guard abandoned the call.
	KindTimeout Kind = "timeout"

	// KindQuota means the upstream reported a rate or usage limit.
	KindQuota Kind = "quota"

	// KindUpstream covers every other upstream failure: transport errors,
	// non-2xx statuses, malformed responses, missing completion text.
	KindUpstream Kind = "upstream"
)

// Error is the classified provider failure. The wrapped cause keeps the
// upstream detail for logs; clients only ever see the mapped message.
type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("provider %s: %v", e.Kind, e.err)
	}
	return fmt.Sprintf("provider %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Wrap classifies err as a provider failure. Quota detection inspects the
// failure text for quota-related wording; this matches what upstreams
// actually emit but is provider-specific and fragile by nature, so it is
// kept deliberately simple. Already-classified errors pass through.
func Wrap(err error) error {
	var pe *Error
	if stderrors.As(err, &pe) {
		return pe
	}
	if strings.Contains(strings.ToLower(err.Error()), "quota") {
		return &Error{Kind: KindQuota, err: err}
	}
	return &Error{Kind: KindUpstream, err: err}
}

// KindOf returns the Kind of a classified error, defaulting to KindUpstream
// for anything unrecognized so unclassified failures map to the generic 500.
func KindOf(err error) Kind {
	var pe *Error
	if stderrors.As(err, &pe) {
		return pe.Kind
	}
	return KindUpstream
}
