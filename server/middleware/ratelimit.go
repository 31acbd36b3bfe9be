package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/recipegen/recipegen/errors"
	"github.com/recipegen/recipegen/server/metrics"
	"go.uber.org/zap"
)

// window tracks one client's admissions within the current fixed window.
type window struct {
	count int
	start time.Time
}

// FixedWindowLimiter admits up to max requests per client identity within a
// fixed window. A rejected request still consumes a slot, and the counter
// resets only when a full window has elapsed, so short bursts are possible
// at window boundaries. That is the accepted fixed-window trade-off, not a
// bug to fix with a sliding window.
//
// Limiter state lives on the instance, not in package globals, so each test
// and each server gets isolated windows.
type FixedWindowLimiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	max      int
	duration time.Duration
	now      func() time.Time
}

// NewFixedWindowLimiter creates a limiter admitting max requests per window.
func NewFixedWindowLimiter(max int, duration time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		windows:  make(map[string]*window),
		max:      max,
		duration: duration,
		now:      time.Now,
	}
}

// Allow records a request from identity and reports whether it is admitted.
// The first request from an unseen identity, or from one whose window has
// expired, starts a fresh window. Otherwise the count is incremented and the
// request is rejected once the count exceeds the maximum.
func (l *FixedWindowLimiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[identity]
	if !ok || now.Sub(w.start) >= l.duration {
		l.windows[identity] = &window{count: 1, start: now}
		return true
	}

	w.count++
	return w.count <= l.max
}

// clientIdentity derives the rate-limit key from the connection source,
// stripping the port so one host maps to one window.
func clientIdentity(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit applies the limiter to every request before any validation or
// cache access, so malformed requests are throttled too.
func RateLimit(limiter *FixedWindowLimiter, m *metrics.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := clientIdentity(r)

			if !limiter.Allow(identity) {
				requestID := RequestIDFromContext(r.Context())

				if m != nil {
					m.RateLimitHits.WithLabelValues(identity).Inc()
				}
				logger.Warn("rate limit exceeded",
					zap.String("request_id", requestID),
					zap.String("client", identity),
				)

				errors.WriteError(w, errors.NewRateLimitError(requestID))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
