package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/recipegen/recipegen/config"
	"github.com/recipegen/recipegen/server/cache"
	"github.com/recipegen/recipegen/server/handlers"
	"github.com/recipegen/recipegen/server/metrics"
	"github.com/recipegen/recipegen/server/middleware"
	"github.com/recipegen/recipegen/server/mocks"
	"github.com/recipegen/recipegen/server/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestRouter assembles the full middleware chain around a mock provider,
// mirroring the wiring in main.
func newTestRouter(t *testing.T, cfg *config.Config, p *mocks.Provider) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	m := metrics.NewMetrics()

	deps := Deps{
		Recipe: handlers.NewRecipeHandler(
			p,
			cache.New(cfg.Cache.TTL),
			validation.New(logger),
			m,
			logger,
		),
		Health:  handlers.NewHealthHandler(),
		Metrics: m,
		Limiter: middleware.NewFixedWindowLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window),
		Logger:  logger,
	}
	if cfg.Queue.Enabled {
		deps.Queue = middleware.NewQueueMiddleware(middleware.QueueConfig{
			MaxSize: cfg.Queue.MaxSize,
			Metrics: m,
		})
	}

	return NewRouter(cfg, deps)
}

func postJSON(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/recipe", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "9.9.9.9:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouterEndToEnd(t *testing.T) {
	p := mocks.NewProvider(func(ctx context.Context, prompt string) (string, error) {
		return `{"title":"Pasta"}`, nil
	})
	router := newTestRouter(t, config.DefaultConfig(), p)

	w := postJSON(router, `{"prompt": "pasta"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"content":[{"text":"{\"title\":\"Pasta\"}"}]}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouterRateLimitPrecedesValidation(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimit.MaxRequests = 1

	p := mocks.NewProvider(func(ctx context.Context, prompt string) (string, error) {
		return "ok", nil
	})
	router := newTestRouter(t, cfg, p)

	// Exhaust the window.
	w := postJSON(router, `{"prompt": "first"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// An over-length prompt from the exhausted client sees the rate limit,
	// not the validation failure.
	overLength := fmt.Sprintf(`{"prompt": %q}`, strings.Repeat("x", validation.MaxPromptChars+1))
	w = postJSON(router, overLength)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests, please try again later"}`, w.Body.String())
}

func TestRouterRateLimitDoesNotGuardHealth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimit.MaxRequests = 1

	p := mocks.NewProvider(nil)
	router := newTestRouter(t, cfg, p)

	postJSON(router, `{"prompt": "first"}`)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRouterWrongMethodGetsJSONError(t *testing.T) {
	p := mocks.NewProvider(nil)
	router := newTestRouter(t, config.DefaultConfig(), p)

	req := httptest.NewRequest(http.MethodGet, "/api/recipe", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
}

func TestRouterPreflight(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.AllowedOrigin = "https://ui.example.com"

	p := mocks.NewProvider(nil)
	router := newTestRouter(t, cfg, p)

	req := httptest.NewRequest(http.MethodOptions, "/api/recipe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://ui.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 0, p.Calls())
}

func TestRouterMetricsEndpoint(t *testing.T) {
	p := mocks.NewProvider(func(ctx context.Context, prompt string) (string, error) {
		return "ok", nil
	})
	router := newTestRouter(t, config.DefaultConfig(), p)

	postJSON(router, `{"prompt": "pasta"}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recipegen_http_requests_total")
	assert.Contains(t, w.Body.String(), "recipegen_cache_misses_total")
}

func TestRouterWithQueueEnabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Queue.Enabled = true
	cfg.Queue.MaxSize = 10

	p := mocks.NewProvider(func(ctx context.Context, prompt string) (string, error) {
		return "ok", nil
	})
	router := newTestRouter(t, cfg, p)

	w := postJSON(router, `{"prompt": "queued"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServerGracefulShutdown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = time.Second

	p := mocks.NewProvider(nil)
	router := newTestRouter(t, cfg, p)
	srv := New(cfg, router, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
