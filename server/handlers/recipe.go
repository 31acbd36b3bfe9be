// Package handlers provides the HTTP handlers for the recipegen server.
// RecipeHandler is the pipeline orchestrator: it owns the fixed stage order
// of a request (validate, cache lookup, generate under timeout, normalize,
// cache insert, respond) and is the single point where typed failures become
// HTTP responses. Rate limiting runs in middleware ahead of the handler so
// even malformed requests consume admission slots.
package handlers

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/recipegen/recipegen/errors"
	"github.com/recipegen/recipegen/server/cache"
	"github.com/recipegen/recipegen/server/metrics"
	"github.com/recipegen/recipegen/server/middleware"
	"github.com/recipegen/recipegen/server/processing"
	"github.com/recipegen/recipegen/server/provider"
	"github.com/recipegen/recipegen/server/validation"
	"go.uber.org/zap"
)

// maxBodyBytes caps the request body read; prompts are at most 2000
// characters so anything near this limit is garbage.
const maxBodyBytes = 1 << 20

// RecipeHandler handles POST /api/recipe. All collaborators are injected so
// tests run against fresh instances.
type RecipeHandler struct {
	provider  provider.Provider
	cache     *cache.Store
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewRecipeHandler creates the orchestrator. The provider is expected to
// already be wrapped with the timeout guard (and circuit breaker) so every
// Generate call is bounded.
func NewRecipeHandler(p provider.Provider, c *cache.Store, v *validation.Validator, m *metrics.Metrics, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		provider:  p,
		cache:     c,
		validator: v,
		metrics:   m,
		logger:    logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *RecipeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFromContext(r.Context())
	logger := h.logger.With(
		zap.String("request_id", requestID),
		zap.String("remote_addr", r.RemoteAddr),
	)

	if r.Method != http.MethodPost {
		h.fail(w, logger, errors.NewMethodNotAllowedError(requestID))
		return
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		h.fail(w, logger, errors.NewContentTypeError(requestID))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, logger, errors.NewValidationError(requestID, validation.MsgInvalidBody))
		return
	}

	prompt, gwErr := h.validator.ValidatePrompt(requestID, body)
	if gwErr != nil {
		h.fail(w, logger, gwErr)
		return
	}

	h.metrics.PromptTokens.Observe(float64(h.validator.CountTokens(prompt)))

	// The exact prompt text is the cache key; no normalization, so
	// differently-cased prompts are distinct entries.
	if cached, ok := h.cache.Lookup(prompt); ok {
		h.metrics.CacheHits.Inc()
		logger.Info("cache hit")
		h.respond(w, logger, cached)
		return
	}
	h.metrics.CacheMisses.Inc()

	text, err := h.provider.Generate(r.Context(), prompt)
	if err != nil {
		h.fail(w, logger, h.classifyProviderError(requestID, err))
		return
	}

	resp := processing.Normalize(text)
	h.cache.Insert(prompt, resp)

	logger.Info("recipe generated",
		zap.String("provider", h.provider.Name()),
		zap.Int("response_length", len(text)),
	)
	h.respond(w, logger, resp)
}

// classifyProviderError maps a provider failure kind to its HTTP response.
// Anything unrecognized is treated as an upstream failure so no raw error
// ever reaches a client.
func (h *RecipeHandler) classifyProviderError(requestID string, err error) *errors.GatewayError {
	kind := provider.KindOf(err)
	h.metrics.ProviderErrors.WithLabelValues(string(kind)).Inc()

	switch kind {
	case provider.KindTimeout:
		return errors.NewTimeoutError(requestID, err)
	case provider.KindQuota:
		return errors.NewQuotaError(requestID, err)
	default:
		return errors.NewUpstreamError(requestID, err)
	}
}

func (h *RecipeHandler) respond(w http.ResponseWriter, logger *zap.Logger, resp *processing.Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *RecipeHandler) fail(w http.ResponseWriter, logger *zap.Logger, gwErr *errors.GatewayError) {
	errors.LogError(logger, gwErr, gwErr.RequestID)
	errors.WriteError(w, gwErr)
}
