// Package server wires the middleware chain, routes, and HTTP server
// lifecycle around the recipe generation pipeline.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/recipegen/recipegen/config"
	"github.com/recipegen/recipegen/server/handlers"
	"github.com/recipegen/recipegen/server/metrics"
	"github.com/recipegen/recipegen/server/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Deps carries the assembled pipeline pieces into the router. Everything is
// constructed in main and passed down so the server has no hidden state.
type Deps struct {
	Recipe  *handlers.RecipeHandler
	Health  *handlers.HealthHandler
	Metrics *metrics.Metrics
	Limiter *middleware.FixedWindowLimiter
	Queue   *middleware.QueueMiddleware
	Logger  *zap.Logger
}

// NewRouter builds the chi router with the full middleware chain. The rate
// limiter runs ahead of the recipe handler so an exhausted client sees 429
// even when its request would also fail validation. Method and content-type
// checks live inside the handler for the same reason.
func NewRouter(cfg *config.Config, deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTimer)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigin))
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.PrometheusMetrics(deps.Metrics))

	r.Group(func(r chi.Router) {
		if deps.Queue != nil {
			r.Use(deps.Queue.Handler)
		}
		r.Use(middleware.RateLimit(deps.Limiter, deps.Metrics, deps.Logger))

		// Handle rather than Post: the handler owns the 405 response so
		// wrong-method requests get the JSON error body, not chi's default.
		r.Handle("/api/recipe", deps.Recipe)
	})

	r.Method(http.MethodGet, "/health", deps.Health)
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	return r
}

// Server wraps http.Server with graceful shutdown.
type Server struct {
	httpServer *http.Server
	queue      *middleware.QueueMiddleware
	logger     *zap.Logger
	cfg        *config.Config
}

// New creates a Server serving handler per the server configuration.
func New(cfg *config.Config, handler http.Handler, queue *middleware.QueueMiddleware, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:        handler,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		},
		queue:  queue,
		logger: logger,
		cfg:    cfg,
	}
}

// Start runs the server until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout. The admission queue, when present,
// is drained before the listener closes.
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		if s.queue != nil {
			if err := s.queue.Shutdown(shutdownCtx); err != nil {
				s.logger.Warn("queue drain incomplete", zap.Error(err))
			}
		}

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
