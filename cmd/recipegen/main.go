// Command recipegen runs the recipe generation gateway: an HTTP server that
// validates prompts, rate limits clients, caches responses, and forwards
// generation requests to a configured upstream provider.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/recipegen/recipegen/config"
	"github.com/recipegen/recipegen/errors"
	"github.com/recipegen/recipegen/server"
	"github.com/recipegen/recipegen/server/cache"
	"github.com/recipegen/recipegen/server/handlers"
	"github.com/recipegen/recipegen/server/metrics"
	"github.com/recipegen/recipegen/server/middleware"
	"github.com/recipegen/recipegen/server/provider"
	"github.com/recipegen/recipegen/server/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	validateOnly := flag.Bool("validate", false, "validate configuration and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("recipegen %s\n", version)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if *validateOnly {
		fmt.Println("configuration OK")
		return
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	errors.SetLogger(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

// loadConfig reads the file at path, falling back to defaults when the file
// does not exist so the binary runs with only environment variables set.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.DefaultConfig(), nil
	}
	return config.LoadFile(path)
}

// newLogger builds a zap logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.Format == "text" {
		zapCfg.Encoding = "console"
	}

	return zapCfg.Build()
}

// apiKeyFromEnv supplies the provider API key when the configuration left it
// blank, matching the provider's conventional variable name.
func apiKeyFromEnv(name string) string {
	switch name {
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = apiKeyFromEnv(cfg.Provider.Name)
	}
	if cfg.Provider.APIKey == "" {
		logger.Warn("no API key configured, upstream calls will be rejected",
			zap.String("provider", cfg.Provider.Name))
	}

	adapter, err := provider.New(cfg.Provider, logger)
	if err != nil {
		return err
	}

	// The breaker wraps the adapter directly so it records real call
	// outcomes; the timeout guard sits outside and bounds the pipeline's
	// wait without cancelling the in-flight call.
	var p provider.Provider = adapter
	p = provider.NewBreaker(p, cfg.CircuitBreaker, logger)
	p = provider.NewTimeoutGuard(p, cfg.Provider.Timeout, logger)

	m := metrics.NewMetrics()
	limiter := middleware.NewFixedWindowLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	store := cache.New(cfg.Cache.TTL)
	val := validation.New(logger)

	var queue *middleware.QueueMiddleware
	if cfg.Queue.Enabled {
		queue = middleware.NewQueueMiddleware(middleware.QueueConfig{
			MaxSize: cfg.Queue.MaxSize,
			Metrics: m,
		})
	}

	deps := server.Deps{
		Recipe:  handlers.NewRecipeHandler(p, store, val, m, logger),
		Health:  handlers.NewHealthHandler(),
		Metrics: m,
		Limiter: limiter,
		Queue:   queue,
		Logger:  logger,
	}

	router := server.NewRouter(cfg, deps)
	srv := server.New(cfg, router, queue, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("recipegen starting",
		zap.String("version", version),
		zap.String("provider", cfg.Provider.Name),
		zap.Int("port", cfg.Server.Port),
	)

	return srv.Start(ctx)
}
