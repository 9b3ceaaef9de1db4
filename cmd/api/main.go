// Package main is the entrypoint for the botlink redirect service.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/joho/godotenv/autoload"

	"github.com/botlink/botlink/internal/cache"
	"github.com/botlink/botlink/internal/code"
	"github.com/botlink/botlink/internal/config"
	"github.com/botlink/botlink/internal/device"
	"github.com/botlink/botlink/internal/handler"
	"github.com/botlink/botlink/internal/metrics"
	"github.com/botlink/botlink/internal/middleware"
	"github.com/botlink/botlink/internal/privacy"
	"github.com/botlink/botlink/internal/server"
	"github.com/botlink/botlink/internal/service"
	"github.com/botlink/botlink/internal/slugs"
	"github.com/botlink/botlink/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store",
			slog.String("backend", cfg.StorageBackend),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	logger.Info("store ready", "backend", cfg.StorageBackend)

	slugCfg, err := slugs.Load(cfg.SlugsPath)
	if err != nil {
		logger.Error("failed to load slug config",
			slog.String("path", cfg.SlugsPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	logger.Info("slug config loaded", "path", cfg.SlugsPath, "slugs", slugCfg.Len())

	codec, err := code.NewCodec(cfg.CodeSecret)
	if err != nil {
		logger.Error("failed to initialize code codec", "error", err)
		os.Exit(1)
	}

	hasher, err := privacy.NewIPHasher(cfg.IPHashSalt)
	if err != nil {
		logger.Error("failed to initialize IP hasher", "error", err)
		os.Exit(1)
	}

	// Services
	recorder := metrics.NewInMemory()
	resolutionCache := cache.NewResolution(cfg.CacheSize, cfg.CacheTTL)
	redirectSvc := service.NewRedirectService(st, codec, slugCfg, device.NewClassifier(), hasher, logger, recorder)
	resolveSvc := service.NewResolveService(st, resolutionCache, codec, cfg.OneTimeCodes, logger, recorder)

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(st)
	redirectHandler := handler.NewRedirectHandler(redirectSvc, logger)
	resolveHandler := handler.NewResolveHandler(resolveSvc, logger)
	clicksHandler := handler.NewClicksHandler(redirectSvc, logger)

	r := setupRouter(h, healthHandler, redirectHandler, resolveHandler, clicksHandler, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("store", func(ctx context.Context) error {
		return st.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
		"one_time_codes", cfg.OneTimeCodes,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore selects the persistence backend from configuration.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StorageBackend {
	case "memory":
		return store.NewMemory(), nil
	default:
		return store.NewSQLite(ctx, cfg.DatabasePath)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	redirectHandler *handler.RedirectHandler,
	resolveHandler *handler.ResolveHandler,
	clicksHandler *handler.ClicksHandler,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	r.Get("/", h.Hello)

	// Bot-facing API
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/codes/{code}/resolve", resolveHandler.Resolve)
		r.Get("/codes/{code}", resolveHandler.Status)
		r.Get("/slugs/{slug}/clicks", clicksHandler.Recent)
	})

	// Public click entrypoint
	r.Get("/{slug}", redirectHandler.Click)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
