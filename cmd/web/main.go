package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
	"github.com/kasamhealthcare/clinic-web/internal/config"
	"github.com/kasamhealthcare/clinic-web/internal/geo"
	"github.com/kasamhealthcare/clinic-web/internal/observability/metrics"
	"github.com/kasamhealthcare/clinic-web/internal/session"
	"github.com/kasamhealthcare/clinic-web/internal/web"
	"github.com/kasamhealthcare/clinic-web/pkg/logging"
)

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel, cfg.Env)
	logger.Info("starting clinic-web",
		"env", cfg.Env,
		"port", cfg.Port,
		"backend", cfg.BackendBaseURL,
	)

	if cfg.SessionSecret == "" {
		if cfg.Env == "development" {
			cfg.SessionSecret = "dev-only-session-secret"
			logger.Warn("SESSION_SECRET not set, using development default")
		} else {
			logger.Error("SESSION_SECRET is required outside development")
			os.Exit(1)
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	var webMetrics *metrics.WebMetrics
	var backendMetrics *metrics.BackendMetrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		webMetrics = metrics.NewWebMetrics(registry)
		backendMetrics = metrics.NewBackendMetrics(registry)
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	// Backend API client
	api := backend.NewClient(cfg.BackendBaseURL,
		backend.WithHealthURL(cfg.BackendHealthURL),
		backend.WithHTTPClient(&http.Client{Timeout: cfg.BackendTimeout}),
		backend.WithLogger(logger),
		backend.WithMetrics(backendMetrics),
	)

	// Session store: Redis, or in-memory for single-instance development.
	var store session.Store
	var redisClient *redis.Client
	if cfg.UseMemoryStore {
		logger.Warn("using in-memory session store; sessions reset on restart")
		store = session.NewMemoryStore()
	} else {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		store = session.NewRedisStore(redisClient)
	}

	sessions := session.NewManager(store, api, session.Config{
		Secret:         cfg.SessionSecret,
		CookieName:     cfg.CookieName,
		TTL:            cfg.SessionTTL,
		Secure:         cfg.CookieSecure,
		HealthTimeout:  cfg.HealthCheckTimeout,
		ProfileTimeout: cfg.ProfileTimeout,
	}, logger)

	detector := geo.NewDetector(redisClient, cfg.GeoIPURL,
		geo.WithLogger(logger),
		geo.WithCacheTTL(cfg.GeoCacheTTL),
		geo.WithDefaultCountry(cfg.DefaultCountry),
	)

	handler, err := web.NewHandler(cfg, api, sessions, detector, logger)
	if err != nil {
		logger.Error("failed to build handler", "error", err)
		os.Exit(1)
	}

	r := web.NewRouter(&web.RouterConfig{
		Logger:         logger,
		Handler:        handler,
		WebMetrics:     webMetrics,
		MetricsHandler: metricsHandler,
	})

	// Keep the backend's review cache warm in the background.
	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	go web.AutoRefreshReviews(refreshCtx, api, cfg.ReviewRefreshInterval, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close failed", "error", err)
		}
	}

	logger.Info("server stopped")
}
