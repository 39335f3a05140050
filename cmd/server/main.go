package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/drepwatch/drepscore/internal/cache"
	"github.com/drepwatch/drepscore/internal/config"
	"github.com/drepwatch/drepscore/internal/monitoring"
	"github.com/drepwatch/drepscore/internal/ratelimit"
	"github.com/drepwatch/drepscore/internal/scoring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := monitoring.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger.Logger)

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	engine, err := scoring.NewEngine(scoring.DefaultWeights())
	if err != nil {
		slog.Error("Failed to initialize scoring engine", "error", err)
		os.Exit(1)
	}

	responseCache := cache.New(cfg.CacheTTL)
	defer responseCache.Close()

	// Redis is optional; the limiter degrades to in-memory token buckets.
	redisClient, err := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Warn("Redis unavailable", "error", err)
	}
	defer redisClient.Close()

	limiterConfig := ratelimit.DefaultConfig()
	limiterConfig.IPLimitPerMin = cfg.IPLimitPerMin
	limiter := ratelimit.NewRateLimiter(redisClient, limiterConfig, metrics)

	srv := newServer(cfg, engine, responseCache, metrics, logger, limiter, prometheus.DefaultGatherer)
	router := srv.router()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.SystemLogger("startup", "listening on "+cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.SystemLogger("shutdown", "draining connections")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
