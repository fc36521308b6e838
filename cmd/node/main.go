package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zold-node/config"
	httpHandler "zold-node/internal/adapter/http/handler"
	"zold-node/internal/adapter/http/middleware"
	redisStorage "zold-node/internal/adapter/storage/redis"
	"zold-node/internal/core/ports"
	"zold-node/internal/metrics"
	"zold-node/internal/service"
	"zold-node/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration; ZOLD_CONFIG points at a file, env vars override it.
	cfg, err := config.Load(os.Getenv("ZOLD_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("version", cfg.Node.Version).
		Str("storage", cfg.Storage.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting zold node")

	ctx := context.Background()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open wallet storage")
	}
	defer store.close()
	healthCheckers := store.health

	// Redis is optional: caches and the push rate limiter.
	var (
		balances    ports.BalanceCache
		digests     ports.PushDigestCache
		rateLimiter ports.RateLimiter
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		balances = redisStorage.NewBalanceCache(rdb)
		digests = redisStorage.NewPushDigestCache(rdb)
		rateLimiter = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Info().Msg("Redis disabled, running without caches or push rate limit")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	ledger := service.NewLedgerService(store.wallets, balances, digests, m, service.LedgerConfig{
		BalanceTTL: cfg.Redis.BalanceTTL,
		DigestTTL:  cfg.Redis.DigestTTL,
	}, log)
	auditSvc := service.NewAuditService(store.audit, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Ledger:      ledger,
		RateLimiter: rateLimiter,
		PushRateRule: middleware.RateLimitRule{
			Limit:  int64(cfg.Node.PushRateLimit),
			Window: cfg.Node.PushRateWindow,
		},
		HealthCheckers: healthCheckers,
		AuditSvc:       auditSvc,
		Metrics:        m,
		Gatherer:       registry,
		MaxBodyBytes:   cfg.Node.MaxBodyBytes,
		Version:        cfg.Node.Version,
		Title:          cfg.Node.Title,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown: in-flight pushes either commit or roll back.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Node.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
