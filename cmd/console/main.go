package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"systrack/console/internal/cache"
	"systrack/console/internal/config"
	"systrack/console/internal/engine"
	"systrack/console/internal/handlers"
	"systrack/console/internal/jobs"
	"systrack/console/internal/log"
	"systrack/console/internal/metrics"
	"systrack/console/internal/middleware"
	"systrack/console/internal/scan"
	"systrack/console/internal/security"
	"systrack/console/internal/server"
	"systrack/console/internal/session"
	"systrack/console/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	sealer, err := security.NewSealer(cfg.Security.SealKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init token sealer")
	}

	collector := metrics.NewCollector()
	api := upstream.NewClient(cfg.Upstream, logger, collector)

	kv := cache.NewKV(redisClient)
	parts := cache.NewPartsStore(kv, cfg.Cache.TTL)
	systems := cache.NewSystemsStore(kv, cfg.Cache.TTL)
	employees := cache.NewEmployeesStore(kv, cfg.Cache.TTL)
	stats := cache.NewStatsStore(kv, cfg.Cache.TTL)

	sessions := session.NewStore(kv, sealer, cfg.Security.SessionTTL, logger)
	eng := engine.New(api, parts, systems, employees, stats, cfg.Cache.DefaultPageSize, logger)

	scanner := scan.NewManager(scan.NewZXingDecoder(), cfg.Scan.IdleTimeout, cfg.Scan.MaxFrameBytes, logger)
	lookup := scan.NewLookup(api)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)

	handlerSet := handlers.NewHandlerSet(logger, cfg, sessions, eng, scanner, lookup, api, redisClient, collector, limiter)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet, collector)

	scheduler := jobs.NewScheduler(eng, cfg.Cache.RefreshSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, scanner, limiter, redisClient)
}

func waitForShutdown(
	logger zerolog.Logger,
	srv *server.HTTPServer,
	scheduler *jobs.Scheduler,
	scanner *scan.Manager,
	limiter *middleware.RateLimiter,
	redisClient *redis.Client,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	scheduler.Stop()
	scanner.Close()
	limiter.Stop()

	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
