package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/punchamoorthee/claimops/internal/api"
	"github.com/punchamoorthee/claimops/internal/cache"
	"github.com/punchamoorthee/claimops/internal/config"
	"github.com/punchamoorthee/claimops/internal/domain"
	"github.com/punchamoorthee/claimops/internal/logging"
	"github.com/punchamoorthee/claimops/internal/metrics"
	"github.com/punchamoorthee/claimops/internal/service"
	"github.com/punchamoorthee/claimops/internal/store"
	"github.com/punchamoorthee/claimops/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("development", "info").Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New(cfg.Env, cfg.LogLevel)

	ctx := context.Background()

	claimStore, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to open claim store")
	}
	defer closeStore()

	recorder := metrics.NewRecorder()

	summaryCache, rdb, err := openSummaryCache(ctx, cfg, recorder, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to open summary cache")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Initialize Layers
	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize, logger)
	summary := service.NewSummaryService(claimStore, summaryCache, recorder, logger)
	scorer := service.RandomScorer{MinDelay: cfg.EnrichMinDelay, MaxDelay: cfg.EnrichMaxDelay}
	enricher := service.NewEnricher(claimStore, scorer, logger)
	claims := service.NewClaimService(claimStore, pool, enricher, summary, logger)
	handler := api.NewHandler(claims, summary, recorder, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreBackend).
			Int("workers", cfg.WorkerCount).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	// In-flight enrichments finish before the store closes.
	if err := pool.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("enrichment queue not drained")
	}

	logger.Info().Msg("server exited")
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (service.ClaimStore, func(), error) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Warn().Msg("using in-memory claim store, data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}

	pg, err := store.NewPostgresStore(ctx, cfg.DBSource)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

func openSummaryCache(ctx context.Context, cfg *config.Config, hits cache.HitRecorder, logger zerolog.Logger) (*cache.Versioned[domain.ClaimSummary], *redis.Client, error) {
	if cfg.RedisAddr == "" {
		entries := cache.NewMemory[cache.Entry[domain.ClaimSummary]](cfg.SummaryCacheTTL)
		return cache.NewVersioned[domain.ClaimSummary](entries, &cache.LocalGeneration{}, hits), nil, nil
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("summary cache backed by redis")
	// The generation lives next to the entry so every instance agrees on it.
	entries := cache.NewRedis[cache.Entry[domain.ClaimSummary]](rdb, "claimops:", cfg.SummaryCacheTTL)
	gen := cache.NewRedisGeneration(rdb, "claimops:"+service.SummaryCacheKey+":gen")
	return cache.NewVersioned[domain.ClaimSummary](entries, gen, hits), rdb, nil
}
