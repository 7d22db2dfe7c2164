// Package app wires configuration into a ready advisor and HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pageza/nutrichat/backend/config"
	"github.com/pageza/nutrichat/backend/internal/database"
	"github.com/pageza/nutrichat/backend/internal/knowledge"
	"github.com/pageza/nutrichat/backend/internal/middleware"
	"github.com/pageza/nutrichat/backend/internal/server"
	"github.com/pageza/nutrichat/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

// App holds the long-lived components built from configuration.
type App struct {
	Config  *config.Config
	Store   *knowledge.Store
	Gateway *service.Gateway
	Advisor *service.Advisor
	Limiter *middleware.RateLimiter

	redis  *redis.Client
	logger zerolog.Logger
}

// Build loads the knowledge table, checks the model is reachable and
// connects the optional Redis cache. Any load failure is fatal.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	store, err := LoadKnowledge(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("source", cfg.KnowledgeSource).
		Int("records", store.Len()).
		Int("conditions", len(store.DistinctConditions())).
		Msg("Knowledge table loaded")

	backend, err := service.NewGenerationBackend(ctx, cfg)
	if err != nil {
		return nil, &knowledge.LoadError{Source: "model " + cfg.LLMModel, Err: err}
	}
	gateway := service.NewGateway(backend, service.GenerationConfigFrom(cfg.Generation), logger)
	if err := gateway.Ready(ctx); err != nil {
		return nil, err
	}
	logger.Info().Str("model", gateway.Model()).Msg("Model ready")

	a := &App{
		Config:  cfg,
		Store:   store,
		Gateway: gateway,
		logger:  logger,
	}

	client, err := database.NewRedisClient(cfg, logger)
	if err != nil {
		// Cache and rate limiting are optional
		logger.Warn().Err(err).Msg("Redis unavailable, continuing without cache and rate limiting")
	}

	var cache service.AdviceCache
	if client != nil {
		a.redis = client
		cache, a.Limiter = redisAddons(client, cfg, logger)
	}

	a.Advisor = service.NewAdvisor(store, gateway, cache, logger)
	return a, nil
}

// redisAddons builds the Redis-backed extras that cfg turns on.
// The advice cache needs a positive CACHE_TTL and the limiter a positive RATE_LIMIT.
func redisAddons(client *redis.Client, cfg *config.Config, logger zerolog.Logger) (service.AdviceCache, *middleware.RateLimiter) {
	var cache service.AdviceCache
	if cfg.CacheTTL > 0 {
		cache = service.NewRedisAdviceCache(client, cfg.CacheTTL)
		logger.Info().Dur("ttl", cfg.CacheTTL).Msg("Advice cache enabled")
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewAdviceRateLimiter(client, cfg.RateLimit, cfg.RateWindow, logger)
	}
	return cache, limiter
}

// LoadKnowledge opens cfg.KnowledgeSource and reads it into a Store.
func LoadKnowledge(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*knowledge.Store, error) {
	opts := knowledge.SourceOptions{Table: cfg.KnowledgeTable, Logger: logger}
	if strings.HasPrefix(cfg.KnowledgeSource, "s3://") {
		client, err := config.NewS3Client(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, &knowledge.LoadError{Source: cfg.KnowledgeSource, Err: err}
		}
		opts.S3 = client
	}

	src, err := knowledge.OpenSource(cfg.KnowledgeSource, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := knowledge.CloseSource(src); err != nil {
			logger.Warn().Err(err).Msg("Failed to close knowledge source")
		}
	}()

	return knowledge.Load(ctx, src)
}

// Close releases the Redis connection, if any.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := server.New(a.Config, a.Advisor, a.Limiter, a.logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	a.logger.Info().Msg("Server stopped")
	return nil
}
