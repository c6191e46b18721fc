// Package app wires configuration into a ready recommendation service. It is
// shared by the HTTP server and the command-line runner.
package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ShivamTripathi028/rak-recommender-project/config"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/infrastructure/cache"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/infrastructure/catalog"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/infrastructure/embedding"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/rules"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/usecase"
)

// BuildService loads scoring rules and the catalog, connects the embedding
// provider and prepares the recommender. A rules or catalog failure yields an
// unavailable service carrying the cause, so callers can report "not ready".
func BuildService(
	ctx context.Context,
	cfg *config.Config,
	store domain.CacheRepository,
	logger zerolog.Logger,
) *usecase.RecommendationService {
	scoring, err := rules.Load(cfg.Matching.RulesFile)
	if err != nil {
		logger.Error().Err(err).Str("rules_file", cfg.Matching.RulesFile).Msg("failed to load scoring rules")
		return usecase.NewUnavailableService(err, logger)
	}

	catalogStore := catalog.NewCSVStore(catalog.Files{
		Products:        cfg.Catalog.ProductFile,
		Features:        cfg.Catalog.FeatureFile,
		ProductFeatures: cfg.Catalog.MappingFile,
	}, logger)

	products, err := catalogStore.LoadCatalog(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load catalog")
		return usecase.NewUnavailableService(err, logger)
	}

	provider := embedding.Connect(ctx, EmbeddingConfig(cfg), store, logger)

	return usecase.NewRecommendationService(ctx, products, scoring, provider, usecase.RecommendationConfig{
		DefaultTopN:        cfg.Matching.TopN,
		Workers:            cfg.Matching.Workers,
		EmbeddingBatchSize: cfg.Embedding.BatchSize,
	}, logger)
}

// EmbeddingConfig maps service configuration onto the provider factory's
func EmbeddingConfig(cfg *config.Config) embedding.Config {
	return embedding.Config{
		Provider:          cfg.Embedding.Provider,
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		APIKey:            cfg.Embedding.APIKey,
		Timeout:           cfg.Embedding.Timeout,
		MaxRetries:        cfg.Embedding.MaxRetries,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		CacheTTL:          cfg.Cache.TTL,
		Debug:             cfg.Server.Environment == "development",
	}
}

// NewCache returns the embedding cache and its close function. An unreachable
// redis falls back to the in-memory cache.
func NewCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (domain.CacheRepository, func()) {
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.Cache.RedisURL})
		if err == nil {
			logger.Info().Msg("using redis embedding cache")
			return redisCache, func() { _ = redisCache.Close() }
		}
		logger.Warn().Err(err).Msg("redis unavailable, falling back to memory cache")
	}

	memoryCache := cache.NewMemoryCache(0)
	return memoryCache, func() { _ = memoryCache.Close() }
}
