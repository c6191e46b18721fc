// Package embedding provides the text embedding backends: an Ollama HTTP client,
// an OpenAI-compatible client and a caching decorator.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
)

// Provider kinds
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// Config selects and configures an embedding provider
type Config struct {
	Provider          string
	BaseURL           string
	Model             string
	APIKey            string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	CacheTTL          time.Duration
	Debug             bool
}

// New builds the configured provider, wrapped with cache when one is given.
// It returns a nil provider for ProviderNone.
func New(cfg Config, cache domain.CacheRepository, logger zerolog.Logger) (domain.EmbeddingProvider, error) {
	var provider domain.EmbeddingProvider

	switch cfg.Provider {
	case ProviderNone, "":
		return nil, nil
	case ProviderOllama:
		client := NewOllamaClient(OllamaConfig{
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Timeout:           cfg.Timeout,
			MaxRetries:        cfg.MaxRetries,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}, logger)
		client.SetDebug(cfg.Debug)
		provider = client
	case ProviderOpenAI:
		embedder, err := NewOpenAIEmbedder(OpenAIConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		}, logger)
		if err != nil {
			return nil, err
		}
		provider = embedder
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	if cache != nil {
		provider = NewCachedProvider(provider, cache, cfg.CacheTTL, logger)
	}
	return provider, nil
}

// Connect builds the provider and pings it. Any failure is logged and yields a
// nil provider, which puts the recommender in degraded mode.
func Connect(ctx context.Context, cfg Config, cache domain.CacheRepository, logger zerolog.Logger) domain.EmbeddingProvider {
	provider, err := New(cfg, cache, logger)
	if err != nil {
		logger.Error().Err(err).Msg("embedding provider could not be created, similarity disabled")
		return nil
	}
	if provider == nil {
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := provider.Ping(pingCtx); err != nil {
		logger.Error().Err(err).Str("provider", cfg.Provider).Msg("embedding provider unreachable, similarity disabled")
		return nil
	}

	logger.Info().Str("provider", cfg.Provider).Str("model", provider.ModelName()).Msg("embedding provider ready")
	return provider
}
