package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EmbeddingProvider turns text into dense vectors
type EmbeddingProvider interface {
	// Embed encodes texts in one batch. The result has one vector per input, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName identifies the model, used to key cached vectors.
	ModelName() string

	// Ping checks the provider is reachable before it is relied on.
	Ping(ctx context.Context) error
}

// CatalogRepository supplies the normalized catalog tables
type CatalogRepository interface {
	LoadCatalog(ctx context.Context) (*Catalog, error)
}
