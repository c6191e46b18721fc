package domain

import "errors"

var (
	// ErrNotReady is returned when the recommender failed to initialize
	ErrNotReady = errors.New("recommender service not ready")

	// ErrInvalidRequest is returned when the requirement payload is structurally invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidTopN is returned when a negative result count is requested
	ErrInvalidTopN = errors.New("top_n must be >= 0")

	// ErrCatalogLoad is returned when a catalog table cannot be read
	ErrCatalogLoad = errors.New("catalog load failed")

	// ErrMissingColumn is returned when a required catalog column is absent
	ErrMissingColumn = errors.New("required catalog column missing")

	// ErrEmbeddingUnavailable is returned when no embedding provider can be reached
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrEmbeddingFailed is returned when the provider fails to encode a batch
	ErrEmbeddingFailed = errors.New("embedding request failed")

	// ErrDimensionMismatch is returned when an embedding has an unexpected length
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
