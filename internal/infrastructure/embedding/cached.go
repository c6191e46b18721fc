package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
)

const defaultCacheTTL = 24 * time.Hour

// CachedProvider wraps a provider with a vector cache keyed by a fingerprint of
// model and text. Cache errors are logged and treated as misses.
type CachedProvider struct {
	inner  domain.EmbeddingProvider
	cache  domain.CacheRepository
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedProvider creates a caching decorator around inner
func NewCachedProvider(
	inner domain.EmbeddingProvider,
	cache domain.CacheRepository,
	ttl time.Duration,
	logger zerolog.Logger,
) *CachedProvider {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "embedding-cache").Logger(),
	}
}

// Embed returns cached vectors where present and embeds the rest in one batch
func (p *CachedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if allEmpty(texts) {
		return [][]float32{}, nil
	}

	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		keys[i] = p.cacheKey(text)
		if vec, ok := p.lookup(ctx, keys[i]); ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vectors, err := p.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", domain.ErrEmbeddingFailed, len(vectors), len(missTexts))
	}

	for j, i := range missIdx {
		out[i] = vectors[j]
		if texts[i] == "" || len(vectors[j]) == 0 {
			continue
		}
		if err := p.cache.Set(ctx, keys[i], encodeVector(vectors[j]), p.ttl); err != nil {
			p.logger.Warn().Err(err).Msg("failed to cache embedding")
		}
	}
	return out, nil
}

// ModelName returns the wrapped provider's model
func (p *CachedProvider) ModelName() string {
	return p.inner.ModelName()
}

// Ping delegates to the wrapped provider
func (p *CachedProvider) Ping(ctx context.Context) error {
	return p.inner.Ping(ctx)
}

func (p *CachedProvider) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := p.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			p.logger.Warn().Err(err).Msg("embedding cache read failed")
		}
		return nil, false
	}

	vec, err := decodeVector(data)
	if err != nil {
		p.logger.Warn().Err(err).Msg("discarding corrupt cached embedding")
		if err := p.cache.Delete(ctx, key); err != nil {
			p.logger.Warn().Err(err).Msg("failed to delete corrupt cached embedding")
		}
		return nil, false
	}
	return vec, true
}

// cacheKey fingerprints model and text. Format: "embed:{sha256 hex}"
func (p *CachedProvider) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(p.inner.ModelName() + "\x00" + text))
	return "embed:" + hex.EncodeToString(sum[:])
}

// encodeVector serializes a vector as little-endian float32s
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector encoding of %d bytes", len(data))
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return v, nil
}
