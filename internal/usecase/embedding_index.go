package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
)

const defaultEmbeddingBatchSize = 32

// EmbeddingIndex holds one vector slot per catalog product, in catalog order.
// It is filled once at initialization and only read afterwards.
type EmbeddingIndex struct {
	vectors   [][]float32
	dimension int
}

// BuildEmbeddingIndex embeds every non-empty corpus in batches. If any batch
// fails the whole index is left empty so that no product is ranked on a partial
// embedding set. Vectors whose dimension disagrees with the first are dropped.
func BuildEmbeddingIndex(
	ctx context.Context,
	provider domain.EmbeddingProvider,
	corpora []string,
	batchSize int,
	logger zerolog.Logger,
) (*EmbeddingIndex, error) {
	index := &EmbeddingIndex{vectors: make([][]float32, len(corpora))}
	if provider == nil || len(corpora) == 0 {
		return index, nil
	}
	if batchSize <= 0 {
		batchSize = defaultEmbeddingBatchSize
	}

	var positions []int
	var texts []string
	for i, text := range corpora {
		if text != "" {
			positions = append(positions, i)
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		logger.Warn().Msg("all product corpora are empty, embeddings will not be generated")
		return index, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		batch, err := provider.Embed(ctx, texts[start:end])
		if err != nil {
			return &EmbeddingIndex{vectors: make([][]float32, len(corpora))},
				fmt.Errorf("%w: catalog batch %d-%d: %v", domain.ErrEmbeddingFailed, start, end, err)
		}
		if len(batch) != end-start {
			return &EmbeddingIndex{vectors: make([][]float32, len(corpora))},
				fmt.Errorf("%w: catalog batch %d-%d returned %d vectors", domain.ErrEmbeddingFailed, start, end, len(batch))
		}
		vectors = append(vectors, batch...)
	}

	for i, vec := range vectors {
		if len(vec) == 0 {
			continue
		}
		if index.dimension == 0 {
			index.dimension = len(vec)
		}
		if len(vec) != index.dimension {
			logger.Warn().
				Int("position", positions[i]).
				Int("dimension", len(vec)).
				Int("expected", index.dimension).
				Msg("dropping product embedding with mismatched dimension")
			continue
		}
		index.vectors[positions[i]] = vec
	}

	logger.Info().
		Int("products", len(corpora)).
		Int("embedded", index.Len()).
		Int("dimension", index.dimension).
		Msg("catalog embeddings computed")

	return index, nil
}

// Vector returns the embedding of the product at position i, or nil
func (x *EmbeddingIndex) Vector(i int) []float32 {
	if x == nil || i < 0 || i >= len(x.vectors) {
		return nil
	}
	return x.vectors[i]
}

// Dimension is the shared vector length, 0 when nothing was embedded
func (x *EmbeddingIndex) Dimension() int {
	if x == nil {
		return 0
	}
	return x.dimension
}

// Len counts products that have an embedding
func (x *EmbeddingIndex) Len() int {
	if x == nil {
		return 0
	}
	n := 0
	for _, v := range x.vectors {
		if len(v) > 0 {
			n++
		}
	}
	return n
}
