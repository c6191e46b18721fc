package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
)

func TestBuildEmbeddingIndex(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("nil provider gives empty index", func(t *testing.T) {
		index, err := BuildEmbeddingIndex(ctx, nil, []string{"a", "b"}, 0, logger)
		require.NoError(t, err)
		assert.Equal(t, 0, index.Len())
		assert.Nil(t, index.Vector(0))
	})

	t.Run("skips empty corpora and keeps positions", func(t *testing.T) {
		embedder := newBagOfWordsEmbedder()
		index, err := BuildEmbeddingIndex(ctx, embedder, []string{"alpha", "", "beta"}, 0, logger)
		require.NoError(t, err)

		assert.Equal(t, 2, index.Len())
		assert.Equal(t, 64, index.Dimension())
		assert.NotNil(t, index.Vector(0))
		assert.Nil(t, index.Vector(1))
		assert.NotNil(t, index.Vector(2))
		assert.Nil(t, index.Vector(3))
		assert.Equal(t, [][]string{{"alpha", "beta"}}, embedder.calls)
	})

	t.Run("all-empty corpora never call the provider", func(t *testing.T) {
		embedder := newBagOfWordsEmbedder()
		index, err := BuildEmbeddingIndex(ctx, embedder, []string{"", ""}, 0, logger)
		require.NoError(t, err)
		assert.Equal(t, 0, index.Len())
		assert.Equal(t, 0, embedder.callCount())
	})

	t.Run("embeds in batches", func(t *testing.T) {
		embedder := newBagOfWordsEmbedder()
		_, err := BuildEmbeddingIndex(ctx, embedder, []string{"a", "b", "c", "d", "e"}, 2, logger)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, embedder.calls)
	})

	t.Run("failed batch leaves the index empty", func(t *testing.T) {
		embedder := newBagOfWordsEmbedder()
		embedder.err = errors.New("model offline")
		embedder.failAfter = 1

		index, err := BuildEmbeddingIndex(ctx, embedder, []string{"a", "b", "c"}, 2, logger)
		assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
		assert.Equal(t, 0, index.Len())
	})

	t.Run("drops vectors with mismatched dimension", func(t *testing.T) {
		embedder := newBagOfWordsEmbedder()
		embedder.override = map[string][]float32{"odd": {1, 2, 3}}

		index, err := BuildEmbeddingIndex(ctx, embedder, []string{"alpha", "odd", "beta"}, 0, logger)
		require.NoError(t, err)
		assert.Equal(t, 2, index.Len())
		assert.Nil(t, index.Vector(1))
	})
}
