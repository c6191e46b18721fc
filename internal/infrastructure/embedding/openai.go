package embedding

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
)

// OpenAIConfig configures an OpenAI-compatible embeddings endpoint
type OpenAIConfig struct {
	BaseURL string // e.g. https://api.openai.com/v1 or a local compatible server
	Model   string
	APIKey  string // "none" is sent when empty, for local servers without auth
}

// OpenAIEmbedder embeds text through langchaingo's OpenAI client
type OpenAIEmbedder struct {
	embedder embeddings.Embedder
	model    string
	logger   zerolog.Logger
}

// NewOpenAIEmbedder creates an embedder for an OpenAI-compatible API
func NewOpenAIEmbedder(cfg OpenAIConfig, logger zerolog.Logger) (*OpenAIEmbedder, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai embedder: model is required")
	}
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}

	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &OpenAIEmbedder{
		embedder: embedder,
		model:    cfg.Model,
		logger:   logger.With().Str("component", "openai-embedder").Logger(),
	}, nil
}

// Embed encodes texts in one batch. A batch of only empty strings returns an
// empty result without calling the API.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if allEmpty(texts) {
		return [][]float32{}, nil
	}

	e.logger.Debug().Int("count", len(texts)).Msg("generating embeddings")
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", domain.ErrEmbeddingFailed, len(vectors), len(texts))
	}
	return vectors, nil
}

// ModelName returns the configured model
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

// Ping embeds a short text; the API has no health endpoint
func (e *OpenAIEmbedder) Ping(ctx context.Context) error {
	vectors, err := e.embedder.EmbedQuery(ctx, "ping")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("%w: empty ping embedding", domain.ErrEmbeddingUnavailable)
	}
	return nil
}
