package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/rules"
)

// Similarity notes appended when no query vector is available
const (
	noteQueryUnavailable = "Text Similarity: 0.00 (Query empty or model issue)"
	noteQueryFailed      = "Text Similarity: 0.00 (Query embedding failed)"
	noteCatalogMissing   = "Text Similarity: 0.00 (Product embeddings unavailable)"
)

// DefaultTopN is the number of recommendations returned when the caller does not ask
const DefaultTopN = 3

// RecommendationConfig holds configuration for the recommendation service
type RecommendationConfig struct {
	DefaultTopN        int
	Workers            int
	EmbeddingBatchSize int
}

// Status describes whether the service can answer requests
type Status struct {
	Ready    bool
	Degraded bool
	Reason   string
	Products int
	Embedded int
}

// RecommendationService ranks catalog products against client requirements.
// Flow: filter -> embed query -> score -> rank
type RecommendationService struct {
	catalog   *domain.Catalog
	evaluator *ConstraintEvaluator
	corpus    *CorpusBuilder
	provider  domain.EmbeddingProvider
	index     *EmbeddingIndex
	corpora   int // products with a non-empty corpus
	weights   rules.Weights
	topN      int
	workers   int
	logger    zerolog.Logger
	initErr   error
}

// NewRecommendationService builds the catalog corpora and embeddings once. A nil
// provider, or one whose catalog embedding fails, leaves the service serving
// with similarity disabled or partially available rather than failing.
func NewRecommendationService(
	ctx context.Context,
	catalog *domain.Catalog,
	r *rules.Rules,
	provider domain.EmbeddingProvider,
	config RecommendationConfig,
	logger zerolog.Logger,
) *RecommendationService {
	if catalog == nil {
		catalog = &domain.Catalog{}
	}

	topN := config.DefaultTopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	s := &RecommendationService{
		catalog:   catalog,
		evaluator: NewConstraintEvaluator(r),
		corpus:    NewCorpusBuilder(),
		provider:  provider,
		weights:   r.Weights(),
		topN:      topN,
		workers:   config.Workers,
		logger:    logger.With().Str("component", "recommender").Logger(),
	}

	if len(catalog.Products) == 0 {
		s.logger.Warn().Msg("catalog has no products, every request will return an empty list")
	}

	if provider == nil {
		s.logger.Warn().Msg("no embedding provider, ranking on rule scores only")
	}

	corpora := s.corpus.BuildCatalogCorpora(catalog)
	for _, text := range corpora {
		if text != "" {
			s.corpora++
		}
	}
	index, err := BuildEmbeddingIndex(ctx, provider, corpora, config.EmbeddingBatchSize, s.logger)
	if err != nil {
		s.logger.Error().Err(err).Msg("catalog embedding failed, product similarity will be 0")
	}
	s.index = index

	return s
}

// NewUnavailableService returns a service that refuses every request with
// ErrNotReady. It stands in when initialization failed so callers can tell
// "not ready" apart from "no matches".
func NewUnavailableService(cause error, logger zerolog.Logger) *RecommendationService {
	if cause == nil {
		cause = errors.New("recommender not initialized")
	}
	return &RecommendationService{
		initErr: cause,
		logger:  logger.With().Str("component", "recommender").Logger(),
	}
}

// Status reports readiness and whether similarity scoring is disabled
func (s *RecommendationService) Status() Status {
	if s.initErr != nil {
		return Status{Reason: s.initErr.Error()}
	}
	status := Status{
		Ready:    true,
		Degraded: s.provider == nil,
		Products: len(s.catalog.Products),
		Embedded: s.index.Len(),
	}
	if s.catalogMissing() {
		status.Degraded = true
		status.Reason = "product embeddings unavailable"
	}
	return status
}

// catalogMissing is true when a provider is configured but none of the
// embeddable products got a vector
func (s *RecommendationService) catalogMissing() bool {
	return s.provider != nil && s.corpora > 0 && s.index.Len() == 0
}

// DefaultTopN returns the configured result count
func (s *RecommendationService) DefaultTopN() int {
	return s.topN
}

// scored is the request-local state of one surviving candidate
type scored struct {
	position   int
	result     domain.ConstraintResult
	similarity float64
	final      float64
	note       string
}

// Recommend ranks the catalog against req and returns at most topN records.
// Cancellation is honoured between pipeline stages only; a cancelled request
// returns no partial output.
func (s *RecommendationService) Recommend(
	ctx context.Context,
	req *domain.Requirement,
	topN int,
) ([]domain.Recommendation, error) {
	if s.initErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotReady, s.initErr)
	}
	if topN < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidTopN, topN)
	}
	if req == nil {
		req = &domain.Requirement{}
	}

	// FILTERING
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidates, err := s.filter(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		s.logger.Info().Int("products", len(s.catalog.Products)).Msg("no products passed the hard constraints")
		return []domain.Recommendation{}, nil
	}

	// EMBEDDING
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query, note, err := s.embedQuery(ctx, req)
	if err != nil {
		return nil, err
	}

	// SCORING
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.score(candidates, query, note)

	// RANKING
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recommendations := s.rank(candidates, topN)

	s.logger.Info().
		Int("candidates", len(candidates)).
		Int("returned", len(recommendations)).
		Bool("similarity", note == "").
		Msg("recommendation complete")

	return recommendations, nil
}

func (s *RecommendationService) filter(ctx context.Context, req *domain.Requirement) ([]scored, error) {
	results, err := s.evaluator.EvaluateAll(ctx, s.catalog.Products, req, s.workers)
	if err != nil {
		return nil, err
	}

	var candidates []scored
	for i, result := range results {
		if result.Passed {
			candidates = append(candidates, scored{position: i, result: result})
		}
	}
	return candidates, nil
}

// embedQuery returns the query vector, or a note explaining why there is none.
// Provider failures degrade scoring; only cancellation is returned as an error.
func (s *RecommendationService) embedQuery(ctx context.Context, req *domain.Requirement) ([]float32, string, error) {
	query := s.corpus.BuildRequirementQuery(req)
	if query == "" || s.provider == nil {
		return nil, noteQueryUnavailable, nil
	}
	if s.catalogMissing() {
		return nil, noteCatalogMissing, nil
	}

	vectors, err := s.provider.Embed(ctx, []string{query})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, "", ctxErr
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("query embedding failed, ranking on rule scores only")
		return nil, noteQueryFailed, nil
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		s.logger.Warn().Msg("query embedding empty, ranking on rule scores only")
		return nil, noteQueryFailed, nil
	}
	return vectors[0], "", nil
}

func (s *RecommendationService) score(candidates []scored, query []float32, note string) {
	if note != "" {
		for i := range candidates {
			c := &candidates[i]
			c.final = roundTo(c.result.Score, 2)
			c.note = note
		}
		return
	}

	vectors := make([][]float32, len(candidates))
	for i, c := range candidates {
		vectors[i] = s.index.Vector(c.position)
	}
	similarities := CosineSimilarities(query, vectors)

	for i := range candidates {
		c := &candidates[i]
		scaled := similarities[i] * s.weights.TextSimilarityScale
		c.similarity = roundTo(similarities[i], 4)
		c.final = roundTo(c.result.Score+scaled, 2)
		c.note = fmt.Sprintf("Text Similarity Score: %.2f (scaled: %.2f)", similarities[i], scaled)
	}
}

// rank orders candidates by rounded final score, keeping catalog order on ties
func (s *RecommendationService) rank(candidates []scored, topN int) []domain.Recommendation {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].final > candidates[j].final
	})

	if topN < len(candidates) {
		candidates = candidates[:topN]
	}

	out := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		product := &s.catalog.Products[c.position]
		explanation := make([]string, 0, len(c.result.Explanation)+1)
		explanation = append(explanation, c.result.Explanation...)
		explanation = append(explanation, c.note)

		out = append(out, domain.Recommendation{
			ProductID:   product.ID,
			ProductName: product.Name,
			Details:     c.result.Details,
			Similarity:  c.similarity,
			FinalScore:  c.final,
			Explanation: explanation,
		})
	}
	return out
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
