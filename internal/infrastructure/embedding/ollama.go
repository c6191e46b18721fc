package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
)

// Ollama defaults
const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "nomic-embed-text"
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 3
	maxErrorBodyBytes  = 1024
)

// OllamaConfig holds configuration for the Ollama client
type OllamaConfig struct {
	BaseURL           string
	Model             string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
}

// OllamaClient embeds text through an Ollama server's /api/embed endpoint
type OllamaClient struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	maxRetries  int
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	logger      zerolog.Logger
	debug       bool
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

// NewOllamaClient creates a new Ollama embedding client
func NewOllamaClient(cfg OllamaConfig, logger zerolog.Logger) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOllamaURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &OllamaClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		maxRetries:  cfg.MaxRetries,
		rateLimiter: rate.NewLimiter(limit, 10),
		backoff:     exponentialBackoff,
		logger:      logger.With().Str("component", "ollama").Logger(),
	}
}

// SetDebug enables per-request debug logging
func (c *OllamaClient) SetDebug(debug bool) {
	c.debug = debug
}

func (c *OllamaClient) debugLog(format string, args ...interface{}) {
	if c.debug {
		c.logger.Debug().Msgf(format, args...)
	}
}

// ModelName returns the configured model
func (c *OllamaClient) ModelName() string {
	return c.model
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// Embed encodes texts in one request. A batch of only empty strings returns an
// empty result without contacting the server.
func (c *OllamaClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if allEmpty(texts) {
		return [][]float32{}, nil
	}

	payload, err := json.Marshal(embedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		vectors, retry, err := c.embedOnce(ctx, payload)
		if err == nil {
			c.debugLog("embedded %d texts (attempt %d)", len(texts), attempt)
			return c.validate(vectors, len(texts))
		}
		if !retry {
			return nil, err
		}

		lastErr = err
		c.logger.Warn().Err(err).Int("attempt", attempt).Msg("embedding request failed")
		if attempt == c.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailed, ctx.Err())
		case <-time.After(c.backoff(attempt)):
		}
	}

	return nil, lastErr
}

// embedOnce performs one request. retry reports whether the failure is transient.
func (c *OllamaClient) embedOnce(ctx context.Context, payload []byte) (vectors [][]float32, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailed, err)
		}
		return nil, true, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := readLimitedBody(resp.Body, maxErrorBodyBytes)
		err := fmt.Errorf("%w: status %d: %s", domain.ErrEmbeddingFailed, resp.StatusCode, strings.TrimSpace(string(body)))
		transient := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
		return nil, transient, err
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, false, fmt.Errorf("%w: failed to decode response: %v", domain.ErrEmbeddingFailed, err)
	}
	return decoded.Embeddings, false, nil
}

func (c *OllamaClient) validate(vectors [][]float32, want int) ([][]float32, error) {
	if len(vectors) != want {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", domain.ErrEmbeddingFailed, len(vectors), want)
	}
	if len(vectors) > 0 {
		dim := len(vectors[0])
		for i, v := range vectors {
			if len(v) != dim {
				return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d", domain.ErrDimensionMismatch, i, len(v), dim)
			}
		}
	}
	return vectors, nil
}

// Ping checks the server is up by listing its models
func (c *OllamaClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrEmbeddingUnavailable, resp.StatusCode)
	}
	return nil
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func allEmpty(texts []string) bool {
	for _, t := range texts {
		if t != "" {
			return false
		}
	}
	return true
}
