package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ShivamTripathi028/rak-recommender-project/internal/domain"
	"github.com/ShivamTripathi028/rak-recommender-project/internal/usecase"
)

// maxBodyBytes caps the requirements document size
const maxBodyBytes = 1 << 20

// Recommender is the usecase the handlers serve
type Recommender interface {
	Recommend(ctx context.Context, req *domain.Requirement, topN int) ([]domain.Recommendation, error)
	Status() usecase.Status
	DefaultTopN() int
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recommender Recommender
	logger      zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(recommender Recommender, logger zerolog.Logger) *Handler {
	return &Handler{
		recommender: recommender,
		logger:      logger.With().Str("component", "http").Logger(),
	}
}

// HealthCheck reports readiness. It always answers 200; an uninitialized
// recommender is reported as "unhealthy" with the reason.
func (h *Handler) HealthCheck(c *gin.Context) {
	if h.recommender == nil {
		c.JSON(http.StatusOK, gin.H{"status": "unhealthy", "reason": "Recommender not initialized"})
		return
	}

	status := h.recommender.Status()
	if !status.Ready {
		c.JSON(http.StatusOK, gin.H{"status": "unhealthy", "reason": status.Reason})
		return
	}

	body := gin.H{
		"status":   "healthy",
		"degraded": status.Degraded,
		"products": status.Products,
		"embedded": status.Embedded,
	}
	if status.Reason != "" {
		body["reason"] = status.Reason
	}
	c.JSON(http.StatusOK, body)
}

// Recommend handles POST requests carrying a requirements document
func (h *Handler) Recommend(c *gin.Context) {
	if h.recommender == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recommender service is unavailable."})
		return
	}

	topN, err := h.parseTopN(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
		return
	}

	raw, err := domain.DecodeRequirementPayload(body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := domain.ValidateRequirementPayload(raw); err != nil {
		h.respondError(c, err)
		return
	}

	req := domain.ParseRequirement(raw)
	recommendations, err := h.recommender.Recommend(c.Request.Context(), &req, topN)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recommendations)
}

// parseTopN reads the optional top_n query parameter
func (h *Handler) parseTopN(c *gin.Context) (int, error) {
	value, ok := c.GetQuery("top_n")
	if !ok || value == "" {
		return h.recommender.DefaultTopN(), nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, domain.ErrInvalidTopN
	}
	return n, nil
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTopN):
		c.JSON(http.StatusBadRequest, gin.H{"error": "top_n must be a non-negative integer"})
	case errors.Is(err, domain.ErrNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recommender service not ready: " + err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn().Err(err).Msg("request cancelled")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Request cancelled"})
	default:
		h.logger.Error().Err(err).Msg("recommendation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
