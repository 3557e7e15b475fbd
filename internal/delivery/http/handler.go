package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mailidpwd/similarlinks/internal/domain"
)

// RecommendationUsecase is the slice of the pipeline the HTTP layer needs.
type RecommendationUsecase interface {
	Recommend(ctx context.Context, req *domain.RecommendRequest) (*domain.RecommendationResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recommendations RecommendationUsecase
}

// NewHandler creates a new HTTP handler
func NewHandler(recommendations RecommendationUsecase) *Handler {
	return &Handler{recommendations: recommendations}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "similarlinks",
		"version": "1.0.0",
	})
}

// recommendRequestBody is the wire shape of a recommendation request.
type recommendRequestBody struct {
	URL       string `json:"url" binding:"required"`
	Device    string `json:"device" binding:"required,oneof=android ios"`
	ShareText string `json:"share_text"`
	Refresh   bool   `json:"refresh"`
}

// Recommend handles POST /api/v1/recommend. Caller-input problems map to
// 400; fatal pipeline failures map to 503 so the client knows to retry via
// its non-cached fallback path rather than treat the URL as rejected.
func (h *Handler) Recommend(c *gin.Context) {
	var body recommendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	result, err := h.recommendations.Recommend(c.Request.Context(), &domain.RecommendRequest{
		URL:       body.URL,
		Device:    body.Device,
		ShareText: body.ShareText,
		Refresh:   body.Refresh,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var pipelineErr *domain.PipelineError
		if errors.As(err, &pipelineErr) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": pipelineErr.Error(),
				"step":  pipelineErr.Step,
			})
			return
		}

		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
