// Package triage exposes the visual triage endpoint.
package triage

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ruralcare/telemed/internal/handler"
	"github.com/ruralcare/telemed/internal/model"
	"github.com/ruralcare/telemed/internal/triage"
	"github.com/ruralcare/telemed/pkg/metrics"
)

type Handler struct {
	metrics *metrics.Metrics
}

func NewHandler(m *metrics.Metrics) *Handler {
	return &Handler{metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/visual-triage", h.VisualTriage)
}

// VisualTriage analyzes an uploaded image and returns findings plus an
// urgency grade. Results are deterministic per image payload.
func (h *Handler) VisualTriage(c *gin.Context) {
	var req model.VisualTriageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("image is required"))
		return
	}

	resp := triage.TriageImage(req.Image)
	log.Info().
		Int("image_bytes", len(req.Image)).
		Str("urgency", string(resp.Urgency)).
		Msg("visual triage served")

	c.JSON(http.StatusOK, resp)
}
