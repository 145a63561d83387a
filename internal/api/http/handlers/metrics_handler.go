package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/api/dto"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/repository"
)

// MetricsHandler exposes in-process counters.
type MetricsHandler struct {
	metrics  *observability.Metrics
	sessions repository.TranscriptRepository
}

// NewMetricsHandler returns a new handler instance.
func NewMetricsHandler(metrics *observability.Metrics, sessions repository.TranscriptRepository) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, sessions: sessions}
}

// Get returns the counter snapshot and the number of open transcripts.
func (h *MetricsHandler) Get(c *fiber.Ctx) error {
	resp := dto.MetricsResponse{Snapshot: h.metrics.Snapshot()}
	if h.sessions != nil {
		count, err := h.sessions.Count(c.UserContext())
		if err != nil {
			return err
		}
		resp.OpenTranscripts = count
	}
	return c.JSON(resp)
}
