package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"quantcasa/internal/domain"
	"quantcasa/internal/ingest"
)

// ObservationHandler handles HTTP requests for price observation ingestion.
type ObservationHandler struct {
	service *ingest.Service
	logger  *slog.Logger
}

// NewObservationHandler creates a new observation handler.
func NewObservationHandler(service *ingest.Service, logger *slog.Logger) *ObservationHandler {
	return &ObservationHandler{
		service: service,
		logger:  logger,
	}
}

// Ingest handles POST /v1/observations
// Receives a price observation, validates it, and publishes it to the
// message queue. Returns 202 Accepted; evaluation happens asynchronously.
func (h *ObservationHandler) Ingest(c *fiber.Ctx) error {
	var obs domain.Observation
	if err := c.BodyParser(&obs); err != nil {
		h.logger.Debug("failed to parse observation body", "error", err)
		return BadRequest(c, "invalid request body")
	}

	if err := h.service.IngestObservation(c.Context(), &obs); err != nil {
		if errors.Is(err, ingest.ErrPublishFailed) {
			h.logger.Error("failed to ingest observation", "error", err, "city", obs.City)
			return InternalError(c, "failed to ingest observation")
		}
		h.logger.Debug("observation validation failed", "error", err)
		return ValidationError(c, err.Error())
	}

	h.logger.Debug("observation accepted", "city", obs.City, "mode", obs.Mode)

	return Accepted(c, map[string]string{
		"status": "accepted",
	})
}
