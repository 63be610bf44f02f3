package api

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"quantcasa/internal/domain"
	"quantcasa/internal/engine"
)

// AlertHandler handles HTTP requests for alert operations.
type AlertHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(eng *engine.Engine, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{
		engine: eng,
		logger: logger,
	}
}

// Create handles POST /v1/alerts
// Creates a new alert from the request body.
func (h *AlertHandler) Create(c *fiber.Ctx) error {
	var input domain.NewAlertInput
	if err := c.BodyParser(&input); err != nil {
		h.logger.Debug("failed to parse alert body", "error", err)
		return BadRequest(c, "invalid request body")
	}

	alert, err := h.engine.AddAlert(c.Context(), &input)
	if err != nil {
		if isValidationError(err) {
			return ValidationError(c, err.Error())
		}
		h.logger.Error("failed to create alert", "error", err)
		return InternalError(c, "failed to create alert")
	}

	return Created(c, alert)
}

// List handles GET /v1/alerts
// Returns alerts matching query parameters, most recent first.
func (h *AlertHandler) List(c *fiber.Ctx) error {
	filter := domain.AlertFilter{
		City: c.Query("city"),
	}

	if status := c.Query("status"); status != "" {
		filter.Status = domain.Status(status)
	}
	if mode := c.Query("mode"); mode != "" {
		filter.Mode = domain.Mode(mode)
	}

	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			filter.Limit = l
		}
	}
	if offset := c.Query("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	// Default limit if not specified
	if filter.Limit == 0 {
		filter.Limit = 100
	}

	alerts, err := h.engine.ListAlerts(c.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list alerts", "error", err)
		return InternalError(c, "failed to list alerts")
	}

	return Success(c, alerts)
}

// Stats handles GET /v1/alerts/stats
// Returns derived totals by status.
func (h *AlertHandler) Stats(c *fiber.Ctx) error {
	counts, err := h.engine.Counts(c.Context())
	if err != nil {
		h.logger.Error("failed to count alerts", "error", err)
		return InternalError(c, "failed to count alerts")
	}

	return Success(c, counts)
}

// GetByID handles GET /v1/alerts/:id
// Returns a single alert by its ID.
func (h *AlertHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return BadRequest(c, "id is required")
	}

	alert, err := h.engine.GetAlert(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAlertNotFound) {
			return NotFound(c, "alert not found")
		}
		h.logger.Error("failed to get alert", "alert_id", id, "error", err)
		return InternalError(c, "failed to get alert")
	}

	return Success(c, alert)
}

// Delete handles DELETE /v1/alerts/:id
// Removes an alert. Deleting a missing alert succeeds: the desired end
// state already holds.
func (h *AlertHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return BadRequest(c, "id is required")
	}

	if err := h.engine.RemoveAlert(c.Context(), id); err != nil {
		h.logger.Error("failed to delete alert", "alert_id", id, "error", err)
		return InternalError(c, "failed to delete alert")
	}

	return NoContent(c)
}

// ClearTriggered handles DELETE /v1/alerts/triggered
// Removes every triggered alert and reports how many were removed.
func (h *AlertHandler) ClearTriggered(c *fiber.Ctx) error {
	removed, err := h.engine.ClearTriggered(c.Context())
	if err != nil {
		h.logger.Error("failed to clear triggered alerts", "error", err)
		return InternalError(c, "failed to clear triggered alerts")
	}

	return Success(c, map[string]int{"removed": removed})
}

// Toggle handles POST /v1/alerts/:id/toggle
// Flips an alert between active and paused. Triggered alerts are returned
// unchanged.
func (h *AlertHandler) Toggle(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return BadRequest(c, "id is required")
	}

	alert, err := h.engine.ToggleAlert(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAlertNotFound) {
			return NotFound(c, "alert not found")
		}
		h.logger.Error("failed to toggle alert", "alert_id", id, "error", err)
		return InternalError(c, "failed to toggle alert")
	}

	return Success(c, alert)
}

// Reset handles POST /v1/alerts/:id/reset
// Re-arms a triggered alert, preserving its trigger history.
func (h *AlertHandler) Reset(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return BadRequest(c, "id is required")
	}

	alert, err := h.engine.ResetAlert(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAlertNotFound) {
			return NotFound(c, "alert not found")
		}
		h.logger.Error("failed to reset alert", "alert_id", id, "error", err)
		return InternalError(c, "failed to reset alert")
	}

	return Success(c, alert)
}

// isValidationError reports whether the error is a creation-time validation
// failure rather than an infrastructure fault.
func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrEmptyLabel) ||
		errors.Is(err, domain.ErrEmptyCity) ||
		errors.Is(err, domain.ErrInvalidMode) ||
		errors.Is(err, domain.ErrInvalidCondition) ||
		errors.Is(err, domain.ErrInvalidTargetPrice) ||
		errors.Is(err, domain.ErrNegativeBaseline)
}
