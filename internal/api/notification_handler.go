package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"quantcasa/internal/engine"
)

// NotificationHandler handles HTTP requests for the notification permission
// lifecycle.
type NotificationHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(eng *engine.Engine, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		engine: eng,
		logger: logger,
	}
}

// RequestPermission handles POST /v1/notifications/permission
// Resolves the notification permission. Idempotent: a previously recorded
// decision is returned without prompting again.
func (h *NotificationHandler) RequestPermission(c *fiber.Ctx) error {
	permission := h.engine.RequestPermission(c.Context())
	return Success(c, map[string]string{
		"permission": string(permission),
	})
}
