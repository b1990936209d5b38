package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"
)

// Pinger checks that the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and store reachability.
type HealthHandler struct {
	db      Pinger
	appName string
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db Pinger, appName, version string) *HealthHandler {
	return &HealthHandler{db: db, appName: appName, version: version}
}

// Register sets up the health route.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health", h.Health)
}

// Health answers 200 when the store responds and 503 otherwise.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"app":    h.appName,
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"app":     h.appName,
		"version": h.version,
	})
}
