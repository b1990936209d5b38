package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/ministryofjustice/operations-engineering-reports/internal/middleware"
	"github.com/ministryofjustice/operations-engineering-reports/internal/service"
)

// IngestHandler accepts report batches from the producer job.
type IngestHandler struct {
	ingest *service.IngestService
	apiKey string
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(ingest *service.IngestService, apiKey string) *IngestHandler {
	return &IngestHandler{ingest: ingest, apiKey: apiKey}
}

// Register sets up the ingest route behind the API key guard.
func (h *IngestHandler) Register(router fiber.Router) {
	router.Post("/reports", middleware.APIKeyMiddleware(h.apiKey), h.Ingest)
}

// RegisterLegacy mounts the ingest route the producer job has always posted to.
func (h *IngestHandler) RegisterLegacy(router fiber.Router) {
	router.Post("/update-github-reports", middleware.APIKeyMiddleware(h.apiKey), h.Ingest)
}

// Ingest upserts every entry of the body and reports the outcome. Entry
// failures are part of a 200 response; only an undecodable body fails.
func (h *IngestHandler) Ingest(c fiber.Ctx) error {
	res, err := h.ingest.IngestBody(c.Context(), c.Body())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
