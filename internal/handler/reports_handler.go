package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/ministryofjustice/operations-engineering-reports/internal/domain"
	"github.com/ministryofjustice/operations-engineering-reports/internal/middleware"
	"github.com/ministryofjustice/operations-engineering-reports/internal/service"
)

// ReportsHandler serves the read side of the report table.
type ReportsHandler struct {
	query   *service.QueryService
	session middleware.SessionConfig
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(query *service.QueryService, session middleware.SessionConfig) *ReportsHandler {
	return &ReportsHandler{query: query, session: session}
}

// Register sets up report routes. Public data is anonymous; private data
// needs a session.
func (h *ReportsHandler) Register(router fiber.Router) {
	reports := router.Group("/reports", middleware.SessionMiddleware(h.session, false))
	reports.Get("/", h.List)
	reports.Get("/summary", h.Summary)
	reports.Get("/search", h.Search)
	reports.Get("/:name", h.Get)
	reports.Get("/:name/badge", h.Badge)
}

// RegisterLegacy mounts the badge under the path README badges already use.
func (h *ReportsHandler) RegisterLegacy(router fiber.Router) {
	router.Get("/compliant-repository/:name", h.Badge)
}

// List returns reports filtered by visibility and compliance status.
func (h *ReportsHandler) List(c fiber.Ctx) error {
	visibility, err := service.ParseVisibility(c.Query("visibility"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	filter, err := service.ParseStatusFilter(c.Query("status"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	if visibility == service.VisibilityPrivate && middleware.GetUserContext(c) == nil {
		return unauthorized(c)
	}

	reports, err := h.query.List(c.Context(), visibility, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listResponse(reports))
}

// Summary returns compliance counts for one visibility.
func (h *ReportsHandler) Summary(c fiber.Ctx) error {
	visibility, err := service.ParseVisibility(c.Query("visibility"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	if visibility == service.VisibilityPrivate && middleware.GetUserContext(c) == nil {
		return unauthorized(c)
	}

	sum, err := h.query.Summary(c.Context(), visibility)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sum)
}

// Search finds reports whose name contains ?q=, ignoring case.
func (h *ReportsHandler) Search(c fiber.Ctx) error {
	visibility, err := service.ParseVisibility(c.Query("visibility"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	if visibility == service.VisibilityPrivate && middleware.GetUserContext(c) == nil {
		return unauthorized(c)
	}

	reports, err := h.query.Search(c.Context(), c.Query("q"), visibility)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listResponse(reports))
}

// Get returns one full report with its failure reasons.
func (h *ReportsHandler) Get(c fiber.Ctx) error {
	r, err := h.query.Get(c.Context(), c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}
	if r.IsPrivate && middleware.GetUserContext(c) == nil {
		return unauthorized(c)
	}
	return c.JSON(service.NewReportView(*r))
}

// Badge returns the shields.io endpoint JSON for a public repository.
func (h *ReportsHandler) Badge(c fiber.Ctx) error {
	badge, err := h.query.Badge(c.Context(), c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return c.JSON(badge)
}

func listResponse(reports []domain.RepositoryReport) fiber.Map {
	views := make([]service.ReportView, 0, len(reports))
	for _, r := range reports {
		views = append(views, service.NewReportView(r))
	}
	return fiber.Map{
		"reports": views,
		"count":   len(views),
	}
}
