package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

// respondError maps the error taxonomy onto HTTP status codes.
func respondError(c fiber.Ctx, err error) error {
	var (
		notFound *port.NotFoundError
		private  *port.PrivateRepositoryNotSupportedError
		decode   *port.DecodeError
		cfgErr   *port.ConfigurationError
	)

	status := fiber.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = fiber.StatusNotFound
	case errors.As(err, &private):
		status = fiber.StatusForbidden
	case errors.As(err, &decode):
		status = fiber.StatusUnsupportedMediaType
	case port.IsStorageUnavailable(err):
		status = fiber.StatusServiceUnavailable
		slog.Error("storage unavailable", "path", c.Path(), "error", err)
	case errors.As(err, &cfgErr):
		slog.Error("misconfigured", "path", c.Path(), "error", err)
	case errors.Is(err, port.ErrDomainNotAllowed), errors.Is(err, port.ErrEmailNotVerified):
		status = fiber.StatusForbidden
	case errors.Is(err, port.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	default:
		slog.Error("request failed", "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": port.ErrUnauthorized.Error()})
}
