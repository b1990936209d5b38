package middleware

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v3"
)

// APIKeyHeader is the header the ingestion job authenticates with.
const APIKeyHeader = "X-API-KEY"

// APIKeyMiddleware rejects requests whose X-API-KEY header does not equal
// key. Rejections answer 400, which is what the ingestion job expects.
// An empty key rejects every request.
func APIKeyMiddleware(key string) fiber.Handler {
	return func(c fiber.Ctx) error {
		got := c.Get(APIKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			slog.Warn("rejected request with invalid api key", "path", c.Path(), "ip", c.IP())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid or missing " + APIKeyHeader,
			})
		}
		return c.Next()
	}
}
