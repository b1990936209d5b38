package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/ministryofjustice/operations-engineering-reports/internal/metrics"
)

// AuditRecord is one request as seen by the audit trail.
type AuditRecord struct {
	UserID    string
	Method    string
	Route     string
	Path      string
	Status    int
	Duration  time.Duration
	IP        string
	UserAgent string
	RequestID string
}

// AuditWriter defines how audit records are persisted.
type AuditWriter interface {
	WriteAudit(rec AuditRecord) error
}

// SlogAuditWriter writes audit records as structured log lines.
type SlogAuditWriter struct {
	Logger *slog.Logger
}

// WriteAudit implements AuditWriter.
func (w SlogAuditWriter) WriteAudit(rec AuditRecord) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("http request",
		"user_id", rec.UserID,
		"method", rec.Method,
		"route", rec.Route,
		"path", rec.Path,
		"status", rec.Status,
		"duration_ms", rec.Duration.Milliseconds(),
		"ip", rec.IP,
		"user_agent", rec.UserAgent,
		"request_id", rec.RequestID,
	)
	return nil
}

// AuditMiddleware records every request and counts it in the HTTP metrics.
func AuditMiddleware(writer AuditWriter) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		// Capture request data before the handler runs; Fiber reuses contexts.
		method := c.Method()
		path := c.Path()
		ip := c.IP()
		userAgent := c.Get("User-Agent")

		err := c.Next()

		rec := AuditRecord{
			UserID:    "anonymous",
			Method:    method,
			Route:     c.Route().Path,
			Path:      path,
			Status:    c.Response().StatusCode(),
			Duration:  time.Since(start),
			IP:        ip,
			UserAgent: userAgent,
			RequestID: c.GetRespHeader(fiber.HeaderXRequestID),
		}
		if uc := GetUserContext(c); uc != nil {
			rec.UserID = uc.Email
		}
		if err != nil {
			// The error handler has not run yet; fiber.Error carries the final code.
			if fe, ok := err.(*fiber.Error); ok {
				rec.Status = fe.Code
			} else {
				rec.Status = fiber.StatusInternalServerError
			}
		}

		metrics.HTTPRequest(rec.Method, rec.Route, strconv.Itoa(rec.Status))
		if writeErr := writer.WriteAudit(rec); writeErr != nil {
			slog.Error("failed to write audit log", "error", writeErr)
		}
		return err
	}
}
