package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ministryofjustice/operations-engineering-reports/internal/adapter/auth"
	"github.com/ministryofjustice/operations-engineering-reports/internal/adapter/cipher"
	"github.com/ministryofjustice/operations-engineering-reports/internal/adapter/store"
	"github.com/ministryofjustice/operations-engineering-reports/internal/handler"
	"github.com/ministryofjustice/operations-engineering-reports/internal/middleware"
	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
	"github.com/ministryofjustice/operations-engineering-reports/internal/service"
	"github.com/ministryofjustice/operations-engineering-reports/pkg/config"
)

var (
	migrateOnStart bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
)

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "create the report table before serving")
}

// openReportStore connects to the database and builds the report store,
// failing fast on any configuration problem.
func openReportStore(ctx context.Context, cfg *config.Config) (*store.DB, *store.ReportStore, error) {
	db, err := store.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if migrateOnStart {
		if err := store.Migrate(ctx, db, cfg.DatabaseTable); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	reports, err := store.NewReportStore(ctx, db, store.Options{
		Table:    cfg.DatabaseTable,
		Timeout:  cfg.DatabaseTimeout,
		PageSize: cfg.DatabasePageSize,
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, reports, nil
}

// newDecrypter returns nil when no encryption key is configured.
func newDecrypter(cfg *config.Config) (port.PayloadDecrypter, error) {
	if cfg.EncryptionKey == "" {
		return nil, nil
	}
	d, err := cipher.NewFernetDecrypter(cfg.EncryptionKey, cfg.EncryptionTTL)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	slog.Info("starting "+cfg.AppName,
		"port", cfg.Port,
		"version", Version,
		"driver", cfg.DatabaseDriver,
		"database", cfg.DSN(),
		"table", cfg.DatabaseTable,
		"login", cfg.LoginEnabled(),
	)

	// ── Database ─────────────────────────────────────────────────────────
	db, reports, err := openReportStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// ── Adapters ─────────────────────────────────────────────────────────
	decrypter, err := newDecrypter(cfg)
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		slog.Warn("API_KEY is not set, ingestion is disabled")
	}

	sessionCfg := middleware.SessionConfig{
		Issuer:    cfg.SessionIssuer,
		ExpiresIn: cfg.SessionTTL,
	}
	// Without login no session can be legitimately issued, so the empty
	// secret makes the reports routes reject every presented token.
	if cfg.LoginEnabled() {
		sessionCfg.Secret = cfg.SessionSecret
	}

	// ── Services ─────────────────────────────────────────────────────────
	repository := service.NewReportRepository(reports)
	queryService := service.NewQueryService(repository, cfg.BadgeLabel)
	ingestService := service.NewIngestService(reports, decrypter)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    16 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.APIKeyHeader},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(middleware.SlogAuditWriter{Logger: slog.Default().With("component", "audit")}))

	// ── Routes ───────────────────────────────────────────────────────────
	api := app.Group("/api/v1")

	handler.NewHealthHandler(db, cfg.AppName, Version).Register(api)
	handler.NewIngestHandler(ingestService, cfg.APIKey).Register(api)
	reportsHandler := handler.NewReportsHandler(queryService, sessionCfg)
	reportsHandler.Register(api)

	legacy := app.Group("/api/v2")
	reportsHandler.RegisterLegacy(legacy)
	handler.NewIngestHandler(ingestService, cfg.APIKey).RegisterLegacy(legacy)

	if cfg.LoginEnabled() {
		provider := auth.NewAuth0Provider(cfg.Auth0Domain, cfg.Auth0ClientID, cfg.Auth0ClientSecret, cfg.Auth0RedirectURL)
		authService := service.NewAuthService(provider, cfg.AllowedEmailDomains, sessionCfg)
		handler.NewAuthHandler(authService, strings.HasPrefix(cfg.Auth0RedirectURL, "https://")).Register(app)
	} else {
		slog.Warn("AUTH0_DOMAIN or AUTH0_CLIENT_ID not set, private reports are unreachable")
	}

	if cfg.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	// ── Start ────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		slog.Info("fiber listening", "port", cfg.Port)
		errCh <- app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
