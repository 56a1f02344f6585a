package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cloudbucket/docs"
	"cloudbucket/internal/config"
	"cloudbucket/internal/database"
	"cloudbucket/internal/database/migration"
	handlers "cloudbucket/internal/http/handler"
	"cloudbucket/internal/http/middleware"
	"cloudbucket/internal/otel"
	"cloudbucket/internal/registry"
	"cloudbucket/internal/service"
)

// multipart framing on top of the file itself
const bodyLimitSlack = 1 << 20

// @title cloudbucket API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := issueToken(cfg.Auth, os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		return
	}

	if err := run(cfg, log); err != nil {
		log.Error("server_exit", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.TZName)
	if err != nil {
		log.Warn("invalid_timezone", "tz_name", cfg.TZName, "error", err.Error())
		loc = time.UTC
	}

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// SQL connection with pooling via database/sql
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	driver := cfg.Database.Driver
	if driver == "" {
		driver = database.DriverPostgres
	}
	if err := migration.EnsureMigrated(ctx, db, driver, log); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	blobs, err := newBlobStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("initialize blob storage: %w", err)
	}

	repo, err := newFileRepository(driver, db)
	if err != nil {
		return err
	}

	maxUpload := cfg.Storage.MaxUploadBytes()
	if maxUpload <= 0 {
		log.Warn("upload_limit_zero",
			"max_upload_size", cfg.Storage.MaxUploadSize,
			"detail", "MAX_UPLOAD_SIZE is missing or unparsable; every upload will be rejected",
		)
	} else {
		log.Info("upload_limit", "max_upload_size", humanize.IBytes(uint64(maxUpload)), "bytes", maxUpload)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn("jwt_secret_missing", "detail", "JWT_SECRET is empty; /files routes will answer 401")
	}

	uploadMetrics, err := service.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register upload metrics: %w", err)
	}
	fileSvc := service.NewFileService(blobs, registry.New(repo), maxUpload,
		service.WithLogger(log),
		service.WithMetrics(uploadMetrics),
	)

	app := fiber.New(fiber.Config{
		ErrorHandler:      handlers.ErrorHandler(),
		BodyLimit:         bodyLimit(maxUpload),
		StreamRequestBody: true,
		Immutable:         true,
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(loc))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, fileSvc, cfg.Auth)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	log.Info("server_started", "port", cfg.Port, "blob_driver", cfg.Storage.Driver, "db_driver", driver)

	select {
	case err := <-errCh:
		return fmt.Errorf("start server: %w", err)
	case <-ctx.Done():
	}

	log.Info("server_stopping")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
