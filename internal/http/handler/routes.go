package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"cloudbucket/internal/config"
	"cloudbucket/internal/http/middleware"
	"cloudbucket/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Every /files route requires a bearer token whose subject is the file owner.
func RegisterRoutes(app *fiber.App, db *sql.DB, fileSvc service.FileService, auth config.AuthConfig) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	files := app.Group("/files", middleware.Identity(auth.JWTSecret, auth.JWTIssuer))
	files.Get("/", ListFiles(fileSvc))
	files.Post("/", UploadFile(fileSvc))
	files.Get("/:id", GetFile(fileSvc))
	files.Get("/:id/download", DownloadFile(fileSvc))
}
