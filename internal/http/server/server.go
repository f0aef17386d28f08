package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"catalogpdf/internal/config"
	"catalogpdf/internal/http/handlers"
	"catalogpdf/internal/http/middleware"
	"catalogpdf/internal/infra/chrome"
)

// Deps carries the shared dependencies the server wires into handlers.
type Deps struct {
	Config config.Config
	Chrome *chrome.Manager
	Redis  *redis.Client
}

// New creates and configures the Fiber app with both route sets: the raw
// HTML gateway at the root and the catalog templater under /api.
func New(deps Deps) *fiber.App {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		Prefork:               cfg.Server.Prefork,
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler(cfg),
	})

	middleware.Register(app, cfg)

	svc := handlers.NewService(cfg, deps.Chrome, deps.Redis)

	app.Get("/", svc.HandleRoot)
	app.Get("/health", svc.HandleHealth)
	app.Post("/generate-pdf", svc.HandleGeneratePDF)
	app.Get("/test-pdf", svc.HandleTestPDF)

	api := app.Group("/api")
	api.Post("/generate-pdf", svc.HandleGenerateCatalogPDF)
	api.Post("/test-pdf", svc.HandleTestCatalogPDF)

	// Ensure all responses, including 404s, return JSON.
	app.Use(func(c *fiber.Ctx) error {
		return handlers.NewError(fiber.StatusNotFound, handlers.CodeNotFound, "Not Found")
	})

	return app
}
