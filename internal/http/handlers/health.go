package handlers

import (
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HandleHealth reports process health. No side effects.
func (svc *Service) HandleHealth(c *fiber.Ctx) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return c.JSON(fiber.Map{
		"status":      "ok",
		"service":     "catalogpdf",
		"version":     Version,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime_secs": int64(svc.Uptime()),
		"memory": fiber.Map{
			"alloc_mb": mem.Alloc / 1024 / 1024,
			"sys_mb":   mem.Sys / 1024 / 1024,
		},
	})
}

// HandleRoot lists the service endpoints.
func (svc *Service) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "catalogpdf",
		"version": Version,
		"endpoints": fiber.Map{
			"POST /generate-pdf":     "render caller-supplied HTML to PDF",
			"GET /test-pdf":          "render a canned document",
			"POST /api/generate-pdf": "render a templated product catalog to PDF",
			"POST /api/test-pdf":     "render a sample catalog",
			"GET /health":            "process health",
		},
	})
}
