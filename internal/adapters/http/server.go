// Package http exposes the workbench API over Fiber.
package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lanternhq/lantern/internal/core/domain"
	"github.com/lanternhq/lantern/internal/core/ports"
)

// NewServer assembles the Fiber app: management API under /api/v1, a health
// endpoint, and the subdomain proxy in front of everything else.
func NewServer(runtime ports.WorkbenchRuntime, builder ports.ImageBuilder, defaults domain.Blueprint, baseDomain string) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(requestLogger())

	proxy := NewProxyHandler(runtime, baseDomain)
	app.Use(proxy.ProxyRequest)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	handler := NewWorkbenchHandler(runtime, builder, defaults)

	api := app.Group("/api")
	v1 := api.Group("/v1")

	workbenches := v1.Group("/workbenches")
	workbenches.Get("/", handler.ListWorkbenches)
	workbenches.Post("/", handler.LaunchWorkbench)
	workbenches.Get("/:id", handler.GetWorkbench)
	workbenches.Delete("/:id", handler.StopWorkbench)
	workbenches.Get("/:id/logs", handler.GetWorkbenchLogs)

	return app
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}
