package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edulens/edulens-api/internal/config"
	"github.com/edulens/edulens-api/internal/handler"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	LectureHandler   *handler.LectureHandler
	AnalyticsHandler *handler.AnalyticsHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.LectureHandler != nil {
		deps.LectureHandler.Register(api.Group("/lectures"))
	}

	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(api.Group("/teachers"))
	}
}
