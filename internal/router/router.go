package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/codetrack-go-api/internal/config"
	"github.com/noah-isme/codetrack-go-api/internal/handler"
	"github.com/noah-isme/codetrack-go-api/internal/middleware"
	"github.com/noah-isme/codetrack-go-api/internal/models"
	"github.com/noah-isme/codetrack-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ClassHandler        *handler.ClassHandler
	AssignmentHandler   *handler.AssignmentHandler
	SyncHandler         *handler.SyncHandler
	ViolationHandler    *handler.ViolationHandler
	NotificationHandler *handler.NotificationHandler
	UserHandler         *handler.UserHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	teacherOnly := middleware.RequireRole(models.RoleTeacher)

	if deps.ClassHandler != nil {
		classes := api.Group("/classes", jwtMiddleware)
		deps.ClassHandler.Register(classes)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	// Sweep triggers are teacher-only and rate limited; a full sweep walks
	// every pending submission in the system.
	if deps.SyncHandler != nil {
		sync := api.Group("/sync", jwtMiddleware, teacherOnly,
			middleware.RateLimit("sync", 5, time.Minute))
		deps.SyncHandler.Register(sync)
	}

	if deps.ViolationHandler != nil {
		proctor := api.Group("/proctor", jwtMiddleware)
		deps.ViolationHandler.Register(proctor)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware)
		deps.UserHandler.Register(users)
	}
}
