package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opskit/absence-service/internal/api/http/handlers"
	"github.com/opskit/absence-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Absences       *handlers.AbsencesHandler
	Employees      *handlers.EmployeesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAccount(), cfg.Auth.ChangePassword)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAccount())

	absences := protected.Group("/absences")
	absences.Post("", cfg.Absences.Create)
	absences.Get("", cfg.Absences.List)
	absences.Get("/:id", cfg.Absences.Get)
	absences.Patch("/:id/status", cfg.Absences.UpdateStatus)
	absences.Get("/:id/history", cfg.Absences.History)
	absences.Delete("/:id", cfg.Absences.Delete)

	employees := protected.Group("/employees")
	employees.Post("", cfg.Employees.Create)
	employees.Get("", cfg.Employees.List)
	employees.Get("/:id", cfg.Employees.Get)
	employees.Put("/:id", cfg.Employees.Update)
	employees.Get("/:id/absences", cfg.Absences.ListForEmployee)
}
