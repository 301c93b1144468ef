package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-scheduler/internal/api/http/handlers"
	"github.com/spec-kit/maintenance-scheduler/internal/auth"
	"github.com/spec-kit/maintenance-scheduler/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Requests       *handlers.RequestsHandler
	Scheduling     *handlers.SchedulingHandler
	Workers        *handlers.WorkersHandler
	Properties     *handlers.PropertiesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)
	authProtected.Get("/me", cfg.Auth.Me)

	// Tenant surface.
	requests := app.Group("/requests", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleTenant))
	requests.Post("/", cfg.Requests.CreateRequest)
	requests.Get("/", cfg.Requests.ListRequests)
	requests.Get("/:id", cfg.Requests.GetRequest)
	requests.Post("/:id/submit", cfg.Requests.SubmitRequest)
	requests.Post("/:id/close", cfg.Requests.CloseRequest)
	requests.Get("/:id/history", cfg.Requests.ListHistory)

	// Staff surface: superintendents drive the queue, workers report back.
	staff := app.Group("/staff/requests", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RolePropertySuperintendent, domain.RoleWorker))
	staff.Get("/", cfg.Scheduling.ListRequests)
	staff.Get("/:id", cfg.Scheduling.GetRequest)
	staff.Get("/:id/transitions", cfg.Scheduling.ListTransitions)
	staff.Get("/:id/history", cfg.Scheduling.ListHistory)

	superintendent := staff.Group("", auth.RequireRole(domain.RolePropertySuperintendent))
	superintendent.Get("/:id/recommendations", cfg.Scheduling.Recommendations)
	superintendent.Post("/:id/schedule", cfg.Scheduling.Schedule)
	superintendent.Post("/:id/decline", cfg.Scheduling.Decline)
	superintendent.Post("/:id/close", cfg.Scheduling.Close)

	workerOnly := staff.Group("", auth.RequireRole(domain.RoleWorker))
	workerOnly.Post("/:id/complete", cfg.Scheduling.Complete)

	// Roster and registry administration.
	workers := app.Group("/workers", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RolePropertySuperintendent))
	workers.Post("/", cfg.Workers.CreateWorker)
	workers.Get("/", cfg.Workers.ListWorkers)
	workers.Get("/:email", cfg.Workers.GetWorker)
	workers.Patch("/:email/active", cfg.Workers.SetActive)
	workers.Get("/:email/availability", cfg.Workers.Availability)

	properties := app.Group("/properties", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleSystemAdmin))
	properties.Post("/", cfg.Properties.CreateProperty)
	properties.Get("/", cfg.Properties.ListProperties)
	properties.Get("/:code", cfg.Properties.GetProperty)
	properties.Patch("/:code", cfg.Properties.UpdateProperty)
	properties.Post("/:code/units", cfg.Properties.AddUnit)
	properties.Get("/:code/units", cfg.Properties.ListUnits)

	// Administrators provision privileged accounts through the same
	// registration handler, with their principal attached.
	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleSystemAdmin))
	admin.Post("/accounts", cfg.Auth.Register)
}
