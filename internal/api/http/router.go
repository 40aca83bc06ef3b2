package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/query-desk/internal/api/http/handlers"
	"github.com/spec-kit/query-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Queries        *handlers.QueriesHandler
	Support        *handlers.SupportHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Accounts.Register)
	authGroup.Post("/login", cfg.Accounts.Login)

	client := app.Group("/client", cfg.AuthMiddleware.Handle, auth.RequireClient())
	client.Post("/queries", cfg.Queries.Submit)
	client.Get("/queries", cfg.Queries.ListOwn)
	client.Get("/queries/:id", cfg.Queries.GetOwn)
	client.Get("/reports/status", cfg.Reports.ClientStatusCounts)

	support := app.Group("/support", cfg.AuthMiddleware.Handle, auth.RequireSupport())
	support.Get("/queries", cfg.Support.ListAll)
	support.Get("/queries/:id", cfg.Support.Get)
	support.Patch("/queries/:id/status", cfg.Support.UpdateStatus)
	support.Patch("/queries/:id/assignee", cfg.Support.Assign)
	support.Get("/reports/status", cfg.Reports.StatusCounts)
	support.Get("/reports/priority", cfg.Reports.PriorityCounts)
	support.Get("/reports/daily", cfg.Reports.DailyCounts)
}
