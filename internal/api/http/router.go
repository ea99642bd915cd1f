package http

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/spec-kit/donation-service/internal/api/http/handlers"
	"github.com/spec-kit/donation-service/internal/auth"
	"github.com/spec-kit/donation-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Sessions       *handlers.SessionHandler
	Alerts         *handlers.AlertsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// 10 credential attempts per client per minute.
	loginLimiter := NewRateLimiter(rate.Limit(10.0/60.0), 10)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", loginLimiter.Handler(), cfg.Sessions.Signup)
	authGroup.Post("/login", loginLimiter.Handler(), cfg.Sessions.Login)
	authGroup.Post("/logout", cfg.Sessions.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Sessions.Me)

	donors := app.Group("/donors", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleDonor))
	donors.Put("/profile", cfg.Sessions.UpdateDonorProfile)

	alerts := app.Group("/alerts", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	alerts.Get("/counts", cfg.Alerts.Counts)
	alerts.Get("/feed", auth.RequireRole(domain.RoleDonor), cfg.Alerts.Feed)
	alerts.Post("/", auth.RequireRequester(), cfg.Alerts.Create)
	alerts.Get("/", cfg.Alerts.List)
	alerts.Get("/:id", cfg.Alerts.Get)
	alerts.Get("/:id/history", cfg.Alerts.History)
	alerts.Post("/:id/cancel", auth.RequireRequester(), cfg.Alerts.Cancel)
	alerts.Post("/:id/complete", auth.RequireRequester(), cfg.Alerts.Complete)
	alerts.Post("/:id/respond", auth.RequireRole(domain.RoleDonor), cfg.Alerts.Respond)
	alerts.Post("/:id/award", auth.RequireRole(domain.RoleDonor), cfg.Alerts.Award)
	alerts.Post("/:id/withdraw", auth.RequireRole(domain.RoleDonor), cfg.Alerts.Withdraw)
}
