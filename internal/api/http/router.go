package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Complaints    *handlers.ComplaintsHandler
	Authenticator *auth.Authenticator
	// LoginLimiter guards POST /auth/login; nil disables limiting.
	LoginLimiter fiber.Handler
	Metrics      *observability.Metrics
}

// RegisterRoutes wires HTTP routes. API routes are served both at the root
// and under /api.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	registerAPI(app, cfg)
	api := app.Group("/api")
	api.Get("/", cfg.Health.Root)
	registerAPI(api, cfg)
}

func registerAPI(r fiber.Router, cfg RouteConfig) {
	authn := cfg.Authenticator.Handle

	authGroup := r.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	if cfg.LoginLimiter != nil {
		authGroup.Post("/login", cfg.LoginLimiter, cfg.Auth.Login)
	} else {
		authGroup.Post("/login", cfg.Auth.Login)
	}
	authGroup.Get("/me", authn, auth.Require(auth.AnyAuthenticated), cfg.Auth.Me)

	complaints := r.Group("/complaints", authn)
	anyUser := auth.Require(auth.AnyAuthenticated)
	adminOnly := auth.Require(auth.AdminOnly)

	complaints.Post("/", anyUser, cfg.Complaints.Create)
	complaints.Get("/my", anyUser, cfg.Complaints.ListMine)
	complaints.Get("/", adminOnly, cfg.Complaints.ListAll)
	complaints.Get("/:id", anyUser, cfg.Complaints.Get)
	complaints.Put("/:id", adminOnly, cfg.Complaints.Update)
	complaints.Delete("/:id", adminOnly, cfg.Complaints.Delete)
}
