package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/todo-service/internal/api/http/handlers"
	"github.com/spec-kit/todo-service/internal/auth"
	"github.com/spec-kit/todo-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Todos       *handlers.TodosHandler
	Gate        *auth.Gate
	AuthLimiter *ratelimit.IPLimiter
}

// RegisterRoutes wires HTTP routes. The gate runs in front of every route;
// it lets public paths through on its own.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Gate.Handle)

	api := app.Group("/api")
	api.Get("/health", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)

	authGroup := api.Group("/auth", cfg.AuthLimiter.Middleware())
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	todos := api.Group("/todos", auth.RequirePrincipal())
	todos.Get("", cfg.Todos.List)
	todos.Post("", cfg.Todos.Create)
	todos.Patch("/:id/toggle", cfg.Todos.Toggle)
	todos.Delete("/:id", cfg.Todos.Delete)
}
