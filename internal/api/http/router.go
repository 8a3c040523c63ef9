package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Signature *handlers.SignatureHandler
	Health    *handlers.HealthHandler
	Metrics   *handlers.MetricsHandler
}

// RegisterRoutes wires HTTP routes. POST / is kept as an alias for
// clients built against the original endpoint path.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Post("/sign", cfg.Signature.Create)
	app.Post("/", cfg.Signature.Create)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/metrics", cfg.Metrics.Snapshot)
}
