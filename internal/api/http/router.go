package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Complaints *handlers.ComplaintsHandler
	Tasks      *handlers.TasksHandler
	Activity   *handlers.ActivityHandler
	SLA        *handlers.SLAHandler
}

// RegisterRoutes wires HTTP routes. Paths match the UI's API layer.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/complaints", cfg.Complaints.List)
	app.Post("/complaint/process", cfg.Complaints.Process)
	app.Post("/agent/perception", cfg.Complaints.Perceive)
	app.Delete("/complaint/:id", cfg.Complaints.Delete)

	app.Get("/tasks", cfg.Tasks.List)
	app.Get("/tasks/:id/activity", cfg.Tasks.Activity)
	app.Post("/task/:id/status", cfg.Tasks.UpdateStatus)
	app.Delete("/task/:id", cfg.Tasks.Delete)

	app.Get("/activity-logs", cfg.Activity.List)
	app.Get("/sla-breaches", cfg.SLA.List)
}
