package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-sla/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Tickets   *handlers.TicketsHandler
	Customers *handlers.CustomersHandler
	SLA       *handlers.SLAHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/escalate", cfg.Tickets.EscalateTicket)
	tickets.Get("/:id/logs", cfg.Tickets.ListTicketLogs)

	customers := api.Group("/customers")
	customers.Post("/", cfg.Customers.CreateCustomer)
	customers.Get("/:id", cfg.Customers.GetCustomer)

	api.Get("/sla/targets", cfg.SLA.Targets)
	api.Get("/sla/breaches", cfg.SLA.Breaches)
	api.Get("/reports/sla", cfg.SLA.Report)
}
