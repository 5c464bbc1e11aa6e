package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"companyapi/internal/service"
)

// RegisterRoutes attaches the company API, health probes and the landing
// page to the provided Fiber app.
func RegisterRoutes(app *fiber.App, svc service.CompanyService, store Pinger) {
	app.Get("/", Home())
	app.Get("/health", HealthCheck(store))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api/companies")
	api.Get("/", ListCompanies(svc))
	api.Post("/", CreateCompany(svc))
	api.Get("/:id", GetCompany(svc))
	api.Delete("/:id", DeleteCompany(svc))
}

// Metrics exposes the given gatherer in the Prometheus text format.
func Metrics(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
