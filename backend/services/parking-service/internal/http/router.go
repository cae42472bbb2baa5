package httpserver

import (
	"net/http"

	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/http/handlers"
	"parkwash/backend/services/parking-service/internal/http/middleware"
)

// Routes groups handlers.
type Routes struct {
	Health       http.HandlerFunc
	Metrics      http.Handler
	Live         http.HandlerFunc
	Customers    *handlers.CustomersHandler
	Cars         *handlers.CarsHandler
	Zones        *handlers.ZonesHandler
	Rates        *handlers.RatesHandler
	Sessions     *handlers.SessionsHandler
	Transactions http.HandlerFunc
	Transaction  http.HandlerFunc
	Dashboard    *handlers.DashboardHandler
}

type router struct {
	mux    *http.ServeMux
	auth   func(http.Handler) http.Handler
	logger *zap.Logger
}

// NewRouter registers endpoints. Everything under /api requires a bearer token.
func NewRouter(routes Routes, jwtSecret string, logger *zap.Logger) http.Handler {
	rt := &router{
		mux:    http.NewServeMux(),
		auth:   middleware.AuthMiddleware(jwtSecret),
		logger: logger,
	}

	if routes.Health != nil {
		rt.public("GET /health", routes.Health)
	}
	if routes.Metrics != nil {
		rt.public("GET /metrics", routes.Metrics)
	}
	if routes.Live != nil {
		rt.private("GET /api/live", routes.Live)
	}
	if c := routes.Customers; c != nil {
		rt.private("GET /api/customers", c.List)
		rt.private("POST /api/customers", c.Create)
		rt.private("GET /api/customers/{id}", c.Get)
		rt.private("PUT /api/customers/{id}", c.Update)
		rt.private("DELETE /api/customers/{id}", c.Delete)
	}
	if c := routes.Cars; c != nil {
		rt.private("GET /api/cars", c.List)
		rt.private("POST /api/cars", c.Create)
		rt.private("GET /api/cars/{id}", c.Get)
		rt.private("PUT /api/cars/{id}", c.Update)
		rt.private("DELETE /api/cars/{id}", c.Delete)
	}
	if z := routes.Zones; z != nil {
		rt.private("GET /api/zones", z.List)
		rt.private("POST /api/zones", z.Create)
		rt.private("PUT /api/zones/{id}", z.Update)
		rt.private("DELETE /api/zones/{id}", z.Delete)
		rt.private("GET /api/zones/{id}/slots", z.ListSlots)
		rt.private("POST /api/zones/{id}/slots", z.CreateSlots)
		rt.private("DELETE /api/slots/{id}", z.DeleteSlot)
	}
	if rh := routes.Rates; rh != nil {
		rt.private("GET /api/settings/rates", rh.Current)
		rt.private("PUT /api/settings/rates", rh.Publish)
		rt.private("GET /api/settings/rates/{version}", rh.Version)
	}
	if s := routes.Sessions; s != nil {
		rt.private("POST /api/pricing/quote", s.Quote)
		rt.private("GET /api/sessions", s.List)
		rt.private("POST /api/sessions", s.CheckIn)
		rt.private("GET /api/sessions/{id}", s.Get)
		rt.private("DELETE /api/sessions/{id}", s.Delete)
		rt.private("PUT /api/sessions/{id}/services", s.UpdateServices)
		rt.private("POST /api/sessions/{id}/checkout", s.Checkout)
		rt.private("POST /api/sessions/{id}/pay", s.Pay)
	}
	if routes.Transactions != nil {
		rt.private("GET /api/transactions", routes.Transactions)
	}
	if routes.Transaction != nil {
		rt.private("GET /api/transactions/{id}", routes.Transaction)
	}
	if d := routes.Dashboard; d != nil {
		rt.private("GET /api/dashboard/summary", d.Summary)
		rt.private("GET /api/dashboard/revenue", d.Revenue)
		rt.private("GET /api/dashboard/hourly", d.Hourly)
		rt.private("GET /api/dashboard/segments", d.Segments)
		rt.private("GET /api/dashboard/report", d.Report)
	}
	return rt.mux
}

func (rt *router) public(pattern string, handler http.Handler) {
	rt.mux.Handle(pattern, middleware.Instrument(pattern, rt.logger)(handler))
}

func (rt *router) private(pattern string, handler http.HandlerFunc) {
	rt.public(pattern, rt.auth(handler))
}
