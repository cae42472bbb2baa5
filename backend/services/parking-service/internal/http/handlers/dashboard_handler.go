package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/kpi"
)

// DashboardService is what the dashboard endpoints need.
type DashboardService interface {
	ParseRange(startDate, endDate string) (kpi.DateRange, error)
	Summary(ctx context.Context, rng kpi.DateRange) (kpi.Summary, error)
	RevenueByDay(ctx context.Context, rng kpi.DateRange) ([]kpi.DayRevenue, error)
	SessionsByHour(ctx context.Context, rng kpi.DateRange) ([]kpi.HourCount, error)
	Segments(ctx context.Context, rng kpi.DateRange) ([]kpi.Segment, error)
	Report(ctx context.Context, rng kpi.DateRange) (kpi.Report, error)
}

// DashboardHandler serves /api/dashboard/*. Every endpoint takes start_date and end_date.
type DashboardHandler struct {
	svc    DashboardService
	logger *zap.Logger
}

// NewDashboardHandler builds handler.
func NewDashboardHandler(svc DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

func (h *DashboardHandler) serve(w http.ResponseWriter, r *http.Request, load func(ctx context.Context, rng kpi.DateRange) (interface{}, error)) {
	q := r.URL.Query()
	rng, err := h.svc.ParseRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	payload, err := load(r.Context(), rng)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// Summary handles GET /api/dashboard/summary.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, rng kpi.DateRange) (interface{}, error) {
		return h.svc.Summary(ctx, rng)
	})
}

// Revenue handles GET /api/dashboard/revenue.
func (h *DashboardHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, rng kpi.DateRange) (interface{}, error) {
		days, err := h.svc.RevenueByDay(ctx, rng)
		return map[string]interface{}{"days": days}, err
	})
}

// Hourly handles GET /api/dashboard/hourly.
func (h *DashboardHandler) Hourly(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, rng kpi.DateRange) (interface{}, error) {
		hours, err := h.svc.SessionsByHour(ctx, rng)
		return map[string]interface{}{"hours": hours}, err
	})
}

// Segments handles GET /api/dashboard/segments.
func (h *DashboardHandler) Segments(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, rng kpi.DateRange) (interface{}, error) {
		segments, err := h.svc.Segments(ctx, rng)
		return map[string]interface{}{"segments": segments}, err
	})
}

// Report handles GET /api/dashboard/report.
func (h *DashboardHandler) Report(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, rng kpi.DateRange) (interface{}, error) {
		return h.svc.Report(ctx, rng)
	})
}
