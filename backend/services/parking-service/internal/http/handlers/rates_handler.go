package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/models"
	"parkwash/backend/services/parking-service/internal/service"
)

// RateService is what the settings endpoints need.
type RateService interface {
	Current(ctx context.Context) (models.RateTable, error)
	Version(ctx context.Context, version int64) (models.RateTable, error)
	Publish(ctx context.Context, in service.PublishRatesInput) (models.RateTable, error)
}

// RatesHandler serves /api/settings/rates.
type RatesHandler struct {
	svc    RateService
	logger *zap.Logger
}

// NewRatesHandler builds handler.
func NewRatesHandler(svc RateService, logger *zap.Logger) *RatesHandler {
	return &RatesHandler{svc: svc, logger: logger}
}

// Current handles GET /api/settings/rates.
func (h *RatesHandler) Current(w http.ResponseWriter, r *http.Request) {
	table, err := h.svc.Current(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// Version handles GET /api/settings/rates/{version}.
func (h *RatesHandler) Version(w http.ResponseWriter, r *http.Request) {
	version, err := strconv.ParseInt(r.PathValue("version"), 10, 64)
	if err != nil || version < 0 {
		writeError(w, http.StatusBadRequest, "invalid version")
		return
	}
	table, err := h.svc.Version(r.Context(), version)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// Publish handles PUT /api/settings/rates.
func (h *RatesHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HourlyRate         *decimal.Decimal           `json:"hourly_rate"`
		DailyRate          *decimal.Decimal           `json:"daily_rate"`
		AdditionalServices []models.AdditionalService `json:"additional_services"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if req.HourlyRate == nil || req.DailyRate == nil {
		writeError(w, http.StatusBadRequest, "hourly_rate and daily_rate are required")
		return
	}

	table, err := h.svc.Publish(r.Context(), service.PublishRatesInput{
		HourlyRate:         *req.HourlyRate,
		DailyRate:          *req.DailyRate,
		AdditionalServices: req.AdditionalServices,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.logger.Info("rates published by user", zap.Int64("version", table.Version), actor(r))
	writeJSON(w, http.StatusCreated, table)
}
