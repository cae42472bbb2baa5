package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/pricing"
	"parkwash/backend/services/parking-service/internal/service"
)

// SessionService is what the session endpoints need.
type SessionService interface {
	CheckIn(ctx context.Context, in service.CheckInInput) (*service.SessionView, error)
	Get(ctx context.Context, id int64) (*service.SessionView, error)
	List(ctx context.Context, status string, limit int) ([]service.SessionView, error)
	UpdateServices(ctx context.Context, id int64, serviceIDs []int) (*service.SessionView, error)
	Checkout(ctx context.Context, id int64, exit *time.Time) (*service.SessionView, error)
	Pay(ctx context.Context, id int64) (*service.Payment, error)
	Delete(ctx context.Context, id int64) error
	Quote(ctx context.Context, in service.QuoteInput) (pricing.Breakdown, int64, error)
}

// SessionsHandler serves /api/sessions and /api/pricing/quote.
type SessionsHandler struct {
	svc    SessionService
	logger *zap.Logger
}

// NewSessionsHandler builds handler.
func NewSessionsHandler(svc SessionService, logger *zap.Logger) *SessionsHandler {
	return &SessionsHandler{svc: svc, logger: logger}
}

// List handles GET /api/sessions?status=&limit=.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	sessions, err := h.svc.List(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

// CheckIn handles POST /api/sessions.
func (h *SessionsHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID       *int64     `json:"customer_id"`
		CarID            *int64     `json:"car_id"`
		SlotID           *int64     `json:"slot_id"`
		EntryTime        *time.Time `json:"entry_time"`
		ParkingRequested *bool      `json:"parking_requested"`
		ServiceIDs       []int      `json:"service_ids"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	parking := true
	if req.ParkingRequested != nil {
		parking = *req.ParkingRequested
	}

	view, err := h.svc.CheckIn(r.Context(), service.CheckInInput{
		CustomerID:       req.CustomerID,
		CarID:            req.CarID,
		SlotID:           req.SlotID,
		EntryTime:        req.EntryTime,
		ParkingRequested: parking,
		ServiceIDs:       req.ServiceIDs,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Get handles GET /api/sessions/{id}.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	view, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateServices handles PUT /api/sessions/{id}/services.
func (h *SessionsHandler) UpdateServices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		ServiceIDs []int `json:"service_ids"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	view, err := h.svc.UpdateServices(r.Context(), id, req.ServiceIDs)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Checkout handles POST /api/sessions/{id}/checkout with an optional exit_time.
func (h *SessionsHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		ExitTime *time.Time `json:"exit_time"`
	}
	if !decodeJSON(w, r, &req, true) {
		return
	}
	view, err := h.svc.Checkout(r.Context(), id, req.ExitTime)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Pay handles POST /api/sessions/{id}/pay.
func (h *SessionsHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	payment, err := h.svc.Pay(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.logger.Info("payment recorded by user",
		zap.Int64("session_id", id),
		zap.Int64("transaction_id", payment.Transaction.ID),
		actor(r),
	)
	writeJSON(w, http.StatusOK, payment)
}

// Delete handles DELETE /api/sessions/{id}.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Quote handles POST /api/pricing/quote.
func (h *SessionsHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntryTime        *time.Time `json:"entry_time"`
		ExitTime         *time.Time `json:"exit_time"`
		ParkingRequested *bool      `json:"parking_requested"`
		ServiceIDs       []int      `json:"service_ids"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	in := service.QuoteInput{ExitTime: req.ExitTime, ParkingRequested: true, ServiceIDs: req.ServiceIDs}
	if req.EntryTime != nil {
		in.EntryTime = *req.EntryTime
	}
	if req.ParkingRequested != nil {
		in.ParkingRequested = *req.ParkingRequested
	}

	breakdown, version, err := h.svc.Quote(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rate_version": version,
		"pricing":      breakdown,
	})
}
