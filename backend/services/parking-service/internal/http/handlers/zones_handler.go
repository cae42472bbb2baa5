package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/models"
)

// ZoneService is what the zone and slot endpoints need.
type ZoneService interface {
	CreateZone(ctx context.Context, name, description string) (*models.Zone, error)
	ListZones(ctx context.Context) ([]models.Zone, error)
	UpdateZone(ctx context.Context, id int64, name, description string) (*models.Zone, error)
	DeleteZone(ctx context.Context, id int64) error
	CreateSlots(ctx context.Context, zoneID int64, codes []string) ([]models.Slot, error)
	ListSlots(ctx context.Context, zoneID int64, onlyAvailable bool) ([]models.Slot, error)
	DeleteSlot(ctx context.Context, id int64) error
}

// ZonesHandler serves /api/zones and /api/slots.
type ZonesHandler struct {
	svc    ZoneService
	logger *zap.Logger
}

// NewZonesHandler builds handler.
func NewZonesHandler(svc ZoneService, logger *zap.Logger) *ZonesHandler {
	return &ZonesHandler{svc: svc, logger: logger}
}

type zoneRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List handles GET /api/zones.
func (h *ZonesHandler) List(w http.ResponseWriter, r *http.Request) {
	zones, err := h.svc.ListZones(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"zones": zones})
}

// Create handles POST /api/zones.
func (h *ZonesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	zone, err := h.svc.CreateZone(r.Context(), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, zone)
}

// Update handles PUT /api/zones/{id}.
func (h *ZonesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req zoneRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	zone, err := h.svc.UpdateZone(r.Context(), id, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, zone)
}

// Delete handles DELETE /api/zones/{id}.
func (h *ZonesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteZone(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSlots handles GET /api/zones/{id}/slots?available=true.
func (h *ZonesHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	onlyAvailable := r.URL.Query().Get("available") == "true"
	slots, err := h.svc.ListSlots(r.Context(), id, onlyAvailable)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"slots": slots})
}

// CreateSlots handles POST /api/zones/{id}/slots.
func (h *ZonesHandler) CreateSlots(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Codes []string `json:"codes"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	slots, err := h.svc.CreateSlots(r.Context(), id, req.Codes)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"slots": slots})
}

// DeleteSlot handles DELETE /api/slots/{id}.
func (h *ZonesHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteSlot(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
