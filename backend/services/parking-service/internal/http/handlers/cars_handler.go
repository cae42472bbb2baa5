package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/models"
	"parkwash/backend/services/parking-service/internal/service"
)

// CarService is what the car endpoints need.
type CarService interface {
	Create(ctx context.Context, in service.CarInput) (*models.Car, error)
	Get(ctx context.Context, id int64) (*models.Car, error)
	List(ctx context.Context, customerID *int64) ([]models.Car, error)
	Update(ctx context.Context, id int64, in service.CarInput) (*models.Car, error)
	Delete(ctx context.Context, id int64) error
}

// CarsHandler serves /api/cars.
type CarsHandler struct {
	svc    CarService
	logger *zap.Logger
}

// NewCarsHandler builds handler.
func NewCarsHandler(svc CarService, logger *zap.Logger) *CarsHandler {
	return &CarsHandler{svc: svc, logger: logger}
}

type carRequest struct {
	CustomerID  *int64 `json:"customer_id"`
	PlateNumber string `json:"plate_number"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Category    string `json:"category"`
}

func (req carRequest) input() service.CarInput {
	return service.CarInput{
		CustomerID:  req.CustomerID,
		PlateNumber: req.PlateNumber,
		Brand:       req.Brand,
		Model:       req.Model,
		Category:    req.Category,
	}
}

// List handles GET /api/cars?customer_id=.
func (h *CarsHandler) List(w http.ResponseWriter, r *http.Request) {
	customerID, ok := queryID(w, r, "customer_id")
	if !ok {
		return
	}
	cars, err := h.svc.List(r.Context(), customerID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cars": cars})
}

// Create handles POST /api/cars.
func (h *CarsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req carRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	car, err := h.svc.Create(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, car)
}

// Get handles GET /api/cars/{id}.
func (h *CarsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	car, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

// Update handles PUT /api/cars/{id}.
func (h *CarsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req carRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	car, err := h.svc.Update(r.Context(), id, req.input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

// Delete handles DELETE /api/cars/{id}.
func (h *CarsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
