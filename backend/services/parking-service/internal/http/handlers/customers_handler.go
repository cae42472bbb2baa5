package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/models"
	"parkwash/backend/services/parking-service/internal/service"
)

// CustomerService is what the customer endpoints need.
type CustomerService interface {
	Create(ctx context.Context, in service.CustomerInput) (*models.Customer, error)
	Get(ctx context.Context, id int64) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, id int64, in service.CustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// CustomersHandler serves /api/customers.
type CustomersHandler struct {
	svc    CustomerService
	logger *zap.Logger
}

// NewCustomersHandler builds handler.
func NewCustomersHandler(svc CustomerService, logger *zap.Logger) *CustomersHandler {
	return &CustomersHandler{svc: svc, logger: logger}
}

type customerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (req customerRequest) input() service.CustomerInput {
	return service.CustomerInput{Name: req.Name, Phone: req.Phone, Email: req.Email}
}

// List handles GET /api/customers.
func (h *CustomersHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"customers": customers})
}

// Create handles POST /api/customers.
func (h *CustomersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	customer, err := h.svc.Create(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

// Get handles GET /api/customers/{id}.
func (h *CustomersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	customer, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Update handles PUT /api/customers/{id}.
func (h *CustomersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req customerRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	customer, err := h.svc.Update(r.Context(), id, req.input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Delete handles DELETE /api/customers/{id}.
func (h *CustomersHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
