package service

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/models"
)

// CustomerRepository defines storage contract used by the customer service.
type CustomerRepository interface {
	Create(ctx context.Context, c *models.Customer) error
	Get(ctx context.Context, id int64) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, c *models.Customer) error
	Delete(ctx context.Context, id int64) error
}

// CustomerInput carries editable customer fields.
type CustomerInput struct {
	Name  string
	Phone string
	Email string
}

// CustomerService manages customers.
type CustomerService struct {
	repo   CustomerRepository
	logger *zap.Logger
}

// NewCustomerService builds CustomerService.
func NewCustomerService(repo CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{repo: repo, logger: logger}
}

// Create registers a customer.
func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	customer, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	s.logger.Info("customer created", zap.Int64("customer_id", customer.ID))
	return customer, nil
}

// Get returns a customer.
func (s *CustomerService) Get(ctx context.Context, id int64) (*models.Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns all customers.
func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	return s.repo.List(ctx)
}

// Update replaces customer fields.
func (s *CustomerService) Update(ctx context.Context, id int64, in CustomerInput) (*models.Customer, error) {
	customer, err := in.normalize()
	if err != nil {
		return nil, err
	}
	customer.ID = id
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Delete removes a customer.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("customer deleted", zap.Int64("customer_id", id))
	return nil
}

func (in CustomerInput) normalize() (*models.Customer, error) {
	c := &models.Customer{
		Name:  strings.TrimSpace(in.Name),
		Phone: strings.TrimSpace(in.Phone),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
	}
	if c.Name == "" {
		return nil, invalid("name is required")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return nil, invalid("email %q is not valid", c.Email)
		}
	}
	return c, nil
}
