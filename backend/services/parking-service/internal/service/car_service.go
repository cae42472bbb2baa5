package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/models"
)

// CarRepository defines storage contract used by the car service.
type CarRepository interface {
	Create(ctx context.Context, c *models.Car) error
	Get(ctx context.Context, id int64) (*models.Car, error)
	List(ctx context.Context, customerID *int64) ([]models.Car, error)
	Update(ctx context.Context, c *models.Car) error
	Delete(ctx context.Context, id int64) error
}

// CarInput carries editable car fields.
type CarInput struct {
	CustomerID  *int64
	PlateNumber string
	Brand       string
	Model       string
	Category    string
}

// CarService manages vehicles.
type CarService struct {
	repo   CarRepository
	logger *zap.Logger
}

// NewCarService builds CarService.
func NewCarService(repo CarRepository, logger *zap.Logger) *CarService {
	return &CarService{repo: repo, logger: logger}
}

// Create registers a car.
func (s *CarService) Create(ctx context.Context, in CarInput) (*models.Car, error) {
	car, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, car); err != nil {
		return nil, err
	}
	s.logger.Info("car created", zap.Int64("car_id", car.ID), zap.String("plate", car.PlateNumber))
	return car, nil
}

// Get returns a car.
func (s *CarService) Get(ctx context.Context, id int64) (*models.Car, error) {
	return s.repo.Get(ctx, id)
}

// List returns cars, optionally of one customer.
func (s *CarService) List(ctx context.Context, customerID *int64) ([]models.Car, error) {
	return s.repo.List(ctx, customerID)
}

// Update replaces car fields.
func (s *CarService) Update(ctx context.Context, id int64, in CarInput) (*models.Car, error) {
	car, err := in.normalize()
	if err != nil {
		return nil, err
	}
	car.ID = id
	if err := s.repo.Update(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

// Delete removes a car.
func (s *CarService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("car deleted", zap.Int64("car_id", id))
	return nil
}

// NormalizePlate upper-cases a plate and strips spaces and dashes.
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	return strings.NewReplacer(" ", "", "-", "").Replace(plate)
}

func (in CarInput) normalize() (*models.Car, error) {
	c := &models.Car{
		CustomerID:  in.CustomerID,
		PlateNumber: NormalizePlate(in.PlateNumber),
		Brand:       strings.TrimSpace(in.Brand),
		Model:       strings.TrimSpace(in.Model),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
	}
	if c.PlateNumber == "" {
		return nil, invalid("plate_number is required")
	}
	if c.CustomerID != nil && *c.CustomerID <= 0 {
		return nil, invalid("customer_id must be positive")
	}
	return c, nil
}
