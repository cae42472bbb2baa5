package service

import (
	"context"
	"fmt"
	"time"

	"parkwash/backend/services/parking-service/internal/kpi"
	"parkwash/backend/services/parking-service/internal/models"
)

// TransactionRepository defines storage contract for payment transactions.
type TransactionRepository interface {
	Get(ctx context.Context, id int64) (*models.Transaction, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Transaction, error)
}

// TransactionService reads recorded payments.
type TransactionService struct {
	repo   TransactionRepository
	ranges RangeParser
}

// NewTransactionService builds TransactionService.
func NewTransactionService(repo TransactionRepository, ranges RangeParser) *TransactionService {
	return &TransactionService{repo: repo, ranges: ranges}
}

// Get returns a transaction.
func (s *TransactionService) Get(ctx context.Context, id int64) (*models.Transaction, error) {
	return s.repo.Get(ctx, id)
}

// List returns transactions recorded between the given calendar dates.
func (s *TransactionService) List(ctx context.Context, startDate, endDate string) ([]models.Transaction, error) {
	rng, err := s.ranges.Parse(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBetween(ctx, rng.Start, rng.End)
}

// RangeParser turns calendar date strings into ranges in the billing timezone.
type RangeParser struct {
	Location *time.Location
	Now      func() time.Time
}

// Parse builds a normalized range. Parse failures wrap ErrInvalidInput.
func (p RangeParser) Parse(startDate, endDate string) (kpi.DateRange, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	rng, err := kpi.ParseDateRange(startDate, endDate, p.Location, now())
	if err != nil {
		return kpi.DateRange{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return rng, nil
}
