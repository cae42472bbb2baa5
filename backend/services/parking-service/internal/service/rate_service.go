package service

import (
	"context"
	"errors"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/metrics"
	"parkwash/backend/services/parking-service/internal/models"
	"parkwash/backend/services/parking-service/internal/repository"
)

const defaultRateCacheSize = 64

// RateRepository defines storage contract for rate table versions.
type RateRepository interface {
	Create(ctx context.Context, t *models.RateTable) error
	Latest(ctx context.Context) (*models.RateTable, error)
	Get(ctx context.Context, version int64) (*models.RateTable, error)
}

// PublishRatesInput is a new set of prices.
type PublishRatesInput struct {
	HourlyRate         decimal.Decimal
	DailyRate          decimal.Decimal
	AdditionalServices []models.AdditionalService
}

// RateService provides rate table lookups with fallback to configured defaults.
// Published versions never change, so they are cached by version.
type RateService struct {
	repo     RateRepository
	cache    *lru.Cache[int64, models.RateTable]
	defaults models.RateTable
	logger   *zap.Logger
}

// NewRateService returns service instance. hourly and daily form rate version 0.
func NewRateService(repo RateRepository, hourly, daily decimal.Decimal, cacheSize int, logger *zap.Logger) (*RateService, error) {
	if cacheSize <= 0 {
		cacheSize = defaultRateCacheSize
	}
	cache, err := lru.New[int64, models.RateTable](cacheSize)
	if err != nil {
		return nil, err
	}
	return &RateService{
		repo:  repo,
		cache: cache,
		defaults: models.RateTable{
			Version:            models.DefaultRateVersion,
			HourlyRate:         hourly,
			DailyRate:          daily,
			AdditionalServices: []models.AdditionalService{},
		},
		logger: logger,
	}, nil
}

// Current returns the latest published table or the defaults when none exists.
func (s *RateService) Current(ctx context.Context) (models.RateTable, error) {
	table, err := s.repo.Latest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrRateTableNotFound) {
			return s.defaults, nil
		}
		return models.RateTable{}, err
	}
	s.cache.Add(table.Version, *table)
	return *table, nil
}

// Version returns a specific table snapshot.
func (s *RateService) Version(ctx context.Context, version int64) (models.RateTable, error) {
	if version == models.DefaultRateVersion {
		return s.defaults, nil
	}
	if table, ok := s.cache.Get(version); ok {
		metrics.RateCacheHits.Inc()
		return table, nil
	}
	metrics.RateCacheMisses.Inc()

	table, err := s.repo.Get(ctx, version)
	if err != nil {
		return models.RateTable{}, err
	}
	s.cache.Add(table.Version, *table)
	return *table, nil
}

// Publish stores a new version. Sessions opened earlier keep their own version.
func (s *RateService) Publish(ctx context.Context, in PublishRatesInput) (models.RateTable, error) {
	table, err := in.validate()
	if err != nil {
		return models.RateTable{}, err
	}
	if err := s.repo.Create(ctx, &table); err != nil {
		return models.RateTable{}, err
	}
	s.cache.Add(table.Version, table)
	s.logger.Info("rate table published",
		zap.Int64("version", table.Version),
		zap.String("hourly_rate", table.HourlyRate.String()),
		zap.String("daily_rate", table.DailyRate.String()),
		zap.Int("services", len(table.AdditionalServices)),
	)
	return table, nil
}

func (in PublishRatesInput) validate() (models.RateTable, error) {
	if in.HourlyRate.IsNegative() {
		return models.RateTable{}, invalid("hourly_rate must not be negative")
	}
	if in.DailyRate.IsNegative() {
		return models.RateTable{}, invalid("daily_rate must not be negative")
	}
	if !isCents(in.HourlyRate) || !isCents(in.DailyRate) {
		return models.RateTable{}, invalid("rates must have at most %d decimal places", moneyScale)
	}

	services := make([]models.AdditionalService, 0, len(in.AdditionalServices))
	seen := make(map[int]struct{}, len(in.AdditionalServices))
	for _, svc := range in.AdditionalServices {
		svc.Name = strings.TrimSpace(svc.Name)
		switch {
		case svc.ID <= 0:
			return models.RateTable{}, invalid("service id must be positive")
		case svc.Name == "":
			return models.RateTable{}, invalid("service %d needs a name", svc.ID)
		case svc.Price.IsNegative():
			return models.RateTable{}, invalid("service %d price must not be negative", svc.ID)
		case !isCents(svc.Price):
			return models.RateTable{}, invalid("service %d price must have at most %d decimal places", svc.ID, moneyScale)
		}
		if _, dup := seen[svc.ID]; dup {
			return models.RateTable{}, invalid("service id %d repeated", svc.ID)
		}
		seen[svc.ID] = struct{}{}
		services = append(services, svc)
	}

	return models.RateTable{
		HourlyRate:         in.HourlyRate,
		DailyRate:          in.DailyRate,
		AdditionalServices: services,
	}, nil
}

// moneyScale matches the NUMERIC(12,2) money columns.
const moneyScale = 2

func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(moneyScale))
}
