package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"parkwash/backend/services/parking-service/internal/models"
)

const rateColumns = `version, hourly_rate, daily_rate, additional_services, created_at`

// RateRepository stores immutable rate table versions.
type RateRepository struct {
	db *sql.DB
}

// NewRateRepository returns repository.
func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{db: db}
}

// Create publishes a new version. Version and CreatedAt are filled in.
func (r *RateRepository) Create(ctx context.Context, t *models.RateTable) error {
	services := t.AdditionalServices
	if services == nil {
		services = []models.AdditionalService{}
	}
	payload, err := json.Marshal(services)
	if err != nil {
		return fmt.Errorf("encode services: %w", err)
	}

	const query = `
		INSERT INTO rate_tables (hourly_rate, daily_rate, additional_services)
		VALUES ($1, $2, $3::JSONB)
		RETURNING version, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, t.HourlyRate, t.DailyRate, string(payload)).Scan(&t.Version, &t.CreatedAt); err != nil {
		return mapPgError("create rate table", err)
	}
	return nil
}

// Latest returns the most recently published version.
func (r *RateRepository) Latest(ctx context.Context) (*models.RateTable, error) {
	query := `SELECT ` + rateColumns + ` FROM rate_tables ORDER BY version DESC LIMIT 1`
	return r.get(ctx, query)
}

// Get returns a specific version.
func (r *RateRepository) Get(ctx context.Context, version int64) (*models.RateTable, error) {
	query := `SELECT ` + rateColumns + ` FROM rate_tables WHERE version = $1`
	return r.get(ctx, query, version)
}

func (r *RateRepository) get(ctx context.Context, query string, args ...any) (*models.RateTable, error) {
	var (
		t        models.RateTable
		services []byte
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&t.Version, &t.HourlyRate, &t.DailyRate, &services, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRateTableNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(services, &t.AdditionalServices); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	return &t, nil
}
