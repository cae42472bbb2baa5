package repository

import (
	"context"
	"database/sql"
	"errors"

	"parkwash/backend/services/parking-service/internal/models"
)

const carColumns = `id, customer_id, plate_number, brand, model, category, created_at`

// CarRepository persists cars.
type CarRepository struct {
	db *sql.DB
}

// NewCarRepository returns repository.
func NewCarRepository(db *sql.DB) *CarRepository {
	return &CarRepository{db: db}
}

// Create inserts a car.
func (r *CarRepository) Create(ctx context.Context, c *models.Car) error {
	const query = `
		INSERT INTO cars (customer_id, plate_number, brand, model, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, c.CustomerID, c.PlateNumber, c.Brand, c.Model, c.Category).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return mapPgError("create car", err)
	}
	return nil
}

// Get returns car by id.
func (r *CarRepository) Get(ctx context.Context, id int64) (*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`
	c, err := scanCar(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns cars, optionally only those of one customer.
func (r *CarRepository) List(ctx context.Context, customerID *int64) ([]models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE ($1::BIGINT IS NULL OR customer_id = $1) ORDER BY plate_number`
	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := []models.Car{}
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, *c)
	}
	return cars, rows.Err()
}

// Update overwrites car fields.
func (r *CarRepository) Update(ctx context.Context, c *models.Car) error {
	const query = `
		UPDATE cars SET customer_id = $2, plate_number = $3, brand = $4, model = $5, category = $6
		WHERE id = $1
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, c.ID, c.CustomerID, c.PlateNumber, c.Brand, c.Model, c.Category).
		Scan(&c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCarNotFound
		}
		return mapPgError("update car", err)
	}
	return nil
}

// Delete removes car.
func (r *CarRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, `DELETE FROM cars WHERE id = $1`, id, ErrCarNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCar(row rowScanner) (*models.Car, error) {
	var c models.Car
	if err := row.Scan(&c.ID, &c.CustomerID, &c.PlateNumber, &c.Brand, &c.Model, &c.Category, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
