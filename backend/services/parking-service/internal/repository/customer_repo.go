package repository

import (
	"context"
	"database/sql"
	"errors"

	"parkwash/backend/services/parking-service/internal/models"
)

// CustomerRepository persists customers.
type CustomerRepository struct {
	db *sql.DB
}

// NewCustomerRepository returns repository.
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create inserts a customer.
func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	const query = `
		INSERT INTO customers (name, phone, email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, c.Name, c.Phone, c.Email).Scan(&c.ID, &c.CreatedAt); err != nil {
		return mapPgError("create customer", err)
	}
	return nil
}

// Get returns customer by id.
func (r *CustomerRepository) Get(ctx context.Context, id int64) (*models.Customer, error) {
	const query = `SELECT id, name, phone, email, created_at FROM customers WHERE id = $1`
	var c models.Customer
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns customers ordered by name.
func (r *CustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	const query = `SELECT id, name, phone, email, created_at FROM customers ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// Update overwrites customer fields.
func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	const query = `
		UPDATE customers SET name = $2, phone = $3, email = $4
		WHERE id = $1
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, c.ID, c.Name, c.Phone, c.Email).Scan(&c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCustomerNotFound
		}
		return mapPgError("update customer", err)
	}
	return nil
}

// Delete removes customer; owned cars and sessions keep their rows without the reference.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, `DELETE FROM customers WHERE id = $1`, id, ErrCustomerNotFound)
}

func deleteByID(ctx context.Context, db *sql.DB, query string, id int64, notFound error) error {
	result, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return mapPgError("delete", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
