package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"parkwash/backend/services/parking-service/internal/kpi"
	"parkwash/backend/services/parking-service/internal/models"
)

// TransactionRepository reads payment transactions.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository returns repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Get returns transaction by id.
func (r *TransactionRepository) Get(ctx context.Context, id int64) (*models.Transaction, error) {
	const query = `SELECT id, session_id, customer_id, car_id, total_price, created_at FROM transactions WHERE id = $1`
	var t models.Transaction
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.SessionID, &t.CustomerID, &t.CarID, &t.TotalPrice, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListBetween returns transactions recorded inside [from, to], newest first.
func (r *TransactionRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	const query = `
		SELECT id, session_id, customer_id, car_id, total_price, created_at
		FROM transactions
		WHERE created_at BETWEEN $1 AND $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.SessionID, &t.CustomerID, &t.CarID, &t.TotalPrice, &t.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// Records returns transactions inside [from, to] joined with their car and session for reporting.
func (r *TransactionRepository) Records(ctx context.Context, from, to time.Time) ([]kpi.Record, error) {
	const query = `
		SELECT t.id, t.total_price, t.created_at, t.car_id,
		       COALESCE(c.plate_number, ''), COALESCE(c.category, ''),
		       s.entry_time, s.exit_time
		FROM transactions t
		LEFT JOIN cars c ON c.id = t.car_id
		LEFT JOIN parking_sessions s ON s.id = t.session_id
		WHERE t.created_at BETWEEN $1 AND $2
	`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []kpi.Record
	for rows.Next() {
		var rec kpi.Record
		if err := rows.Scan(
			&rec.TransactionID,
			&rec.TotalPrice,
			&rec.CreatedAt,
			&rec.CarID,
			&rec.PlateNumber,
			&rec.Category,
			&rec.EntryTime,
			&rec.ExitTime,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
