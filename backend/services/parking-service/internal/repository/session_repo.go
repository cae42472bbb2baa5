package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parkwash/backend/services/parking-service/internal/models"
)

const sessionColumns = `
	id, customer_id, car_id, slot_id, entry_time, exit_time, parking_requested, selected_service_ids,
	rate_version, parking_price, additional_price, total_price, is_paid, paid_at, created_at, updated_at
`

const defaultSessionLimit = 100

// SessionFilter narrows session listings.
type SessionFilter struct {
	Status models.SessionStatus
	Limit  int
}

// SessionRepository handles persistence of parking sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session and, when a slot is given, occupies it in the same transaction.
// The slot is only taken if it is still free.
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	serviceIDs, err := encodeServiceIDs(s.SelectedServiceIDs)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insert = `
		INSERT INTO parking_sessions (
			customer_id, car_id, slot_id, entry_time, parking_requested, selected_service_ids,
			rate_version, parking_price, additional_price, total_price
		)
		VALUES ($1, $2, $3, $4, $5, $6::JSONB, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, insert,
		s.CustomerID,
		s.CarID,
		s.SlotID,
		s.EntryTime,
		s.ParkingRequested,
		serviceIDs,
		s.RateVersion,
		s.ParkingPrice,
		s.AdditionalPrice,
		s.TotalPrice,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return mapPgError("create session", err)
	}

	if s.SlotID != nil {
		if err := occupySlot(ctx, tx, *s.SlotID, s.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func occupySlot(ctx context.Context, tx *sql.Tx, slotID, sessionID int64) error {
	const query = `
		UPDATE parking_slots SET is_occupied = TRUE, session_id = $2
		WHERE id = $1 AND NOT is_occupied
	`
	result, err := tx.ExecContext(ctx, query, slotID, sessionID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM parking_slots WHERE id = $1)`, slotID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrSlotNotFound
	}
	return ErrSlotOccupied
}

func releaseSlot(ctx context.Context, tx *sql.Tx, sessionID int64) error {
	const query = `UPDATE parking_slots SET is_occupied = FALSE, session_id = NULL WHERE session_id = $1`
	_, err := tx.ExecContext(ctx, query, sessionID)
	return err
}

// Get returns session by id.
func (r *SessionRepository) Get(ctx context.Context, id int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE id = $1`
	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

// List returns latest sessions matching the filter.
func (r *SessionRepository) List(ctx context.Context, filter SessionFilter) ([]models.Session, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSessionLimit
	}

	var condition string
	switch filter.Status {
	case models.SessionStatusOpen:
		condition = `WHERE exit_time IS NULL AND NOT is_paid`
	case models.SessionStatusClosedUnpaid:
		condition = `WHERE exit_time IS NOT NULL AND NOT is_paid`
	case models.SessionStatusClosedPaid:
		condition = `WHERE is_paid`
	}

	query := `SELECT ` + sessionColumns + ` FROM parking_sessions ` + condition + ` ORDER BY entry_time DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// UpdateServices stores a new service selection and prices on an unpaid session.
func (r *SessionRepository) UpdateServices(ctx context.Context, s *models.Session) error {
	serviceIDs, err := encodeServiceIDs(s.SelectedServiceIDs)
	if err != nil {
		return err
	}
	const query = `
		UPDATE parking_sessions
		SET selected_service_ids = $2::JSONB,
		    parking_price = $3,
		    additional_price = $4,
		    total_price = $5,
		    updated_at = NOW()
		WHERE id = $1 AND NOT is_paid
		RETURNING updated_at
	`
	err = r.db.QueryRowContext(ctx, query, s.ID, serviceIDs, s.ParkingPrice, s.AdditionalPrice, s.TotalPrice).
		Scan(&s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionChanged
	}
	return err
}

// Checkout sets the exit time and final prices of an open session and frees its slot.
func (r *SessionRepository) Checkout(ctx context.Context, s *models.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
		UPDATE parking_sessions
		SET exit_time = $2,
		    parking_price = $3,
		    additional_price = $4,
		    total_price = $5,
		    updated_at = NOW()
		WHERE id = $1 AND exit_time IS NULL AND NOT is_paid
		RETURNING updated_at
	`
	err = tx.QueryRowContext(ctx, query, s.ID, s.ExitTime, s.ParkingPrice, s.AdditionalPrice, s.TotalPrice).
		Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionChanged
		}
		return err
	}
	if err := releaseSlot(ctx, tx, s.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// MarkPaid flips the payment flag, stores final prices, frees the slot and records the
// transaction atomically. Sessions that are already paid are left untouched.
func (r *SessionRepository) MarkPaid(ctx context.Context, s *models.Session) (*models.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const update = `
		UPDATE parking_sessions
		SET is_paid = TRUE,
		    paid_at = $2,
		    exit_time = $3,
		    parking_price = $4,
		    additional_price = $5,
		    total_price = $6,
		    updated_at = NOW()
		WHERE id = $1 AND NOT is_paid
		RETURNING updated_at
	`
	err = tx.QueryRowContext(ctx, update, s.ID, s.PaidAt, s.ExitTime, s.ParkingPrice, s.AdditionalPrice, s.TotalPrice).
		Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionChanged
		}
		return nil, err
	}
	if err := releaseSlot(ctx, tx, s.ID); err != nil {
		return nil, err
	}

	sessionID := s.ID
	txn := &models.Transaction{
		SessionID:  &sessionID,
		CustomerID: s.CustomerID,
		CarID:      s.CarID,
		TotalPrice: s.TotalPrice,
	}
	const insert = `
		INSERT INTO transactions (session_id, customer_id, car_id, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, insert, txn.SessionID, txn.CustomerID, txn.CarID, txn.TotalPrice, s.PaidAt).
		Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return nil, mapPgError("create transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return txn, nil
}

// Delete removes a session and frees its slot. Transactions keep their rows.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := releaseSlot(ctx, tx, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM parking_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return tx.Commit()
}

// CountUnpaid returns the number of sessions not yet paid, regardless of dates.
func (r *SessionRepository) CountUnpaid(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_sessions WHERE NOT is_paid`).Scan(&count)
	return count, err
}

// EntryTimes returns entry timestamps of sessions started inside [from, to].
func (r *SessionRepository) EntryTimes(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	const query = `SELECT entry_time FROM parking_sessions WHERE entry_time BETWEEN $1 AND $2`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}

func encodeServiceIDs(ids []int) (string, error) {
	if ids == nil {
		ids = []int{}
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode service ids: %w", err)
	}
	return string(payload), nil
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		s          models.Session
		serviceIDs []byte
	)
	err := row.Scan(
		&s.ID,
		&s.CustomerID,
		&s.CarID,
		&s.SlotID,
		&s.EntryTime,
		&s.ExitTime,
		&s.ParkingRequested,
		&serviceIDs,
		&s.RateVersion,
		&s.ParkingPrice,
		&s.AdditionalPrice,
		&s.TotalPrice,
		&s.IsPaid,
		&s.PaidAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(serviceIDs, &s.SelectedServiceIDs); err != nil {
		return nil, fmt.Errorf("decode service ids: %w", err)
	}
	return &s, nil
}
