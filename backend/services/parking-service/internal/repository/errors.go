package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrCustomerNotFound indicates missing customer.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrCarNotFound indicates missing car.
	ErrCarNotFound = errors.New("car not found")
	// ErrZoneNotFound indicates missing zone.
	ErrZoneNotFound = errors.New("zone not found")
	// ErrSlotNotFound indicates missing slot.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrRateTableNotFound indicates no published rate table.
	ErrRateTableNotFound = errors.New("rate table not found")
	// ErrSessionNotFound indicates missing session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTransactionNotFound indicates missing transaction.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicate is returned on unique constraint violations.
	ErrDuplicate = errors.New("record already exists")
	// ErrInvalidReference is returned when a referenced row does not exist.
	ErrInvalidReference = errors.New("referenced record does not exist")
	// ErrSlotOccupied is returned when a slot is already taken.
	ErrSlotOccupied = errors.New("slot is occupied")
	// ErrInUse is returned when a record cannot be removed while occupied.
	ErrInUse = errors.New("record is in use")
	// ErrSessionChanged is returned when a session update lost a race with payment or checkout.
	ErrSessionChanged = errors.New("session was modified concurrently")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func mapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, ErrInvalidReference)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
