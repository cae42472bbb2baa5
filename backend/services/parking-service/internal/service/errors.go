package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput wraps every validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSlotOccupied is returned when the requested slot is reserved or taken.
	ErrSlotOccupied = errors.New("slot is occupied")
	// ErrAlreadyPaid is returned when changing or paying a paid session.
	ErrAlreadyPaid = errors.New("session already paid")
	// ErrSessionClosed is returned when checking out a session that already has an exit time.
	ErrSessionClosed = errors.New("session already closed")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
