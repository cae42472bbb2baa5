package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is derived from exit time and payment flag.
type SessionStatus string

const (
	SessionStatusOpen         SessionStatus = "open"
	SessionStatusClosedUnpaid SessionStatus = "closed_unpaid"
	SessionStatusClosedPaid   SessionStatus = "closed_paid"
)

// Session is one parking and/or service visit of a vehicle.
type Session struct {
	ID                 int64           `json:"id"`
	CustomerID         *int64          `json:"customer_id,omitempty"`
	CarID              *int64          `json:"car_id,omitempty"`
	SlotID             *int64          `json:"slot_id,omitempty"`
	EntryTime          time.Time       `json:"entry_time"`
	ExitTime           *time.Time      `json:"exit_time,omitempty"`
	ParkingRequested   bool            `json:"parking_requested"`
	SelectedServiceIDs []int           `json:"selected_service_ids"`
	RateVersion        int64           `json:"rate_version"`
	ParkingPrice       decimal.Decimal `json:"parking_price"`
	AdditionalPrice    decimal.Decimal `json:"additional_price"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	IsPaid             bool            `json:"is_paid"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Status reports where the session is in its lifecycle.
func (s *Session) Status() SessionStatus {
	switch {
	case s.IsPaid:
		return SessionStatusClosedPaid
	case s.ExitTime != nil:
		return SessionStatusClosedUnpaid
	default:
		return SessionStatusOpen
	}
}
