package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction records a payment for a session.
type Transaction struct {
	ID         int64           `json:"id"`
	SessionID  *int64          `json:"session_id,omitempty"`
	CustomerID *int64          `json:"customer_id,omitempty"`
	CarID      *int64          `json:"car_id,omitempty"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}
