package models

import "time"

// Zone groups parking slots.
type Zone struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Slot is a single parking place inside a zone.
type Slot struct {
	ID         int64  `json:"id"`
	ZoneID     int64  `json:"zone_id"`
	Code       string `json:"code"`
	IsOccupied bool   `json:"is_occupied"`
	SessionID  *int64 `json:"session_id,omitempty"`
}
