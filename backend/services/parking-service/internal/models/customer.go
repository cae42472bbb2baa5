package models

import "time"

// Customer is a person who parks or washes a car.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Car is a vehicle, optionally owned by a customer.
type Car struct {
	ID          int64     `json:"id"`
	CustomerID  *int64    `json:"customer_id,omitempty"`
	PlateNumber string    `json:"plate_number"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}
