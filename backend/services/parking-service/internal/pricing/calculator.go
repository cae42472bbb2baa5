package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"parkwash/backend/services/parking-service/internal/models"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
	hoursPerDay    = 24

	// A started hour is billed once more than this many minutes of it have elapsed.
	graceMinutes = 15
)

// Quote is the billed duration and parking cost of a stay.
type Quote struct {
	Days           int64           `json:"days"`
	Hours          int64           `json:"hours"`
	Minutes        int64           `json:"minutes"`
	ElapsedMinutes int64           `json:"elapsed_minutes"`
	Duration       string          `json:"duration"`
	Cost           decimal.Decimal `json:"cost"`
}

// Calculator prices stays against a rate table. Open stays are priced up to the clock.
type Calculator struct {
	now func() time.Time
}

// NewCalculator returns a calculator; a nil clock means time.Now.
func NewCalculator(now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{now: now}
}

// Now returns the calculator clock.
func (c *Calculator) Now() time.Time {
	return c.now()
}

// Calculate returns the billed duration and parking cost between entry and exit.
// A nil exit means the stay is still running. Zero entry or a non-positive span
// yields the zero quote.
func (c *Calculator) Calculate(entry time.Time, exit *time.Time, rates models.RateTable) Quote {
	if entry.IsZero() {
		return zeroQuote()
	}

	end := c.now()
	if exit != nil {
		end = *exit
	}
	if !end.After(entry) {
		return zeroQuote()
	}

	elapsed := int64(end.Sub(entry) / time.Minute)
	days := elapsed / minutesPerDay
	remainder := elapsed % minutesPerDay
	hours := remainder / minutesPerHour
	minutes := remainder % minutesPerHour

	if minutes > graceMinutes {
		hours++
	}
	minutes = 0

	if hours >= hoursPerDay {
		days += hours / hoursPerDay
		hours %= hoursPerDay
	}

	cost := rates.DailyRate.Mul(decimal.NewFromInt(days)).
		Add(rates.HourlyRate.Mul(decimal.NewFromInt(hours)))

	return Quote{
		Days:           days,
		Hours:          hours,
		Minutes:        minutes,
		ElapsedMinutes: elapsed,
		Duration:       label(days, hours, minutes),
		Cost:           cost,
	}
}

func zeroQuote() Quote {
	return Quote{Duration: label(0, 0, 0), Cost: decimal.Zero}
}

func label(days, hours, minutes int64) string {
	return fmt.Sprintf("%d days %d hours %d minutes", days, hours, minutes)
}
