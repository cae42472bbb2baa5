package kpi

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a payment transaction joined with its vehicle and session.
type Record struct {
	TransactionID int64
	TotalPrice    decimal.Decimal
	CreatedAt     time.Time
	CarID         *int64
	PlateNumber   string
	Category      string
	EntryTime     *time.Time
	ExitTime      *time.Time
}

// Summary is the executive dashboard figure set.
type Summary struct {
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	TotalUniqueVehicles int             `json:"total_unique_vehicles"`
	ActiveSessionCount  int64           `json:"active_session_count"`
	AverageDurationMs   int64           `json:"average_duration_ms"`
}

// DayRevenue is revenue collected on one calendar day.
type DayRevenue struct {
	Date         string          `json:"date"`
	Revenue      decimal.Decimal `json:"revenue"`
	Transactions int             `json:"transactions"`
}

// HourCount is the number of sessions started in one hour of the day.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Segment is revenue grouped by vehicle category.
type Segment struct {
	Category     string          `json:"category"`
	Revenue      decimal.Decimal `json:"revenue"`
	Transactions int             `json:"transactions"`
	Vehicles     int             `json:"vehicles"`
}

// Summarize computes revenue, distinct vehicles and average stay over the records created
// inside rng. activeSessions is the current unpaid session count and is reported as is.
func Summarize(records []Record, rng DateRange, activeSessions int64) Summary {
	summary := Summary{
		TotalRevenue:       decimal.Zero,
		ActiveSessionCount: activeSessions,
	}

	vehicles := make(map[string]struct{})
	var totalMs, durations int64

	for _, rec := range records {
		if !rng.Contains(rec.CreatedAt) {
			continue
		}
		summary.TotalRevenue = summary.TotalRevenue.Add(rec.TotalPrice)

		if key := vehicleKey(rec); key != "" {
			vehicles[key] = struct{}{}
		}

		if rec.EntryTime != nil && rec.ExitTime != nil && rec.ExitTime.After(*rec.EntryTime) {
			totalMs += rec.ExitTime.Sub(*rec.EntryTime).Milliseconds()
			durations++
		}
	}

	summary.TotalUniqueVehicles = len(vehicles)
	if durations > 0 {
		summary.AverageDurationMs = totalMs / durations
	}
	return summary
}

// RevenueByDay groups revenue by the calendar day the transaction was recorded, ascending.
// Days without transactions are omitted.
func RevenueByDay(records []Record, rng DateRange) []DayRevenue {
	loc := rng.Location()
	byDay := make(map[string]*DayRevenue)
	for _, rec := range records {
		if !rng.Contains(rec.CreatedAt) {
			continue
		}
		day := rec.CreatedAt.In(loc).Format(dateLayout)
		entry, ok := byDay[day]
		if !ok {
			entry = &DayRevenue{Date: day, Revenue: decimal.Zero}
			byDay[day] = entry
		}
		entry.Revenue = entry.Revenue.Add(rec.TotalPrice)
		entry.Transactions++
	}

	out := make([]DayRevenue, 0, len(byDay))
	for _, entry := range byDay {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// SessionsByHour counts session entries per hour of day. The result always has 24 buckets.
func SessionsByHour(entries []time.Time, rng DateRange) []HourCount {
	loc := rng.Location()
	out := make([]HourCount, 24)
	for hour := range out {
		out[hour].Hour = hour
	}
	for _, entry := range entries {
		if entry.IsZero() || !rng.Contains(entry) {
			continue
		}
		out[entry.In(loc).Hour()].Count++
	}
	return out
}

// SegmentByCategory groups revenue by vehicle category, highest revenue first.
// Records without a category are left out; their number is returned as dropped.
func SegmentByCategory(records []Record, rng DateRange) (segments []Segment, dropped int) {
	type bucket struct {
		segment  Segment
		vehicles map[string]struct{}
	}
	byCategory := make(map[string]*bucket)

	for _, rec := range records {
		if !rng.Contains(rec.CreatedAt) {
			continue
		}
		category := strings.TrimSpace(rec.Category)
		if category == "" {
			dropped++
			continue
		}
		b, ok := byCategory[category]
		if !ok {
			b = &bucket{
				segment:  Segment{Category: category, Revenue: decimal.Zero},
				vehicles: make(map[string]struct{}),
			}
			byCategory[category] = b
		}
		b.segment.Revenue = b.segment.Revenue.Add(rec.TotalPrice)
		b.segment.Transactions++
		if key := vehicleKey(rec); key != "" {
			b.vehicles[key] = struct{}{}
		}
	}

	segments = make([]Segment, 0, len(byCategory))
	for _, b := range byCategory {
		b.segment.Vehicles = len(b.vehicles)
		segments = append(segments, b.segment)
	}
	sort.Slice(segments, func(i, j int) bool {
		if c := segments[i].Revenue.Cmp(segments[j].Revenue); c != 0 {
			return c > 0
		}
		return segments[i].Category < segments[j].Category
	})
	return segments, dropped
}

// vehicleKey prefers the plate number and falls back to the car reference.
func vehicleKey(rec Record) string {
	if plate := strings.ToUpper(strings.TrimSpace(rec.PlateNumber)); plate != "" {
		return "plate:" + plate
	}
	if rec.CarID != nil {
		return "car:" + strconv.FormatInt(*rec.CarID, 10)
	}
	return ""
}
