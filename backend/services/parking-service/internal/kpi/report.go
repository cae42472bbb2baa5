package kpi

import "time"

// Report bundles every dashboard projection for one date range.
type Report struct {
	Start            time.Time    `json:"start"`
	End              time.Time    `json:"end"`
	Summary          Summary      `json:"summary"`
	RevenueByDay     []DayRevenue `json:"revenue_by_day"`
	SessionsByHour   []HourCount  `json:"sessions_by_hour"`
	Segments         []Segment    `json:"segments"`
	UncategorizedTxs int          `json:"uncategorized_transactions"`
}

// BuildReport runs all projections over the same inputs.
func BuildReport(records []Record, entries []time.Time, rng DateRange, activeSessions int64) Report {
	segments, dropped := SegmentByCategory(records, rng)
	return Report{
		Start:            rng.Start,
		End:              rng.End,
		Summary:          Summarize(records, rng, activeSessions),
		RevenueByDay:     RevenueByDay(records, rng),
		SessionsByHour:   SessionsByHour(entries, rng),
		Segments:         segments,
		UncategorizedTxs: dropped,
	}
}
