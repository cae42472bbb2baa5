package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"parkwash/backend/services/parking-service/internal/kpi"
)

// ReportSource loads transaction records for reporting.
type ReportSource interface {
	Records(ctx context.Context, from, to time.Time) ([]kpi.Record, error)
}

// SessionStats provides session figures the dashboard needs.
type SessionStats interface {
	CountUnpaid(ctx context.Context) (int64, error)
	EntryTimes(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// DashboardService computes KPI projections over a date range.
type DashboardService struct {
	records ReportSource
	stats   SessionStats
	ranges  RangeParser
	logger  *zap.Logger
}

// NewDashboardService builds DashboardService.
func NewDashboardService(records ReportSource, stats SessionStats, ranges RangeParser, logger *zap.Logger) *DashboardService {
	return &DashboardService{records: records, stats: stats, ranges: ranges, logger: logger}
}

// ParseRange builds a range from calendar date strings.
func (s *DashboardService) ParseRange(startDate, endDate string) (kpi.DateRange, error) {
	return s.ranges.Parse(startDate, endDate)
}

// Summary returns the executive summary.
func (s *DashboardService) Summary(ctx context.Context, rng kpi.DateRange) (kpi.Summary, error) {
	var (
		records []kpi.Record
		unpaid  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		records, err = s.records.Records(gctx, rng.Start, rng.End)
		return err
	})
	g.Go(func() (err error) {
		unpaid, err = s.stats.CountUnpaid(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return kpi.Summary{}, err
	}
	return kpi.Summarize(records, rng, unpaid), nil
}

// RevenueByDay returns daily revenue.
func (s *DashboardService) RevenueByDay(ctx context.Context, rng kpi.DateRange) ([]kpi.DayRevenue, error) {
	records, err := s.records.Records(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	return kpi.RevenueByDay(records, rng), nil
}

// SessionsByHour returns the 24 hourly entry buckets.
func (s *DashboardService) SessionsByHour(ctx context.Context, rng kpi.DateRange) ([]kpi.HourCount, error) {
	entries, err := s.stats.EntryTimes(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	return kpi.SessionsByHour(entries, rng), nil
}

// Segments returns revenue by vehicle category.
func (s *DashboardService) Segments(ctx context.Context, rng kpi.DateRange) ([]kpi.Segment, error) {
	records, err := s.records.Records(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	segments, dropped := kpi.SegmentByCategory(records, rng)
	s.logDropped(dropped)
	return segments, nil
}

// Report returns every projection, reading its inputs concurrently.
func (s *DashboardService) Report(ctx context.Context, rng kpi.DateRange) (kpi.Report, error) {
	var (
		records []kpi.Record
		entries []time.Time
		unpaid  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		records, err = s.records.Records(gctx, rng.Start, rng.End)
		return err
	})
	g.Go(func() (err error) {
		entries, err = s.stats.EntryTimes(gctx, rng.Start, rng.End)
		return err
	})
	g.Go(func() (err error) {
		unpaid, err = s.stats.CountUnpaid(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return kpi.Report{}, err
	}

	report := kpi.BuildReport(records, entries, rng, unpaid)
	s.logDropped(report.UncategorizedTxs)
	return report, nil
}

func (s *DashboardService) logDropped(dropped int) {
	if dropped > 0 {
		s.logger.Debug("transactions without vehicle category left out of segments", zap.Int("count", dropped))
	}
}
