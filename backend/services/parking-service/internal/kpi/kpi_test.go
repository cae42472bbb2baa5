package kpi

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AggregateSuite struct {
	suite.Suite
	loc *time.Location
	rng DateRange
}

func TestAggregateSuite(t *testing.T) {
	suite.Run(t, new(AggregateSuite))
}

func (s *AggregateSuite) SetupTest() {
	s.loc = time.FixedZone("UTC+3", 3*60*60)
	s.rng = NewDateRange(
		time.Date(2024, 5, 1, 15, 0, 0, 0, s.loc),
		time.Date(2024, 5, 3, 8, 0, 0, 0, s.loc),
		s.loc,
	)
}

func (s *AggregateSuite) at(day, hour, minute int) time.Time {
	return time.Date(2024, 5, day, hour, minute, 0, 0, s.loc)
}

func (s *AggregateSuite) ptr(t time.Time) *time.Time {
	return &t
}

func id(v int64) *int64 {
	return &v
}

func (s *AggregateSuite) records() []Record {
	return []Record{
		{TransactionID: 1, TotalPrice: decimal.NewFromInt(100), CreatedAt: s.at(1, 10, 0), CarID: id(1), PlateNumber: "AB123", Category: "sedan",
			EntryTime: s.ptr(s.at(1, 8, 0)), ExitTime: s.ptr(s.at(1, 10, 0))},
		{TransactionID: 2, TotalPrice: decimal.NewFromInt(250), CreatedAt: s.at(1, 18, 30), CarID: id(2), PlateNumber: "ab123 ", Category: "sedan",
			EntryTime: s.ptr(s.at(1, 16, 0)), ExitTime: s.ptr(s.at(1, 18, 0))},
		{TransactionID: 3, TotalPrice: decimal.NewFromInt(40), CreatedAt: s.at(3, 23, 59), CarID: id(7), Category: "suv",
			EntryTime: s.ptr(s.at(3, 20, 0))},
		{TransactionID: 4, TotalPrice: decimal.NewFromInt(60), CreatedAt: s.at(3, 12, 0), Category: "",
			EntryTime: s.ptr(s.at(3, 12, 0)), ExitTime: s.ptr(s.at(3, 11, 0))},
		{TransactionID: 5, TotalPrice: decimal.NewFromInt(999), CreatedAt: s.at(4, 0, 0), PlateNumber: "ZZ999", Category: "truck"},
		{TransactionID: 6, TotalPrice: decimal.NewFromInt(999), CreatedAt: s.at(1, 0, 0).Add(-time.Millisecond), PlateNumber: "ZZ999", Category: "truck"},
	}
}

func (s *AggregateSuite) TestDateRangeBounds() {
	s.Equal(s.at(1, 0, 0), s.rng.Start)
	s.Equal(s.at(3, 23, 59).Add(59*time.Second+999*time.Millisecond), s.rng.End)
	s.True(s.rng.Contains(s.rng.Start))
	s.True(s.rng.Contains(s.rng.End))
	s.False(s.rng.Contains(s.rng.End.Add(time.Millisecond)))
}

func (s *AggregateSuite) TestSummarize() {
	summary := Summarize(s.records(), s.rng, 7)

	s.True(decimal.NewFromInt(450).Equal(summary.TotalRevenue), summary.TotalRevenue.String())
	// AB123 twice by plate, car 7 by reference, record 4 has neither.
	s.Equal(2, summary.TotalUniqueVehicles)
	s.Equal(int64(7), summary.ActiveSessionCount)
	s.Equal((2 * time.Hour).Milliseconds(), summary.AverageDurationMs)
}

func (s *AggregateSuite) TestSummarizeEmpty() {
	summary := Summarize(nil, s.rng, 3)
	s.True(summary.TotalRevenue.IsZero())
	s.Zero(summary.TotalUniqueVehicles)
	s.Zero(summary.AverageDurationMs)
	s.Equal(int64(3), summary.ActiveSessionCount)
}

func (s *AggregateSuite) TestRevenueByDay() {
	days := RevenueByDay(s.records(), s.rng)

	s.Require().Len(days, 2)
	s.Equal("2024-05-01", days[0].Date)
	s.True(decimal.NewFromInt(350).Equal(days[0].Revenue))
	s.Equal(2, days[0].Transactions)
	s.Equal("2024-05-03", days[1].Date)
	s.True(decimal.NewFromInt(100).Equal(days[1].Revenue))
}

func (s *AggregateSuite) TestRevenueByDayUsesRangeTimezone() {
	// 22:30 UTC on the 1st is already the 2nd at UTC+3.
	records := []Record{{TotalPrice: decimal.NewFromInt(5), CreatedAt: time.Date(2024, 5, 1, 22, 30, 0, 0, time.UTC)}}
	days := RevenueByDay(records, s.rng)
	s.Require().Len(days, 1)
	s.Equal("2024-05-02", days[0].Date)
}

func (s *AggregateSuite) TestSessionsByHour() {
	entries := []time.Time{
		s.at(1, 8, 0),
		s.at(1, 8, 59),
		s.at(2, 23, 10),
		s.at(5, 8, 0),
		{},
	}
	hours := SessionsByHour(entries, s.rng)

	s.Require().Len(hours, 24)
	for i, h := range hours {
		s.Equal(i, h.Hour)
	}
	s.Equal(2, hours[8].Count)
	s.Equal(1, hours[23].Count)
	s.Zero(hours[0].Count)
}

func (s *AggregateSuite) TestSegmentByCategory() {
	segments, dropped := SegmentByCategory(s.records(), s.rng)

	s.Equal(1, dropped)
	s.Require().Len(segments, 2)
	s.Equal("sedan", segments[0].Category)
	s.True(decimal.NewFromInt(350).Equal(segments[0].Revenue))
	s.Equal(2, segments[0].Transactions)
	s.Equal(1, segments[0].Vehicles)
	s.Equal("suv", segments[1].Category)
}

func (s *AggregateSuite) TestBuildReport() {
	report := BuildReport(s.records(), []time.Time{s.at(2, 9, 0)}, s.rng, 1)
	s.Equal(s.rng.Start, report.Start)
	s.Len(report.RevenueByDay, 2)
	s.Len(report.SessionsByHour, 24)
	s.Equal(1, report.SessionsByHour[9].Count)
	s.Equal(1, report.UncategorizedTxs)
	s.Equal(int64(1), report.Summary.ActiveSessionCount)
}

func TestSessionsByHourEmpty(t *testing.T) {
	hours := SessionsByHour(nil, DateRange{})
	require.Len(t, hours, 24)
	for i, h := range hours {
		assert.Equal(t, i, h.Hour)
		assert.Zero(t, h.Count)
	}
}

func TestRevenueByDayNeverFabricatesDays(t *testing.T) {
	rng := NewDateRange(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), time.UTC)
	records := []Record{
		{TotalPrice: decimal.NewFromInt(1), CreatedAt: time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)},
		{TotalPrice: decimal.NewFromInt(1), CreatedAt: time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)},
		{TotalPrice: decimal.NewFromInt(1), CreatedAt: time.Date(2024, 1, 20, 11, 0, 0, 0, time.UTC)},
	}
	assert.Len(t, RevenueByDay(records, rng), 2)
	assert.Empty(t, RevenueByDay(nil, rng))
}

func TestParseDateRange(t *testing.T) {
	now := time.Date(2024, 2, 17, 13, 45, 0, 0, time.UTC)

	rng, err := ParseDateRange("", "", time.UTC, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), rng.Start)
	assert.Equal(t, time.Date(2024, 2, 17, 23, 59, 59, int(999*time.Millisecond), time.UTC), rng.End)

	rng, err = ParseDateRange("2024-01-05", "2024-01-05", time.UTC, now)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour-time.Millisecond, rng.End.Sub(rng.Start))

	_, err = ParseDateRange("05/01/2024", "", time.UTC, now)
	assert.True(t, errors.Is(err, ErrInvalidRange))

	_, err = ParseDateRange("2024-02-10", "2024-02-01", time.UTC, now)
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestParseDateRangeEndOnlyStartsAtEndsMonth(t *testing.T) {
	now := time.Date(2024, 6, 17, 13, 45, 0, 0, time.UTC)

	rng, err := ParseDateRange("", "2024-03-20", time.UTC, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rng.Start)
	assert.Equal(t, time.Date(2024, 3, 20, 23, 59, 59, int(999*time.Millisecond), time.UTC), rng.End)
}

func TestSummarizeAverageSurvivesLongStays(t *testing.T) {
	rng := NewDateRange(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), time.UTC)
	stay := 30 * 24 * time.Hour
	records := make([]Record, 0, 4000)
	for i := 0; i < 4000; i++ {
		entry := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		exit := entry.Add(stay)
		records = append(records, Record{
			TransactionID: int64(i + 1),
			TotalPrice:    decimal.NewFromInt(1),
			CreatedAt:     exit,
			EntryTime:     &entry,
			ExitTime:      &exit,
		})
	}

	summary := Summarize(records, rng, 0)
	assert.Equal(t, stay.Milliseconds(), summary.AverageDurationMs)
}
