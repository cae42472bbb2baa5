package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/models"
	"parkwash/backend/services/parking-service/internal/pricing"
	redisstore "parkwash/backend/services/parking-service/internal/redis"
)

type SessionServiceSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	repo     *fakeSessionRepo
	rateRepo *fakeRateRepo
	rates    *RateService
	store    *redisstore.Store
	svc      *SessionService
}

func TestSessionServiceSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceSuite))
}

func (s *SessionServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)
	s.repo = newFakeSessionRepo()
	s.rateRepo = &fakeRateRepo{}

	var err error
	s.rates, err = NewRateService(s.rateRepo, decimal.NewFromInt(30), decimal.NewFromInt(300), 8, zap.NewNop())
	s.Require().NoError(err)

	srv := miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })
	s.store = redisstore.NewStore(client)
	locker := redisstore.NewSlotLocker(client, 10*time.Second)

	calc := pricing.NewCalculator(func() time.Time { return s.now })
	s.svc = NewSessionService(s.repo, s.rates, locker, s.store, calc, zap.NewNop())
}

func (s *SessionServiceSuite) publish(hourly, daily int64, services ...models.AdditionalService) models.RateTable {
	table, err := s.rates.Publish(s.ctx, PublishRatesInput{
		HourlyRate:         decimal.NewFromInt(hourly),
		DailyRate:          decimal.NewFromInt(daily),
		AdditionalServices: services,
	})
	s.Require().NoError(err)
	return table
}

func slot(id int64) *int64 {
	return &id
}

func (s *SessionServiceSuite) TestCheckInUsesDefaultsBeforeAnyPublish() {
	view, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true})
	s.Require().NoError(err)
	s.Equal(models.DefaultRateVersion, view.RateVersion)
	s.Equal(models.SessionStatusOpen, view.Status)
	s.True(view.TotalPrice.IsZero())
}

func (s *SessionServiceSuite) TestCheckInValidation() {
	_, err := s.svc.CheckIn(s.ctx, CheckInInput{})
	s.True(errors.Is(err, ErrInvalidInput))

	future := s.now.Add(time.Hour)
	_, err = s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true, EntryTime: &future})
	s.True(errors.Is(err, ErrInvalidInput))

	_, err = s.svc.CheckIn(s.ctx, CheckInInput{SlotID: slot(1), ServiceIDs: []int{1}})
	s.True(errors.Is(err, ErrInvalidInput))
}

func (s *SessionServiceSuite) TestSecondCheckInIntoOccupiedSlotIsRejected() {
	_, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true, SlotID: slot(5)})
	s.Require().NoError(err)

	_, err = s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true, SlotID: slot(5)})
	s.True(errors.Is(err, ErrSlotOccupied))
}

func (s *SessionServiceSuite) TestConcurrentCheckInsTakeSlotOnce() {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true, SlotID: slot(9)}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				s.True(errors.Is(err, ErrSlotOccupied))
			}
		}()
	}
	wg.Wait()
	s.Equal(1, succeeded)
}

func (s *SessionServiceSuite) TestSlotFreedAfterPayment() {
	view, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true, SlotID: slot(2)})
	s.Require().NoError(err)
	_, err = s.svc.Pay(s.ctx, view.ID)
	s.Require().NoError(err)

	_, err = s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true, SlotID: slot(2)})
	s.NoError(err)
}

func (s *SessionServiceSuite) TestPayOpenSessionSetsExitAndCreatesOneTransaction() {
	s.publish(50, 500, models.AdditionalService{ID: 1, Name: "Wash", Price: decimal.NewFromInt(150)})
	entry := s.now.Add(-90 * time.Minute)
	view, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true, EntryTime: &entry, ServiceIDs: []int{1}})
	s.Require().NoError(err)

	payment, err := s.svc.Pay(s.ctx, view.ID)
	s.Require().NoError(err)

	s.Require().NotNil(payment.Session.ExitTime)
	s.True(payment.Session.ExitTime.Equal(s.now))
	s.Equal(models.SessionStatusClosedPaid, payment.Session.Status)
	s.True(decimal.NewFromInt(100).Equal(payment.Session.ParkingPrice))
	s.True(decimal.NewFromInt(250).Equal(payment.Session.TotalPrice))
	s.True(payment.Transaction.TotalPrice.Equal(payment.Session.TotalPrice))
	s.Len(s.repo.transactions, 1)

	_, err = s.svc.Pay(s.ctx, view.ID)
	s.True(errors.Is(err, ErrAlreadyPaid))
	s.Len(s.repo.transactions, 1)
}

func (s *SessionServiceSuite) TestRateUpdateDoesNotRepriceOlderSessions() {
	s.publish(50, 500)
	entry := s.now.Add(-3 * time.Hour)
	view, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true, EntryTime: &entry})
	s.Require().NoError(err)

	s.publish(80, 800)

	got, err := s.svc.Get(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), got.RateVersion)
	s.True(decimal.NewFromInt(150).Equal(got.TotalPrice))

	payment, err := s.svc.Pay(s.ctx, view.ID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(150).Equal(payment.Transaction.TotalPrice))

	fresh, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true, EntryTime: &entry})
	s.Require().NoError(err)
	s.Equal(int64(2), fresh.RateVersion)
	s.True(decimal.NewFromInt(240).Equal(fresh.TotalPrice))
}

func (s *SessionServiceSuite) TestCheckoutThenPay() {
	s.publish(50, 500)
	entry := s.now.Add(-2 * time.Hour)
	view, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true, EntryTime: &entry})
	s.Require().NoError(err)

	exit := s.now.Add(-time.Hour)
	closed, err := s.svc.Checkout(s.ctx, view.ID, &exit)
	s.Require().NoError(err)
	s.Equal(models.SessionStatusClosedUnpaid, closed.Status)
	s.True(decimal.NewFromInt(50).Equal(closed.TotalPrice))

	_, err = s.svc.Checkout(s.ctx, view.ID, nil)
	s.True(errors.Is(err, ErrSessionClosed))

	payment, err := s.svc.Pay(s.ctx, view.ID)
	s.Require().NoError(err)
	s.True(payment.Session.ExitTime.Equal(exit))
	s.True(decimal.NewFromInt(50).Equal(payment.Transaction.TotalPrice))
}

func (s *SessionServiceSuite) TestCheckoutBeforeEntryIsInvalid() {
	view, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true})
	s.Require().NoError(err)
	exit := s.now.Add(-time.Minute)
	_, err = s.svc.Checkout(s.ctx, view.ID, &exit)
	s.True(errors.Is(err, ErrInvalidInput))
}

func (s *SessionServiceSuite) TestUpdateServices() {
	s.publish(50, 500,
		models.AdditionalService{ID: 1, Name: "Wash", Price: decimal.NewFromInt(100)},
		models.AdditionalService{ID: 2, Name: "Wax", Price: decimal.NewFromInt(40)},
	)
	view, err := s.svc.CheckIn(s.ctx, CheckInInput{ServiceIDs: []int{1}})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(100).Equal(view.TotalPrice))

	updated, err := s.svc.UpdateServices(s.ctx, view.ID, []int{2, 2, 42})
	s.Require().NoError(err)
	s.Equal([]int{2, 42}, updated.SelectedServiceIDs)
	s.Equal([]int{42}, updated.Pricing.UnknownServiceIDs)
	s.True(decimal.NewFromInt(40).Equal(updated.TotalPrice))

	_, err = s.svc.Pay(s.ctx, view.ID)
	s.Require().NoError(err)
	_, err = s.svc.UpdateServices(s.ctx, view.ID, []int{1})
	s.True(errors.Is(err, ErrAlreadyPaid))
}

func (s *SessionServiceSuite) TestGetOpenSessionShowsRunningCost() {
	s.publish(50, 500)
	view, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true})
	s.Require().NoError(err)
	s.True(view.TotalPrice.IsZero())

	s.now = s.now.Add(2*time.Hour + 20*time.Minute)
	got, err := s.svc.Get(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal("0 days 3 hours 0 minutes", got.Pricing.Quote.Duration)
	s.True(decimal.NewFromInt(150).Equal(got.TotalPrice))
}

func (s *SessionServiceSuite) TestListByStatus() {
	a, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true})
	s.Require().NoError(err)
	b, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true})
	s.Require().NoError(err)
	_, err = s.svc.Pay(s.ctx, b.ID)
	s.Require().NoError(err)

	open, err := s.svc.List(s.ctx, "open", 0)
	s.Require().NoError(err)
	s.Require().Len(open, 1)
	s.Equal(a.ID, open[0].ID)

	paid, err := s.svc.List(s.ctx, "PAID", 0)
	s.Require().NoError(err)
	s.Len(paid, 1)

	_, err = s.svc.List(s.ctx, "archived", 0)
	s.True(errors.Is(err, ErrInvalidInput))
}

func (s *SessionServiceSuite) TestLiveFeedFollowsCache() {
	s.publish(50, 500)
	first := s.now.Add(-30 * time.Minute)
	second := s.now.Add(-2 * time.Hour)
	a, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true, EntryTime: &first})
	s.Require().NoError(err)
	b, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true, EntryTime: &second, SlotID: slot(3)})
	s.Require().NoError(err)

	live, err := s.svc.Live(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(live, 2)
	s.Equal(b.ID, live[0].SessionID)
	s.True(decimal.NewFromInt(100).Equal(live[0].TotalPrice))
	s.Equal(a.ID, live[1].SessionID)

	s.Require().NoError(s.svc.Delete(s.ctx, b.ID))
	live, err = s.svc.Live(s.ctx)
	s.Require().NoError(err)
	s.Len(live, 1)
}

func (s *SessionServiceSuite) TestWarmCacheRebuildsFromRepository() {
	_, err := s.svc.CheckIn(s.ctx, CheckInInput{ParkingRequested: true})
	s.Require().NoError(err)
	s.Require().NoError(s.store.Replace(s.ctx, nil))

	s.Require().NoError(s.svc.WarmCache(s.ctx))
	open, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(open, 1)
}

func (s *SessionServiceSuite) TestQuote() {
	s.publish(50, 500, models.AdditionalService{ID: 7, Name: "Polish", Price: decimal.RequireFromString("19.99")})
	exit := s.now.Add(25 * time.Hour)
	b, version, err := s.svc.Quote(s.ctx, QuoteInput{EntryTime: s.now, ExitTime: &exit, ParkingRequested: true, ServiceIDs: []int{7}})
	s.Require().NoError(err)
	s.Equal(int64(1), version)
	s.True(decimal.NewFromInt(550).Equal(b.ParkingPrice))
	s.True(decimal.RequireFromString("569.99").Equal(b.TotalPrice))
}

func TestSessionServiceWithoutRedis(t *testing.T) {
	rates, err := NewRateService(&fakeRateRepo{}, decimal.NewFromInt(10), decimal.NewFromInt(100), 0, zap.NewNop())
	require.NoError(t, err)
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, rates, nil, nil, nil, zap.NewNop())

	ctx := context.Background()
	_, err = svc.CheckIn(ctx, CheckInInput{ParkingRequested: true, SlotID: slot(1)})
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, CheckInInput{ParkingRequested: true, SlotID: slot(1)})
	assert.True(t, errors.Is(err, ErrSlotOccupied))

	live, err := svc.Live(ctx)
	require.NoError(t, err)
	assert.Len(t, live, 1)
	assert.NoError(t, svc.WarmCache(ctx))
}
