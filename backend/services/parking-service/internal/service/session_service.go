package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/metrics"
	"parkwash/backend/services/parking-service/internal/models"
	"parkwash/backend/services/parking-service/internal/pricing"
	redisstore "parkwash/backend/services/parking-service/internal/redis"
	"parkwash/backend/services/parking-service/internal/repository"
)

const warmCacheLimit = 10000

// SessionRepository defines storage contract used by the session service.
type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id int64) (*models.Session, error)
	List(ctx context.Context, filter repository.SessionFilter) ([]models.Session, error)
	UpdateServices(ctx context.Context, s *models.Session) error
	Checkout(ctx context.Context, s *models.Session) error
	MarkPaid(ctx context.Context, s *models.Session) (*models.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

// RateProvider resolves rate tables.
type RateProvider interface {
	Current(ctx context.Context) (models.RateTable, error)
	Version(ctx context.Context, version int64) (models.RateTable, error)
}

// SlotLocker reserves slots for the duration of a check-in.
type SlotLocker interface {
	Acquire(ctx context.Context, slotID int64) (string, bool, error)
	Release(ctx context.Context, slotID int64, token string) error
}

// OpenSessionCache mirrors open sessions for the live feed.
type OpenSessionCache interface {
	Save(ctx context.Context, session redisstore.OpenSession) error
	Delete(ctx context.Context, sessionID int64) error
	List(ctx context.Context) ([]redisstore.OpenSession, error)
	Replace(ctx context.Context, sessions []redisstore.OpenSession) error
}

// CheckInInput opens a session.
type CheckInInput struct {
	CustomerID       *int64
	CarID            *int64
	SlotID           *int64
	EntryTime        *time.Time
	ParkingRequested bool
	ServiceIDs       []int
}

// QuoteInput prices a hypothetical stay.
type QuoteInput struct {
	EntryTime        time.Time
	ExitTime         *time.Time
	ParkingRequested bool
	ServiceIDs       []int
}

// SessionView is a session together with its price breakdown.
// Open sessions carry their running cost as of the request.
type SessionView struct {
	models.Session
	Status  models.SessionStatus `json:"status"`
	Pricing pricing.Breakdown    `json:"pricing"`
}

// Payment is the outcome of recording a payment.
type Payment struct {
	Session     SessionView        `json:"session"`
	Transaction models.Transaction `json:"transaction"`
}

// LiveSession is one row of the live feed.
type LiveSession struct {
	SessionID       int64           `json:"session_id"`
	SlotID          *int64          `json:"slot_id,omitempty"`
	CarID           *int64          `json:"car_id,omitempty"`
	EntryTime       time.Time       `json:"entry_time"`
	Duration        string          `json:"duration"`
	ParkingPrice    decimal.Decimal `json:"parking_price"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
}

// SessionService runs the session lifecycle: check-in, service changes, checkout and payment.
type SessionService struct {
	repo   SessionRepository
	rates  RateProvider
	locker SlotLocker
	cache  OpenSessionCache
	calc   *pricing.Calculator
	logger *zap.Logger
}

// NewSessionService builds service. locker and cache may be nil.
func NewSessionService(
	repo SessionRepository,
	rates RateProvider,
	locker SlotLocker,
	cache OpenSessionCache,
	calc *pricing.Calculator,
	logger *zap.Logger,
) *SessionService {
	if calc == nil {
		calc = pricing.NewCalculator(nil)
	}
	return &SessionService{
		repo:   repo,
		rates:  rates,
		locker: locker,
		cache:  cache,
		calc:   calc,
		logger: logger,
	}
}

// CheckIn opens a session priced against the current rate table.
func (s *SessionService) CheckIn(ctx context.Context, in CheckInInput) (*SessionView, error) {
	now := s.calc.Now()
	entry := now
	if in.EntryTime != nil {
		if in.EntryTime.After(now) {
			return nil, invalid("entry_time is in the future")
		}
		entry = *in.EntryTime
	}
	if !in.ParkingRequested && len(in.ServiceIDs) == 0 {
		return nil, invalid("either parking or at least one service is required")
	}
	if in.SlotID != nil && !in.ParkingRequested {
		return nil, invalid("slot_id requires parking")
	}

	rates, err := s.rates.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rates: %w", err)
	}

	session := &models.Session{
		CustomerID:         in.CustomerID,
		CarID:              in.CarID,
		SlotID:             in.SlotID,
		EntryTime:          entry.UTC(),
		ParkingRequested:   in.ParkingRequested,
		SelectedServiceIDs: uniqueIDs(in.ServiceIDs),
		RateVersion:        rates.Version,
	}
	breakdown := s.price(session, rates)
	breakdown.Apply(session)

	if in.SlotID != nil && s.locker != nil {
		token, ok, err := s.locker.Acquire(ctx, *in.SlotID)
		if err != nil {
			return nil, fmt.Errorf("reserve slot: %w", err)
		}
		if !ok {
			metrics.SlotConflicts.Inc()
			return nil, ErrSlotOccupied
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), *in.SlotID, token); err != nil {
				s.logger.Warn("failed to release slot reservation", zap.Int64("slot_id", *in.SlotID), zap.Error(err))
			}
		}()
	}

	if err := s.repo.Create(ctx, session); err != nil {
		if errors.Is(err, repository.ErrSlotOccupied) {
			metrics.SlotConflicts.Inc()
			return nil, ErrSlotOccupied
		}
		return nil, err
	}

	s.cacheOpen(ctx, session)
	metrics.SessionsCheckedIn.Inc()
	s.logger.Info("session checked in",
		zap.Int64("session_id", session.ID),
		zap.Int64("rate_version", session.RateVersion),
		zap.Bool("parking", session.ParkingRequested),
	)
	return s.view(session, breakdown), nil
}

// Get returns a session with a fresh price breakdown.
func (s *SessionService) Get(ctx context.Context, id int64) (*SessionView, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reprice(ctx, session)
}

// List returns sessions filtered by status: open, unpaid, paid or empty for all.
func (s *SessionService) List(ctx context.Context, status string, limit int) ([]SessionView, error) {
	filter := repository.SessionFilter{Limit: limit}
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "":
	case "open":
		filter.Status = models.SessionStatusOpen
	case "unpaid":
		filter.Status = models.SessionStatusClosedUnpaid
	case "paid":
		filter.Status = models.SessionStatusClosedPaid
	default:
		return nil, invalid("unknown status %q", status)
	}

	sessions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]SessionView, 0, len(sessions))
	for i := range sessions {
		view, err := s.reprice(ctx, &sessions[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// UpdateServices replaces the selected services of an unpaid session.
func (s *SessionService) UpdateServices(ctx context.Context, id int64, serviceIDs []int) (*SessionView, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsPaid {
		return nil, ErrAlreadyPaid
	}
	rates, err := s.rates.Version(ctx, session.RateVersion)
	if err != nil {
		return nil, fmt.Errorf("load rates: %w", err)
	}

	session.SelectedServiceIDs = uniqueIDs(serviceIDs)
	breakdown := s.price(session, rates)
	breakdown.Apply(session)

	if err := s.repo.UpdateServices(ctx, session); err != nil {
		if errors.Is(err, repository.ErrSessionChanged) {
			return nil, ErrAlreadyPaid
		}
		return nil, err
	}
	if session.Status() == models.SessionStatusOpen {
		s.cacheOpen(ctx, session)
	}
	s.logger.Info("session services updated", zap.Int64("session_id", id), zap.Ints("service_ids", session.SelectedServiceIDs))
	return s.view(session, breakdown), nil
}

// Checkout closes an open session at exit, or now when exit is nil.
func (s *SessionService) Checkout(ctx context.Context, id int64, exit *time.Time) (*SessionView, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status() != models.SessionStatusOpen {
		return nil, ErrSessionClosed
	}

	exitTime := s.calc.Now().UTC()
	if exit != nil {
		exitTime = exit.UTC()
	}
	if exitTime.Before(session.EntryTime) {
		return nil, invalid("exit_time is before entry_time")
	}
	session.ExitTime = &exitTime

	rates, err := s.rates.Version(ctx, session.RateVersion)
	if err != nil {
		return nil, fmt.Errorf("load rates: %w", err)
	}
	breakdown := s.price(session, rates)
	breakdown.Apply(session)

	if err := s.repo.Checkout(ctx, session); err != nil {
		if errors.Is(err, repository.ErrSessionChanged) {
			return nil, ErrSessionClosed
		}
		return nil, err
	}
	s.dropOpen(ctx, id)
	s.logger.Info("session checked out",
		zap.Int64("session_id", id),
		zap.String("duration", breakdown.Quote.Duration),
		zap.String("total", session.TotalPrice.String()),
	)
	return s.view(session, breakdown), nil
}

// Pay records payment. An open session is checked out at the same instant.
func (s *SessionService) Pay(ctx context.Context, id int64) (*Payment, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsPaid {
		return nil, ErrAlreadyPaid
	}

	now := s.calc.Now().UTC()
	if session.ExitTime == nil {
		session.ExitTime = &now
	}
	session.IsPaid = true
	session.PaidAt = &now

	rates, err := s.rates.Version(ctx, session.RateVersion)
	if err != nil {
		return nil, fmt.Errorf("load rates: %w", err)
	}
	breakdown := s.price(session, rates)
	breakdown.Apply(session)

	txn, err := s.repo.MarkPaid(ctx, session)
	if err != nil {
		if errors.Is(err, repository.ErrSessionChanged) {
			return nil, ErrAlreadyPaid
		}
		return nil, err
	}

	s.dropOpen(ctx, id)
	metrics.SessionsPaid.Inc()
	metrics.RevenueTotal.Add(session.TotalPrice.InexactFloat64())
	s.logger.Info("session paid",
		zap.Int64("session_id", id),
		zap.Int64("transaction_id", txn.ID),
		zap.String("total", session.TotalPrice.String()),
	)
	return &Payment{Session: *s.view(session, breakdown), Transaction: *txn}, nil
}

// Delete removes a session administratively.
func (s *SessionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.dropOpen(ctx, id)
	s.logger.Info("session deleted", zap.Int64("session_id", id))
	return nil
}

// Quote prices a stay against the current rate table without storing anything.
func (s *SessionService) Quote(ctx context.Context, in QuoteInput) (pricing.Breakdown, int64, error) {
	rates, err := s.rates.Current(ctx)
	if err != nil {
		return pricing.Breakdown{}, 0, fmt.Errorf("load rates: %w", err)
	}
	breakdown := s.calc.Price(pricing.Input{
		EntryTime:        in.EntryTime,
		ExitTime:         in.ExitTime,
		ParkingRequested: in.ParkingRequested,
		ServiceIDs:       in.ServiceIDs,
	}, rates)
	return breakdown, rates.Version, nil
}

// Live returns open sessions with their running cost, oldest first.
// The redis mirror is used when available, the database otherwise.
func (s *SessionService) Live(ctx context.Context) ([]LiveSession, error) {
	open, err := s.openSessions(ctx)
	if err != nil {
		return nil, err
	}

	live := make([]LiveSession, 0, len(open))
	for _, o := range open {
		rates, err := s.rates.Version(ctx, o.RateVersion)
		if err != nil {
			return nil, fmt.Errorf("load rates: %w", err)
		}
		b := s.calc.Price(pricing.Input{
			EntryTime:        o.EntryTime,
			ParkingRequested: o.ParkingRequested,
			ServiceIDs:       o.ServiceIDs,
		}, rates)
		live = append(live, LiveSession{
			SessionID:       o.SessionID,
			SlotID:          o.SlotID,
			CarID:           o.CarID,
			EntryTime:       o.EntryTime,
			Duration:        b.Quote.Duration,
			ParkingPrice:    b.ParkingPrice,
			AdditionalPrice: b.AdditionalPrice,
			TotalPrice:      b.TotalPrice,
		})
	}
	sort.Slice(live, func(i, j int) bool {
		if !live[i].EntryTime.Equal(live[j].EntryTime) {
			return live[i].EntryTime.Before(live[j].EntryTime)
		}
		return live[i].SessionID < live[j].SessionID
	})
	return live, nil
}

// WarmCache rebuilds the redis mirror of open sessions from the database.
func (s *SessionService) WarmCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	sessions, err := s.repo.List(ctx, repository.SessionFilter{Status: models.SessionStatusOpen, Limit: warmCacheLimit})
	if err != nil {
		return err
	}
	open := make([]redisstore.OpenSession, 0, len(sessions))
	for i := range sessions {
		open = append(open, toOpenSession(&sessions[i]))
	}
	if err := s.cache.Replace(ctx, open); err != nil {
		return err
	}
	s.logger.Info("open session cache warmed", zap.Int("sessions", len(open)))
	return nil
}

func (s *SessionService) openSessions(ctx context.Context) ([]redisstore.OpenSession, error) {
	if s.cache != nil {
		open, err := s.cache.List(ctx)
		if err == nil {
			return open, nil
		}
		s.logger.Warn("open session cache unavailable, reading database", zap.Error(err))
	}

	sessions, err := s.repo.List(ctx, repository.SessionFilter{Status: models.SessionStatusOpen, Limit: warmCacheLimit})
	if err != nil {
		return nil, err
	}
	open := make([]redisstore.OpenSession, 0, len(sessions))
	for i := range sessions {
		open = append(open, toOpenSession(&sessions[i]))
	}
	return open, nil
}

func (s *SessionService) reprice(ctx context.Context, session *models.Session) (*SessionView, error) {
	rates, err := s.rates.Version(ctx, session.RateVersion)
	if err != nil {
		return nil, fmt.Errorf("load rates: %w", err)
	}
	breakdown := s.price(session, rates)
	if session.Status() == models.SessionStatusOpen {
		breakdown.Apply(session)
	}
	return s.view(session, breakdown), nil
}

// price prices the session and reports service ids the rate table does not know.
func (s *SessionService) price(session *models.Session, rates models.RateTable) pricing.Breakdown {
	breakdown := s.calc.PriceSession(session, rates)
	if len(breakdown.UnknownServiceIDs) > 0 {
		metrics.UnknownServiceIDs.Add(float64(len(breakdown.UnknownServiceIDs)))
		s.logger.Warn("unknown service ids ignored",
			zap.Int64("session_id", session.ID),
			zap.Int64("rate_version", rates.Version),
			zap.Ints("service_ids", breakdown.UnknownServiceIDs),
		)
	}
	return breakdown
}

func (s *SessionService) view(session *models.Session, breakdown pricing.Breakdown) *SessionView {
	return &SessionView{Session: *session, Status: session.Status(), Pricing: breakdown}
}

func (s *SessionService) cacheOpen(ctx context.Context, session *models.Session) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(ctx, toOpenSession(session)); err != nil {
		s.logger.Warn("failed to cache open session", zap.Int64("session_id", session.ID), zap.Error(err))
	}
}

func (s *SessionService) dropOpen(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to evict open session", zap.Int64("session_id", id), zap.Error(err))
	}
}

func toOpenSession(session *models.Session) redisstore.OpenSession {
	return redisstore.OpenSession{
		SessionID:        session.ID,
		SlotID:           session.SlotID,
		CarID:            session.CarID,
		EntryTime:        session.EntryTime,
		ParkingRequested: session.ParkingRequested,
		ServiceIDs:       session.SelectedServiceIDs,
		RateVersion:      session.RateVersion,
	}
}

func uniqueIDs(ids []int) []int {
	out := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
