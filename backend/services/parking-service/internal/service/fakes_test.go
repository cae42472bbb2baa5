package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"parkwash/backend/services/parking-service/internal/kpi"
	"parkwash/backend/services/parking-service/internal/models"
	"parkwash/backend/services/parking-service/internal/repository"
)

type fakeRateRepo struct {
	mu     sync.Mutex
	tables []models.RateTable
	gets   int
}

func (f *fakeRateRepo) Create(_ context.Context, t *models.RateTable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.Version = int64(len(f.tables) + 1)
	t.CreatedAt = time.Now()
	f.tables = append(f.tables, *t)
	return nil
}

func (f *fakeRateRepo) Latest(context.Context) (*models.RateTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tables) == 0 {
		return nil, repository.ErrRateTableNotFound
	}
	t := f.tables[len(f.tables)-1]
	return &t, nil
}

func (f *fakeRateRepo) Get(_ context.Context, version int64) (*models.RateTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	for _, t := range f.tables {
		if t.Version == version {
			t := t
			return &t, nil
		}
	}
	return nil, repository.ErrRateTableNotFound
}

// fakeSessionRepo mirrors the conditional updates of the SQL repository.
type fakeSessionRepo struct {
	mu           sync.Mutex
	nextID       int64
	sessions     map[int64]models.Session
	occupied     map[int64]int64
	transactions []models.Transaction
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[int64]models.Session{}, occupied: map[int64]int64{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.SlotID != nil {
		if _, taken := f.occupied[*s.SlotID]; taken {
			return repository.ErrSlotOccupied
		}
	}
	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = time.Now()
	if s.SlotID != nil {
		f.occupied[*s.SlotID] = s.ID
	}
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeSessionRepo) Get(_ context.Context, id int64) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (f *fakeSessionRepo) List(_ context.Context, filter repository.SessionFilter) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Session{}
	for _, s := range f.sessions {
		if filter.Status == "" || s.Status() == filter.Status {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSessionRepo) UpdateServices(_ context.Context, s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[s.ID]
	if !ok || stored.IsPaid {
		return repository.ErrSessionChanged
	}
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeSessionRepo) Checkout(_ context.Context, s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[s.ID]
	if !ok || stored.IsPaid || stored.ExitTime != nil {
		return repository.ErrSessionChanged
	}
	f.release(s.ID)
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeSessionRepo) MarkPaid(_ context.Context, s *models.Session) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[s.ID]
	if !ok || stored.IsPaid {
		return nil, repository.ErrSessionChanged
	}
	f.release(s.ID)
	f.sessions[s.ID] = *s
	sessionID := s.ID
	txn := models.Transaction{
		ID:         int64(len(f.transactions) + 1),
		SessionID:  &sessionID,
		CustomerID: s.CustomerID,
		CarID:      s.CarID,
		TotalPrice: s.TotalPrice,
		CreatedAt:  *s.PaidAt,
	}
	f.transactions = append(f.transactions, txn)
	return &txn, nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return repository.ErrSessionNotFound
	}
	f.release(id)
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepo) release(sessionID int64) {
	for slot, owner := range f.occupied {
		if owner == sessionID {
			delete(f.occupied, slot)
		}
	}
}

type fakeReports struct {
	records []kpi.Record
	entries []time.Time
	unpaid  int64
	err     error
}

func (f *fakeReports) Records(context.Context, time.Time, time.Time) ([]kpi.Record, error) {
	return f.records, f.err
}

func (f *fakeReports) CountUnpaid(context.Context) (int64, error) {
	return f.unpaid, nil
}

func (f *fakeReports) EntryTimes(context.Context, time.Time, time.Time) ([]time.Time, error) {
	return f.entries, nil
}

type fakeCustomerRepo struct {
	created []models.Customer
}

func (f *fakeCustomerRepo) Create(_ context.Context, c *models.Customer) error {
	c.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *c)
	return nil
}

func (f *fakeCustomerRepo) Get(_ context.Context, id int64) (*models.Customer, error) {
	for _, c := range f.created {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (f *fakeCustomerRepo) List(context.Context) ([]models.Customer, error) {
	return f.created, nil
}

func (f *fakeCustomerRepo) Update(_ context.Context, c *models.Customer) error {
	if _, err := f.Get(context.Background(), c.ID); err != nil {
		return err
	}
	f.created[c.ID-1] = *c
	return nil
}

func (f *fakeCustomerRepo) Delete(_ context.Context, id int64) error {
	_, err := f.Get(context.Background(), id)
	return err
}
