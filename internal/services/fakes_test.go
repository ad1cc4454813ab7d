package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"ridebooking/internal/domain"
	"ridebooking/internal/domain/models"
)

type memBookingStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string]models.Booking
	fail   error
}

func newMemBookingStore() *memBookingStore {
	return &memBookingStore{rows: map[string]models.Booking{}}
}

func (m *memBookingStore) Create(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.rows[b.BookingID]; ok {
		return domain.ConflictError{Resource: "booking", Msg: "booking id already exists"}
	}
	m.nextID++
	b.ID = m.nextID
	m.rows[b.BookingID] = *b
	return nil
}

func (m *memBookingStore) GetByCode(_ context.Context, code string) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[code]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Key: code}
	}
	return b, nil
}

func (m *memBookingStore) List(_ context.Context, f models.BookingFilter, p domain.Pagination) ([]models.Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.Booking
	for _, b := range m.rows {
		if f.Status == "" || b.Status == f.Status {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	total := len(all)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.PerPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *memBookingStore) Update(_ context.Context, code string, upd models.BookingUpdate, now time.Time, check func(models.Booking) error) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[code]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Key: code}
	}
	if check != nil {
		if err := check(b); err != nil {
			return models.Booking{}, err
		}
	}
	upd.Apply(&b, now)
	m.rows[code] = b
	return b, nil
}

func (m *memBookingStore) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[code]; !ok {
		return domain.NotFoundError{Resource: "booking", Key: code}
	}
	delete(m.rows, code)
	return nil
}

func (m *memBookingStore) Stats(_ context.Context) (models.BookingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s models.BookingStats
	for _, b := range m.rows {
		s.Total++
		switch b.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusConfirmed:
			s.Confirmed++
		case models.StatusCompleted:
			s.Completed++
			if b.FinalPrice != nil {
				s.Revenue += *b.FinalPrice
			}
		case models.StatusCancelled:
			s.Cancelled++
		}
	}
	return s, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.Booking
	err    error
}

func (n *recordingNotifier) BookingCreated(_ context.Context, b models.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, b)
	return n.err
}

type memUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[int64]models.User{}}
}

func (m *memUserStore) GetByUsername(_ context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "user", Key: username}
}

func (m *memUserStore) GetByID(_ context.Context, id int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (m *memUserStore) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return domain.ConflictError{Resource: "user"}
		}
	}
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = *u
	return nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]models.Session{}}
}

func (m *memSessionStore) Save(_ context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memSessionStore) Get(_ context.Context, id string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return models.Session{}, domain.NotFoundError{Resource: "session"}
	}
	return s, nil
}

func (m *memSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
