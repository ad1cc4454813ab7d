package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ridebooking/internal/domain"
	"ridebooking/internal/domain/models"
)

// MemoryBookingRepo is the STORE_DRIVER=memory backend used for local demos.
// Rows are lost on restart.
type MemoryBookingRepo struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[string]models.Booking
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{rows: make(map[string]models.Booking)}
}

func (r *MemoryBookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[b.BookingID]; ok {
		return domain.ConflictError{Resource: "booking", Msg: "booking id already exists"}
	}
	r.nextID++
	b.ID = r.nextID
	r.rows[b.BookingID] = *b
	return nil
}

func (r *MemoryBookingRepo) GetByCode(_ context.Context, code string) (models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.rows[code]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Key: code}
	}
	return b, nil
}

func (r *MemoryBookingRepo) List(_ context.Context, f models.BookingFilter, p domain.Pagination) ([]models.Booking, int, error) {
	r.mu.RLock()
	all := make([]models.Booking, 0, len(r.rows))
	for _, b := range r.rows {
		if f.Status == "" || b.Status == f.Status {
			all = append(all, b)
		}
	}
	r.mu.RUnlock()

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

// Update holds the write lock for the whole check-and-apply.
func (r *MemoryBookingRepo) Update(_ context.Context, code string, upd models.BookingUpdate, now time.Time, check func(current models.Booking) error) (models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[code]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Key: code}
	}
	if check != nil {
		if err := check(b); err != nil {
			return models.Booking{}, err
		}
	}
	upd.Apply(&b, now)
	r.rows[code] = b
	return b, nil
}

func (r *MemoryBookingRepo) Delete(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[code]; !ok {
		return domain.NotFoundError{Resource: "booking", Key: code}
	}
	delete(r.rows, code)
	return nil
}

func (r *MemoryBookingRepo) Stats(_ context.Context) (models.BookingStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s models.BookingStats
	for _, b := range r.rows {
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

type MemoryUserRepo struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]models.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[int64]models.User)}
}

func (r *MemoryUserRepo) GetByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "user", Key: username}
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id int64) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (r *MemoryUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username || (u.Email != "" && strings.EqualFold(existing.Email, u.Email)) {
			return domain.ConflictError{Resource: "user", Msg: "username or email already registered"}
		}
	}
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = *u
	return nil
}
