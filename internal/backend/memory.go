package backend

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avdeenkov/partybook/internal/domain"
	"github.com/google/uuid"
)

// Memory is an in-process stand-in for the booking service, used by the
// dev server and by tests. It mirrors the service's externally visible
// behavior: server-assigned ids, nanosecond creation timestamps and the
// pending default status.
type Memory struct {
	mu       sync.Mutex
	packages []domain.Package
	bookings map[string]domain.Booking
	now      func() time.Time
}

type MemoryOption func(*Memory)

func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

func NewMemory(packages []domain.Package, opts ...MemoryOption) *Memory {
	m := &Memory{
		packages: packages,
		bookings: make(map[string]domain.Booking),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultPackages seeds the dev server with the standard party tiers.
func DefaultPackages() []domain.Package {
	return []domain.Package{
		{
			ID:          "pkg-bronze",
			Name:        "Bronze Party",
			Description: "A cozy celebration with the essentials covered.",
			Price:       199,
			MaxGuests:   10,
			Features:    []string{"2-hour party room", "Balloon decorations", "Party host"},
		},
		{
			ID:          "pkg-silver",
			Name:        "Silver Party",
			Description: "Our most popular package with games and a themed cake.",
			Price:       349,
			MaxGuests:   15,
			Features:    []string{"3-hour party room", "Themed decorations", "Party games", "Birthday cake"},
		},
		{
			ID:          "pkg-gold",
			Name:        "Gold Party",
			Description: "The full celebration: entertainment, catering and more.",
			Price:       599,
			MaxGuests:   25,
			Features:    []string{"4-hour venue", "Live entertainer", "Full catering", "Custom cake", "Photo booth"},
		},
	}
}

func (m *Memory) GetPackages(ctx context.Context) ([]domain.Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Package, len(m.packages))
	copy(out, m.packages)
	return out, nil
}

func (m *Memory) GetAllBookings(ctx context.Context) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (m *Memory) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *Memory) GetBookingsByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, b := range m.bookings {
		if strings.EqualFold(b.Email, email) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (m *Memory) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.NumberOfGuests < 1 {
		return nil, errors.New("number of guests must be positive")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b := domain.Booking{
		ID:              uuid.NewString(),
		CustomerName:    input.CustomerName,
		Email:           input.Email,
		Phone:           input.Phone,
		PartyDate:       input.PartyDate,
		NumberOfGuests:  input.NumberOfGuests,
		PackageID:       input.PackageID,
		SpecialRequests: input.SpecialRequests,
		Status:          domain.StatusPending,
		CreatedAt:       m.now().UnixNano(),
	}
	m.bookings[b.ID] = b
	return &b, nil
}

func (m *Memory) UpdateBookingStatus(ctx context.Context, id string, status domain.Status) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, errors.New("invalid booking status")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	b.Status = status
	m.bookings[id] = b
	return &b, nil
}

var _ Client = (*Memory)(nil)
