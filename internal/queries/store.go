package queries

import (
	"context"
	"errors"
	"time"

	"github.com/avdeenkov/partybook/internal/backend"
	"github.com/avdeenkov/partybook/internal/domain"
)

// ErrDisabled reports that a query's enabling condition does not hold
// (empty booking id, empty search email). No remote call was made; views
// render it as the "not asked yet" state, not as a failure.
var ErrDisabled = errors.New("query disabled")

var (
	keyPackages    = K("packages")
	keyAllBookings = K("bookings", "all")
)

func bookingKey(id string) Key {
	return K("booking", id)
}

func emailKey(email string) Key {
	return K("bookings", "email", email)
}

// BookingQueries is the cached view of the remote booking service that
// page handlers consume.
type BookingQueries interface {
	Packages(ctx context.Context) ([]domain.Package, error)
	RefreshPackages(ctx context.Context) ([]domain.Package, error)
	AllBookings(ctx context.Context) ([]domain.Booking, error)
	RefreshAllBookings(ctx context.Context) ([]domain.Booking, error)
	Booking(ctx context.Context, id string) (*domain.Booking, error)
	BookingsByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	CreateBooking(ctx context.Context, input backend.CreateBookingInput) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status domain.Status) (*domain.Booking, error)
	WatchAllBookings() *Subscription
}

// Store binds the cache engine to the backend client and carries the
// per-operation caching policy: packages tolerate a staleness window,
// booking reads stay cached until a mutation invalidates them, and the
// two mutations own the invalidation rules.
type Store struct {
	engine      *Engine
	client      backend.Client
	packagesTTL time.Duration
}

const DefaultPackagesTTL = 5 * time.Minute

func NewStore(client backend.Client, packagesTTL time.Duration, opts ...EngineOption) *Store {
	if packagesTTL <= 0 {
		packagesTTL = DefaultPackagesTTL
	}
	return &Store{
		engine:      NewEngine(opts...),
		client:      client,
		packagesTTL: packagesTTL,
	}
}

func (s *Store) Packages(ctx context.Context) ([]domain.Package, error) {
	return fetchAs[[]domain.Package](ctx, s.engine, keyPackages, s.packagesTTL, func(ctx context.Context) (any, error) {
		return s.client.GetPackages(ctx)
	})
}

// RefreshPackages re-requests the package list ahead of its staleness
// window. Explicit refresh is the only retry path for a failed fetch.
func (s *Store) RefreshPackages(ctx context.Context) ([]domain.Package, error) {
	return refetchAs[[]domain.Package](ctx, s.engine, keyPackages, func(ctx context.Context) (any, error) {
		return s.client.GetPackages(ctx)
	})
}

func (s *Store) AllBookings(ctx context.Context) ([]domain.Booking, error) {
	return fetchAs[[]domain.Booking](ctx, s.engine, keyAllBookings, 0, func(ctx context.Context) (any, error) {
		return s.client.GetAllBookings(ctx)
	})
}

func (s *Store) RefreshAllBookings(ctx context.Context) ([]domain.Booking, error) {
	return refetchAs[[]domain.Booking](ctx, s.engine, keyAllBookings, func(ctx context.Context) (any, error) {
		return s.client.GetAllBookings(ctx)
	})
}

func (s *Store) Booking(ctx context.Context, id string) (*domain.Booking, error) {
	if id == "" {
		return nil, ErrDisabled
	}
	return fetchAs[*domain.Booking](ctx, s.engine, bookingKey(id), 0, func(ctx context.Context) (any, error) {
		return s.client.GetBooking(ctx, id)
	})
}

func (s *Store) BookingsByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	if email == "" {
		return nil, ErrDisabled
	}
	return fetchAs[[]domain.Booking](ctx, s.engine, emailKey(email), 0, func(ctx context.Context) (any, error) {
		return s.client.GetBookingsByEmail(ctx, email)
	})
}

// CreateBooking performs the remote create and, on success, invalidates
// every "bookings"-prefixed entry so the admin list and email searches
// refetch. The new booking's single-entry key is left empty; the first
// read fetches it fresh from the authoritative service.
func (s *Store) CreateBooking(ctx context.Context, input backend.CreateBookingInput) (*domain.Booking, error) {
	created, err := s.client.CreateBooking(ctx, input)
	if err != nil {
		return nil, err
	}
	s.engine.InvalidatePrefix(K("bookings"))
	return created, nil
}

// UpdateBookingStatus performs the remote status update and, on success,
// invalidates every "bookings"-prefixed entry and writes the returned
// booking straight into its single-entry key, so an open confirmation
// view reflects the change without another round trip.
func (s *Store) UpdateBookingStatus(ctx context.Context, id string, status domain.Status) (*domain.Booking, error) {
	updated, err := s.client.UpdateBookingStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.engine.InvalidatePrefix(K("bookings"))
	s.engine.SetData(bookingKey(updated.ID), updated)
	return updated, nil
}

// WatchAllBookings subscribes to the admin list. The subscription signals
// on every state change and refetches when a mutation invalidates the
// list.
func (s *Store) WatchAllBookings() *Subscription {
	return s.engine.Subscribe(keyAllBookings, 0, nil, func(ctx context.Context) (any, error) {
		return s.client.GetAllBookings(ctx)
	})
}

func fetchAs[T any](ctx context.Context, e *Engine, key Key, staleTime time.Duration, fn FetchFunc) (T, error) {
	value, err := e.Fetch(ctx, key, staleTime, fn)
	if err != nil {
		var zero T
		return zero, err
	}
	out, _ := value.(T)
	return out, nil
}

func refetchAs[T any](ctx context.Context, e *Engine, key Key, fn FetchFunc) (T, error) {
	value, err := e.Refetch(ctx, key, fn)
	if err != nil {
		var zero T
		return zero, err
	}
	out, _ := value.(T)
	return out, nil
}

var _ BookingQueries = (*Store)(nil)
