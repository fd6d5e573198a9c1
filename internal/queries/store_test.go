package queries

import (
	"context"
	"testing"
	"time"

	"github.com/avdeenkov/partybook/internal/backend"
	"github.com/avdeenkov/partybook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetPackages(ctx context.Context) ([]domain.Package, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Package), args.Error(1)
}

func (m *MockClient) GetAllBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockClient) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockClient) GetBookingsByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockClient) CreateBooking(ctx context.Context, input backend.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockClient) UpdateBookingStatus(ctx context.Context, id string, status domain.Status) (*domain.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

var _ backend.Client = (*MockClient)(nil)

func pendingBooking(id string) *domain.Booking {
	return &domain.Booking{
		ID:             id,
		CustomerName:   "Sarah Johnson",
		Email:          "sarah@example.com",
		Phone:          "555-0100",
		PartyDate:      "2030-06-17",
		NumberOfGuests: 10,
		PackageID:      "pkg-gold",
		Status:         domain.StatusPending,
		CreatedAt:      time.Date(2030, 6, 10, 12, 0, 0, 0, time.UTC).UnixNano(),
	}
}

func TestStore_PackagesCachedWithinWindow(t *testing.T) {
	client := &MockClient{}
	store := NewStore(client, 5*time.Minute)
	ctx := context.Background()

	pkgs := []domain.Package{{ID: "pkg-gold", Name: "Gold Party", MaxGuests: 25}}
	client.On("GetPackages", mock.Anything).Return(pkgs, nil)

	first, err := store.Packages(ctx)
	assert.NoError(t, err)
	second, err := store.Packages(ctx)
	assert.NoError(t, err)

	assert.Equal(t, pkgs, first)
	assert.Equal(t, pkgs, second)
	client.AssertNumberOfCalls(t, "GetPackages", 1)
}

func TestStore_RefreshPackagesBypassesCache(t *testing.T) {
	client := &MockClient{}
	store := NewStore(client, 5*time.Minute)
	ctx := context.Background()

	client.On("GetPackages", mock.Anything).Return([]domain.Package{{ID: "pkg-gold"}}, nil)

	_, err := store.Packages(ctx)
	assert.NoError(t, err)
	_, err = store.RefreshPackages(ctx)
	assert.NoError(t, err)

	client.AssertNumberOfCalls(t, "GetPackages", 2)
}

func TestStore_DisabledQueriesIssueNoCall(t *testing.T) {
	client := &MockClient{}
	store := NewStore(client, 0)
	ctx := context.Background()

	b, err := store.Booking(ctx, "")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Nil(t, b)

	list, err := store.BookingsByEmail(ctx, "")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Nil(t, list)

	client.AssertNotCalled(t, "GetBooking", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "GetBookingsByEmail", mock.Anything, mock.Anything)
}

func TestStore_BookingNotFoundPropagates(t *testing.T) {
	client := &MockClient{}
	store := NewStore(client, 0)

	client.On("GetBooking", mock.Anything, "nope").Return(nil, backend.ErrNotFound)

	b, err := store.Booking(context.Background(), "nope")
	assert.ErrorIs(t, err, backend.ErrNotFound)
	assert.Nil(t, b)
}

func TestStore_CreateBookingInvalidatesBookingLists(t *testing.T) {
	client := &MockClient{}
	store := NewStore(client, 0)
	ctx := context.Background()

	existing := []domain.Booking{*pendingBooking("b-1")}
	client.On("GetAllBookings", mock.Anything).Return(existing, nil)
	client.On("GetBookingsByEmail", mock.Anything, "sarah@example.com").Return(existing, nil)

	_, err := store.AllBookings(ctx)
	assert.NoError(t, err)
	_, err = store.BookingsByEmail(ctx, "sarah@example.com")
	assert.NoError(t, err)

	input := backend.CreateBookingInput{
		CustomerName:   "Sarah Johnson",
		Email:          "sarah@example.com",
		Phone:          "555-0100",
		PartyDate:      "2030-06-17",
		NumberOfGuests: 10,
		PackageID:      "pkg-gold",
	}
	client.On("CreateBooking", mock.Anything, input).Return(pendingBooking("b-2"), nil)

	created, err := store.CreateBooking(ctx, input)
	assert.NoError(t, err)
	assert.Equal(t, "b-2", created.ID)

	// Both list entries went stale; the next access refetches each.
	_, err = store.AllBookings(ctx)
	assert.NoError(t, err)
	_, err = store.BookingsByEmail(ctx, "sarah@example.com")
	assert.NoError(t, err)

	client.AssertNumberOfCalls(t, "GetAllBookings", 2)
	client.AssertNumberOfCalls(t, "GetBookingsByEmail", 2)
}

func TestStore_CreateBookingFailureLeavesCacheIntact(t *testing.T) {
	client := &MockClient{}
	store := NewStore(client, 0)
	ctx := context.Background()

	client.On("GetAllBookings", mock.Anything).Return([]domain.Booking{}, nil)
	_, err := store.AllBookings(ctx)
	assert.NoError(t, err)

	client.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	_, err = store.CreateBooking(ctx, backend.CreateBookingInput{})
	assert.ErrorIs(t, err, assert.AnError)

	// A failed mutation must not invalidate anything.
	_, err = store.AllBookings(ctx)
	assert.NoError(t, err)
	client.AssertNumberOfCalls(t, "GetAllBookings", 1)
}

func TestStore_UpdateStatusWritesThroughSingleBooking(t *testing.T) {
	client := &MockClient{}
	store := NewStore(client, 0)
	ctx := context.Background()

	pending := pendingBooking("b-1")
	client.On("GetBooking", mock.Anything, "b-1").Return(pending, nil)

	first, err := store.Booking(ctx, "b-1")
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusPending, first.Status)

	confirmed := *pending
	confirmed.Status = domain.StatusConfirmed
	client.On("UpdateBookingStatus", mock.Anything, "b-1", domain.StatusConfirmed).Return(&confirmed, nil)

	updated, err := store.UpdateBookingStatus(ctx, "b-1", domain.StatusConfirmed)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)

	// The confirmation view's entry was written through: no refetch.
	again, err := store.Booking(ctx, "b-1")
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, again.Status)
	client.AssertNumberOfCalls(t, "GetBooking", 1)
}

func TestStore_UpdateStatusInvalidatesLists(t *testing.T) {
	client := &MockClient{}
	store := NewStore(client, 0)
	ctx := context.Background()

	client.On("GetAllBookings", mock.Anything).Return([]domain.Booking{*pendingBooking("b-1")}, nil)
	_, err := store.AllBookings(ctx)
	assert.NoError(t, err)

	confirmed := *pendingBooking("b-1")
	confirmed.Status = domain.StatusConfirmed
	client.On("UpdateBookingStatus", mock.Anything, "b-1", domain.StatusConfirmed).Return(&confirmed, nil)
	_, err = store.UpdateBookingStatus(ctx, "b-1", domain.StatusConfirmed)
	assert.NoError(t, err)

	_, err = store.AllBookings(ctx)
	assert.NoError(t, err)
	client.AssertNumberOfCalls(t, "GetAllBookings", 2)
}

// End-to-end against the in-memory service: the normalized submission is
// created and immediately retrievable through the cache.
func TestStore_EndToEndCreateAndFetch(t *testing.T) {
	store := NewStore(backend.NewMemory(backend.DefaultPackages()), 0)
	ctx := context.Background()

	created, err := store.CreateBooking(ctx, backend.CreateBookingInput{
		CustomerName:   "Sarah Johnson",
		Email:          "sarah@example.com",
		Phone:          "555-0100",
		PartyDate:      time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		NumberOfGuests: 10,
		PackageID:      "pkg-gold",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Positive(t, created.CreatedAt)

	fetched, err := store.Booking(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "sarah@example.com", fetched.Email)

	mine, err := store.BookingsByEmail(ctx, "sarah@example.com")
	assert.NoError(t, err)
	assert.Len(t, mine, 1)

	nobody, err := store.BookingsByEmail(ctx, "nobody@nowhere.test")
	assert.NoError(t, err)
	assert.Empty(t, nobody, "an empty search result is an answer, not a failure")
}
