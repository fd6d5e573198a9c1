package backend

import (
	"context"
	"errors"

	"github.com/avdeenkov/partybook/internal/domain"
)

// ErrNotFound reports that the requested booking does not exist. A missing
// booking is an expected outcome for lookups, not a transport failure.
var ErrNotFound = errors.New("booking not found")

type CreateBookingInput struct {
	CustomerName    string `json:"customerName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	PartyDate       string `json:"partyDate"`
	NumberOfGuests  int64  `json:"numberOfGuests"`
	PackageID       string `json:"packageId"`
	SpecialRequests string `json:"specialRequests"`
}

// Client is the boundary to the remote booking service. The service is
// authoritative for all booking state; nothing on this side of the
// boundary fabricates or mutates a Booking locally.
type Client interface {
	GetPackages(ctx context.Context) ([]domain.Package, error)
	GetAllBookings(ctx context.Context) ([]domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	GetBookingsByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status domain.Status) (*domain.Booking, error)
}
