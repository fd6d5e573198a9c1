package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every booking status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCancelled}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID              string `json:"id"`
	CustomerName    string `json:"customerName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	PartyDate       string `json:"partyDate"`
	NumberOfGuests  int64  `json:"numberOfGuests"`
	PackageID       string `json:"packageId"`
	SpecialRequests string `json:"specialRequests"`
	Status          Status `json:"status"`
	CreatedAt       int64  `json:"createdAt"`
}

// CreatedTime converts the backend's nanosecond-epoch CreatedAt to a
// time.Time. The backend emits nanoseconds; divide down to milliseconds
// before building the calendar value.
func (b Booking) CreatedTime() time.Time {
	return time.UnixMilli(b.CreatedAt / 1_000_000)
}

// PartyTime parses the YYYY-MM-DD party date.
func (b Booking) PartyTime() (time.Time, error) {
	return time.Parse("2006-01-02", b.PartyDate)
}
