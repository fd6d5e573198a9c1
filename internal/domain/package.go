package domain

// Package is a priced party tier with a guest ceiling. Read-only
// reference data from the client's point of view.
type Package struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	MaxGuests   int64    `json:"maxGuests"`
	Features    []string `json:"features"`
}
