// Package form validates and normalizes the booking form. Validation is a
// pure mapping from field values and the selected package's guest ceiling
// to field-level error messages; it performs no I/O and never fails.
package form

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/avdeenkov/partybook/internal/backend"
)

// Input holds the raw form field values as submitted, all strings.
type Input struct {
	CustomerName    string
	Email           string
	Phone           string
	PartyDate       string
	NumberOfGuests  string
	PackageID       string
	SpecialRequests string
}

// Errors maps a field name to its error message. A field with no entry is
// valid.
type Errors map[string]string

// fieldOrder is the display order of validated fields; the first invalid
// field in this order receives focus after a rejected submit.
var fieldOrder = []string{
	"customerName",
	"email",
	"phone",
	"partyDate",
	"numberOfGuests",
	"packageId",
}

// A minimal structural check: something, an @, something, a dot,
// something. Full RFC validation is the service's problem.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the form against the selected package's guest ceiling
// using the current date for the party-date rule.
func Validate(in Input, maxGuests int64) Errors {
	return ValidateAt(in, maxGuests, time.Now())
}

// ValidateAt is Validate with an explicit clock. Identical arguments
// always produce identical error maps.
func ValidateAt(in Input, maxGuests int64, now time.Time) Errors {
	errs := make(Errors)

	if strings.TrimSpace(in.CustomerName) == "" {
		errs["customerName"] = "Full name is required"
	}

	if email := strings.TrimSpace(in.Email); email == "" {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(email) {
		errs["email"] = "Please enter a valid email address"
	}

	if strings.TrimSpace(in.Phone) == "" {
		errs["phone"] = "Phone number is required"
	}

	if in.PartyDate == "" {
		errs["partyDate"] = "Party date is required"
	} else if selected, err := time.Parse("2006-01-02", in.PartyDate); err != nil {
		errs["partyDate"] = "Please enter a valid date"
	} else {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if selected.Before(today) {
			errs["partyDate"] = "Party date cannot be in the past"
		}
	}

	if in.NumberOfGuests == "" {
		errs["numberOfGuests"] = "Number of guests is required"
	} else if guests, err := strconv.ParseInt(in.NumberOfGuests, 10, 64); err != nil || guests < 1 {
		errs["numberOfGuests"] = "Please enter a valid number of guests"
	} else if maxGuests > 0 && guests > maxGuests {
		errs["numberOfGuests"] = "This package supports up to " + strconv.FormatInt(maxGuests, 10) + " guests"
	}

	if in.PackageID == "" {
		errs["packageId"] = "Please select a package"
	}

	return errs
}

// FirstInvalid returns the first field in display order that carries an
// error, or "" when the map is empty.
func FirstInvalid(errs Errors) string {
	for _, field := range fieldOrder {
		if _, ok := errs[field]; ok {
			return field
		}
	}
	return ""
}

// Normalize turns validated form input into the create payload: string
// fields trimmed, email lower-cased, guest count coerced to an integer.
// Call it only after Validate reports no errors.
func Normalize(in Input) backend.CreateBookingInput {
	guests, _ := strconv.ParseInt(strings.TrimSpace(in.NumberOfGuests), 10, 64)
	return backend.CreateBookingInput{
		CustomerName:    strings.TrimSpace(in.CustomerName),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:           strings.TrimSpace(in.Phone),
		PartyDate:       in.PartyDate,
		NumberOfGuests:  guests,
		PackageID:       in.PackageID,
		SpecialRequests: strings.TrimSpace(in.SpecialRequests),
	}
}
