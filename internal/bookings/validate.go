package bookings

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"ms-events/internal/models"
	"ms-events/internal/store"
	"ms-events/internal/validation"
)

// One @, no whitespace, and a dot somewhere in the domain.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type EventChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

func NormalizeEmail(s string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(s))
	if !emailPattern.MatchString(email) {
		return "", validation.Invalid("email")
	}
	return email, nil
}

// Normalize checks the fields of in without touching any store.
func Normalize(in models.BookingInput) (models.Booking, error) {
	eventID := strings.TrimSpace(in.EventID)
	if eventID == "" {
		return models.Booking{}, validation.Required("eventId")
	}
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return models.Booking{}, err
	}
	return models.Booking{EventID: eventID, Email: email}, nil
}

// Validate normalizes in and then confirms the referenced event exists.
// A missing event is reported as store.ErrEventNotFound.
func Validate(ctx context.Context, in models.BookingInput, events EventChecker) (models.Booking, error) {
	b, err := Normalize(in)
	if err != nil {
		return models.Booking{}, err
	}

	exists, err := events.Exists(ctx, b.EventID)
	if err != nil {
		return models.Booking{}, fmt.Errorf("check event %s: %w", b.EventID, err)
	}
	if !exists {
		return models.Booking{}, fmt.Errorf("booking for event %s: %w", b.EventID, store.ErrEventNotFound)
	}
	return b, nil
}
