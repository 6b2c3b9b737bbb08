// Package bookings validates and records event bookings.
package bookings

import (
	"context"
	"fmt"
	"time"

	"ms-events/internal/bookings/pass"
	"ms-events/internal/logger"
	"ms-events/internal/metrics"
	"ms-events/internal/models"
	"ms-events/internal/store"
	"ms-events/internal/validation"
)

type Publisher interface {
	PublishBookingCreated(ctx context.Context, booking models.Booking) error
}

type BookingService struct {
	Conn      store.Connector
	Publisher Publisher
	Passes    *pass.Generator
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
	Timeout   time.Duration
}

func NewBookingService(conn store.Connector, log *logger.Logger) *BookingService {
	if log == nil {
		log = logger.NewNop()
	}
	return &BookingService{
		Conn:   conn,
		Passes: pass.NewGenerator("http://localhost:8080"),
		Logger: log,
	}
}

func (s *BookingService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// CreateBooking validates in and stores the booking. The event existence check
// and the insert share one transaction on stores that support it.
func (s *BookingService) CreateBooking(ctx context.Context, in models.BookingInput) (*models.Booking, error) {
	if _, err := Normalize(in); err != nil {
		if ve, ok := validation.As(err); ok {
			s.Metrics.ValidationFailed("booking", ve.Field)
		}
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	h, err := s.Conn.Connect(ctx)
	if err != nil {
		return nil, err
	}

	var booking models.Booking
	err = h.RunInTx(ctx, func(ctx context.Context, tx store.Stores) error {
		b, err := Validate(ctx, in, tx.Events)
		if err != nil {
			return err
		}
		if err := tx.Bookings.Create(ctx, &b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.Metrics.BookingCreated()
	s.Logger.LogDatabase("insert", "bookings", fmt.Sprintf("booking %s for event %s", booking.ID, booking.EventID))

	if s.Publisher != nil {
		if err := s.Publisher.PublishBookingCreated(ctx, booking); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish booking.created for %s: %v", booking.ID, err))
		}
	}
	return &booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	h, err := s.Conn.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return h.Bookings.GetByID(ctx, id)
}

// CountBookings returns store.ErrNotFound when eventSlug names no event.
func (s *BookingService) CountBookings(ctx context.Context, eventSlug string) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	h, err := s.Conn.Connect(ctx)
	if err != nil {
		return 0, err
	}
	event, err := h.Events.GetBySlug(ctx, eventSlug)
	if err != nil {
		return 0, err
	}
	return h.Bookings.CountByEvent(ctx, event.ID)
}

// Pass renders the QR pass for booking id.
func (s *BookingService) Pass(ctx context.Context, id string) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	h, err := s.Conn.Connect(ctx)
	if err != nil {
		return nil, err
	}
	booking, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	event, err := h.Events.GetByID(ctx, booking.EventID)
	if err != nil {
		return nil, fmt.Errorf("pass for booking %s: %w", id, err)
	}
	return s.Passes.PNG(*booking, event.Slug)
}
