package bunstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"ms-events/internal/models"
	"ms-events/internal/store"
)

type Bookings struct {
	db bun.IDB
}

var _ store.BookingStore = (*Bookings)(nil)

func (s *Bookings) Create(ctx context.Context, b *models.Booking) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate booking id: %w", err)
	}
	b.ID = id.String()
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt

	if _, err := s.db.NewInsert().Model(b).Exec(ctx); err != nil {
		return fmt.Errorf("insert booking: %w", mapError(err))
	}
	return nil
}

func (s *Bookings) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.NewSelect().
		Model(&booking).
		Where("b.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", mapError(err))
	}
	return &booking, nil
}

func (s *Bookings) CountByEvent(ctx context.Context, eventID string) (int, error) {
	n, err := s.db.NewSelect().
		Model((*models.Booking)(nil)).
		Where("b.event_id = ?", eventID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}
