package bunstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"ms-events/internal/models"
	"ms-events/internal/store"
)

type Events struct {
	db bun.IDB
}

var _ store.EventStore = (*Events)(nil)

func (s *Events) Create(ctx context.Context, e *models.Event) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate event id: %w", err)
	}
	e.ID = id.String()
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt

	if _, err := s.db.NewInsert().Model(e).Exec(ctx); err != nil {
		return fmt.Errorf("insert event: %w", mapError(err))
	}
	return nil
}

func (s *Events) Update(ctx context.Context, e *models.Event) error {
	e.UpdatedAt = now()

	res, err := s.db.NewUpdate().
		Model(e).
		ExcludeColumn("id", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update event: %w", mapError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update event: %w", store.ErrNotFound)
	}
	return nil
}

func (s *Events) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := s.db.NewSelect().
		Model(&event).
		Where("e.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get event by id: %w", mapError(err))
	}
	return &event, nil
}

func (s *Events) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	var event models.Event
	err := s.db.NewSelect().
		Model(&event).
		Where("e.slug = ?", slug).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get event by slug: %w", mapError(err))
	}
	return &event, nil
}

func (s *Events) Exists(ctx context.Context, id string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*models.Event)(nil)).
		Where("e.id = ?", id).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check event exists: %w", err)
	}
	return exists, nil
}

// List orders by creation time, then by the time-ordered id.
func (s *Events) List(ctx context.Context) ([]models.Event, error) {
	events := make([]models.Event, 0)
	err := s.db.NewSelect().
		Model(&events).
		OrderExpr("e.created_at ASC, e.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
