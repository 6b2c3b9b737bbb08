// Package events normalizes, stores and queries events.
package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-events/internal/logger"
	"ms-events/internal/metrics"
	"ms-events/internal/models"
	"ms-events/internal/store"
	"ms-events/internal/validation"
)

// Cache holds events by slug. Fill must not replace an existing entry; Put must.
type Cache interface {
	Get(ctx context.Context, slug string) (*models.Event, bool, error)
	Fill(ctx context.Context, event *models.Event) error
	Put(ctx context.Context, event *models.Event) error
	Evict(ctx context.Context, slugs ...string) error
}

type Publisher interface {
	PublishEventCreated(ctx context.Context, event models.Event) error
}

type EventService struct {
	Conn       store.Connector
	Cache      Cache
	Publisher  Publisher
	Similarity SimilarityStrategy
	Metrics    *metrics.Metrics
	Logger     *logger.Logger
	Timeout    time.Duration
}

func NewEventService(conn store.Connector, log *logger.Logger) *EventService {
	if log == nil {
		log = logger.NewNop()
	}
	return &EventService{
		Conn:       conn,
		Similarity: SharedTags{Limit: 3},
		Logger:     log,
	}
}

func (s *EventService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func (s *EventService) stores(ctx context.Context) (*store.Handle, error) {
	h, err := s.Conn.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (s *EventService) CreateEvent(ctx context.Context, in models.EventInput) (*models.Event, error) {
	event, err := Normalize(in, nil)
	if err != nil {
		s.recordInvalid(err)
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	h, err := s.stores(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.Events.Create(ctx, &event); err != nil {
		return nil, fmt.Errorf("create event %q: %w", event.Slug, err)
	}

	s.Metrics.EventCreated()
	s.Logger.LogDatabase("insert", "events", fmt.Sprintf("created %s (%s)", event.Slug, event.ID))

	if s.Publisher != nil {
		if err := s.Publisher.PublishEventCreated(ctx, event); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish event.created for %s: %v", event.Slug, err))
		}
	}
	return &event, nil
}

// UpdateEvent replaces the event stored under slug. The slug changes only if the title does.
func (s *EventService) UpdateEvent(ctx context.Context, slug string, in models.EventInput) (*models.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	h, err := s.stores(ctx)
	if err != nil {
		return nil, err
	}

	prev, err := h.Events.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, fmt.Errorf("update event %q: %w", slug, err)
	}

	event, err := Normalize(in, prev)
	if err != nil {
		s.recordInvalid(err)
		return nil, err
	}
	if err := h.Events.Update(ctx, &event); err != nil {
		return nil, fmt.Errorf("update event %q: %w", slug, err)
	}

	s.refresh(ctx, prev.Slug, &event)
	s.Logger.LogDatabase("update", "events", fmt.Sprintf("updated %s (%s)", event.Slug, event.ID))
	return &event, nil
}

// GetEventBySlug reports a missing event as found == false with a nil error.
func (s *EventService) GetEventBySlug(ctx context.Context, slug string) (*models.Event, bool, error) {
	slug = strings.TrimSpace(slug)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if s.Cache != nil {
		cached, ok, err := s.Cache.Get(ctx, slug)
		if err != nil {
			s.Logger.Warn("CACHE", err.Error())
		} else if ok {
			return cached, true, nil
		}
	}

	h, err := s.stores(ctx)
	if err != nil {
		return nil, false, err
	}

	event, err := h.Events.GetBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if s.Cache != nil {
		if err := s.Cache.Fill(ctx, event); err != nil {
			s.Logger.Warn("CACHE", err.Error())
		}
	}
	return event, true, nil
}

// ListEvents returns every event in insertion order.
func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	h, err := s.stores(ctx)
	if err != nil {
		return nil, err
	}
	return h.Events.List(ctx)
}

// SimilarEvents returns store.ErrNotFound when slug names no event.
func (s *EventService) SimilarEvents(ctx context.Context, slug string) ([]models.Event, error) {
	target, found, err := s.GetEventBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("similar events for %q: %w", slug, store.ErrNotFound)
	}

	all, err := s.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	strategy := s.Similarity
	if strategy == nil {
		strategy = SharedTags{}
	}
	return strategy.Similar(*target, all), nil
}

// refresh writes the updated event through and evicts its previous slug.
func (s *EventService) refresh(ctx context.Context, prevSlug string, event *models.Event) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Put(ctx, event); err != nil {
		s.Logger.Warn("CACHE", err.Error())
		if err := s.Cache.Evict(ctx, event.Slug); err != nil {
			s.Logger.Error("CACHE", fmt.Sprintf("%s may be stale: %v", event.Slug, err))
		}
	}
	if prevSlug != event.Slug {
		if err := s.Cache.Evict(ctx, prevSlug); err != nil {
			s.Logger.Error("CACHE", fmt.Sprintf("%s may be stale: %v", prevSlug, err))
		}
	}
}

func (s *EventService) recordInvalid(err error) {
	if ve, ok := validation.As(err); ok {
		s.Metrics.ValidationFailed("event", ve.Field)
	}
}
