// Package store defines the persistence contract for events and bookings.
// Backends live in the bunstore and mongostore subpackages.
package store

import (
	"context"
	"errors"
	"fmt"

	"ms-events/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrSlugConflict      = errors.New("an event with this slug already exists")
	ErrEventNotFound     = errors.New("referenced event does not exist")
	ErrUnsupportedScheme = errors.New("unsupported connection string scheme")
)

type EventStore interface {
	// Create assigns ID and timestamps on e.
	Create(ctx context.Context, e *models.Event) error
	// Update replaces the stored event with the same ID and refreshes UpdatedAt.
	Update(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetBySlug(ctx context.Context, slug string) (*models.Event, error)
	Exists(ctx context.Context, id string) (bool, error)
	// List returns all events in insertion order.
	List(ctx context.Context) ([]models.Event, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	CountByEvent(ctx context.Context, eventID string) (int, error)
}

// Stores is the set of stores bound to one connection or transaction.
type Stores struct {
	Events   EventStore
	Bookings BookingStore
}

// TxFunc runs fn with stores bound to a single transaction when the backend has one.
type TxFunc func(ctx context.Context, fn func(ctx context.Context, s Stores) error) error

// Handle is one live store connection.
type Handle struct {
	Backend string
	Stores

	runInTx TxFunc
	close   func(ctx context.Context) error
}

func NewHandle(backend string, stores Stores, runInTx TxFunc, closeFn func(ctx context.Context) error) *Handle {
	return &Handle{Backend: backend, Stores: stores, runInTx: runInTx, close: closeFn}
}

// RunInTx falls back to running fn on the plain stores when no transaction support was given.
func (h *Handle) RunInTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	if h.runInTx == nil {
		return fn(ctx, h.Stores)
	}
	return h.runInTx(ctx, fn)
}

func (h *Handle) Close(ctx context.Context) error {
	if h == nil || h.close == nil {
		return nil
	}
	if err := h.close(ctx); err != nil {
		return fmt.Errorf("close %s store: %w", h.Backend, err)
	}
	return nil
}

// Connector hands out the current store handle, connecting on first use.
type Connector interface {
	Connect(ctx context.Context) (*Handle, error)
}
