// Package database owns the process-wide store connection.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ms-events/internal/logger"
	"ms-events/internal/metrics"
)

var ErrMissingConnectionString = errors.New("database connection string is not set")

type State int

const (
	StateUninitialized State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "uninitialized"
	}
}

type DialFunc[T any] func(ctx context.Context) (T, error)

type CloseFunc[T any] func(ctx context.Context, conn T) error

type Option func(*options)

type options struct {
	dialTimeout time.Duration
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

// WithDialTimeout bounds a single connection attempt.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

type attempt[T any] struct {
	done chan struct{}
	conn T
	err  error
}

// Manager lazily establishes one shared connection.
//
// Callers arriving while an attempt is in flight wait for that same attempt.
// A failed attempt leaves the manager uninitialized so the next Connect retries.
type Manager[T any] struct {
	dial  DialFunc[T]
	close CloseFunc[T]
	opts  options

	mu      sync.Mutex
	state   State
	conn    T
	pending *attempt[T]
}

func NewManager[T any](dial DialFunc[T], closeFn CloseFunc[T], opts ...Option) *Manager[T] {
	o := options{logger: logger.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[T]{dial: dial, close: closeFn, opts: o}
}

// Connect returns the cached connection or establishes it.
// The attempt itself is not cancelled by ctx; ctx only bounds how long this caller waits.
func (m *Manager[T]) Connect(ctx context.Context) (T, error) {
	m.mu.Lock()
	switch m.state {
	case StateConnected:
		conn := m.conn
		m.mu.Unlock()
		return conn, nil
	case StateConnecting:
		a := m.pending
		m.mu.Unlock()
		return wait(ctx, a)
	}

	a := &attempt[T]{done: make(chan struct{})}
	m.pending = a
	m.state = StateConnecting
	m.mu.Unlock()

	go m.run(context.WithoutCancel(ctx), a)
	return wait(ctx, a)
}

func (m *Manager[T]) run(ctx context.Context, a *attempt[T]) {
	if m.opts.dialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.dialTimeout)
		defer cancel()
	}

	start := time.Now()
	conn, err := m.dial(ctx)

	m.mu.Lock()
	m.pending = nil
	if err != nil {
		m.state = StateUninitialized
		err = fmt.Errorf("connect to database: %w", err)
	} else {
		m.state = StateConnected
		m.conn = conn
	}
	a.conn, a.err = conn, err
	close(a.done)
	m.mu.Unlock()

	if err != nil {
		m.opts.metrics.ConnectAttempt("failure")
		m.opts.logger.Error("DATABASE", err.Error())
		return
	}
	m.opts.metrics.ConnectAttempt("success")
	m.opts.logger.Info("DATABASE", fmt.Sprintf("Connected in %s", time.Since(start).Round(time.Millisecond)))
}

func wait[T any](ctx context.Context, a *attempt[T]) (T, error) {
	select {
	case <-a.done:
		return a.conn, a.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Disconnect closes the cached connection and returns the manager to its initial state.
// An attempt in flight is awaited first.
func (m *Manager[T]) Disconnect(ctx context.Context) error {
	for {
		m.mu.Lock()
		switch m.state {
		case StateUninitialized:
			m.mu.Unlock()
			return nil
		case StateConnecting:
			a := m.pending
			m.mu.Unlock()
			select {
			case <-a.done:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		conn := m.conn
		var zero T
		m.conn = zero
		m.state = StateUninitialized
		m.mu.Unlock()

		if m.close == nil {
			return nil
		}
		if err := m.close(ctx, conn); err != nil {
			return fmt.Errorf("disconnect from database: %w", err)
		}
		m.opts.logger.Info("DATABASE", "Disconnected")
		return nil
	}
}

func (m *Manager[T]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
