package database

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-events/internal/store"
)

type fakeConn struct {
	id     int32
	closed atomic.Bool
}

func TestManager_ConcurrentConnectDialsOnce(t *testing.T) {
	var dials atomic.Int32
	release := make(chan struct{})

	m := NewManager(func(ctx context.Context) (*fakeConn, error) {
		n := dials.Add(1)
		<-release
		return &fakeConn{id: n}, nil
	}, nil)

	const callers = 20
	var wg sync.WaitGroup
	results := make([]*fakeConn, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn, err := m.Connect(context.Background())
			assert.NoError(t, err)
			results[i] = conn
		}(i)
	}

	require.Eventually(t, func() bool { return m.State() == StateConnecting }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), dials.Load())
	for _, c := range results {
		assert.Same(t, results[0], c)
	}
	assert.Equal(t, StateConnected, m.State())
}

func TestManager_ConnectedReturnsCachedHandle(t *testing.T) {
	var dials atomic.Int32
	m := NewManager(func(ctx context.Context) (*fakeConn, error) {
		dials.Add(1)
		return &fakeConn{}, nil
	}, nil)

	first, err := m.Connect(context.Background())
	require.NoError(t, err)
	second, err := m.Connect(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), dials.Load())
}

func TestManager_FailureResetsAndAllWaitersSeeError(t *testing.T) {
	boom := errors.New("connection refused")
	release := make(chan struct{})
	var dials atomic.Int32

	m := NewManager(func(ctx context.Context) (*fakeConn, error) {
		if dials.Add(1) == 1 {
			<-release
			return nil, boom
		}
		return &fakeConn{}, nil
	}, nil)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Connect(context.Background())
		}(i)
	}
	require.Eventually(t, func() bool { return m.State() == StateConnecting }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, StateUninitialized, m.State())

	conn, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, conn)
	assert.Equal(t, int32(2), dials.Load())
}

func TestManager_CallerCancelDoesNotAbortAttempt(t *testing.T) {
	release := make(chan struct{})
	var dialCtxErr atomic.Value

	m := NewManager(func(ctx context.Context) (*fakeConn, error) {
		<-release
		if ctx.Err() != nil {
			dialCtxErr.Store(ctx.Err())
		}
		return &fakeConn{}, nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := m.Connect(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool { return m.State() == StateConnecting }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)
	conn, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, conn)
	assert.Nil(t, dialCtxErr.Load())
}

func TestManager_DisconnectClosesAndAllowsReconnect(t *testing.T) {
	var dials atomic.Int32
	m := NewManager(func(ctx context.Context) (*fakeConn, error) {
		return &fakeConn{id: dials.Add(1)}, nil
	}, func(ctx context.Context, c *fakeConn) error {
		c.closed.Store(true)
		return nil
	})

	first, err := m.Connect(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Disconnect(context.Background()))
	assert.True(t, first.closed.Load())
	assert.Equal(t, StateUninitialized, m.State())

	second, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), dials.Load())

	assert.NoError(t, m.Disconnect(context.Background()))
	assert.NoError(t, m.Disconnect(context.Background()))
}

func TestManager_DialTimeout(t *testing.T) {
	m := NewManager(func(ctx context.Context) (*fakeConn, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, nil, WithDialTimeout(20*time.Millisecond))

	_, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateUninitialized, m.State())
}

func TestNewStoreManager_EmptyURI(t *testing.T) {
	_, err := NewStoreManager("  ", OpenOptions{}, time.Second, nil)
	assert.ErrorIs(t, err, ErrMissingConnectionString)

	_, err = NewStoreManager("redis://localhost", OpenOptions{}, time.Second, nil)
	assert.ErrorIs(t, err, store.ErrUnsupportedScheme)
}

func TestBackend(t *testing.T) {
	cases := map[string]string{
		"mongodb://localhost:27017":            "mongodb",
		"mongodb+srv://cluster.example.net/db": "mongodb",
		"postgres://u:p@localhost/events":      "postgres",
		"postgresql://localhost/events":        "postgres",
		"mysql://u:p@localhost:3306/events":    "mysql",
		"sqlite:file::memory:":                 "sqlite",
		"file:events.db":                       "sqlite",
	}
	for uri, want := range cases {
		got, err := Backend(uri)
		require.NoError(t, err, uri)
		assert.Equal(t, want, got, uri)
	}

	_, err := Backend("no-scheme")
	assert.ErrorIs(t, err, store.ErrUnsupportedScheme)
}

func TestStoreManager_SQLiteEndToEnd(t *testing.T) {
	m, err := NewStoreManager("sqlite:file:manager_e2e?mode=memory&cache=shared", OpenOptions{AutoMigrate: true}, 5*time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { m.Disconnect(context.Background()) })

	h, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sqlite", h.Backend)

	events, err := h.Events.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}
