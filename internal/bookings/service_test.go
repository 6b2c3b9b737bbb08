package bookings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-events/internal/database"
	"ms-events/internal/models"
	"ms-events/internal/store"
	"ms-events/internal/validation"
)

type MockConnector struct {
	mock.Mock
}

func (m *MockConnector) Connect(ctx context.Context) (*store.Handle, error) {
	args := m.Called(ctx)
	h, _ := args.Get(0).(*store.Handle)
	return h, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishBookingCreated(ctx context.Context, booking models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func newTestService(t *testing.T) (*BookingService, *store.Handle) {
	t.Helper()
	uri := fmt.Sprintf("sqlite:file:%s?mode=memory&cache=shared", uuid.NewString())
	m, err := database.NewStoreManager(uri, database.OpenOptions{AutoMigrate: true}, 5*time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { m.Disconnect(context.Background()) })

	h, err := m.Connect(context.Background())
	require.NoError(t, err)
	return NewBookingService(m, nil), h
}

func seedEvent(t *testing.T, h *store.Handle, slug string) *models.Event {
	t.Helper()
	e := &models.Event{
		Title: slug, Slug: slug, Description: "d", Overview: "o", Image: "/i.png",
		Venue: "v", Location: "l", Date: "2025-01-01", Time: "10:00", Mode: "online",
		Audience: "all", Agenda: []string{"a"}, Organizer: "org", Tags: []string{"t"},
	}
	require.NoError(t, h.Events.Create(context.Background(), e))
	return e
}

func TestBookingService_CreateBooking(t *testing.T) {
	svc, h := newTestService(t)
	event := seedEvent(t, h, "gophercon")

	b, err := svc.CreateBooking(context.Background(), models.BookingInput{EventID: event.ID, Email: " Gopher@Example.com "})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "gopher@example.com", b.Email)

	n, err := svc.CountBookings(context.Background(), "gophercon")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := svc.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, stored.EventID)
}

func TestBookingService_UnknownEventLeavesBookingsUnchanged(t *testing.T) {
	svc, h := newTestService(t)
	event := seedEvent(t, h, "gophercon")
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, models.BookingInput{EventID: event.ID, Email: "a@b.co"})
	require.NoError(t, err)

	before, err := h.Bookings.CountByEvent(ctx, event.ID)
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, models.BookingInput{EventID: "does-not-exist", Email: "a@b.co"})
	assert.ErrorIs(t, err, store.ErrEventNotFound)

	after, err := h.Bookings.CountByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	n, err := h.Bookings.CountByEvent(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBookingService_BadEmailNeverConnects(t *testing.T) {
	conn := new(MockConnector)
	svc := NewBookingService(conn, nil)

	_, err := svc.CreateBooking(context.Background(), models.BookingInput{EventID: "evt-1", Email: "not-an-email"})

	ve, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, "email", ve.Field)
	conn.AssertNotCalled(t, "Connect", mock.Anything)
}

func TestBookingService_ConnectFailure(t *testing.T) {
	boom := errors.New("no route to host")
	conn := new(MockConnector)
	conn.On("Connect", mock.Anything).Return(nil, boom)
	svc := NewBookingService(conn, nil)

	_, err := svc.CreateBooking(context.Background(), models.BookingInput{EventID: "evt-1", Email: "a@b.co"})
	assert.ErrorIs(t, err, boom)
}

func TestBookingService_PublishFailureDoesNotFailBooking(t *testing.T) {
	svc, h := newTestService(t)
	event := seedEvent(t, h, "gophercon")

	pub := new(MockPublisher)
	pub.On("PublishBookingCreated", mock.Anything, mock.AnythingOfType("models.Booking")).Return(errors.New("broker down"))
	svc.Publisher = pub

	b, err := svc.CreateBooking(context.Background(), models.BookingInput{EventID: event.ID, Email: "a@b.co"})
	require.NoError(t, err)
	assert.NotNil(t, b)
	pub.AssertExpectations(t)
}

func TestBookingService_CountUnknownEvent(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CountBookings(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBookingService_Pass(t *testing.T) {
	svc, h := newTestService(t)
	event := seedEvent(t, h, "gophercon")

	b, err := svc.CreateBooking(context.Background(), models.BookingInput{EventID: event.ID, Email: "a@b.co"})
	require.NoError(t, err)

	png, err := svc.Pass(context.Background(), b.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = svc.Pass(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
