package event_api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-events/internal/events"
	"ms-events/internal/store"
)

type failingConnector struct{}

func (failingConnector) Connect(ctx context.Context) (*store.Handle, error) {
	return nil, errors.New("server selection timeout: 10.0.0.5:27017")
}

func TestGetEvent_StoreFailureIsInternalError(t *testing.T) {
	h := NewHandler(events.NewEventService(failingConnector{}, nil), nil)
	r := chi.NewRouter()
	r.Route("/api/events", h.Register)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/gophercon", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "10.0.0.5")
}

func TestListEvents_StoreFailure(t *testing.T) {
	h := NewHandler(events.NewEventService(failingConnector{}, nil), nil)
	r := chi.NewRouter()
	r.Route("/api/events", h.Register)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
