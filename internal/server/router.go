// Package server assembles the HTTP router.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ms-events/internal/bookings/booking_api"
	"ms-events/internal/database"
	"ms-events/internal/events/event_api"
	"ms-events/internal/logger"
	"ms-events/internal/metrics"
	"ms-events/internal/store"
	"ms-events/internal/utils"
)

type HealthChecker interface {
	Connect(ctx context.Context) (*store.Handle, error)
	State() database.State
}

type Deps struct {
	Events   *event_api.Handler
	Bookings *booking_api.Handler
	Health   HealthChecker
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log, d.Metrics))

	r.Get("/healthz", healthHandler(d.Health))
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api/events", func(r chi.Router) {
		d.Events.Register(r)
		r.Get("/{slug}/bookings/count", d.Bookings.CountForEvent)
	})
	r.Route("/api/bookings", d.Bookings.Register)

	return r
}

func requestLogger(log *logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.HTTPRequest(route, status)
			log.LogAPI(r.Method, r.URL.Path, status, time.Since(start).Round(time.Microsecond))
		})
	}
}

func healthHandler(h HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h == nil {
			utils.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		handle, err := h.Connect(ctx)
		if err != nil {
			utils.WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database is not reachable")
			return
		}
		utils.WriteSuccess(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"database": h.State().String(),
			"backend":  handle.Backend,
		})
	}
}
