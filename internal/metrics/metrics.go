// Package metrics exposes the service's Prometheus counters on a private registry.
// All recorders are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	eventsCreated      prometheus.Counter
	bookingsCreated    prometheus.Counter
	validationFailures *prometheus.CounterVec
	connectAttempts    *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)
	return &Metrics{
		reg: reg,
		eventsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "events_created_total",
			Help: "Total number of events created.",
		}),
		bookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of bookings created.",
		}),
		validationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Total number of rejected event or booking inputs.",
		}, []string{"entity", "field"}),
		connectAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "store_connect_attempts_total",
			Help: "Total number of store connection attempts by result.",
		}, []string{"result"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route pattern and status.",
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) EventCreated() {
	if m == nil {
		return
	}
	m.eventsCreated.Inc()
}

func (m *Metrics) BookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

func (m *Metrics) ValidationFailed(entity, field string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(entity, field).Inc()
}

// ConnectAttempt records "success" or "failure".
func (m *Metrics) ConnectAttempt(result string) {
	if m == nil {
		return
	}
	m.connectAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) HTTPRequest(route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
