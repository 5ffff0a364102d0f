// Package metrics owns the Prometheus registry and the collectors the API
// and worker report to. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "customer_api"

type Metrics struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	loginAttempts   *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	eventsHandled   *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method and route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		loginAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Login attempts by result.",
			},
			[]string{"result"},
		),
		eventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Domain events handed to the transport, by name and result.",
			},
			[]string{"event", "result"},
		),
		eventsHandled: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_handled_total",
				Help:      "Domain events processed by the worker, by name and result.",
			},
			[]string{"event", "result"},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) IncLogin(success bool) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(result(success)).Inc()
}

func (m *Metrics) IncEventPublished(name string, success bool) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(name, result(success)).Inc()
}

func (m *Metrics) IncEventHandled(name string, success bool) {
	if m == nil {
		return
	}
	m.eventsHandled.WithLabelValues(name, result(success)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
