// Package metrics holds the Prometheus collectors for oscbridge.
//
// All collectors are registered on a private registry so tests and embedded
// uses never collide with the global default registry. A nil *Metrics is valid
// and records nothing, which lets components take metrics as an optional
// dependency.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "oscbridge"

// Message results.
const (
	ResultDispatched      = "dispatched"
	ResultInvalidAddress  = "invalid_address"
	ResultUnknownCommand  = "unknown_command"
	ResultInvalidArgument = "invalid_argument"
	ResultRateLimited     = "rate_limited"
)

// Target request results.
const (
	ResultOK             = "ok"
	ResultHTTPError      = "http_error"
	ResultTransportError = "transport_error"
)

// Metrics holds the collectors exported by the bridge.
type Metrics struct {
	registry *prometheus.Registry

	messages       *prometheus.CounterVec
	targetRequests *prometheus.CounterVec
	targetDuration *prometheus.HistogramVec
	decodeErrors   prometheus.Counter
}

// New creates the collectors and registers them, together with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "OSC messages handled, by routing result",
		}, []string{"result"}),
		targetRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "target_requests_total",
			Help:      "HTTP control requests sent to VLC targets, by result",
		}, []string{"target", "result"}),
		targetDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "target_request_duration_seconds",
			Help:      "Duration of HTTP control requests to VLC targets",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"target"}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "osc_decode_errors_total",
			Help:      "UDP datagrams that could not be decoded as OSC packets",
		}),
	}

	m.registry.MustRegister(
		m.messages,
		m.targetRequests,
		m.targetDuration,
		m.decodeErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}

// MessageHandled counts one routed message.
func (m *Metrics) MessageHandled(result string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(result).Inc()
}

// TargetRequest records the outcome and duration of one request to a target.
func (m *Metrics) TargetRequest(target, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.targetRequests.WithLabelValues(target, result).Inc()
	m.targetDuration.WithLabelValues(target).Observe(elapsed.Seconds())
}

// DecodeError counts one undecodable datagram.
func (m *Metrics) DecodeError() {
	if m == nil {
		return
	}
	m.decodeErrors.Inc()
}
