// Package metrics defines the Prometheus collectors for the realtime core and
// the HTTP surface. Collectors are registered on the Registerer passed to New
// so tests can use an isolated registry.
//
// Realtime:
//   - realtime_connections: live websocket connections (gauge)
//   - realtime_identities: identities with a registered handle (gauge)
//   - realtime_handshake_rejections_total{reason}
//   - realtime_events_emitted_total{event,target}
//   - realtime_frames_dropped_total{event}: send buffer full or connection closed
//   - realtime_room_joins_total{kind,result}
//   - realtime_inbound_total{event,result}
//
// HTTP:
//   - http_requests_total{method,route,status}
//   - http_request_duration_seconds{method,route}
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the service exports.
type Metrics struct {
	Connections         prometheus.Gauge
	Identities          prometheus.Gauge
	HandshakeRejections *prometheus.CounterVec
	EventsEmitted       *prometheus.CounterVec
	FramesDropped       *prometheus.CounterVec
	RoomJoins           *prometheus.CounterVec
	Inbound             *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Connections: f.NewGauge(prometheus.GaugeOpts{
			Name: "realtime_connections",
			Help: "Live websocket connections",
		}),
		Identities: f.NewGauge(prometheus.GaugeOpts{
			Name: "realtime_identities",
			Help: "Identities with a registered transport handle",
		}),
		HandshakeRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_handshake_rejections_total",
			Help: "Connections refused during the authentication handshake",
		}, []string{"reason"}),
		EventsEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_events_emitted_total",
			Help: "Events handed to the dispatcher, by target shape",
		}, []string{"event", "target"}),
		FramesDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_frames_dropped_total",
			Help: "Frames not queued because the connection buffer was full or closed",
		}, []string{"event"}),
		RoomJoins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_room_joins_total",
			Help: "Explicit room join requests",
		}, []string{"kind", "result"}),
		Inbound: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_inbound_total",
			Help: "Client requests handled",
		}, []string{"event", "result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"method", "route"}),
	}
}

// NewNop returns collectors bound to a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
