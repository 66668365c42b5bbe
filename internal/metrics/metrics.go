// Package metrics exposes game counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chomp/streetartctf/internal/game"
	"github.com/chomp/streetartctf/internal/notify"
	"github.com/chomp/streetartctf/internal/syncer"
)

type Metrics struct {
	registry *prometheus.Registry

	captures      *prometheus.CounterVec
	points        *prometheus.CounterVec
	sectorChanges *prometheus.CounterVec
	notifications prometheus.Counter
	wsClients     prometheus.Gauge
}

// New registers the game collectors plus the Go runtime and process
// collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		captures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chomp",
			Name:      "captures_total",
			Help:      "Successful captures by team and kind.",
		}, []string{"team", "kind"}),
		points: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chomp",
			Name:      "points_total",
			Help:      "Points awarded by captures, by team.",
		}, []string{"team"}),
		sectorChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chomp",
			Name:      "sector_changes_total",
			Help:      "Changes of area control, by area.",
		}, []string{"area"}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chomp",
			Name:      "notifications_total",
			Help:      "Capture notifications shown.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chomp",
			Name:      "websocket_clients",
			Help:      "Connected WebSocket clients.",
		}),
	}
	m.registry.MustRegister(
		m.captures,
		m.points,
		m.sectorChanges,
		m.notifications,
		m.wsClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveCapture(ev game.CaptureEvent) {
	kind := "first"
	if ev.IsRecapture {
		kind = "recapture"
	}
	m.captures.WithLabelValues(string(ev.Team), kind).Inc()
	m.points.WithLabelValues(string(ev.Team)).Add(float64(ev.Points))
}

func (m *Metrics) ObserveSectorChange(sc syncer.SectorChange) {
	m.sectorChanges.WithLabelValues(sc.Area).Inc()
}

// ObserveNotification counts shown notifications; dismissals are ignored.
func (m *Metrics) ObserveNotification(ev notify.Event) {
	if ev.Type == notify.Shown {
		m.notifications.Inc()
	}
}

// WSClients is the gauge the WebSocket hub keeps current.
func (m *Metrics) WSClients() prometheus.Gauge { return m.wsClients }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
