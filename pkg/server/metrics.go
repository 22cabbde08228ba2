package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes game statistics in Prometheus format.
type Metrics struct {
	game      *Game
	startTime time.Time
	registry  *prometheus.Registry

	playersOnline prometheus.Gauge
	connections   prometheus.Gauge
	roomsTotal    prometheus.Gauge
	uptimeSeconds prometheus.Gauge
	goroutines    prometheus.Gauge
	heapBytes     prometheus.Gauge

	CommandsTotal prometheus.Counter
	LoginsTotal   prometheus.Counter
	CreatesTotal  prometheus.Counter
}

// NewMetrics creates and registers all collectors on a private registry.
func NewMetrics(game *Game, startTime time.Time) *Metrics {
	m := &Metrics{
		game:      game,
		startTime: startTime,
		registry:  prometheus.NewRegistry(),
		playersOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swampmud_players_online",
			Help: "Number of characters currently in the world.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swampmud_connections",
			Help: "Number of live client connections.",
		}),
		roomsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swampmud_rooms_total",
			Help: "Number of rooms in the loaded world.",
		}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swampmud_uptime_seconds",
			Help: "Seconds since the server started.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swampmud_goroutines",
			Help: "Number of live goroutines.",
		}),
		heapBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swampmud_heap_bytes",
			Help: "Bytes of allocated heap memory.",
		}),
		CommandsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swampmud_commands_total",
			Help: "Total player commands processed.",
		}),
		LoginsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swampmud_logins_total",
			Help: "Total successful logins.",
		}),
		CreatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swampmud_creates_total",
			Help: "Total characters created.",
		}),
	}
	m.registry.MustRegister(
		m.playersOnline, m.connections, m.roomsTotal,
		m.uptimeSeconds, m.goroutines, m.heapBytes,
		m.CommandsTotal, m.LoginsTotal, m.CreatesTotal,
	)
	return m
}

// Update refreshes the gauges from live game state.
func (m *Metrics) Update() {
	m.playersOnline.Set(float64(m.game.PlayersOnline()))
	m.connections.Set(float64(m.game.Conns.Count()))
	m.roomsTotal.Set(float64(m.game.RoomCount()))
	m.uptimeSeconds.Set(time.Since(m.startTime).Seconds())
	m.goroutines.Set(float64(runtime.NumGoroutine()))

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.heapBytes.Set(float64(ms.HeapAlloc))
}

// Handler returns an HTTP handler that refreshes gauges per scrape.
func (m *Metrics) Handler() http.Handler {
	inner := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Update()
		inner.ServeHTTP(w, r)
	})
}
