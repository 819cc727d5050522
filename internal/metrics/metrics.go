package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Players = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "minesweeper_players",
			Help: "Players currently connected",
		},
	)
	Connections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minesweeper_connections_total",
			Help: "Total connections accepted per transport",
		},
		[]string{"transport"},
	)
	Commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minesweeper_commands_total",
			Help: "Total commands processed",
		},
		[]string{"command"},
	)
	Detonations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "minesweeper_detonations_total",
			Help: "Total bombs detonated",
		},
	)
	ConnectionsRefused = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "minesweeper_connections_refused_total",
			Help: "Total connections refused by the rate limiter",
		},
	)
)

func init() {
	prometheus.MustRegister(Players)
	prometheus.MustRegister(Connections)
	prometheus.MustRegister(Commands)
	prometheus.MustRegister(Detonations)
	prometheus.MustRegister(ConnectionsRefused)
}

// Handler serves the Prometheus exposition format for the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
