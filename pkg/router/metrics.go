package router

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcome labels.
const (
	statusOK      = "ok"
	statusAbort   = "abort"
	statusError   = "error"
	statusPanic   = "panic"
	statusUnknown = "unknown_command"
)

// Metrics tracks dispatch outcomes and handler latency.
//
// All record methods tolerate a nil receiver so a router without metrics
// costs nothing.
type Metrics struct {
	// Dispatches counts command dispatches.
	// Labels: command, status (ok|abort|error|panic|unknown_command)
	Dispatches *prometheus.CounterVec

	// HandlerDuration measures handler execution time in seconds.
	// Labels: command
	HandlerDuration *prometheus.HistogramVec

	// Autocompletes counts autocomplete dispatches.
	// Labels: command, status (ok|error)
	Autocompletes *prometheus.CounterVec
}

// NewMetrics creates and registers the router metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slashkit",
			Subsystem: "router",
			Name:      "dispatches_total",
			Help:      "Command dispatches by command and outcome.",
		}, []string{"command", "status"}),
		HandlerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "slashkit",
			Subsystem: "router",
			Name:      "handler_duration_seconds",
			Help:      "Handler execution time.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"command"}),
		Autocompletes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slashkit",
			Subsystem: "router",
			Name:      "autocompletes_total",
			Help:      "Autocomplete dispatches by command and outcome.",
		}, []string{"command", "status"}),
	}
}

func (m *Metrics) recordDispatch(cmd, status string) {
	if m == nil {
		return
	}
	m.Dispatches.WithLabelValues(cmd, status).Inc()
}

func (m *Metrics) recordLatency(cmd string, d time.Duration) {
	if m == nil {
		return
	}
	m.HandlerDuration.WithLabelValues(cmd).Observe(d.Seconds())
}

func (m *Metrics) recordAutocomplete(cmd, status string) {
	if m == nil {
		return
	}
	m.Autocompletes.WithLabelValues(cmd, status).Inc()
}
