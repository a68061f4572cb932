package nfs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks trace server activity. A nil *Metrics records nothing.
type Metrics struct {
	// ConnectionsActive is the number of open client connections
	ConnectionsActive prometheus.Gauge

	// ConnectionsTotal counts accepted connections
	ConnectionsTotal prometheus.Counter

	// CallsTotal counts answered calls by procedure and accept status
	CallsTotal *prometheus.CounterVec

	// CallDuration tracks time from record read to reply built
	CallDuration *prometheus.HistogramVec
}

// NewMetrics creates server metrics and registers them on reg.
// Panics if registration fails.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nfscall_server_connections_active",
			Help: "Open trace server connections",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nfscall_server_connections_total",
			Help: "Total connections accepted by the trace server",
		}),
		CallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfscall_server_calls_total",
				Help: "Total calls answered by procedure and accept status",
			},
			[]string{"procedure", "status"},
		),
		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nfscall_server_call_duration_seconds",
				Help:    "Call handling duration by procedure",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"procedure"},
		),
	}

	reg.MustRegister(m.ConnectionsActive, m.ConnectionsTotal, m.CallsTotal, m.CallDuration)
	return m
}

func (m *Metrics) connOpened() {
	if m == nil {
		return
	}
	m.ConnectionsActive.Inc()
	m.ConnectionsTotal.Inc()
}

func (m *Metrics) connClosed() {
	if m == nil {
		return
	}
	m.ConnectionsActive.Dec()
}

func (m *Metrics) recordCall(procedure, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.CallsTotal.WithLabelValues(procedure, status).Inc()
	m.CallDuration.WithLabelValues(procedure).Observe(d.Seconds())
}
