package call

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks call codec activity.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// EncodedTotal counts outgoing calls flushed, by procedure
	EncodedTotal *prometheus.CounterVec

	// DecodedTotal counts incoming calls decoded, by procedure
	DecodedTotal *prometheus.CounterVec

	// DecodeErrors counts failed decode passes, by procedure
	DecodeErrors *prometheus.CounterVec

	// EncodedBytes tracks the size of flushed calls, header included
	EncodedBytes *prometheus.HistogramVec
}

// NewMetrics creates call metrics with the nfscall_ prefix and registers
// them on reg. Panics if registration fails.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EncodedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfscall_calls_encoded_total",
				Help: "Total outgoing NFS calls encoded by procedure",
			},
			[]string{"procedure"},
		),
		DecodedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfscall_calls_decoded_total",
				Help: "Total incoming NFS calls decoded by procedure",
			},
			[]string{"procedure"},
		),
		DecodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfscall_decode_errors_total",
				Help: "Total NFS call argument sections that failed to decode",
			},
			[]string{"procedure"},
		),
		EncodedBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nfscall_encoded_bytes",
				Help:    "Size of encoded NFS calls in bytes",
				Buckets: prometheus.ExponentialBuckets(32, 2, 10), // 32B .. 16KiB
			},
			[]string{"procedure"},
		),
	}

	reg.MustRegister(m.EncodedTotal, m.DecodedTotal, m.DecodeErrors, m.EncodedBytes)
	return m
}

func (m *Metrics) recordEncoded(proc Proc, size int) {
	if m == nil {
		return
	}
	m.EncodedTotal.WithLabelValues(proc.String()).Inc()
	m.EncodedBytes.WithLabelValues(proc.String()).Observe(float64(size))
}

func (m *Metrics) recordDecoded(proc Proc) {
	if m == nil {
		return
	}
	m.DecodedTotal.WithLabelValues(proc.String()).Inc()
}

func (m *Metrics) recordDecodeError(proc Proc) {
	if m == nil {
		return
	}
	m.DecodeErrors.WithLabelValues(proc.String()).Inc()
}
