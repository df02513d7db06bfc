package dissector

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mobileinsight/wsdissector/metrics"
)

// Metrics holds all decode-path metrics
type Metrics struct {
	registry *metrics.ComponentRegistry

	DecodesTotal   *prometheus.CounterVec
	DecodeDuration prometheus.Histogram
	RequestBytes   prometheus.Counter
	ResponseBytes  prometheus.Counter
}

// NewMetrics creates decode-path metrics
func NewMetrics() *Metrics {
	reg := metrics.NewComponentRegistry("wsdissector", "decode")

	return &Metrics{
		registry: reg,

		DecodesTotal: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of decode requests by outcome",
		}, []string{"outcome"}),

		DecodeDuration: reg.NewHistogram(prometheus.HistogramOpts{
			Name:    "duration_seconds",
			Help:    "Round-trip duration of one decode request",
			Buckets: metrics.DurationBuckets,
		}),

		RequestBytes: reg.NewCounter(prometheus.CounterOpts{
			Name: "request_bytes_total",
			Help: "Total bytes written to the dissector",
		}),

		ResponseBytes: reg.NewCounter(prometheus.CounterOpts{
			Name: "response_bytes_total",
			Help: "Total bytes of dissected text read back",
		}),
	}
}

// Outcome labels for DecodesTotal.
const (
	outcomeOK          = "ok"
	outcomeUnsupported = "unsupported"
	outcomeTimeout     = "timeout"
	outcomeError       = "error"
)
