// Package metrics provides the shared prometheus registry and helpers for
// component-scoped metric registration.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Histogram bucket presets shared across components.
var (
	// DurationBuckets covers sub-millisecond pipe round trips up to the
	// response timeout range.
	DurationBuckets = []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 10, 30}

	// SizeBuckets covers typical radio message payload sizes in bytes.
	SizeBuckets = []float64{8, 16, 64, 256, 1024, 4096, 16384, 65536}

	// CountBuckets covers small counts such as response line totals.
	CountBuckets = []float64{0, 1, 2, 5, 10, 25, 50, 100, 250}
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// GetRegistry returns the process-wide registry, creating it on first use
// with the standard Go and process collectors attached.
func GetRegistry() *prometheus.Registry {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	return registry
}

// ComponentRegistry registers metrics under a fixed namespace/subsystem pair.
type ComponentRegistry struct {
	namespace string
	subsystem string
}

// NewComponentRegistry creates a registry scope for one component.
func NewComponentRegistry(namespace, subsystem string) *ComponentRegistry {
	return &ComponentRegistry{namespace: namespace, subsystem: subsystem}
}

// NewCounter registers and returns a counter in this component's scope.
func (r *ComponentRegistry) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	opts.Namespace = r.namespace
	opts.Subsystem = r.subsystem
	c := prometheus.NewCounter(opts)
	GetRegistry().MustRegister(c)
	return c
}

// NewCounterVec registers and returns a labeled counter in this component's scope.
func (r *ComponentRegistry) NewCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	opts.Namespace = r.namespace
	opts.Subsystem = r.subsystem
	c := prometheus.NewCounterVec(opts, labels)
	GetRegistry().MustRegister(c)
	return c
}

// NewGauge registers and returns a gauge in this component's scope.
func (r *ComponentRegistry) NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	opts.Namespace = r.namespace
	opts.Subsystem = r.subsystem
	g := prometheus.NewGauge(opts)
	GetRegistry().MustRegister(g)
	return g
}

// NewHistogram registers and returns a histogram in this component's scope.
func (r *ComponentRegistry) NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	opts.Namespace = r.namespace
	opts.Subsystem = r.subsystem
	h := prometheus.NewHistogram(opts)
	GetRegistry().MustRegister(h)
	return h
}
