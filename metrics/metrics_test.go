package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentRegistry(t *testing.T) {
	t.Parallel()

	reg := NewComponentRegistry("wsdissector", "testscope")
	c := reg.NewCounter(prometheus.CounterOpts{
		Name: "events_total",
		Help: "test counter",
	})
	c.Add(3)

	families, err := GetRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if mf.GetName() == "wsdissector_testscope_events_total" {
			found = true
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, 3.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found, "counter not registered under component scope")
}

func TestGetRegistry_Singleton(t *testing.T) {
	t.Parallel()

	assert.Same(t, GetRegistry(), GetRegistry())
}
