package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersCleanly(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()

	require.NoError(t, m.Register(reg))

	// Exercise each metric once so they show up in a gather.
	m.MessagesReceived.WithLabelValues("recovery-processor").Inc()
	m.MessagesProcessed.WithLabelValues("recovery-processor", "success").Inc()
	m.OperationsTotal.WithLabelValues("cleanup").Inc()
	m.CompressionRatio.Observe(0.42)
	m.DecodeRetries.Inc()
	m.NATSConnected.Set(1)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewMetrics_DuplicateRegistrationFails(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()

	require.NoError(t, m.Register(reg))
	assert.Error(t, m.Register(reg))
}

func TestNewRegistry_IncludesRuntimeCollectors(t *testing.T) {
	reg, err := NewRegistry(NewMetrics())
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	var hasGoMetrics bool
	for _, f := range families {
		if f.GetName() == "go_goroutines" {
			hasGoMetrics = true
			break
		}
	}
	assert.True(t, hasGoMetrics)
}
