package foundationdb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsWritePrometheusIncludesIncrementedCounters(t *testing.T) {
	m := newMetrics()
	m.clientsRegistered.Inc()
	m.activeSwaps.Inc()
	m.activeSwaps.Inc()

	var buf bytes.Buffer
	m.WritePrometheus(&buf)

	out := buf.String()
	require.Contains(t, out, "foundationdb_clients_registered_total")
	require.Contains(t, out, "foundationdb_active_swaps_total")
}
