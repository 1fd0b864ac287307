package foundationdb

import (
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics groups the counters and gauges an embedding application can
// scrape via WritePrometheus (spec SPEC_FULL §4.J). The facade never
// starts an HTTP listener itself.
type Metrics struct {
	set *metrics.Set

	clientsRegistered  *metrics.Counter
	activeSwaps        *metrics.Counter
	probeFailures      *metrics.Counter
	legacyProbes       *metrics.Counter
	futuresCompleted   *metrics.Counter
	futuresCancelled   *metrics.Counter
	callbacksFired     *metrics.Counter
}

func newMetrics() *Metrics {
	set := metrics.NewSet()
	return &Metrics{
		set:                set,
		clientsRegistered:  set.NewCounter("foundationdb_clients_registered_total"),
		activeSwaps:        set.NewCounter("foundationdb_active_swaps_total"),
		probeFailures:      set.NewCounter("foundationdb_probe_failures_total"),
		legacyProbes:       set.NewCounter("foundationdb_legacy_probes_total"),
		futuresCompleted:   set.NewCounter("foundationdb_futures_completed_total"),
		futuresCancelled:   set.NewCounter("foundationdb_futures_cancelled_total"),
		callbacksFired:     set.NewCounter("foundationdb_callbacks_fired_total"),
	}
}

// WritePrometheus renders every tracked metric in Prometheus text format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}
