package core

import "github.com/prometheus/client_golang/prometheus"

var (
	readersDesc = prometheus.NewDesc(
		"flashmap_readers",
		"Number of currently registered reader handles.",
		nil, nil,
	)
	residualDesc = prometheus.NewDesc(
		"flashmap_residual",
		"Outstanding residual readers still pinning the writer's previous side, or a negative value while the writer is parked waiting on them.",
		nil, nil,
	)
	approxLenDesc = prometheus.NewDesc(
		"flashmap_entries",
		"Entry count as of the most recently completed publish.",
		nil, nil,
	)
	publishesDesc = prometheus.NewDesc(
		"flashmap_publishes_total",
		"Number of completed publishes.",
		nil, nil,
	)
	parksDesc = prometheus.NewDesc(
		"flashmap_writer_parks_total",
		"Number of times the writer parked waiting on residual readers.",
		nil, nil,
	)
)

// Describe implements prometheus.Collector. Core is never registered
// automatically; a caller that wants metrics registers the *Core itself (or
// whatever exposes it) with their own registry.
func (c *Core[K, V]) Describe(ch chan<- *prometheus.Desc) {
	ch <- readersDesc
	ch <- residualDesc
	ch <- approxLenDesc
	ch <- publishesDesc
	ch <- parksDesc
}

// Collect implements prometheus.Collector. Every value it reports comes
// from either a mutex-guarded field or an atomic, so calling it
// concurrently with any writer or reader activity is safe; approxLenDesc is
// necessarily a lagging snapshot (see RecordLen).
func (c *Core[K, V]) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	readers := float64(c.refcounts.Len())
	c.mu.Unlock()

	ch <- prometheus.MustNewConstMetric(readersDesc, prometheus.GaugeValue, readers)
	ch <- prometheus.MustNewConstMetric(residualDesc, prometheus.GaugeValue, float64(c.residual.Load()))
	ch <- prometheus.MustNewConstMetric(approxLenDesc, prometheus.GaugeValue, float64(c.approxLen.Load()))
	ch <- prometheus.MustNewConstMetric(publishesDesc, prometheus.CounterValue, float64(c.publishes.Load()))
	ch <- prometheus.MustNewConstMetric(parksDesc, prometheus.CounterValue, float64(c.parks.Load()))
}
