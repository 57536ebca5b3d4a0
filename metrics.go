package uorm

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PoolCollector exports Pool.Stats as prometheus metrics
type PoolCollector struct {
	pool *Pool

	idle           *prometheus.Desc
	inUse          *prometheus.Desc
	open           *prometheus.Desc
	created        *prometheus.Desc
	createFailures *prometheus.Desc
	recreated      *prometheus.Desc
	waits          *prometheus.Desc
	waitTimeouts   *prometheus.Desc
}

var _ prometheus.Collector = (*PoolCollector)(nil)

// NewPoolCollector returns a collector labelled with the pool name
func NewPoolCollector(pool *Pool, namespace string) *PoolCollector {
	labels := prometheus.Labels{"pool": pool.Name()}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "pool", name), help, nil, labels)
	}

	return &PoolCollector{
		pool:           pool,
		idle:           desc("idle_connections", "Number of idle connections."),
		inUse:          desc("in_use_connections", "Number of borrowed connections."),
		open:           desc("open_connections", "Number of open connections."),
		created:        desc("created_total", "Total connections created."),
		createFailures: desc("create_failures_total", "Total failed connection attempts."),
		recreated:      desc("recreated_total", "Total invalid connections replaced on borrow."),
		waits:          desc("waits_total", "Total borrows that had to wait."),
		waitTimeouts:   desc("wait_timeouts_total", "Total borrows abandoned by timeout or cancellation."),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.idle
	ch <- c.inUse
	ch <- c.open
	ch <- c.created
	ch <- c.createFailures
	ch <- c.recreated
	ch <- c.waits
	ch <- c.waitTimeouts
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.pool.Stats()
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(stats.Idle))
	ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(stats.InUse))
	ch <- prometheus.MustNewConstMetric(c.open, prometheus.GaugeValue, float64(stats.Open))
	ch <- prometheus.MustNewConstMetric(c.created, prometheus.CounterValue, float64(stats.Created))
	ch <- prometheus.MustNewConstMetric(c.createFailures, prometheus.CounterValue, float64(stats.CreateFailures))
	ch <- prometheus.MustNewConstMetric(c.recreated, prometheus.CounterValue, float64(stats.Recreated))
	ch <- prometheus.MustNewConstMetric(c.waits, prometheus.CounterValue, float64(stats.Waits))
	ch <- prometheus.MustNewConstMetric(c.waitTimeouts, prometheus.CounterValue, float64(stats.WaitTimeouts))
}
