package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coreguardian "3tcapital/bridgeguardian/internal/core/guardian"
)

const namespace = "proton_guardian"

// SnapshotSource yields a consistent copy of the guardian counters.
type SnapshotSource interface {
	Snapshot(now time.Time) coreguardian.Snapshot
}

// Collector exports the guardian counters. Each scrape takes exactly one
// snapshot, so all seven values come from the same critical section.
type Collector struct {
	source SnapshotSource
	limit  int
	now    func() time.Time

	checksTotal    *prometheus.Desc
	failuresTotal  *prometheus.Desc
	restartsTotal  *prometheus.Desc
	recentRestarts *prometheus.Desc
	restartLimit   *prometheus.Desc
	lastRestart    *prometheus.Desc
	bridgeStatus   *prometheus.Desc
}

// NewCollector builds a collector over source. limit is the configured
// restarts-per-hour budget; now defaults to time.Now.
func NewCollector(source SnapshotSource, limit int, now func() time.Time) *Collector {
	if now == nil {
		now = time.Now
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}

	return &Collector{
		source:         source,
		limit:          limit,
		now:            now,
		checksTotal:    desc("imap_checks_total", "Total IMAP health checks performed"),
		failuresTotal:  desc("imap_failures_total", "Number of failed IMAP checks"),
		restartsTotal:  desc("restarts_total", "Number of bridge restarts triggered"),
		recentRestarts: desc("recent_restarts", "Number of restarts in the last hour"),
		restartLimit:   desc("restart_limit", "Maximum allowed restarts per hour"),
		lastRestart:    desc("last_restart_timestamp", "Unix timestamp of last restart"),
		bridgeStatus:   desc("bridge_status", "Current IMAP health (1=healthy, 0=unhealthy)"),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.checksTotal
	ch <- c.failuresTotal
	ch <- c.restartsTotal
	ch <- c.recentRestarts
	ch <- c.restartLimit
	ch <- c.lastRestart
	ch <- c.bridgeStatus
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source.Snapshot(c.now())

	ch <- prometheus.MustNewConstMetric(c.checksTotal, prometheus.CounterValue, float64(snap.ChecksTotal))
	ch <- prometheus.MustNewConstMetric(c.failuresTotal, prometheus.CounterValue, float64(snap.FailuresTotal))
	ch <- prometheus.MustNewConstMetric(c.restartsTotal, prometheus.CounterValue, float64(snap.RestartsTotal))
	ch <- prometheus.MustNewConstMetric(c.recentRestarts, prometheus.GaugeValue, float64(snap.RecentRestarts))
	ch <- prometheus.MustNewConstMetric(c.restartLimit, prometheus.GaugeValue, float64(c.limit))
	ch <- prometheus.MustNewConstMetric(c.lastRestart, prometheus.GaugeValue, snap.LastRestartUnix())
	ch <- prometheus.MustNewConstMetric(c.bridgeStatus, prometheus.GaugeValue, float64(snap.Status))
}
