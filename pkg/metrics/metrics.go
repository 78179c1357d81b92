package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Delta-sync engine metrics
	SyncCycles        *prometheus.CounterVec
	SyncRecordsSynced prometheus.Counter
	SyncSkippedBusy   prometheus.Counter
	SyncLatency       prometheus.Histogram

	// Backend packet store metrics
	PacketsCreated   prometheus.Counter
	PacketsProcessed prometheus.Counter
	PacketQueueSize  prometheus.Gauge

	// Triage metrics
	TriageRequests *prometheus.CounterVec

	// Broker metrics
	BrokerPublishes *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		SyncCycles: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sync_cycles_total",
			Help:      "Total number of delta-sync cycles by outcome",
		}, []string{"outcome"}),
		SyncRecordsSynced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sync_records_synced_total",
			Help:      "Total number of records transitioned to SYNCED",
		}),
		SyncSkippedBusy: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sync_skipped_busy_total",
			Help:      "Sync triggers ignored because a cycle was in flight",
		}),
		SyncLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sync_cycle_duration_seconds",
			Help:      "Time spent in a delta-sync cycle",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),

		PacketsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "packets_created_total",
			Help:      "Total number of sync packets created",
		}),
		PacketsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "packets_processed_total",
			Help:      "Total number of sync packets retired by doctors",
		}),
		PacketQueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "packet_queue_size",
			Help:      "Current number of unprocessed sync packets",
		}),

		TriageRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "triage_requests_total",
			Help:      "Total number of triage classifications by specialty",
		}, []string{"specialty"}),

		BrokerPublishes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "broker_publishes_total",
			Help:      "Total number of event publishes by channel and status",
		}, []string{"channel", "status"}),
	}
}
