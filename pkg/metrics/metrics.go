// Package metrics exports store activity as Prometheus metrics.
//
// A Collector satisfies tivity.MetricsRecorder. Register it once per process
// and pass it to every store through tivity.WithMetrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "tivity"
	storeSubsystem   = "store"
)

// Result label values for storage writes.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Collector holds the store counters.
type Collector struct {
	// CommitsTotal counts commits. Labels: store.
	CommitsTotal *prometheus.CounterVec
	// CommittedKeysTotal counts keys merged by commits. Labels: store.
	CommittedKeysTotal *prometheus.CounterVec
	// NotificationsTotal counts listener invocations. Labels: store.
	NotificationsTotal *prometheus.CounterVec
	// StorageWritesTotal counts persistence writes. Labels: store, result.
	StorageWritesTotal *prometheus.CounterVec
	// HydrationsTotal counts hydrations. Labels: store, outcome.
	HydrationsTotal *prometheus.CounterVec
}

// New registers the collector on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Collector{
		CommitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: storeSubsystem,
			Name:      "commits_total",
			Help:      "Number of commits merged into a store.",
		}, []string{"store"}),
		CommittedKeysTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: storeSubsystem,
			Name:      "committed_keys_total",
			Help:      "Number of keys merged by commits.",
		}, []string{"store"}),
		NotificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: storeSubsystem,
			Name:      "notifications_total",
			Help:      "Number of listener invocations.",
		}, []string{"store"}),
		StorageWritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: storeSubsystem,
			Name:      "storage_writes_total",
			Help:      "Number of persistence writes by result.",
		}, []string{"store", "result"}),
		HydrationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: storeSubsystem,
			Name:      "hydrations_total",
			Help:      "Number of hydrations by outcome.",
		}, []string{"store", "outcome"}),
	}
}

func (c *Collector) ObserveCommit(storeID string, keys int) {
	c.CommitsTotal.WithLabelValues(storeID).Inc()
	c.CommittedKeysTotal.WithLabelValues(storeID).Add(float64(keys))
}

func (c *Collector) ObserveNotification(storeID string) {
	c.NotificationsTotal.WithLabelValues(storeID).Inc()
}

func (c *Collector) ObserveStorageWrite(storeID string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	c.StorageWritesTotal.WithLabelValues(storeID, result).Inc()
}

func (c *Collector) ObserveHydration(storeID, outcome string) {
	c.HydrationsTotal.WithLabelValues(storeID, outcome).Inc()
}
