package metrics_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	tivity "github.com/goliatone/go-tivity"
	"github.com/goliatone/go-tivity/pkg/metrics"
)

var _ tivity.MetricsRecorder = (*metrics.Collector)(nil)

func newTestCollector(t *testing.T) *metrics.Collector {
	t.Helper()
	return metrics.New(prometheus.NewRegistry())
}

func TestCollectorCountsCommitsAndWrites(t *testing.T) {
	c := newTestCollector(t)

	c.ObserveCommit("counter", 2)
	c.ObserveCommit("counter", 1)
	c.ObserveNotification("counter")
	c.ObserveStorageWrite("counter", nil)
	c.ObserveStorageWrite("counter", errors.New("disk full"))

	if got := testutil.ToFloat64(c.CommitsTotal.WithLabelValues("counter")); got != 2 {
		t.Errorf("CommitsTotal = %f, want 2", got)
	}
	if got := testutil.ToFloat64(c.CommittedKeysTotal.WithLabelValues("counter")); got != 3 {
		t.Errorf("CommittedKeysTotal = %f, want 3", got)
	}
	if got := testutil.ToFloat64(c.NotificationsTotal.WithLabelValues("counter")); got != 1 {
		t.Errorf("NotificationsTotal = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.StorageWritesTotal.WithLabelValues("counter", metrics.ResultSuccess)); got != 1 {
		t.Errorf("StorageWritesTotal[success] = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.StorageWritesTotal.WithLabelValues("counter", metrics.ResultError)); got != 1 {
		t.Errorf("StorageWritesTotal[error] = %f, want 1", got)
	}
}

func TestCollectorWiredIntoStore(t *testing.T) {
	c := newTestCollector(t)
	store, err := tivity.Create(tivity.Fields{tivity.Data("count", 0)},
		tivity.WithStoreID("wired"),
		tivity.WithMetrics(c),
		tivity.WithLogger(nil),
	)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.Subscribe(func(prev, next *tivity.Snapshot) {})

	if err := store.Commit(tivity.Partial{"count": 1}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if got := testutil.ToFloat64(c.CommitsTotal.WithLabelValues("wired")); got != 1 {
		t.Errorf("CommitsTotal = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.NotificationsTotal.WithLabelValues("wired")); got != 1 {
		t.Errorf("NotificationsTotal = %f, want 1", got)
	}
}

func TestCollectorHydrationOutcomes(t *testing.T) {
	c := newTestCollector(t)
	c.ObserveHydration("post", tivity.HydrationMigrated)

	if got := testutil.ToFloat64(c.HydrationsTotal.WithLabelValues("post", tivity.HydrationMigrated)); got != 1 {
		t.Errorf("HydrationsTotal[migrated] = %f, want 1", got)
	}
}
