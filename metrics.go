package tivity

// Hydration outcomes reported to MetricsRecorder.ObserveHydration.
const (
	HydrationDefaults = "defaults"
	HydrationRestored = "restored"
	HydrationMigrated = "migrated"
	HydrationFailed   = "failed"
)

// MetricsRecorder receives store counters. Implementations must be safe for
// concurrent use.
type MetricsRecorder interface {
	ObserveCommit(storeID string, keys int)
	ObserveNotification(storeID string)
	ObserveStorageWrite(storeID string, err error)
	ObserveHydration(storeID string, outcome string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveCommit(string, int)         {}
func (noopMetrics) ObserveNotification(string)        {}
func (noopMetrics) ObserveStorageWrite(string, error) {}
func (noopMetrics) ObserveHydration(string, string)   {}
