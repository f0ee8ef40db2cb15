package interfaces

// ISyncMetrics records the outcome of store round trips.
// Implementations must be safe for concurrent use.
type ISyncMetrics interface {
	ObserveAggregatePersist(outcome string)
	ObserveItemSync(operation, outcome string)
}
