package domain

// HistoryRepository persists acquisition outcomes across runs
type HistoryRepository interface {
	// SaveRecord persists one record
	SaveRecord(record *AcquisitionRecord) error

	// FindByRun returns all records of a run in creation order
	FindByRun(runID string) ([]*AcquisitionRecord, error)

	// RecentRuns returns per-run aggregates, newest first
	RecentRuns(limit int) ([]*RunSummary, error)

	// Stats returns aggregate counts over all records
	Stats() (*HistoryStats, error)

	// Close releases the underlying store
	Close() error
}
