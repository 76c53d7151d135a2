package domain

import (
	"time"

	"github.com/google/uuid"
)

// AcquisitionRecord is the persisted form of an Outcome, one row per
// processed item, grouped by batch run.
type AcquisitionRecord struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	RunID        string    `json:"run_id" gorm:"not null;index"`
	LogicalID    string    `json:"logical_id" gorm:"not null;index"`
	SourceURL    string    `json:"source_url" gorm:"not null"`
	Status       Status    `json:"status" gorm:"not null;index"`
	Message      string    `json:"message"`
	ResolvedPath string    `json:"resolved_path,omitempty"`
	SizeBytes    int64     `json:"size_bytes,omitempty"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// NewAcquisitionRecord converts an outcome into its persisted form
func NewAcquisitionRecord(runID string, out Outcome) *AcquisitionRecord {
	return &AcquisitionRecord{
		ID:           uuid.New().String(),
		RunID:        runID,
		LogicalID:    out.Item.LogicalID,
		SourceURL:    out.Item.SourceURL,
		Status:       out.Status,
		Message:      out.Message,
		ResolvedPath: out.ResolvedPath,
		SizeBytes:    out.SizeBytes,
		CreatedAt:    out.FinishedAt,
	}
}

// RunSummary aggregates the records of one batch run
type RunSummary struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Total     int64     `json:"total"`
	OK        int64     `json:"ok"`
	Skipped   int64     `json:"skipped"`
	Errors    int64     `json:"errors"`
}

// HistoryStats aggregates all persisted records
type HistoryStats struct {
	Total   int64 `json:"total"`
	OK      int64 `json:"ok"`
	Skipped int64 `json:"skipped"`
	Errors  int64 `json:"errors"`
}
