package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/media-batch-go/internal/domain"
)

// SQLiteHistoryRepository persists acquisition records using SQLite
type SQLiteHistoryRepository struct {
	db *gorm.DB
}

// NewSQLiteHistoryRepository opens (creating if needed) the history store
func NewSQLiteHistoryRepository(dbPath string) (*SQLiteHistoryRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.AutoMigrate(&domain.AcquisitionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return &SQLiteHistoryRepository{db: db}, nil
}

// SaveRecord persists one record
func (r *SQLiteHistoryRepository) SaveRecord(record *domain.AcquisitionRecord) error {
	return r.db.Create(record).Error
}

// FindByRun returns all records of a run in creation order
func (r *SQLiteHistoryRepository) FindByRun(runID string) ([]*domain.AcquisitionRecord, error) {
	var records []*domain.AcquisitionRecord
	err := r.db.Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

// RecentRuns returns per-run aggregates, newest first
func (r *SQLiteHistoryRepository) RecentRuns(limit int) ([]*domain.RunSummary, error) {
	var rows []struct {
		RunID     string
		StartedAt string
		Status    domain.Status
		Count     int64
	}

	err := r.db.Model(&domain.AcquisitionRecord{}).
		Select("run_id, min(created_at) as started_at, status, count(*) as count").
		Group("run_id, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byRun := make(map[string]*domain.RunSummary)
	var order []string
	for _, row := range rows {
		summary, ok := byRun[row.RunID]
		if !ok {
			summary = &domain.RunSummary{RunID: row.RunID}
			byRun[row.RunID] = summary
			order = append(order, row.RunID)
		}
		if started, parseErr := parseSQLiteTime(row.StartedAt); parseErr == nil {
			if summary.StartedAt.IsZero() || started.Before(summary.StartedAt) {
				summary.StartedAt = started
			}
		}
		summary.Total += row.Count
		switch row.Status {
		case domain.StatusOK:
			summary.OK += row.Count
		case domain.StatusSkipped:
			summary.Skipped += row.Count
		case domain.StatusError:
			summary.Errors += row.Count
		}
	}

	summaries := make([]*domain.RunSummary, 0, len(order))
	for _, runID := range order {
		summaries = append(summaries, byRun[runID])
	}
	sortRunsByStart(summaries)
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// Stats returns aggregate counts over all records
func (r *SQLiteHistoryRepository) Stats() (*domain.HistoryStats, error) {
	stats := &domain.HistoryStats{}

	if err := r.db.Model(&domain.AcquisitionRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	var statusCounts []struct {
		Status domain.Status
		Count  int64
	}
	if err := r.db.Model(&domain.AcquisitionRecord{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusOK:
			stats.OK = sc.Count
		case domain.StatusSkipped:
			stats.Skipped = sc.Count
		case domain.StatusError:
			stats.Errors = sc.Count
		}
	}
	return stats, nil
}

// Close closes the database connection
func (r *SQLiteHistoryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// sqliteTimeLayouts cover the textual forms the driver stores timestamps in
var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
}

func parseSQLiteTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range sqliteTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func sortRunsByStart(runs []*domain.RunSummary) {
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
}
