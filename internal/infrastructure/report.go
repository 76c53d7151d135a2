package infrastructure

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/media-batch-go/internal/domain"
)

var reportHeader = []string{
	"timestamp", "logical_id", "source_url", "status", "message", "resolved_path", "size_bytes",
}

// ReportBuilder accumulates one row per outcome and materializes them to a
// tabular artifact. Rows are kept in arrival order, which for a batch run
// is completion order. No deduplication: a logical id appearing twice in
// the input produces two rows.
type ReportBuilder struct {
	mu       sync.Mutex
	outcomes []domain.Outcome
}

// NewReportBuilder creates an empty report builder
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{}
}

// Record appends one outcome. Safe for concurrent use.
func (b *ReportBuilder) Record(out domain.Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outcomes = append(b.outcomes, out)
}

// Outcomes returns a copy of the recorded outcomes in arrival order
func (b *ReportBuilder) Outcomes() []domain.Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Outcome(nil), b.outcomes...)
}

// Summary returns the aggregate counts, with SKIPPED kept separate from OK
func (b *ReportBuilder) Summary() domain.Summary {
	b.mu.Lock()
	defer b.mu.Unlock()

	summary := domain.Summary{Total: len(b.outcomes)}
	for _, out := range b.outcomes {
		switch out.Status {
		case domain.StatusOK:
			summary.OK++
		case domain.StatusSkipped:
			summary.Skipped++
		case domain.StatusError:
			summary.Errors++
		}
	}
	return summary
}

// Finalize writes the accumulated rows to path. The format follows the
// file extension: .xlsx produces a workbook, anything else a CSV table.
// The destination directory is created if absent.
func (b *ReportBuilder) Finalize(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return b.writeWorkbook(path)
	}
	return b.writeCSV(path)
}

func (b *ReportBuilder) writeCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(reportHeader); err != nil {
		return err
	}
	for _, out := range b.Outcomes() {
		if err := w.Write(rowFields(out)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (b *ReportBuilder) writeWorkbook(path string) error {
	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	if err := wb.SetSheetRow(sheet, "A1", &reportHeader); err != nil {
		return err
	}
	for i, out := range b.Outcomes() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		fields := rowFields(out)
		if err := wb.SetSheetRow(sheet, cell, &fields); err != nil {
			return err
		}
	}
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// rowFields renders one outcome as report columns. Size is left blank when
// no artifact was resolved.
func rowFields(out domain.Outcome) []string {
	size := ""
	if out.ResolvedPath != "" {
		size = strconv.FormatInt(out.SizeBytes, 10)
	}
	return []string{
		out.FinishedAt.Format("2006-01-02T15:04:05"),
		out.Item.LogicalID,
		out.Item.SourceURL,
		string(out.Status),
		out.Message,
		out.ResolvedPath,
		size,
	}
}
