package infrastructure

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/media-batch-go/internal/domain"
)

// Workbook layout of the item list: column A holds the logical id and
// column M the URL, addressed by position regardless of header names.
const (
	workbookIDColumn  = 0
	workbookURLColumn = 12
	workbookMinCols   = 13
)

// ReadItems parses the input item list. The format follows the file
// extension: .xlsx is read as a workbook, anything else as a CSV table
// with logical_id and source_url columns. Rows with a blank id or URL are
// dropped; an unreadable file is fatal to the whole run.
func ReadItems(path, sheet string) ([]domain.AcquisitionItem, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readWorkbookItems(path, sheet)
	}
	return readCSVItems(path)
}

func readCSVItems(path string) ([]domain.AcquisitionItem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}

	var items []domain.AcquisitionItem
	for i, record := range records {
		if len(record) < 2 {
			continue
		}
		id := strings.TrimSpace(record[0])
		url := strings.TrimSpace(record[1])
		if i == 0 && !strings.HasPrefix(strings.ToLower(url), "http") {
			// header row
			continue
		}
		if item, ok := cleanItem(id, url); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func readWorkbookItems(path, sheet string) ([]domain.AcquisitionItem, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input workbook: %w", err)
	}
	defer wb.Close()

	if sheet == "" {
		sheet = wb.GetSheetName(0)
	}
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) > 0 && len(rows[0]) < workbookMinCols {
		return nil, fmt.Errorf("input sheet has %d columns, need at least %d (A..M)",
			len(rows[0]), workbookMinCols)
	}

	var items []domain.AcquisitionItem
	for i, row := range rows {
		if i == 0 {
			// header row
			continue
		}
		if len(row) <= workbookURLColumn {
			continue
		}
		id := strings.TrimSpace(row[workbookIDColumn])
		url := strings.TrimSpace(row[workbookURLColumn])
		if item, ok := cleanItem(id, url); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// cleanItem validates one parsed row. Spreadsheet exports render missing
// cells as the literal string "nan", which counts as blank.
func cleanItem(id, url string) (domain.AcquisitionItem, bool) {
	if id == "" || url == "" || strings.EqualFold(url, "nan") {
		return domain.AcquisitionItem{}, false
	}
	return domain.AcquisitionItem{LogicalID: id, SourceURL: url}, true
}
