package spreadsheet

import (
	"context"
	"fmt"
	"io"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/apperr"
	"github.com/geocoder89/qtohub/internal/domain/qtoitem"
	"github.com/xuri/excelize/v2"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// ImportResult reports a partial-success import. Type is "error" whenever
// any row failed, even if others were added.
type ImportResult struct {
	Message    string   `json:"message"`
	Type       string   `json:"type"`
	ItemsAdded int      `json:"itemsAdded"`
	Errors     []string `json:"errors,omitempty"`
}

// Import appends one QTO item per data row of the first worksheet. Rows are
// inserted independently: a failing row is reported and the rest carry on,
// and rows already written stay written.
func (b *Bridge) Import(ctx context.Context, projectID string, r io.Reader) (ImportResult, error) {
	if _, err := b.authorize(ctx, projectID, access.ActionCreate, "You do not have permission to import data to this project."); err != nil {
		return ImportResult{}, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		b.log.WarnContext(ctx, "excel file load failed", "project_id", projectID, "err", err)
		return ImportResult{}, apperr.Parse("Failed to read the Excel file. It might be corrupted or in an unsupported format.", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{}, apperr.Parse("No worksheet found in the Excel file.", nil)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return ImportResult{}, apperr.Parse("Failed to read the Excel file. It might be corrupted or in an unsupported format.", err)
	}

	if len(rows) == 0 {
		return ImportResult{}, apperr.Validation("file", "Required 'Item Description' column not found in the Excel sheet.")
	}

	cols := discoverColumns(rows[0])
	if cols.description == -1 {
		return ImportResult{}, apperr.Validation("file", "Required 'Item Description' column not found in the Excel sheet.")
	}

	var (
		added  int
		failed []string
	)

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1

		desc := cellAt(row, cols.description)
		if desc == "" {
			b.observe("skipped")
			continue
		}

		req := qtoitem.Request{
			CSICode:     cellAt(row, cols.csiCode),
			Description: desc,
			Quantity:    parseNumber(cellAt(row, cols.quantity)),
			Unit:        cellAt(row, cols.unit),
			UnitRate:    parseNumber(cellAt(row, cols.unitRate)),
			Notes:       cellAt(row, cols.notes),
			IsBOQItem:   parseYes(cellAt(row, cols.boqItem)),
			BOQDivision: cellAt(row, cols.boqDivision),
		}

		if _, err := b.items.Create(ctx, projectID, req); err != nil {
			b.log.ErrorContext(ctx, "import row failed", "project_id", projectID, "row", rowNum, "err", err)
			failed = append(failed, fmt.Sprintf("Row %d ('%s'): %s", rowNum, desc, apperr.MessageOf(err)))
			b.observe("failed")
			continue
		}

		added++
		b.observe("added")
	}

	if len(failed) > 0 {
		return ImportResult{
			Message:    fmt.Sprintf("Import completed with %d items added and %d errors.", added, len(failed)),
			Type:       ResultError,
			ItemsAdded: added,
			Errors:     failed,
		}, nil
	}

	return ImportResult{
		Message:    fmt.Sprintf("%d QTO items imported successfully!", added),
		Type:       ResultSuccess,
		ItemsAdded: added,
	}, nil
}
