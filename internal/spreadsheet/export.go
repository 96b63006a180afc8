package spreadsheet

import (
	"context"
	"fmt"
	"regexp"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/apperr"
	"github.com/geocoder89/qtohub/internal/domain/project"
	"github.com/geocoder89/qtohub/internal/domain/qtoitem"
	"github.com/xuri/excelize/v2"
)

// built-in number formats
const (
	numFmtFixed2     = 2 // 0.00
	numFmtThousands2 = 4 // #,##0.00
)

type column struct {
	header string
	width  float64
	numFmt int
}

var exportColumns = []column{
	{header: "ID", width: 38},
	{header: "CSI Code", width: 15},
	{header: "Item Description", width: 50},
	{header: "Quantity", width: 15, numFmt: numFmtFixed2},
	{header: "Unit", width: 10},
	{header: "Unit Rate", width: 15, numFmt: numFmtThousands2},
	{header: "Total Cost", width: 15, numFmt: numFmtThousands2},
	{header: "Notes", width: 30},
	{header: "BOQ Item", width: 10},
	{header: "BOQ Division", width: 20},
}

type Export struct {
	FileName string
	Content  []byte
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func (b *Bridge) Export(ctx context.Context, projectID string) (Export, error) {
	p, err := b.authorize(ctx, projectID, access.ActionRead, "You do not have permission to export this project.")
	if err != nil {
		return Export{}, err
	}

	items, err := b.items.List(ctx, projectID)
	if err != nil {
		return Export{}, err
	}

	content, err := buildWorkbook(p, items)
	if err != nil {
		b.log.ErrorContext(ctx, "excel export failed", "project_id", projectID, "err", err)
		return Export{}, apperr.Storage("Failed to generate Excel file.", err)
	}

	return Export{FileName: b.fileName(p), Content: content}, nil
}

func (b *Bridge) fileName(p project.Project) string {
	name := whitespaceRun.ReplaceAllString(p.Name, ".")
	return fmt.Sprintf("QTO_Export_%s_%s.xlsx", name, b.now().UTC().Format("2006-01-02"))
}

func buildWorkbook(p project.Project, items []qtoitem.Item) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetQTO); err != nil {
		return nil, err
	}

	if err := writeItemsSheet(f, items); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, err
	}

	if err := writeSummarySheet(f, p, items); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeItemsSheet(f *excelize.File, items []qtoitem.Item) error {
	headers := make([]interface{}, len(exportColumns))
	for i, c := range exportColumns {
		headers[i] = c.header
	}

	if err := f.SetSheetRow(SheetQTO, "A1", &headers); err != nil {
		return err
	}

	for i, it := range items {
		row := []interface{}{
			it.ID,
			strOrNil(it.CSICode),
			it.Description,
			floatOrNil(it.Quantity),
			strOrNil(it.Unit),
			floatOrNil(it.UnitRate),
			floatOrNil(it.TotalCost),
			strOrNil(it.Notes),
			yesNo(it.IsBOQItem),
			strOrNil(it.BOQDivision),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(SheetQTO, cell, &row); err != nil {
			return err
		}
	}

	lastRow := len(items) + 1

	for i, c := range exportColumns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}

		if err := f.SetColWidth(SheetQTO, name, name, c.width); err != nil {
			return err
		}

		if c.numFmt == 0 || len(items) == 0 {
			continue
		}

		style, err := f.NewStyle(&excelize.Style{NumFmt: c.numFmt})
		if err != nil {
			return err
		}

		if err := f.SetCellStyle(SheetQTO, name+"2", fmt.Sprintf("%s%d", name, lastRow), style); err != nil {
			return err
		}
	}

	return nil
}

func writeSummarySheet(f *excelize.File, p project.Project, items []qtoitem.Item) error {
	rows := [][]interface{}{
		{"Project Name:", p.Name},
		{"Project Number:", strOrNil(p.Number)},
		{"Client:", strOrNil(p.ClientName)},
		{"Total QTO Items:", len(items)},
		{"Total Estimated Cost:", qtoitem.SumTotalCost(items)},
	}

	for i := range rows {
		if err := f.SetSheetRow(SheetSummary, fmt.Sprintf("A%d", i+1), &rows[i]); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetSummary, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetSummary, "B", "B", 40); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: numFmtThousands2})
	if err != nil {
		return err
	}

	return f.SetCellStyle(SheetSummary, "B5", "B5", style)
}

func strOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func floatOrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
