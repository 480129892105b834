package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/FranksOps/scout/internal/results"
)

// SheetName is the single worksheet in exported workbooks.
const SheetName = "Results"

var colWidths = map[string]float64{"A": 6, "B": 48, "C": 56, "D": 80}

// WriteXLSX writes a workbook with one sheet holding the result table.
func WriteXLSX(w io.Writer, entries []results.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	for col, width := range colWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("xlsx width: %w", err)
		}
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx row %d: %w", e.No, err)
		}
		row := []any{e.No, e.Title, e.URL, e.Content}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", e.No, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
