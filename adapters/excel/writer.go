package excel

import (
	"fmt"
	"io"

	"rolstat/domain/rol"

	"github.com/xuri/excelize/v2"
)

// Sheet names of an exported workbook
const (
	SheetTable = "Frequências"
	SheetROL   = "ROL"
)

var tableHeader = []any{"Dados", "FA", "FAA", "FR", "FRA"}

// WriteTable writes a workbook with the frequency table of name and the sorted
// ROL, one value per row.
func WriteTable(w io.Writer, name string, cells []rol.RowCells, sorted []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTable); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := f.SetCellValue(SheetTable, "A1", rol.DisplayName(name)); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}
	if err := f.SetSheetRow(SheetTable, "A2", &tableHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, c := range cells {
		row := []any{c.Label, c.FA, c.FAA, c.FR, c.FRA}
		axis, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetTable, axis, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(SheetROL); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	for i, v := range sorted {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(SheetROL, axis, v); err != nil {
			return fmt.Errorf("failed to write value %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
