package xlsxreader

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// WORKBOOK ACCESS
// =============================================================================

// Workbook is the read-only view of an opened spreadsheet package that the
// sheet reader needs. Rows and columns are 1-based.
//
// The excelize adapter returned by NewExcelWorkbook is the production
// implementation; tests may supply their own.
type Workbook interface {
	// HasSheet reports whether a worksheet with this name exists. Names are
	// matched case-insensitively.
	HasSheet(name string) bool

	// Cell returns the raw text of a cell and its A1-style address.
	// An empty cell yields "" and a nil error.
	Cell(sheet string, row, col int) (value, address string, err error)
}

// excelWorkbook adapts *excelize.File to Workbook.
type excelWorkbook struct {
	file *excelize.File
}

// NewExcelWorkbook wraps an opened excelize file. The caller keeps ownership
// of f and is responsible for closing it.
func NewExcelWorkbook(f *excelize.File) Workbook {
	return &excelWorkbook{file: f}
}

func (w *excelWorkbook) HasSheet(name string) bool {
	idx, err := w.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// Cell reads the unformatted value so number formats never leak into
// conversion: dates come back as serial numbers and booleans as "1"/"0".
func (w *excelWorkbook) Cell(sheet string, row, col int) (string, string, error) {
	addr, err := CellAddress(row, col)
	if err != nil {
		return "", "", err
	}
	value, err := w.file.GetCellValue(sheet, addr, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", addr, fmt.Errorf("read cell %s: %w", addr, err)
	}
	return value, addr, nil
}

// CellAddress converts 1-based coordinates to an A1-style reference.
func CellAddress(row, col int) (string, error) {
	addr, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("cell address (row %d, column %d): %w", row, col, err)
	}
	return addr, nil
}
