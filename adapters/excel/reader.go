// Package excel imports raw values from spreadsheets and exports generated
// tables as xlsx workbooks.
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rolstat/internal"

	"github.com/xuri/excelize/v2"
)

// FileKind is the spreadsheet format of an import
type FileKind string

const (
	KindXLSX FileKind = "xlsx"
	KindCSV  FileKind = "csv"
)

// KindFromName picks the format from a file name. Anything that is not .csv is
// read as xlsx.
func KindFromName(name string) FileKind {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return KindCSV
	}
	return KindXLSX
}

// DataReader reads every non-empty cell of a CSV file or of the first sheet of
// a workbook, row by row. There is no header row: each cell is one observation.
type DataReader struct {
	log *internal.Logger
}

// NewDataReader creates a reader; a nil logger uses the default one
func NewDataReader(logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{log: logger.Named("excel")}
}

// ReadCells reads the file at path
func (r *DataReader) ReadCells(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(string(KindFromName(path))), path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return r.ReadCellsFrom(f, KindFromName(path))
}

// ReadCellsFrom reads an uploaded document of the given kind
func (r *DataReader) ReadCellsFrom(src io.Reader, kind FileKind) ([]string, error) {
	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch kind {
	case KindCSV:
		rows, err = readCSVRows(src)
	case KindXLSX:
		rows, err = readExcelRows(src)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", kind)
	}
	if err != nil {
		return nil, err
	}

	cells := flatten(rows)
	r.log.Debug("%s read in %.2fms (%d rows, %d values)",
		strings.ToUpper(string(kind)), float64(time.Since(start).Nanoseconds())/1e6, len(rows), len(cells))
	return cells, nil
}

func readExcelRows(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSVRows(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func flatten(rows [][]string) []string {
	var cells []string
	for _, row := range rows {
		for _, cell := range row {
			if v := strings.TrimSpace(cell); v != "" {
				cells = append(cells, v)
			}
		}
	}
	return cells
}
