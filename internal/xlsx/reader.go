// Package xlsx is the only package that touches the spreadsheet container
// format. It loads tabular grids into string tables on the read side and
// owns the sentinel-aware merge writer on the write side.
package xlsx

import (
	"fmt"
	"strings"

	"github.com/startupcfo/mayordomo/internal/common"
	"github.com/xuri/excelize/v2"
)

// Table is a raw tabular grid: one header row plus string-rendered data rows.
type Table struct {
	Label   string
	Path    string
	Headers []string
	Rows    [][]string
}

// Cell returns the trimmed value of the named column in a data row, or the
// empty string when the column is absent or the row is ragged.
func (t *Table) Cell(row []string, column string) string {
	for i, h := range t.Headers {
		if h == column {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
	}
	return ""
}

// LoadTable reads the first sheet of an xlsx workbook into a Table.
func LoadTable(path, label string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &common.MissingInputError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, &common.MissingInputError{Path: path, Err: fmt.Errorf("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &common.MissingInputError{Path: path, Err: err}
	}
	if len(rows) == 0 {
		return nil, &common.StructuralError{Label: label, Reason: "sheet has no header row"}
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return &Table{
		Label:   label,
		Path:    path,
		Headers: headers,
		Rows:    rows[1:],
	}, nil
}
