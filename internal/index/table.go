// Package index reads the decision spreadsheet and narrows it down to the
// list of decision references to fetch.
package index

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/brensch/nssfetch/internal/config"
)

// Row is one data row of the index. Number is the 1-based sheet row; the
// header is always row 1.
type Row struct {
	Number  int
	Cells   []string
	Visible bool
}

// Cell returns the trimmed value at column i, or "" when the row is short.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

// Table is a parsed index. HasVisibility is false for formats that carry no
// row-level hidden flags (CSV).
type Table struct {
	Header        []string
	Rows          []Row
	HasVisibility bool
}

// ColumnIndex finds a header by exact (trimmed) name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i, true
		}
	}
	return -1, false
}

// Reader is the tabular-file reader capability.
type Reader interface {
	Read(path string) (*Table, error)
}

// Open reads path with the reader matching its extension.
func Open(path, sheet string, cols config.Columns) (*Table, error) {
	r, err := ReaderFor(path, sheet, cols)
	if err != nil {
		return nil, err
	}
	return r.Read(path)
}

// ReaderFor picks a Reader by file extension. The CSV reader decodes only the
// configured columns.
func ReaderFor(path, sheet string, cols config.Columns) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return &XLSXReader{Sheet: sheet}, nil
	case ".csv":
		return &CSVReader{Columns: cols}, nil
	default:
		return nil, fmt.Errorf("unsupported index format %q (want .xlsx or .csv)", filepath.Ext(path))
	}
}
