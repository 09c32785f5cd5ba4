package index

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brensch/nssfetch/internal/config"
	"github.com/brensch/nssfetch/internal/util"

	"github.com/xuri/excelize/v2"
)

// XLSXReader reads a workbook sheet, including each row's hidden flag as left
// by spreadsheet-level filtering. Cells holding real Excel dates are rendered
// as DD.MM.YYYY so they read the same as dates typed in as text.
type XLSXReader struct {
	Sheet string // empty selects List1 if present, else the active sheet
}

func (x *XLSXReader) Read(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := x.Sheet
	if sheet == "" {
		sheet = defaultSheet(f)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows of sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q in %s is empty", sheet, path)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read raw rows of sheet %q: %w", sheet, err)
	}
	dc := newDateCells(f, sheet)

	t := &Table{Header: rows[0], HasVisibility: true}
	for i, cells := range rows[1:] {
		number := i + 2
		visible, err := f.GetRowVisible(sheet, number)
		if err != nil {
			return nil, fmt.Errorf("row %d visibility: %w", number, err)
		}
		if i+1 < len(raw) {
			dc.normalize(number, cells, raw[i+1])
		}
		t.Rows = append(t.Rows, Row{Number: number, Cells: cells, Visible: visible})
	}
	return t, nil
}

func defaultSheet(f *excelize.File) string {
	if idx, err := f.GetSheetIndex(config.DefaultSheet); err == nil && idx >= 0 {
		return config.DefaultSheet
	}
	return f.GetSheetName(f.GetActiveSheetIndex())
}

// dateCells rewrites date-typed cells of one sheet.
type dateCells struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	styles   map[int]bool // style ID -> has a date number format
}

func newDateCells(f *excelize.File, sheet string) *dateCells {
	dc := &dateCells{f: f, sheet: sheet, styles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		dc.date1904 = *props.Date1904
	}
	return dc
}

// normalize replaces formatted date cells in place. Only cells whose raw value
// differs from the formatted one can carry a date format, so text cells are
// left to the strict parser untouched.
func (dc *dateCells) normalize(number int, cells, raw []string) {
	for col := range cells {
		if col >= len(raw) || raw[col] == cells[col] || raw[col] == "" {
			continue
		}
		name, err := excelize.CoordinatesToCellName(col+1, number)
		if err != nil {
			continue
		}
		if d, ok := dc.cellDate(name, raw[col]); ok {
			cells[col] = d.Format(util.DecisionDateOutputLayout)
		}
	}
}

func (dc *dateCells) cellDate(cell, raw string) (time.Time, bool) {
	typ, err := dc.f.GetCellType(dc.sheet, cell)
	if err != nil {
		return time.Time{}, false
	}
	if typ == excelize.CellTypeDate {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if d, err := time.Parse(layout, raw); err == nil {
				return d, true
			}
		}
		return time.Time{}, false
	}

	styleID, err := dc.f.GetCellStyle(dc.sheet, cell)
	if err != nil || !dc.isDateStyle(styleID) {
		return time.Time{}, false
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}, false
	}
	d, err := excelize.ExcelDateToTime(serial, dc.date1904)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func (dc *dateCells) isDateStyle(id int) bool {
	if known, ok := dc.styles[id]; ok {
		return known
	}
	isDate := false
	if style, err := dc.f.GetStyle(id); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = isDateNumFmt(style.NumFmt)
		}
	}
	dc.styles[id] = isDate
	return isDate
}

// isDateNumFmt reports built-in formats that show a calendar date.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 17, id == 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode recognises custom formats with day or year tokens,
// ignoring quoted literals and bracketed sections such as [$-405].
func isDateFormatCode(code string) bool {
	var b strings.Builder
	quoted, bracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "dy")
}
