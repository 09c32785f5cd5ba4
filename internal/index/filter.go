package index

import (
	"fmt"
	"time"

	"github.com/brensch/nssfetch/internal/config"
	"github.com/brensch/nssfetch/internal/util"
)

// Criteria narrows the index. A nil bound or empty category is unconstrained;
// date bounds are inclusive. VisibleOnly and the value filters combine with AND.
type Criteria struct {
	Start       *time.Time
	End         *time.Time
	Category    string
	VisibleOnly bool
}

// CriteriaFromConfig builds Criteria from the string settings in cfg.
func CriteriaFromConfig(cfg config.Config) (Criteria, error) {
	start, err := util.ParseFlagDate(cfg.StartDate)
	if err != nil {
		return Criteria{}, &config.Error{Field: "start_date", Reason: err.Error()}
	}
	end, err := util.ParseFlagDate(cfg.EndDate)
	if err != nil {
		return Criteria{}, &config.Error{Field: "end_date", Reason: err.Error()}
	}
	if start != nil && end != nil && end.Before(*start) {
		return Criteria{}, &config.Error{Field: "end_date", Reason: "end date is before start date"}
	}
	return Criteria{Start: start, End: end, Category: cfg.Category, VisibleOnly: cfg.VisibleOnly}, nil
}

// record is a row with its fields resolved through the column mapping.
type record struct {
	row       Row
	date      *time.Time
	category  string
	reference string
}

// RowFilter decides whether a record stays in the output.
type RowFilter interface {
	ShouldKeep(rec record) bool
}

type dateFilter struct{ start, end *time.Time }

func (f dateFilter) ShouldKeep(rec record) bool {
	if rec.date == nil {
		return false
	}
	if f.start != nil && rec.date.Before(*f.start) {
		return false
	}
	if f.end != nil && rec.date.After(*f.end) {
		return false
	}
	return true
}

type categoryFilter struct{ category string }

func (f categoryFilter) ShouldKeep(rec record) bool { return rec.category == f.category }

// FilterReferences returns the references of the rows satisfying c, in sheet order.
// Unparsable dates abort with an error; rows with an empty reference are dropped.
func FilterReferences(t *Table, cols config.Columns, c Criteria) ([]string, error) {
	if c.VisibleOnly && !t.HasVisibility {
		return nil, &config.Error{Field: "visible_only", Reason: "index format carries no row visibility; use an .xlsx workbook or disable visible-only mode"}
	}

	dateIdx, err := requireColumn(t, "date", cols.Date)
	if err != nil {
		return nil, err
	}
	refIdx, err := requireColumn(t, "reference", cols.Reference)
	if err != nil {
		return nil, err
	}
	catIdx := -1
	if c.Category != "" {
		if catIdx, err = requireColumn(t, "category", cols.Category); err != nil {
			return nil, err
		}
	}

	var filters []RowFilter
	if c.Start != nil || c.End != nil {
		filters = append(filters, dateFilter{start: c.Start, end: c.End})
	}
	if c.Category != "" {
		filters = append(filters, categoryFilter{category: c.Category})
	}

	var refs []string
	for _, row := range t.Rows {
		if c.VisibleOnly && !row.Visible {
			// hidden rows never participate, not even in date validation
			continue
		}
		rec := record{row: row, category: row.Cell(catIdx), reference: row.Cell(refIdx)}
		if raw := row.Cell(dateIdx); raw != "" {
			d, err := util.ParseDecisionDate(raw)
			if err != nil {
				return nil, fmt.Errorf("index row %d: %w", row.Number, err)
			}
			rec.date = &d
		}

		if !keep(rec, filters) || rec.reference == "" {
			continue
		}
		refs = append(refs, rec.reference)
	}
	return refs, nil
}

func keep(rec record, filters []RowFilter) bool {
	for _, f := range filters {
		if !f.ShouldKeep(rec) {
			return false
		}
	}
	return true
}

func requireColumn(t *Table, field, header string) (int, error) {
	if header == "" {
		return -1, &config.Error{Field: "columns." + field, Reason: "no header configured"}
	}
	idx, ok := t.ColumnIndex(header)
	if !ok {
		return -1, &config.Error{Field: "columns." + field, Reason: fmt.Sprintf("header %q not found in index", header)}
	}
	return idx, nil
}

// LoadReferences opens the index at path and applies the filters.
func LoadReferences(path, sheet string, cols config.Columns, c Criteria) ([]string, error) {
	t, err := Open(path, sheet, cols)
	if err != nil {
		return nil, err
	}
	return FilterReferences(t, cols, c)
}
