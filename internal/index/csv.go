package index

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/brensch/nssfetch/internal/config"

	"github.com/jszwec/csvutil"
)

// CSVReader reads a CSV export of the index. The delimiter (',' or ';') is
// taken from the header line. CSV carries no visibility flags, so every row
// is reported visible and HasVisibility is false.
//
// Only the configured columns are decoded; the other cells of a row are left
// empty in the Table.
type CSVReader struct {
	Columns config.Columns
}

func (c *CSVReader) Read(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	return parseCSV(bytes.NewReader(data), sniffDelimiter(data), c.Columns)
}

func sniffDelimiter(data []byte) rune {
	line, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()
	if strings.Count(string(line), ";") > strings.Count(string(line), ",") {
		return ';'
	}
	return ','
}

// recordType builds a struct with one string field per configured header,
// tagged so that csvutil maps the columns by name. Headers are returned in
// field order.
func recordType(cols config.Columns) (reflect.Type, []string) {
	var (
		fields  []reflect.StructField
		headers []string
	)
	for _, h := range []string{cols.Date, cols.Category, cols.Reference} {
		h = strings.TrimSpace(h)
		if h == "" || slices.Contains(headers, h) {
			continue
		}
		fields = append(fields, reflect.StructField{
			Name: fmt.Sprintf("Col%d", len(fields)),
			Type: reflect.TypeOf(""),
			Tag:  reflect.StructTag(fmt.Sprintf("csv:%q", h)),
		})
		headers = append(headers, h)
	}
	return reflect.StructOf(fields), headers
}

func parseCSV(r io.Reader, comma rune, cols config.Columns) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("index is empty")
		}
		return nil, fmt.Errorf("failed to create CSV decoder for index: %w", err)
	}
	if err := dec.NormalizeHeader(strings.TrimSpace); err != nil {
		return nil, fmt.Errorf("index header: %w", err)
	}

	t := &Table{Header: append([]string(nil), dec.Header()...)}
	typ, headers := recordType(cols)
	// position of each decoded field in the file's header; -1 when absent
	positions := make([]int, len(headers))
	for i, h := range headers {
		positions[i] = slices.Index(t.Header, h)
	}

	for number := 2; ; number++ {
		rec := reflect.New(typ)
		if err := dec.Decode(rec.Interface()); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode index row %d: %w", number, err)
		}
		cells := make([]string, len(t.Header))
		for i, pos := range positions {
			if pos >= 0 {
				cells[pos] = rec.Elem().Field(i).String()
			}
		}
		t.Rows = append(t.Rows, Row{Number: number, Cells: cells, Visible: true})
	}
	return t, nil
}
