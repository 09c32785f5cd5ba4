package processor

import (
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var errEmptyPDFPath = errors.New("pdf path is empty")

// TextExtractor is the document-text-extraction capability: one string per
// page, in document order.
type TextExtractor interface {
	ExtractPages(path string) ([]string, error)
}

// PDFExtractor extracts plain text with github.com/ledongthuc/pdf.
type PDFExtractor struct{}

// ExtractPages opens path and returns the plain text of each page. The pdf
// package panics on some malformed inputs; those panics come back as errors.
func (PDFExtractor) ExtractPages(path string) (pages []string, err error) {
	if path == "" {
		return nil, errEmptyPDFPath
	}
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("corrupt pdf %s: %v", path, r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer file.Close()

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", i, path, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
