package inspector

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brensch/nssfetch/internal/config"
	"github.com/brensch/nssfetch/internal/ident"
)

// Report describes the local artifacts under a destination root.
type Report struct {
	PDFDir       string
	TextDir      string
	Populated    int      // non-empty PDFs
	Placeholders []string // zero-byte PDFs, re-fetched on the next download run
	TextFiles    int
	Unconverted  []string // non-empty PDFs without a text sibling
	PDFBytes     int64
}

// Inspect walks <destRoot>/pdf and <destRoot>/txt. Missing directories count as empty.
func Inspect(destRoot string) (Report, error) {
	r := Report{
		PDFDir:  filepath.Join(destRoot, config.PDFSubdir),
		TextDir: filepath.Join(destRoot, config.TextSubdir),
	}

	texts := make(map[string]bool)
	txtEntries, err := os.ReadDir(r.TextDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return r, fmt.Errorf("read %s: %w", r.TextDir, err)
	}
	for _, e := range txtEntries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ident.TextExt) {
			texts[e.Name()] = true
			r.TextFiles++
		}
	}

	pdfEntries, err := os.ReadDir(r.PDFDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return r, fmt.Errorf("read %s: %w", r.PDFDir, err)
	}
	for _, e := range pdfEntries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), ident.PDFExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return r, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		if info.Size() == 0 {
			r.Placeholders = append(r.Placeholders, e.Name())
			continue
		}
		r.Populated++
		r.PDFBytes += info.Size()
		if !texts[ident.TextName(e.Name())] {
			r.Unconverted = append(r.Unconverted, e.Name())
		}
	}
	sort.Strings(r.Placeholders)
	sort.Strings(r.Unconverted)
	return r, nil
}

// Print writes a human-readable report. Long lists are truncated to limit entries.
func (r Report) Print(w io.Writer, limit int) {
	fmt.Fprintf(w, "PDF directory:  %s\n", r.PDFDir)
	fmt.Fprintf(w, "Text directory: %s\n\n", r.TextDir)
	fmt.Fprintf(w, "Downloaded PDFs:      %d (%.1f MiB)\n", r.Populated, float64(r.PDFBytes)/(1<<20))
	fmt.Fprintf(w, "Empty placeholders:   %d\n", len(r.Placeholders))
	fmt.Fprintf(w, "Text files:           %d\n", r.TextFiles)
	fmt.Fprintf(w, "PDFs without text:    %d\n", len(r.Unconverted))
	printList(w, "Placeholders (will be re-fetched)", r.Placeholders, limit)
	printList(w, "Not yet converted", r.Unconverted, limit)
}

func printList(w io.Writer, title string, names []string, limit int) {
	if len(names) == 0 || limit <= 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for i, n := range names {
		if i == limit {
			fmt.Fprintf(w, "  ... and %d more\n", len(names)-limit)
			break
		}
		fmt.Fprintf(w, "  %s\n", n)
	}
}
