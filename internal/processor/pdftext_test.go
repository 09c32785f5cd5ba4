package processor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/brensch/nssfetch/internal/config"
)

// buildPDF renders a minimal PDF with one Helvetica text line per page.
func buildPDF(texts []string) []byte {
	n := len(texts)
	fontObj := 3 + 2*n
	var objs []string
	kids := make([]string, n)
	for i := range texts {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
	)
	for i, text := range texts {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestPDFExtractorReadsPagesInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decision.pdf")
	if err := os.WriteFile(path, buildPDF([]string{"Hello page one", "Second page"}), 0o644); err != nil {
		t.Fatal(err)
	}

	pages, err := (PDFExtractor{}).ExtractPages(path)
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	got := make([]string, len(pages))
	for i, p := range pages {
		got[i] = strings.TrimSpace(p)
	}
	if want := []string{"Hello page one", "Second page"}; !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %q, want %q", got, want)
	}
}

func TestRunWithRealExtractorWritesText(t *testing.T) {
	root := t.TempDir()
	pdfDir := filepath.Join(root, config.PDFSubdir)
	if err := os.MkdirAll(pdfDir, 0o755); err != nil {
		t.Fatal(err)
	}
	pdfName := "ECLI_CZ_NSS_2015_1.As.1.2015.10.pdf"
	if err := os.WriteFile(filepath.Join(pdfDir, pdfName), buildPDF([]string{"Hello page one", "Second page"}), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := New(root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	sum, err := p.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(sum.Converted, []string{pdfName}) {
		t.Fatalf("summary = %+v", sum)
	}

	text, err := os.ReadFile(filepath.Join(root, config.TextSubdir, "ECLI_CZ_NSS_2015_1.As.1.2015.10.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(text), "Hello page one\nSecond page") {
		t.Errorf("text = %q, want both pages on separate lines", text)
	}
}
