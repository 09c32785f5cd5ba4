// Package ident derives local artifact names from ECLI decision references.
package ident

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	PDFExt  = ".pdf"
	TextExt = ".txt"
)

// ErrMalformedReference is returned when a reference lacks the ECLI:CZ:NSS:<year>: marker.
var ErrMalformedReference = errors.New("reference does not contain an ECLI:CZ:NSS marker")

// Captures everything after "ECLI:CZ:NSS:YYYY:".
var ecliPattern = regexp.MustCompile(`ECLI:CZ:NSS:(\d{4}):(.*)`)

// Derive maps a reference such as ".../ECLI:CZ:NSS:2015:1.Afs.123.2014.30" to
// "1 Afs 123 2014 30.pdf". The mapping is pure, so the resulting name doubles
// as the idempotency key for downloads.
func Derive(ref string) (string, error) {
	m := ecliPattern.FindStringSubmatch(ref)
	if m == nil || m[2] == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}
	return strings.ReplaceAll(m[2], ".", " ") + PDFExt, nil
}

// TextName returns the sibling text filename for a PDF artifact name.
func TextName(pdfName string) string {
	base := filepath.Base(pdfName)
	return strings.TrimSuffix(base, filepath.Ext(base)) + TextExt
}
