package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for output paths that are neither .png nor .pdf.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an output encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q (use .png or .pdf)", ErrUnsupportedFormat, filepath.Ext(path))
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "image/png"
}

// Encode writes s to w in format f.
func Encode(w io.Writer, f Format, s Scene) error {
	switch f {
	case FormatPNG:
		return PNG(w, s)
	case FormatPDF:
		return PDF(w, s)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Export writes s to path, choosing PNG or PDF by extension.
func Export(path string, s Scene) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return Encode(out, f, s)
}
