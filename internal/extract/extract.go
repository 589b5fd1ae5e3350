// Package extract pulls plain text out of requirement documents.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"autotestcase/internal/logging"
)

// ErrUnsupportedFormat is returned for file extensions with no extractor.
var ErrUnsupportedFormat = errors.New("unsupported file format")

type extractor func(path string) (string, error)

var extractors = map[string]extractor{
	".pdf":  fromPDF,
	".docx": fromDOCX,
	".txt":  fromTXT,
}

// SupportedExtensions lists the handled extensions in display order.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".txt"}
}

// FromFile extracts the text content of path, choosing the reader by the
// file's extension (case-insensitive).
func FromFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fn, ok := extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q. Supported formats: %s",
			ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions(), ", "))
	}

	timer := logging.StartTimer(logging.CategoryExtract, "extract "+ext)
	text, err := fn(path)
	timer.Stop()
	if err != nil {
		logging.ExtractWarn("extraction failed for %s: %v", path, err)
		return "", err
	}

	logging.Extract("extracted %d characters from %s", len(text), path)
	return text, nil
}
