// Package extractor turns raw document bytes into plain text. The composite
// never fails: any parse error degrades to an empty string, which the
// pipeline maps to a user-facing input error.
package extractor

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type Composite struct{}

func New() *Composite {
	return &Composite{}
}

func (c *Composite) Extract(_ context.Context, data []byte, filename string) string {
	if len(data) == 0 {
		return ""
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err := extractPDF(data)
		if err != nil {
			slog.Warn("pdf_extract_failed", "filename", filename, "error", err)
			return ""
		}
		return text
	case ".docx":
		text, err := extractDOCX(data)
		if err != nil {
			slog.Warn("docx_extract_failed", "filename", filename, "error", err)
			return ""
		}
		return text
	default:
		return extractPlaintext(data)
	}
}

// extractPlaintext accepts anything that decodes as UTF-8 text.
func extractPlaintext(data []byte) string {
	if !utf8.Valid(data) {
		return ""
	}
	return strings.TrimSpace(string(data))
}
