// Package pdftext extracts the raw text layer of PDF documents with
// MuPDF. Image formats have no text layer and yield an empty string.
package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/clematis-labs/justify-server/internal/application/port"
	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// maxPages caps how many pages are read per document
const maxPages = 10

// Extractor implements port.TextExtractor for PDF documents
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new PDF text extractor
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractText returns the concatenated text of the document's pages.
// Non-PDF content returns an empty string without error.
func (e *Extractor) ExtractText(ctx context.Context, content []byte, mimeType string) (string, error) {
	if mimeType != "application/pdf" {
		return "", nil
	}

	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount > maxPages {
		pageCount = maxPages
	}

	var b strings.Builder
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		text, err := doc.Text(pageNum)
		if err != nil {
			e.logger.Warn("Failed to extract page text",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String()), nil
}

// Verify interface compliance
var _ port.TextExtractor = (*Extractor)(nil)
