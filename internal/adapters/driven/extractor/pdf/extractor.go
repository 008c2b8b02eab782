// Package pdf extracts plain text from PDF files using ledongthuc/pdf,
// a pure Go PDF parser.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads PDF files from the local filesystem.
type Extractor struct{}

// NewExtractor creates a new PDF text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText returns the full plain text of the document. Page texts are
// joined with newlines.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	pages, err := e.ExtractPages(ctx, path)
	if err != nil {
		return "", err
	}
	return strings.Join(pages, "\n"), nil
}

// ExtractPages returns the plain text of each page in order. A page whose
// content cannot be decoded yields an empty string rather than an error so
// page numbering stays aligned with the file.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrExtractionFailed, path, err)
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("%w: %s has no pages", domain.ErrExtractionFailed, path)
	}

	texts := make([]string, 0, numPages)
	// Fonts repeat across pages, cache decoded tables for the whole file.
	fonts := make(map[string]*pdf.Font)

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			// Undecodable page content is treated as an empty page.
			texts = append(texts, "")
			continue
		}
		texts = append(texts, text)
	}

	return texts, nil
}
