package driven

import "context"

// TextExtractor extracts plain text from PDF files.
type TextExtractor interface {
	// ExtractText returns the full plain text of the document.
	ExtractText(ctx context.Context, path string) (string, error)

	// ExtractPages returns the plain text of each page in order.
	// Pages that yield no text are returned as empty strings so page
	// numbering stays aligned with the file.
	ExtractPages(ctx context.Context, path string) ([]string, error)
}
