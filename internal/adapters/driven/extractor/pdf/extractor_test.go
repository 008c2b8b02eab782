package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivemed/dedup-cli/internal/core/domain"
)

// writeTestPDF renders one page per entry in pageTexts.
func writeTestPDF(t *testing.T, pageTexts []string) string {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pageTexts {
		doc.AddPage()
		doc.MultiCell(190, 6, text, "", "L", false)
	}

	path := filepath.Join(t.TempDir(), "test.pdf")
	require.NoError(t, doc.OutputFileAndClose(path))
	return path
}

func TestExtractor_ExtractText(t *testing.T) {
	path := writeTestPDF(t, []string{
		"Patient presented with chest pain radiating to the left arm.",
	})

	text, err := NewExtractor().ExtractText(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "chest pain")
	assert.Contains(t, text, "left arm")
}

func TestExtractor_ExtractPages(t *testing.T) {
	path := writeTestPDF(t, []string{
		"Page one covers the admission summary.",
		"Page two covers the discharge plan.",
	})

	pages, err := NewExtractor().ExtractPages(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], "admission")
	assert.Contains(t, pages[1], "discharge")
}

func TestExtractor_MissingFile(t *testing.T) {
	_, err := NewExtractor().ExtractText(context.Background(),
		filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtractor_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a PDF"), 0600))

	_, err := NewExtractor().ExtractPages(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtractor_CancelledContext(t *testing.T) {
	path := writeTestPDF(t, []string{"irrelevant"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor().ExtractPages(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
