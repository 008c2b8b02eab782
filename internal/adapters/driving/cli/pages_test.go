package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driving"
)

func TestPagesCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range pagesCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.Contains(t, names, "list")
	assert.Contains(t, names, "duplicates")
	assert.Contains(t, names, "intra")
	assert.Contains(t, names, "inspect")
	assert.Contains(t, names, "mark")
}

func TestPagesListCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	pageReviewer.(*mockPageReviewer).pages = []domain.Page{
		{ID: "page-1", DocumentID: "doc-1", PageNumber: 1, Hash: "h1", Status: domain.PageStatusPending},
		{ID: "page-2", DocumentID: "doc-1", PageNumber: 2, Hash: "h2", Status: domain.PageStatusPending},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"pages", "list", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "page-1")
	assert.Contains(t, buf.String(), "Total: 2 pages")
}

func TestPagesMarkCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	pageReviewer.(*mockPageReviewer).marked = 3

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"pages", "mark", "h1", "to_archive", "--reviewer", "dr.smith"})
	defer func() {
		rootCmd.SetArgs(nil)
		pagesReviewer = ""
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Marked 3 page(s) as to_archive")
}

func TestPagesDuplicatesCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"pages", "duplicates", "h1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No pages found with hash: h1")
}

func TestPagesIntraCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	pageReviewer.(*mockPageReviewer).matches = []driving.PageMatch{
		{SourcePage: 1, DuplicatePage: 3, Similarity: 1.0, Method: domain.MethodHash},
		{SourcePage: 2, DuplicatePage: 4, Similarity: 0.91, Method: domain.MethodTFIDF},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"pages", "intra", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Found 2 duplicate page pair(s) in doc-1")
	assert.Contains(t, buf.String(), "page 3 duplicates page 1  1.0000 (hash)")
	assert.Contains(t, buf.String(), "page 4 duplicates page 2  0.9100 (tfidf)")
}

func TestPagesIntraCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"pages", "intra", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No duplicate pages within document: doc-1")
}

func TestPagesInspectCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	textExtractor.(*mockExtractor).texts["/tmp/scan.pdf"] = "page content"
	pageReviewer.(*mockPageReviewer).matches = []driving.PageMatch{
		{SourcePage: 1, DuplicatePage: 2, Similarity: 0.95, Method: domain.MethodTFIDF},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"pages", "inspect", "/tmp/scan.pdf"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Found 1 pair(s) of similar pages")
	assert.Contains(t, buf.String(), "page 1 is similar to page 2  0.9500")
	assert.Len(t, pageReviewer.(*mockPageReviewer).inspected, 1)
}

func TestPagesInspectCmd_HasThresholdFlag(t *testing.T) {
	flag := pagesInspectCmd.Flags().Lookup("threshold")
	require.NotNil(t, flag)
	assert.Equal(t, "t", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}
