package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivemed/dedup-cli/internal/adapters/driven/storage/memory"
	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
	"github.com/archivemed/dedup-cli/internal/fingerprint"
)

func newTestLSH(t *testing.T) (*LSHService, *memory.DocumentStore, *memory.SnapshotStore) {
	t.Helper()

	docs := memory.NewDocumentStore()
	snapshots := memory.NewSnapshotStore()
	return NewLSHService(docs, snapshots, domain.DefaultPipelineConfig()), docs, snapshots
}

func saveSignedDoc(t *testing.T, docs *memory.DocumentStore, id, text string) fingerprint.Signature {
	t.Helper()

	cfg := domain.DefaultPipelineConfig()
	sig := fingerprint.MinHash(text, cfg.LSHNumPermutations)
	err := docs.SaveDocument(context.Background(), &domain.Document{
		ID:       id,
		Filename: id + ".pdf",
		Status:   domain.StatusUnique,
		Content:  text,
		MinHash:  sig,
	})
	require.NoError(t, err)
	return sig
}

func TestLSHService_QueryWithoutIndex(t *testing.T) {
	lsh, _, _ := newTestLSH(t)

	cfg := domain.DefaultPipelineConfig()
	_, err := lsh.Query(fingerprint.MinHash(reportText, cfg.LSHNumPermutations))
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.Equal(t, 0, lsh.Len())
}

func TestLSHService_RebuildIndexesPersistedSignatures(t *testing.T) {
	lsh, docs, _ := newTestLSH(t)
	ctx := context.Background()

	sig := saveSignedDoc(t, docs, "doc-1", reportText)
	saveSignedDoc(t, docs, "doc-2", dischargeText)

	require.NoError(t, lsh.Rebuild(ctx))
	assert.Equal(t, 2, lsh.Len())

	candidates, err := lsh.Query(sig)
	require.NoError(t, err)
	assert.Contains(t, candidates, "doc-1")
	assert.NotContains(t, candidates, "doc-2")
}

func TestLSHService_DocumentsAddedAfterRebuildAreInvisible(t *testing.T) {
	lsh, docs, _ := newTestLSH(t)
	ctx := context.Background()

	saveSignedDoc(t, docs, "doc-1", reportText)
	require.NoError(t, lsh.Rebuild(ctx))

	lateSig := saveSignedDoc(t, docs, "doc-2", dischargeText)

	candidates, err := lsh.Query(lateSig)
	require.NoError(t, err)
	assert.NotContains(t, candidates, "doc-2")

	require.NoError(t, lsh.Rebuild(ctx))
	candidates, err = lsh.Query(lateSig)
	require.NoError(t, err)
	assert.Contains(t, candidates, "doc-2")
}

func TestLSHService_SnapshotRoundTrip(t *testing.T) {
	lsh, docs, snapshots := newTestLSH(t)
	ctx := context.Background()

	sig := saveSignedDoc(t, docs, "doc-1", reportText)
	require.NoError(t, lsh.Rebuild(ctx))

	restored := NewLSHService(docs, snapshots, domain.DefaultPipelineConfig())
	require.NoError(t, restored.LoadSnapshot(ctx))
	assert.Equal(t, 1, restored.Len())

	candidates, err := restored.Query(sig)
	require.NoError(t, err)
	assert.Contains(t, candidates, "doc-1")
}

func TestLSHService_MissingSnapshotIsNotAnError(t *testing.T) {
	lsh, _, _ := newTestLSH(t)

	require.NoError(t, lsh.LoadSnapshot(context.Background()))
	assert.Equal(t, 0, lsh.Len())
}

func TestLSHService_CorruptSnapshotLeavesIndexUnavailable(t *testing.T) {
	lsh, _, snapshots := newTestLSH(t)
	ctx := context.Background()

	require.NoError(t, snapshots.Store(ctx, driven.SnapshotLSHIndex, []byte("not json")))
	require.NoError(t, lsh.LoadSnapshot(ctx))

	cfg := domain.DefaultPipelineConfig()
	_, err := lsh.Query(fingerprint.MinHash(reportText, cfg.LSHNumPermutations))
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}
