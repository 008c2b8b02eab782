package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
)

func TestStore_StoreAndLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	err = store.Store(ctx, driven.SnapshotVectorizer, []byte(`{"version":3}`))
	require.NoError(t, err)

	data, err := store.Load(ctx, driven.SnapshotVectorizer)
	require.NoError(t, err)
	assert.Equal(t, `{"version":3}`, string(data))
}

func TestStore_LoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), driven.SnapshotLSHIndex)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Replace(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "blob", []byte("first")))
	require.NoError(t, store.Store(ctx, "blob", []byte("second")))

	data, err := store.Load(ctx, "blob")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Store(context.Background(), "blob", []byte("payload")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "blob", entries[0].Name())
}

func TestStore_CreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "snapshots")

	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Path())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_CancelledContext(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, store.Store(ctx, "blob", []byte("x")))
	_, err = store.Load(ctx, "blob")
	assert.Error(t, err)
}
