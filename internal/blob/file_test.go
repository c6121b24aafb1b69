package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Load(ctx, "courses")
	assert.ErrorIs(t, err, ErrNoDocument)

	doc := []byte(`[{"code":"ENG_TC_101"}]`)
	require.NoError(t, store.Save(ctx, "courses", doc))

	loaded, err := store.Load(ctx, "courses")
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	// Overwrite replaces the previous document.
	require.NoError(t, store.Save(ctx, "courses", []byte(`[]`)))
	loaded, err = store.Load(ctx, "courses")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), loaded)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "students", []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "students.json", entries[0].Name())
	assert.Equal(t, filepath.Ext(entries[0].Name()), ".json")
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	doc := []byte(`[1,2,3]`)
	require.NoError(t, store.Save(ctx, "enrollments", doc))

	loaded, err := store.Load(ctx, "enrollments")
	require.NoError(t, err)
	loaded[0] = 'X'

	// Mutating the returned slice must not corrupt the stored document.
	again, err := store.Load(ctx, "enrollments")
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}
