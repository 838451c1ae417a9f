package vars

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Empty(t, store.Load())
}

func TestStoreSaveAndLoad(t *testing.T) {
	store := NewStore(t.TempDir())

	path, err := store.Save("cat_breed", "Cat breeds", []string{"Persian", "Siamese", "Maine Coon"})
	require.NoError(t, err)
	assert.FileExists(t, path)

	loaded := store.Load()
	variable, ok := loaded[Canonical("cat_breed")]
	require.True(t, ok)
	assert.Equal(t, "cat_breed", variable.Name)
	assert.Equal(t, "Cat breeds", variable.Description)
	assert.Equal(t, []string{"Persian", "Siamese", "Maine Coon"}, variable.Values)
}

func TestStoreSaveIdempotent(t *testing.T) {
	store := NewStore(t.TempDir())

	values := []string{"one", "two"}
	first, err := store.Save("thing", "d", values)
	require.NoError(t, err)
	second, err := store.Save("thing", "d", values)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	variable := store.Load()[Canonical("thing")]
	assert.Equal(t, values, variable.Values, "repeated saves must overwrite, not append")
}

func TestStoreSaveNamespaced(t *testing.T) {
	store := NewStore(t.TempDir())

	path, err := store.Save("animals/birds/species", "", []string{"sparrow"})
	require.NoError(t, err)
	assert.FileExists(t, path)

	variable, ok := store.Load()[Canonical("animals/birds/species")]
	require.True(t, ok)
	assert.Equal(t, []string{"sparrow"}, variable.Values)
}

func TestStoreSaveRejectsBadNames(t *testing.T) {
	store := NewStore(t.TempDir())

	for _, name := range []string{"", "bad name", "../escape", "semi;colon"} {
		_, err := store.Save(name, "", []string{"v"})
		assert.Error(t, err, "name %q should be rejected", name)
	}
}

func TestStoreLoadWithoutDescription(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.txt"), []byte("alpha\n\nbeta\n"), 0o644))

	variable, ok := NewStore(dir).Load()[Canonical("plain")]
	require.True(t, ok)
	assert.Empty(t, variable.Description)
	assert.Equal(t, []string{"alpha", "beta"}, variable.Values)
}

func TestStoreLoadSkipsInvalidNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.txt"), []byte("fine\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad name.txt"), []byte("nope\n"), 0o644))

	loaded := NewStore(dir).Load()
	assert.Len(t, loaded, 1)
	assert.Contains(t, loaded, Canonical("ok"))
}

func TestStoreIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("skip\n"), 0o644))

	assert.Empty(t, NewStore(dir).Load())
}
