package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutAssignsIdAndTimestamp(t *testing.T) {
	store := openTestStore(t)

	rec, err := store.Put(Record{RawPrompt: "a __breed__ cat", ResolvedPrompt: "a Persian cat"})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.False(t, rec.CreatedAt.IsZero())
}

func TestPutListRoundtrip(t *testing.T) {
	store := openTestStore(t)

	stored, err := store.Put(Record{
		RawPrompt:      "a __breed__ cat",
		ResolvedPrompt: "a Persian cat",
		Seed:           42,
		Width:          1216,
		Height:         832,
		ImagePath:      "out/pyro_20260829-101500_42.png",
	})
	require.NoError(t, err)

	records, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	require.Equal(t, stored.ID, got.ID)
	require.Equal(t, "a __breed__ cat", got.RawPrompt)
	require.Equal(t, "a Persian cat", got.ResolvedPrompt)
	require.Equal(t, uint32(42), got.Seed)
	require.Equal(t, 1216, got.Width)
	require.Equal(t, 832, got.Height)
	require.Equal(t, "out/pyro_20260829-101500_42.png", got.ImagePath)
}

func TestListNewestFirstWithLimit(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		_, err := store.Put(Record{
			RawPrompt: string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := store.List(3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "e", records[0].RawPrompt)
	require.Equal(t, "d", records[1].RawPrompt)
	require.Equal(t, "c", records[2].RawPrompt)
}

func TestPutOverwritesSameId(t *testing.T) {
	store := openTestStore(t)

	rec, err := store.Put(Record{RawPrompt: "first"})
	require.NoError(t, err)

	rec.RawPrompt = "second"
	_, err = store.Put(rec)
	require.NoError(t, err)

	records, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "second", records[0].RawPrompt)
}
