package fs_test

import (
	"context"
	"os"
	"testing"

	"github.com/joblens/joblens"
	"github.com/joblens/joblens/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("set then get round-trips", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := fs.NewStore(t.TempDir())

		require.NoError(t, store.Set(ctx, "joblens:result:abc", []byte(`{"company":"Acme"}`)))

		got, err := store.Get(ctx, "joblens:result:abc")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"company":"Acme"}`), got)
	})

	t.Run("missing key is not found", func(t *testing.T) {
		t.Parallel()

		store := fs.NewStore(t.TempDir())

		_, err := store.Get(context.Background(), "joblens:result:missing")
		require.Error(t, err)
		assert.Equal(t, joblens.ENOTFOUND, joblens.ErrorCode(err))
	})

	t.Run("set replaces an existing value", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := fs.NewStore(t.TempDir())

		require.NoError(t, store.Set(ctx, "k", []byte("old")))
		require.NoError(t, store.Set(ctx, "k", []byte("new")))

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), got)
	})

	t.Run("remove deletes the value", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := fs.NewStore(t.TempDir())

		require.NoError(t, store.Set(ctx, "k", []byte("v")))
		require.NoError(t, store.Remove(ctx, "k"))

		_, err := store.Get(ctx, "k")
		assert.Equal(t, joblens.ENOTFOUND, joblens.ErrorCode(err))
	})

	t.Run("remove of a missing key is not an error", func(t *testing.T) {
		t.Parallel()

		store := fs.NewStore(t.TempDir())
		require.NoError(t, store.Remove(context.Background(), "never-set"))
	})

	t.Run("keys with unsafe characters do not escape the base dir", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		dir := t.TempDir()
		store := fs.NewStore(dir)

		require.NoError(t, store.Set(ctx, "joblens:content:../../escape", []byte("v")))

		got, err := store.Get(ctx, "joblens:content:../../escape")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})

	t.Run("no temp files left behind after writes", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		dir := t.TempDir()
		store := fs.NewStore(dir)

		for range 5 {
			require.NoError(t, store.Set(ctx, "k", []byte("v")))
		}

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".write-")
		}
	})
}
