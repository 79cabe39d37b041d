package storage

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeKey(t *testing.T) {
	cases := map[string]string{
		"covers/a.webp":    "covers/a.webp",
		"/covers/a.webp":   "covers/a.webp",
		"./covers//a.webp": "covers/a.webp",
		`covers\a.webp`:    "covers/a.webp",
		"covers/../a.webp": "a.webp",
	}
	for in, want := range cases {
		got, err := sanitizeKey(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "  ", ".", "..", "../etc/passwd", "a/../../b"} {
		_, err := sanitizeKey(bad)
		require.Error(t, err, bad)
	}
}

func TestScratchStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewScratchStore(t.TempDir())
	require.NoError(t, err)

	key, err := store.Write(ctx, "covers/one.webp", []byte("img"))
	require.NoError(t, err)
	require.Equal(t, "covers/one.webp", key)

	data, err := store.Read(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte("img"), data)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Read(ctx, key)
	require.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, store.Delete(ctx, key))

	base := store.BasePath()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	_, err = os.Stat(base)
	require.True(t, os.IsNotExist(err))

	_, err = store.Write(ctx, "again.webp", []byte("x"))
	require.Error(t, err)
}

func TestPersistentStoreSurvivesClose(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	_, err = store.Write(context.Background(), "keep.png", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = os.Stat(dir + "/keep.png")
	require.NoError(t, err)
}

func TestWriteHonorsCancelledContext(t *testing.T) {
	store, err := NewScratchStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Write(ctx, "a.webp", []byte("x"))
	require.ErrorIs(t, err, context.Canceled)
}
