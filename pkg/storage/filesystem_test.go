package storage

import (
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Save("completions/abc.png", []byte("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "completions/abc.png", ref)

	file, err := store.Open(ref)
	require.NoError(t, err)
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	require.Equal(t, "png-bytes", string(body))

	require.NoError(t, store.Delete(ref))
	_, err = store.Open(ref)
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.NoError(t, store.Delete(ref))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../escape.txt", []byte("x"))
	require.ErrorIs(t, err, ErrInvalidPath)
	_, err = store.Open("queries/../../etc/passwd")
	require.ErrorIs(t, err, ErrInvalidPath)
}
