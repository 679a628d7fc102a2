package go_fs

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LocalStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	storage, err := NewLocalStorage(dir)
	require.NoError(t, err)
	defer storage.Close()

	w, fd, err := storage.Create(TypeColumnar, 3)
	require.NoError(t, err)
	assert.Equal(t, FileDesc{Type: TypeColumnar, Num: 3, Loc: LocalFile}, fd)
	assert.Greater(t, w.NaturalWriteSize(), uint64(0))

	_, _, err = storage.Create(TypeColumnar, 3)
	assert.ErrorIs(t, err, errFileExists)

	_, err = w.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = w.Write([]byte("columnar"))
	require.NoError(t, err)
	require.NoError(t, w.Finish())

	_, err = os.Stat(filepath.Join(dir, "000003.col"))
	require.NoError(t, err)

	r, _, err := storage.Open(TypeColumnar, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(14), r.Size())
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello columnar", string(content))
	require.NoError(t, r.Close())

	require.NoError(t, storage.Remove(TypeColumnar, 3))
	assert.ErrorIs(t, storage.Remove(TypeColumnar, 3), errFileNotFound)
	_, _, err = storage.Open(TypeColumnar, 3)
	assert.ErrorIs(t, err, errFileNotFound)
}

func Test_LocalStorage_Abort(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	require.NoError(t, err)

	w, _, err := storage.Create(TypeScratch, 1)
	require.NoError(t, err)
	_, err = w.Write([]byte("discard me"))
	require.NoError(t, err)
	w.Abort()

	_, err = os.Stat(filepath.Join(dir, "000001.tmp"))
	assert.True(t, os.IsNotExist(err))
}
