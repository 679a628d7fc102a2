package go_fs

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func Test_Create_And_Open(t *testing.T) {
	writeFunc := func(writable Writable, b []byte) error {
		n, err := writable.Write(b)
		assert.NoError(t, err)
		assert.Equal(t, len(b), n, "Can not write fully")
		return err
	}

	type param struct {
		name             string
		fileCountPerType map[ObjectType]int
		fileSize         int
		async            bool
	}

	dummyByte := []byte{0x3A, 0x29}

	cases := []param{
		{
			name:  "async",
			async: true,
			fileCountPerType: map[ObjectType]int{
				TypeColumnar: 3,
				TypeScratch:  2,
			},
			fileSize: 5,
		},
		{
			name:  "sync",
			async: false,
			fileCountPerType: map[ObjectType]int{
				TypeColumnar: 3,
				TypeScratch:  2,
			},
			fileSize: 5,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			storage := NewInmemStorage()
			writers := make(map[FileDesc]Writable)
			// create files
			for fileType, num := range tc.fileCountPerType {
				for i := 0; i < num; i++ {
					writer, fd, err := storage.Create(fileType, int64(i))
					require.NoError(t, err, "can not create file")
					writers[fd] = writer
				}
			}

			// write to file
			eg := errgroup.Group{}
			if tc.async {
				eg.SetLimit(10)
			} else {
				eg.SetLimit(1)
			}

			for fileType, num := range tc.fileCountPerType {
				for i := 0; i < num; i++ {
					fd, err := storage.LookUp(fileType, int64(i))
					require.NoError(t, err, "can not look up file")
					writer, ok := writers[fd]
					require.True(t, ok, fmt.Sprintf("can not find writer for %#v", fd))
					eg.Go(func() error {
						if err := writeFunc(writer, bytes.Repeat(dummyByte, tc.fileSize)); err != nil {
							return err
						}
						return writer.Finish()
					})
				}
			}

			require.NoError(t, eg.Wait())

			// assert file content
			for fileType, num := range tc.fileCountPerType {
				for i := 0; i < num; i++ {
					reader, fd, err := storage.Open(fileType, int64(i))
					require.NoError(t, err, "can not open file")
					_, ok := writers[fd]
					assert.True(t, ok, fmt.Sprintf("can not find writer for %#v", fd))

					var buf bytes.Buffer
					_, err = buf.ReadFrom(reader)
					assert.NoError(t, err)
					assert.Equal(t, bytes.Repeat(dummyByte, tc.fileSize), buf.Bytes())
					assert.Equal(t, uint64(len(dummyByte)*tc.fileSize), reader.Size())
					assert.NoError(t, reader.Close())
				}
			}
		})
	}
}

func Test_Inmem_Lifecycle(t *testing.T) {
	storage := NewInmemStorage(WithInmemNaturalWriteSize(64))

	w, fd, err := storage.Create(TypeColumnar, 7)
	require.NoError(t, err)
	assert.Equal(t, FileDesc{Type: TypeColumnar, Num: 7, Loc: InMemory}, fd)
	assert.Equal(t, uint64(64), w.NaturalWriteSize())

	_, _, err = storage.Create(TypeColumnar, 7)
	assert.ErrorIs(t, err, errFileExists)

	_, _, err = storage.Open(TypeColumnar, 7)
	assert.ErrorIs(t, err, errFileIsOpened, "file is still being written")

	_, err = w.Write([]byte("ab"))
	require.NoError(t, err)
	_, err = w.Write([]byte("cd"))
	require.NoError(t, err)
	require.NoError(t, w.Finish())

	count, err := WriteCount(storage, TypeColumnar, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = w.Write([]byte("late"))
	assert.ErrorIs(t, err, errFileIsClosed)

	r, _, err := storage.Open(TypeColumnar, 7)
	require.NoError(t, err)
	got := make([]byte, 2)
	_, err = r.ReadAt(got, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte("cd"), got)
	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Close(), errFileIsClosed)

	require.NoError(t, storage.Remove(TypeColumnar, 7))
	assert.ErrorIs(t, storage.Remove(TypeColumnar, 7), errFileNotFound)
	_, _, err = storage.Open(TypeColumnar, 7)
	assert.ErrorIs(t, err, errFileNotFound)
}

func Test_Inmem_Abort(t *testing.T) {
	storage := NewInmemStorage()
	w, _, err := storage.Create(TypeScratch, 1)
	require.NoError(t, err)

	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	w.Abort()

	r, _, err := storage.Open(TypeScratch, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), r.Size())
}
