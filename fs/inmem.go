package go_fs

import (
	"bytes"
	"sync"
)

type fileId int64

type InmemOptionFn func(*inmemStorage)

// WithInmemNaturalWriteSize sets the natural write size reported by every
// in-memory writable.
func WithInmemNaturalWriteSize(size uint64) InmemOptionFn {
	return func(s *inmemStorage) {
		s.naturalWriteSize = size
	}
}

type inmemStorage struct {
	files            map[fileId]*memFile
	mu               sync.Mutex
	naturalWriteSize uint64
}

type memFile struct {
	bytes.Buffer
	// opened either for reading or writing
	open bool
	// writeCount is the number of Write calls the file received
	writeCount int
	storage    *inmemStorage
}

type memReader struct {
	*bytes.Reader
	file *memFile
}

func (mr memReader) Size() uint64 {
	return uint64(mr.Reader.Size())
}

func (mr memReader) Close() error {
	mr.file.storage.mu.Lock()
	defer mr.file.storage.mu.Unlock()
	if !mr.file.open {
		return errFileIsClosed
	}
	mr.file.open = false
	return nil
}

type memWriter struct {
	*memFile
}

func (m memWriter) Write(p []byte) (int, error) {
	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()
	if !m.open {
		return 0, errFileIsClosed
	}
	m.writeCount++
	return m.Buffer.Write(p)
}

func (m memWriter) Close() error {
	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()
	if !m.open {
		return errFileIsClosed
	}
	m.open = false
	return nil
}

func (m memWriter) Sync() error {
	// no op
	return nil
}

func (m memWriter) NaturalWriteSize() uint64 {
	return m.storage.naturalWriteSize
}

func (m memWriter) Finish() error {
	return m.Close()
}

func (m memWriter) Abort() {
	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()
	m.open = false
	m.Buffer.Reset()
}

func NewInmemStorage(opts ...InmemOptionFn) Storage {
	s := &inmemStorage{
		files:            make(map[fileId]*memFile),
		naturalWriteSize: DefaultNaturalWriteSize,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (i *inmemStorage) Open(objType ObjectType, num int64) (Readable, FileDesc, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if file, ok := i.files[i.toFileId(objType, num)]; ok {
		// we only allow opening a file only once
		if file.open {
			return nil, FileDesc{}, errFileIsOpened
		}

		file.open = true
		return memReader{Reader: bytes.NewReader(file.Bytes()), file: file}, i.toFileDesc(objType, num), nil
	}

	return nil, FileDesc{}, errFileNotFound
}

func (i *inmemStorage) Create(objType ObjectType, num int64) (Writable, FileDesc, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	fid := i.toFileId(objType, num)
	if _, ok := i.files[fid]; ok {
		return nil, FileDesc{}, errFileExists
	}

	i.files[fid] = &memFile{open: true, storage: i}

	return memWriter{memFile: i.files[fid]}, i.toFileDesc(objType, num), nil
}

func (i *inmemStorage) LookUp(objType ObjectType, num int64) (FileDesc, error) {
	return i.toFileDesc(objType, num), nil
}

func (i *inmemStorage) Remove(objType ObjectType, num int64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	fid := i.toFileId(objType, num)
	if _, ok := i.files[fid]; !ok {
		return errFileNotFound
	}

	delete(i.files, fid)

	return nil
}

func (i *inmemStorage) Close() error {
	return nil
}

// WriteCount returns how many Write calls the object received, it is meant
// for tests asserting on the I/O pattern of a writer.
func WriteCount(s Storage, objType ObjectType, num int64) (int, error) {
	i, ok := s.(*inmemStorage)
	if !ok {
		return 0, errFileNotFound
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	file, ok := i.files[i.toFileId(objType, num)]
	if !ok {
		return 0, errFileNotFound
	}
	return file.writeCount, nil
}

func (i *inmemStorage) toFileId(objType ObjectType, num int64) fileId {
	return fileId(num<<4 | int64(objType))
}

func (i *inmemStorage) toFileDesc(objType ObjectType, num int64) FileDesc {
	return FileDesc{Num: num, Type: objType, Loc: InMemory}
}

var _ Storage = (*inmemStorage)(nil)
