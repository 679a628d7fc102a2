package go_fs

import (
	"errors"
	"io"
)

type ObjectType byte

const (
	// TypeColumnar is a columnar file assembled from flushed stripes.
	TypeColumnar ObjectType = iota
	// TypeScratch holds data that is thrown away once the writer finishes.
	TypeScratch
)

type Location byte

const (
	InMemory Location = iota
	LocalFile
)

type FileDesc struct {
	Type ObjectType
	Num  int64
	Loc  Location
}

// DefaultNaturalWriteSize is used whenever the backend can not tell its
// preferred I/O size.
const DefaultNaturalWriteSize = 4 * 1024

var (
	errFileNotFound = errors.New("file not found")
	errFileIsOpened = errors.New("file is opened")
	errFileIsClosed = errors.New("file is closed")
	errFileExists   = errors.New("file exists")
)

type Syncer interface {
	Sync() error
}

// Writable is the handle for a storage object that is open for writing.
type Writable interface {
	// io.Write writes len(p) bytes from p to the underlying object. The data is not
	// guaranteed to be durable until Finish is called.
	//
	// io.Write make sure that the error will be not nil, if n < len(p)
	io.WriteCloser
	Syncer

	// NaturalWriteSize is the write size the object handles best, callers
	// should batch their writes into chunks of this size.
	NaturalWriteSize() uint64

	// Finish completes the object and makes the data durable.
	// No further calls are allowed after calling Finish.
	Finish() error

	// Abort gives up on finishing the object. There is no guarantee about whether
	// the object exists after calling Abort.
	// No further calls are allowed after calling Abort.
	Abort()
}

// Readable is the handle for a storage object that is open for reading.
type Readable interface {
	io.ReaderAt
	io.ReadSeeker

	Size() uint64
	Close() error
}

// Storage is a singleton object used to access and manage objects.
//
// An object is conceptually like a large immutable file, written once by a
// flushing writer and read back afterward.
type Storage interface {
	// Open opens an existing object read-only.
	Open(objType ObjectType, num int64) (Readable, FileDesc, error)

	// Create creates a new object and opens it for writing.
	//
	// The object is not guaranteed to be durable (accessible in case of crashes)
	// until Finish is called.
	Create(objType ObjectType, num int64) (Writable, FileDesc, error)

	// LookUp returns the metadata of an object,
	// it doesn't perform any I/O operations
	LookUp(objType ObjectType, num int64) (FileDesc, error)

	Remove(objType ObjectType, num int64) error

	Close() error
}
