package go_fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type localStorage struct {
	dirPath string
}

type localWriter struct {
	f       *os.File
	path    string
	natural uint64
}

type localReader struct {
	*os.File
	size uint64
}

func (r localReader) Size() uint64 {
	return r.size
}

func (w *localWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *localWriter) Close() error {
	return w.f.Close()
}

func (w *localWriter) Sync() error {
	return w.f.Sync()
}

func (w *localWriter) NaturalWriteSize() uint64 {
	return w.natural
}

func (w *localWriter) Finish() error {
	if err := w.f.Sync(); err != nil {
		zap.L().Error("Failed to sync file", zap.String("path", w.path), zap.Error(err))
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}

func (w *localWriter) Abort() {
	_ = w.f.Close()
	if err := os.Remove(w.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		zap.L().Warn("Failed to remove aborted file", zap.String("path", w.path), zap.Error(err))
	}
}

// NewLocalStorage stores objects as files under dirPath, creating the
// directory if needed.
func NewLocalStorage(dirPath string) (Storage, error) {
	if err := os.MkdirAll(dirPath, os.ModePerm); err != nil {
		zap.L().Error("Failed to create dir", zap.String("dirPath", dirPath), zap.Error(err))
		return nil, err
	}
	return &localStorage{dirPath: dirPath}, nil
}

func (l *localStorage) Open(objType ObjectType, num int64) (Readable, FileDesc, error) {
	f, err := os.Open(l.path(objType, num))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, FileDesc{}, errFileNotFound
		}
		return nil, FileDesc{}, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, FileDesc{}, err
	}

	return localReader{File: f, size: uint64(info.Size())}, l.toFileDesc(objType, num), nil
}

func (l *localStorage) Create(objType ObjectType, num int64) (Writable, FileDesc, error) {
	path := l.path(objType, num)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, FileDesc{}, errFileExists
		}
		zap.L().Error("Failed to create file", zap.String("path", path), zap.Error(err))
		return nil, FileDesc{}, err
	}

	return &localWriter{
		f:       f,
		path:    path,
		natural: naturalWriteSize(f),
	}, l.toFileDesc(objType, num), nil
}

func (l *localStorage) LookUp(objType ObjectType, num int64) (FileDesc, error) {
	return l.toFileDesc(objType, num), nil
}

func (l *localStorage) Remove(objType ObjectType, num int64) error {
	err := os.Remove(l.path(objType, num))
	if errors.Is(err, fs.ErrNotExist) {
		return errFileNotFound
	}
	return err
}

func (l *localStorage) Close() error {
	return nil
}

func (l *localStorage) path(objType ObjectType, num int64) string {
	return filepath.Join(l.dirPath, fmt.Sprintf("%06d%s", num, objType.ext()))
}

func (l *localStorage) toFileDesc(objType ObjectType, num int64) FileDesc {
	return FileDesc{Num: num, Type: objType, Loc: LocalFile}
}

func (t ObjectType) ext() string {
	switch t {
	case TypeColumnar:
		return ".col"
	case TypeScratch:
		return ".tmp"
	default:
		return ".obj"
	}
}

var _ Storage = (*localStorage)(nil)
