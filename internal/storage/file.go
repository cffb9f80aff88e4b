package storage

import (
	"io"
	"time"

	"github.com/s2quake/vtree/pkg/vtree"
)

// File is a handle to a file of a Storage. The zero value is not usable.
type File struct {
	s *Storage
	h vtree.Handle
}

// Handle returns the file's stable handle.
func (f File) Handle() vtree.Handle { return f.h }

// Info returns the file's attributes.
func (f File) Info() (Info, error) {
	if f.s == nil {
		return Info{}, vtree.NewError(vtree.OpStat, "", vtree.ErrDisposed, nil)
	}
	return f.s.info(f.h, vtree.OpStat)
}

// Exists reports whether f still belongs to its storage.
func (f File) Exists() bool {
	_, err := f.Info()
	return err == nil
}

func (f File) Name() string {
	info, _ := f.Info()
	return info.Name
}

func (f File) Path() string {
	info, _ := f.Info()
	return info.Path
}

// Size returns the content length in bytes as of the last commit.
func (f File) Size() int64 {
	info, _ := f.Info()
	return info.Size
}

func (f File) ModTime() time.Time {
	info, _ := f.Info()
	return info.ModTime
}

// Folder returns the containing folder.
func (f File) Folder() (Folder, bool) {
	if f.s == nil {
		return Folder{}, false
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	n, err := f.s.live(f.h, vtree.OpStat)
	if err != nil {
		return Folder{}, false
	}
	return Folder{s: f.s, h: n.parent}, true
}

// OpenRead opens the file's content. The caller must close the reader.
func (f File) OpenRead() (io.ReadCloser, error) {
	if f.s == nil {
		return nil, vtree.NewError(vtree.OpOpenRead, "", vtree.ErrDisposed, nil)
	}
	return f.s.openRead(f.h)
}

// OpenWrite opens a stream that replaces the file's content. The caller
// must Close the stream to commit or Abort it to discard.
func (f File) OpenWrite() (vtree.WriteStream, error) {
	if f.s == nil {
		return nil, vtree.NewError(vtree.OpOpenWrite, "", vtree.ErrDisposed, nil)
	}
	return f.s.openWrite(f.h)
}

// Hash returns the lowercase hex SHA-256 of the content.
func (f File) Hash() (string, error) {
	if f.s == nil {
		return "", vtree.NewError(vtree.OpHash, "", vtree.ErrDisposed, nil)
	}
	return f.s.hash(f.h)
}

func (f File) Rename(newName string) error {
	if f.s == nil {
		return vtree.NewError(vtree.OpRename, "", vtree.ErrDisposed, nil)
	}
	return f.s.rename(f.h, newName)
}

// MoveTo moves the file into the folder at targetPath.
func (f File) MoveTo(targetPath string) error {
	if f.s == nil {
		return vtree.NewError(vtree.OpMove, "", vtree.ErrDisposed, nil)
	}
	return f.s.move(f.h, targetPath)
}

func (f File) Delete() error {
	if f.s == nil {
		return vtree.NewError(vtree.OpDelete, "", vtree.ErrDisposed, nil)
	}
	return f.s.delete(f.h)
}
