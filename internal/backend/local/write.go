package local

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/s2quake/vtree/internal/files/filesystem"
	"github.com/s2quake/vtree/internal/retry"
	"github.com/s2quake/vtree/pkg/vtree"
)

var errStreamDone = errors.New("write stream already finished")

// openDestructive deletes the existing file and writes a new one in place.
func (b *Backend) openDestructive(host string) (vtree.WriteStream, error) {
	if err := b.fs.Remove(host); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	f, err := b.fs.OpenFile(host, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return nil, err
	}
	return &destructiveStream{fs: b.fs, f: f, host: host}, nil
}

type destructiveStream struct {
	fs   filesystem.FileSystem
	f    filesystem.File
	host string
	done bool
}

func (s *destructiveStream) Write(p []byte) (int, error) {
	if s.done {
		return 0, errStreamDone
	}
	return s.f.Write(p)
}

func (s *destructiveStream) Close() error {
	if s.done {
		return errStreamDone
	}
	s.done = true
	return s.f.Close()
}

// Abort closes and removes the partially written file.
func (s *destructiveStream) Abort() error {
	if s.done {
		return errStreamDone
	}
	s.done = true
	s.f.Close()
	if err := s.fs.Remove(s.host); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// openAtomic stages writes in a uniquely named sibling of host.
func (b *Backend) openAtomic(host string) (vtree.WriteStream, error) {
	if _, err := b.fs.Stat(host); err != nil {
		return nil, err
	}
	tmp := filepath.Join(filepath.Dir(host), vtree.TempFilePrefix+uuid.NewString()+vtree.TempFileSuffix)
	f, err := b.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return nil, err
	}
	return &atomicStream{fs: b.fs, retry: b.retry, f: f, tmp: tmp, host: host}, nil
}

type atomicStream struct {
	fs    filesystem.FileSystem
	retry *retry.Executor
	f     filesystem.File
	tmp   string
	host  string
	done  bool
}

func (s *atomicStream) Write(p []byte) (int, error) {
	if s.done {
		return 0, errStreamDone
	}
	return s.f.Write(p)
}

// Close flushes the temporary file and renames it over the target.
func (s *atomicStream) Close() error {
	if s.done {
		return errStreamDone
	}
	s.done = true
	if err := s.f.Sync(); err != nil {
		s.f.Close()
		s.fs.Remove(s.tmp)
		return err
	}
	if err := s.f.Close(); err != nil {
		s.fs.Remove(s.tmp)
		return err
	}
	if err := s.retry.Do(func() error { return s.fs.Rename(s.tmp, s.host) }); err != nil {
		s.fs.Remove(s.tmp)
		return err
	}
	return nil
}

// Abort removes the temporary file; the target is untouched.
func (s *atomicStream) Abort() error {
	if s.done {
		return errStreamDone
	}
	s.done = true
	s.f.Close()
	return s.fs.Remove(s.tmp)
}
