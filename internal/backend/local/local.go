// Package local implements a vtree.Backend that mirrors the tree onto a
// host directory.
//
// Every folder is a directory and every file a regular file below the
// configured root. Virtual paths are translated to host paths only here.
// The directory is scanned once when the storage opens; later external
// changes are not observed.
package local

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/s2quake/vtree/internal/checksum"
	"github.com/s2quake/vtree/internal/files/filesystem"
	"github.com/s2quake/vtree/internal/files/scanner"
	"github.com/s2quake/vtree/internal/retry"
	"github.com/s2quake/vtree/internal/streamutil"
	"github.com/s2quake/vtree/pkg/vtree"
)

// Kind is the backend name reported by Backend.Kind.
const Kind = "local"

const (
	dirPerm  fs.FileMode = 0o755
	filePerm fs.FileMode = 0o644
)

// Backend stores the tree in a host directory.
type Backend struct {
	root   string
	policy WritePolicy
	fs     filesystem.FileSystem
	calc   checksum.Calculator
	retry  *retry.Executor
}

// Option configures a Backend.
type Option func(*Backend)

// WithFileSystem replaces the OS filesystem, typically with a
// filesystem.FaultInjector in tests.
func WithFileSystem(fsys filesystem.FileSystem) Option {
	return func(b *Backend) {
		b.fs = fsys
	}
}

// WithRetry replaces the executor built from Config.Retries.
func WithRetry(e *retry.Executor) Option {
	return func(b *Backend) {
		b.retry = e
	}
}

// New validates cfg and returns a backend rooted at cfg.Root.
func New(cfg Config, opts ...Option) (*Backend, error) {
	root, err := ResolveRoot(cfg.Root)
	if err != nil {
		return nil, err
	}
	policy, err := ParseWritePolicy(string(cfg.WritePolicy))
	if err != nil {
		return nil, err
	}

	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must not be negative, got %d: %w", cfg.Retries, vtree.ErrInvalidConfig)
	}

	b := &Backend{
		root:   root,
		policy: policy,
		fs:     filesystem.NewOSFileSystem(),
		calc:   checksum.New(),
		retry:  retry.None(),
	}
	if cfg.Retries > 0 {
		b.retry = retry.NewExecutor(retry.HostErrors, retry.NewBackoff(cfg.Retries))
	}
	for _, opt := range opts {
		opt(b)
	}

	info, err := b.fs.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist) && cfg.CreateRoot:
		if err := b.fs.MkdirAll(root, dirPerm); err != nil {
			return nil, fmt.Errorf("failed to create root %s: %w", root, err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to access root %s: %w", root, err)
	case !info.IsDir():
		return nil, fmt.Errorf("root %s is not a directory: %w", root, vtree.ErrInvalidConfig)
	}
	return b, nil
}

func (b *Backend) Kind() string { return Kind }

// SharedNamespace reports true: a host directory cannot hold a file and a
// subdirectory with the same name.
func (b *Backend) SharedNamespace() bool { return true }

// Root returns the absolute host path of the root folder.
func (b *Backend) Root() string { return b.root }

// Policy returns the write policy in effect.
func (b *Backend) Policy() WritePolicy { return b.policy }

// HostPath translates a virtual path to a host path below the root.
func (b *Backend) HostPath(virtual string) string {
	rel := strings.TrimPrefix(virtual, vtree.Separator)
	if rel == "" {
		return b.root
	}
	return filepath.Join(b.root, filepath.FromSlash(rel))
}

func isTempName(name string) bool {
	return strings.HasPrefix(name, vtree.TempFilePrefix) && strings.HasSuffix(name, vtree.TempFileSuffix)
}

// Scan reports the directory tree below the root.
func (b *Backend) Scan(visit func(vtree.ScanEntry) error) error {
	s := scanner.NewScannerWithFS(b.fs).WithFilter(func(name string, isDir bool) bool {
		return !isDir && isTempName(name)
	})
	return s.Scan(b.root, func(e scanner.Entry) error {
		kind := vtree.KindFile
		if e.IsDir {
			kind = vtree.KindFolder
		}
		return visit(vtree.ScanEntry{
			Path: vtree.Separator + e.RelPath,
			Kind: kind,
			Stat: vtree.Stat{Size: e.Size, ModTime: e.ModTime},
		})
	})
}

func (b *Backend) Stat(ref vtree.NodeRef) (vtree.Stat, error) {
	info, err := b.fs.Stat(b.HostPath(ref.Path))
	if err != nil {
		return vtree.Stat{}, err
	}
	if info.IsDir() != (ref.Kind == vtree.KindFolder) {
		return vtree.Stat{}, fmt.Errorf("%s is not a %s on disk", ref.Path, ref.Kind)
	}
	st := vtree.Stat{ModTime: info.ModTime()}
	if !info.IsDir() {
		st.Size = info.Size()
	}
	return st, nil
}

func (b *Backend) CreateFolder(ref vtree.NodeRef) (vtree.Stat, error) {
	host := b.HostPath(ref.Path)
	if err := b.retry.Do(func() error { return b.fs.Mkdir(host, dirPerm) }); err != nil {
		return vtree.Stat{}, err
	}
	return b.Stat(ref)
}

func (b *Backend) CreateFile(ref vtree.NodeRef, src io.Reader, length int64) (vtree.Stat, error) {
	host := b.HostPath(ref.Path)
	f, err := b.fs.OpenFile(host, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return vtree.Stat{}, err
	}
	if _, err := streamutil.Copy(f, src, length, nil); err != nil {
		f.Close()
		b.fs.Remove(host)
		return vtree.Stat{}, err
	}
	if err := f.Close(); err != nil {
		b.fs.Remove(host)
		return vtree.Stat{}, err
	}
	return b.Stat(ref)
}

// relocate renames a host entry without replacing an existing one.
func (b *Backend) relocate(oldPath, newPath string) error {
	from, to := b.HostPath(oldPath), b.HostPath(newPath)
	if _, err := b.fs.Stat(to); err == nil {
		return &fs.PathError{Op: "rename", Path: to, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return b.retry.Do(func() error { return b.fs.Rename(from, to) })
}

func (b *Backend) Rename(ref vtree.NodeRef, newPath string) error {
	return b.relocate(ref.Path, newPath)
}

func (b *Backend) Move(ref vtree.NodeRef, newPath string) error {
	return b.relocate(ref.Path, newPath)
}

// Delete removes the host entry. A file already missing on disk is not an
// error.
func (b *Backend) Delete(ref vtree.NodeRef, subtree []vtree.NodeRef) error {
	host := b.HostPath(ref.Path)
	if ref.Kind == vtree.KindFolder {
		return b.retry.Do(func() error { return b.fs.RemoveAll(host) })
	}
	err := b.retry.Do(func() error { return b.fs.Remove(host) })
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (b *Backend) OpenRead(ref vtree.NodeRef) (io.ReadCloser, error) {
	return b.open(b.HostPath(ref.Path))
}

func (b *Backend) open(host string) (filesystem.File, error) {
	var f filesystem.File
	err := b.retry.Do(func() error {
		var err error
		f, err = b.fs.Open(host)
		return err
	})
	return f, err
}

func (b *Backend) OpenWrite(ref vtree.NodeRef) (vtree.WriteStream, error) {
	host := b.HostPath(ref.Path)
	if b.policy == WriteAtomic {
		return b.openAtomic(host)
	}
	return b.openDestructive(host)
}

func (b *Backend) Hash(ref vtree.NodeRef) (string, error) {
	f, err := b.open(b.HostPath(ref.Path))
	if err != nil {
		return "", err
	}
	defer f.Close()
	return b.calc.CalculateReader(f)
}

// Close is a no-op; the directory tree is the only state.
func (b *Backend) Close() error {
	return nil
}

var (
	_ vtree.Backend         = (*Backend)(nil)
	_ vtree.SharedNamespace = (*Backend)(nil)
)
