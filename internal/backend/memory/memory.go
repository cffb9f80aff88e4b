// Package memory implements a vtree.Backend that keeps file content in
// byte buffers.
//
// The tree kept by the storage is the only record of names and paths, so
// renames and moves have no physical effect here. Buffers are keyed by
// file handle and replaced wholesale on write commit; a reader opened
// before a write keeps seeing the old bytes.
package memory

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/s2quake/vtree/internal/checksum"
	"github.com/s2quake/vtree/internal/streamutil"
	"github.com/s2quake/vtree/pkg/vtree"
)

// ErrStorageFull is returned when a create or write would exceed MaxBytes.
var ErrStorageFull = errors.New("memory storage full")

// Kind is the backend name reported by Backend.Kind.
const Kind = "memory"

// Config configures the memory backend.
type Config struct {
	// MaxBytes caps the total size of all buffers. Zero means unlimited.
	MaxBytes int64 `yaml:"max_bytes"`

	// Snapshot optionally names a snapshot file to preload. It is read by
	// the CLI, not by the backend.
	Snapshot string `yaml:"snapshot,omitempty"`
}

type blob struct {
	data    []byte
	modTime time.Time
}

// Backend stores file content in memory.
type Backend struct {
	mu      sync.Mutex
	cfg     Config
	now     func() time.Time
	calc    checksum.Calculator
	created time.Time
	blobs   map[vtree.Handle]*blob
	folders map[vtree.Handle]time.Time
	used    int64
}

// Option configures a Backend.
type Option func(*Backend)

// WithNow sets the clock used for modification times.
func WithNow(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}

// New creates an empty memory backend.
func New(cfg Config, opts ...Option) *Backend {
	b := &Backend{
		cfg:     cfg,
		now:     time.Now,
		calc:    checksum.New(),
		blobs:   make(map[vtree.Handle]*blob),
		folders: make(map[vtree.Handle]time.Time),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.created = b.now()
	return b
}

func (b *Backend) Kind() string { return Kind }

// Scan reports nothing: a new memory backend is empty.
func (b *Backend) Scan(visit func(vtree.ScanEntry) error) error {
	return nil
}

// Used returns the number of buffered bytes.
func (b *Backend) Used() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

func (b *Backend) Stat(ref vtree.NodeRef) (vtree.Stat, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ref.Kind == vtree.KindFolder {
		if t, ok := b.folders[ref.Handle]; ok {
			return vtree.Stat{ModTime: t}, nil
		}
		if isRoot(ref) {
			return vtree.Stat{ModTime: b.created}, nil
		}
		return vtree.Stat{}, fmt.Errorf("folder %s: %w", ref.Path, vtree.ErrNotFound)
	}
	bl, ok := b.blobs[ref.Handle]
	if !ok {
		return vtree.Stat{}, fmt.Errorf("file %s: %w", ref.Path, vtree.ErrNotFound)
	}
	return vtree.Stat{Size: int64(len(bl.data)), ModTime: bl.modTime}, nil
}

func isRoot(ref vtree.NodeRef) bool {
	return ref.Path == vtree.Root
}

func (b *Backend) CreateFolder(ref vtree.NodeRef) (vtree.Stat, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.now()
	b.folders[ref.Handle] = t
	return vtree.Stat{ModTime: t}, nil
}

// maxPreGrow bounds the buffer allocated before any byte is read, since
// length is only a claim of the caller.
const maxPreGrow = 1 << 20

func (b *Backend) CreateFile(ref vtree.NodeRef, src io.Reader, length int64) (vtree.Stat, error) {
	var buf bytes.Buffer
	if length > 0 {
		if err := b.reserve(length); err != nil {
			return vtree.Stat{}, err
		}
		buf.Grow(int(min(length, maxPreGrow)))
	}
	limited := &limitWriter{w: &buf, limit: b.remaining(length)}
	if _, err := streamutil.Copy(limited, src, length, nil); err != nil {
		b.release(length)
		return vtree.Stat{}, fmt.Errorf("reading content for %s: %w", ref.Path, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if length == vtree.UnknownLength {
		if b.cfg.MaxBytes > 0 && b.used+int64(buf.Len()) > b.cfg.MaxBytes {
			return vtree.Stat{}, fmt.Errorf("%s needs %d bytes: %w", ref.Path, buf.Len(), ErrStorageFull)
		}
		b.used += int64(buf.Len())
	}
	bl := &blob{data: buf.Bytes(), modTime: b.now()}
	b.blobs[ref.Handle] = bl
	return vtree.Stat{Size: int64(len(bl.data)), ModTime: bl.modTime}, nil
}

// reserve claims n bytes of capacity up front for a create of known length.
func (b *Backend) reserve(n int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cfg.MaxBytes > 0 && b.used+n > b.cfg.MaxBytes {
		return fmt.Errorf("need %d bytes, %d free: %w", n, b.cfg.MaxBytes-b.used, ErrStorageFull)
	}
	b.used += n
	return nil
}

func (b *Backend) release(n int64) {
	if n <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used -= n
}

// remaining is the write limit for a create: unlimited when the length is
// known (capacity was reserved) or no cap is configured.
func (b *Backend) remaining(length int64) int64 {
	if length != vtree.UnknownLength || b.cfg.MaxBytes <= 0 {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg.MaxBytes - b.used
}

// Rename has no physical effect.
func (b *Backend) Rename(ref vtree.NodeRef, newPath string) error {
	return nil
}

// Move has no physical effect.
func (b *Backend) Move(ref vtree.NodeRef, newPath string) error {
	return nil
}

// Delete releases the buffers of ref and its descendants.
func (b *Backend) Delete(ref vtree.NodeRef, subtree []vtree.NodeRef) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.forget(ref)
	for _, d := range subtree {
		b.forget(d)
	}
	return nil
}

func (b *Backend) forget(ref vtree.NodeRef) {
	if bl, ok := b.blobs[ref.Handle]; ok {
		b.used -= int64(len(bl.data))
		delete(b.blobs, ref.Handle)
	}
	delete(b.folders, ref.Handle)
}

// OpenRead returns a read-only view of the current buffer.
func (b *Backend) OpenRead(ref vtree.NodeRef) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bl, ok := b.blobs[ref.Handle]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", ref.Path, vtree.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(bl.data)), nil
}

// OpenWrite buffers writes and swaps them in on Close.
func (b *Backend) OpenWrite(ref vtree.NodeRef) (vtree.WriteStream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.blobs[ref.Handle]; !ok {
		return nil, fmt.Errorf("file %s: %w", ref.Path, vtree.ErrNotFound)
	}
	return &writeStream{b: b, ref: ref}, nil
}

func (b *Backend) Hash(ref vtree.NodeRef) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bl, ok := b.blobs[ref.Handle]
	if !ok {
		return "", fmt.Errorf("file %s: %w", ref.Path, vtree.ErrNotFound)
	}
	return b.calc.CalculateRaw(bl.data), nil
}

// Close drops every buffer.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.blobs = make(map[vtree.Handle]*blob)
	b.folders = make(map[vtree.Handle]time.Time)
	b.used = 0
	return nil
}

type writeStream struct {
	b    *Backend
	ref  vtree.NodeRef
	buf  bytes.Buffer
	done bool
}

func (w *writeStream) Write(p []byte) (int, error) {
	if w.done {
		return 0, io.ErrClosedPipe
	}
	return w.buf.Write(p)
}

// Close swaps the buffered bytes in as the file's content.
func (w *writeStream) Close() error {
	if w.done {
		return io.ErrClosedPipe
	}
	w.done = true

	b := w.b
	b.mu.Lock()
	defer b.mu.Unlock()

	old, ok := b.blobs[w.ref.Handle]
	if !ok {
		return fmt.Errorf("file %s: %w", w.ref.Path, vtree.ErrNotFound)
	}
	grow := int64(w.buf.Len()) - int64(len(old.data))
	if b.cfg.MaxBytes > 0 && b.used+grow > b.cfg.MaxBytes {
		return fmt.Errorf("%s needs %d more bytes: %w", w.ref.Path, grow, ErrStorageFull)
	}
	b.used += grow
	b.blobs[w.ref.Handle] = &blob{data: w.buf.Bytes(), modTime: b.now()}
	return nil
}

// Abort drops the buffered bytes; the old content stays.
func (w *writeStream) Abort() error {
	if w.done {
		return io.ErrClosedPipe
	}
	w.done = true
	w.buf.Reset()
	return nil
}

// limitWriter fails once more than limit bytes are written. A negative
// limit disables the check.
type limitWriter struct {
	w     io.Writer
	limit int64
	n     int64
}

func (l *limitWriter) Write(p []byte) (int, error) {
	if l.limit >= 0 && l.n+int64(len(p)) > l.limit {
		return 0, ErrStorageFull
	}
	n, err := l.w.Write(p)
	l.n += int64(n)
	return n, err
}

var _ vtree.Backend = (*Backend)(nil)
