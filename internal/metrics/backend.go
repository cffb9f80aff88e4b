package metrics

import (
	"io"
	"time"

	"github.com/s2quake/vtree/pkg/vtree"
)

// Backend decorates a vtree.Backend with operation metrics.
type Backend struct {
	inner vtree.Backend
	rec   *Recorder
	kind  string
}

// Instrument wraps b so that every call is counted and timed.
func (r *Recorder) Instrument(b vtree.Backend) *Backend {
	return &Backend{inner: b, rec: r, kind: b.Kind()}
}

// Unwrap returns the decorated backend.
func (b *Backend) Unwrap() vtree.Backend { return b.inner }

func (b *Backend) observe(op string, start time.Time, err error) {
	b.rec.RecordOperation(b.kind, op, time.Since(start), err)
}

func (b *Backend) Kind() string { return b.kind }

// SharedNamespace forwards the decorated backend's answer.
func (b *Backend) SharedNamespace() bool {
	sn, ok := b.inner.(vtree.SharedNamespace)
	return ok && sn.SharedNamespace()
}

func (b *Backend) Scan(visit func(vtree.ScanEntry) error) error {
	start := time.Now()
	err := b.inner.Scan(visit)
	b.observe(OpScan, start, err)
	return err
}

func (b *Backend) Stat(ref vtree.NodeRef) (vtree.Stat, error) {
	start := time.Now()
	st, err := b.inner.Stat(ref)
	b.observe(OpStat, start, err)
	return st, err
}

func (b *Backend) CreateFolder(ref vtree.NodeRef) (vtree.Stat, error) {
	start := time.Now()
	st, err := b.inner.CreateFolder(ref)
	b.observe(OpCreateFolder, start, err)
	return st, err
}

func (b *Backend) CreateFile(ref vtree.NodeRef, src io.Reader, length int64) (vtree.Stat, error) {
	start := time.Now()
	st, err := b.inner.CreateFile(ref, src, length)
	b.observe(OpCreateFile, start, err)
	if err == nil {
		b.rec.RecordWrite(b.kind, st.Size)
	}
	return st, err
}

func (b *Backend) Rename(ref vtree.NodeRef, newPath string) error {
	start := time.Now()
	err := b.inner.Rename(ref, newPath)
	b.observe(OpRename, start, err)
	return err
}

func (b *Backend) Move(ref vtree.NodeRef, newPath string) error {
	start := time.Now()
	err := b.inner.Move(ref, newPath)
	b.observe(OpMove, start, err)
	return err
}

func (b *Backend) Delete(ref vtree.NodeRef, subtree []vtree.NodeRef) error {
	start := time.Now()
	err := b.inner.Delete(ref, subtree)
	b.observe(OpDelete, start, err)
	return err
}

func (b *Backend) OpenRead(ref vtree.NodeRef) (io.ReadCloser, error) {
	start := time.Now()
	r, err := b.inner.OpenRead(ref)
	b.observe(OpOpenRead, start, err)
	if err != nil {
		return nil, err
	}
	return &countingReader{ReadCloser: r, b: b}, nil
}

func (b *Backend) OpenWrite(ref vtree.NodeRef) (vtree.WriteStream, error) {
	start := time.Now()
	w, err := b.inner.OpenWrite(ref)
	b.observe(OpOpenWrite, start, err)
	if err != nil {
		return nil, err
	}
	return &countingWriter{inner: w, b: b}, nil
}

func (b *Backend) Hash(ref vtree.NodeRef) (string, error) {
	start := time.Now()
	sum, err := b.inner.Hash(ref)
	b.observe(OpHash, start, err)
	return sum, err
}

func (b *Backend) Close() error {
	start := time.Now()
	err := b.inner.Close()
	b.observe(OpClose, start, err)
	return err
}

var _ vtree.Backend = (*Backend)(nil)

type countingReader struct {
	io.ReadCloser
	b *Backend
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	r.b.rec.RecordRead(r.b.kind, int64(n))
	return n, err
}

// countingWriter counts bytes as they are written; bytes of an aborted
// stream stay counted.
type countingWriter struct {
	inner vtree.WriteStream
	b     *Backend
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.inner.Write(p)
	w.b.rec.RecordWrite(w.b.kind, int64(n))
	return n, err
}

func (w *countingWriter) Close() error {
	start := time.Now()
	err := w.inner.Close()
	w.b.observe(OpCommit, start, err)
	return err
}

func (w *countingWriter) Abort() error {
	start := time.Now()
	err := w.inner.Abort()
	w.b.observe(OpAbort, start, err)
	return err
}
