package storage

import (
	"errors"

	"github.com/s2quake/vtree/pkg/vtree"
)

// ErrStreamClosed is returned by a write stream used after Close or Abort.
var ErrStreamClosed = errors.New("stream already closed")

// writeStream forwards writes to the backend stream and refreshes the
// node's size, modified time and hash when the write commits.
type writeStream struct {
	s     *Storage
	h     vtree.Handle
	path  string
	inner vtree.WriteStream
	done  bool
}

func (w *writeStream) Write(p []byte) (int, error) {
	if w.done {
		return 0, vtree.NewError(vtree.OpCommit, w.path, vtree.ErrInvalidOperation, ErrStreamClosed)
	}
	n, err := w.inner.Write(p)
	if err != nil {
		return n, vtree.IOError(vtree.OpOpenWrite, w.path, err)
	}
	return n, nil
}

// Close commits the written bytes.
func (w *writeStream) Close() error {
	if w.done {
		return vtree.NewError(vtree.OpCommit, w.path, vtree.ErrInvalidOperation, ErrStreamClosed)
	}
	w.done = true

	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := w.inner.Close(); err != nil {
		return vtree.IOError(vtree.OpCommit, w.path, err)
	}
	n, ok := s.nodes[w.h]
	if !ok {
		return vtree.NewError(vtree.OpCommit, w.path, vtree.ErrDisposed, nil)
	}
	path := s.pathOf(n)
	st, err := s.backend.Stat(s.ref(n, path))
	if err != nil {
		return vtree.IOError(vtree.OpCommit, path, err)
	}
	n.size = st.Size
	n.modTime = st.ModTime
	n.hash = ""

	s.logger.Verbose("wrote %s (%d bytes)", path, st.Size)
	return nil
}

// Abort discards the written bytes.
func (w *writeStream) Abort() error {
	if w.done {
		return vtree.NewError(vtree.OpCommit, w.path, vtree.ErrInvalidOperation, ErrStreamClosed)
	}
	w.done = true

	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := w.inner.Abort(); err != nil {
		return vtree.IOError(vtree.OpCommit, w.path, err)
	}
	s.logger.Verbose("aborted write to %s", w.path)
	return nil
}
