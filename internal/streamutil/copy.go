// Package streamutil copies content between streams with progress reporting.
package streamutil

import (
	"errors"
	"fmt"
	"io"

	"github.com/s2quake/vtree/pkg/vtree"
)

// ErrShortSource is returned when a source ends before the expected length.
var ErrShortSource = errors.New("source shorter than expected length")

const chunkSize = 32 * 1024

// Copy copies length bytes from src to dst, reporting progress after every
// chunk. With vtree.UnknownLength it copies until EOF. Returns the number of
// bytes written.
func Copy(dst io.Writer, src io.Reader, length int64, progress vtree.ProgressFunc) (int64, error) {
	if length < 0 && length != vtree.UnknownLength {
		return 0, fmt.Errorf("negative length %d", length)
	}

	buf := make([]byte, chunkSize)
	var written int64
	for length == vtree.UnknownLength || written < length {
		want := int64(len(buf))
		if length != vtree.UnknownLength && length-written < want {
			want = length - written
		}
		n, readErr := src.Read(buf[:want])
		if n > 0 {
			w, err := dst.Write(buf[:n])
			written += int64(w)
			if err != nil {
				return written, err
			}
			if w != n {
				return written, io.ErrShortWrite
			}
			progress.Report(written, length)
		}
		if readErr == io.EOF {
			if length != vtree.UnknownLength && written < length {
				return written, fmt.Errorf("read %d of %d bytes: %w", written, length, ErrShortSource)
			}
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
	return written, nil
}

// ProgressReader reports the bytes read through it.
type ProgressReader struct {
	r        io.Reader
	total    int64
	done     int64
	progress vtree.ProgressFunc
}

// NewProgressReader wraps r. total is passed through to progress unchanged.
func NewProgressReader(r io.Reader, total int64, progress vtree.ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, total: total, progress: progress}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.progress.Report(p.done, p.total)
	}
	return n, err
}

// Done returns the number of bytes read so far.
func (p *ProgressReader) Done() int64 {
	return p.done
}
