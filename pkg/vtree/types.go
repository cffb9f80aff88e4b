package vtree

import (
	"io"
	"time"
)

// Handle identifies a node inside one storage. Handles are never reused,
// so a handle that no longer resolves belongs to a deleted node.
type Handle uint64

// NoHandle is the zero handle. It is the parent of the root folder.
const NoHandle Handle = 0

// Kind distinguishes folders from files.
type Kind int

const (
	KindFolder Kind = iota
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// NodeRef is what a backend sees of a node: its stable handle, its kind and
// its current virtual path.
type NodeRef struct {
	Handle Handle
	Kind   Kind
	Path   string
}

// Stat carries the physical attributes a backend reports for a node.
// Size is zero for folders.
type Stat struct {
	Size    int64
	ModTime time.Time
}

// ScanEntry is one node discovered by Backend.Scan.
type ScanEntry struct {
	Path string
	Kind Kind
	Stat Stat
}

// ProgressFunc receives the number of bytes copied so far and the expected
// total (UnknownLength when the source length is not known).
// A nil ProgressFunc is valid and reports nothing.
type ProgressFunc func(done, total int64)

// Report calls p when it is set.
func (p ProgressFunc) Report(done, total int64) {
	if p != nil {
		p(done, total)
	}
}

// WriteStream replaces the content of a file.
// Close commits the bytes written so far; Abort discards them. Exactly one
// of the two must be called and later calls return an error.
type WriteStream interface {
	io.Writer
	Close() error
	Abort() error
}
