package vtree

import "io"

// Backend performs the physical side of tree operations. The storage calls
// a backend only after validating the request against the tree, and
// updates the tree only after the backend call succeeds.
//
// Backends are not required to be safe for concurrent use; the storage
// serializes every call except reads and writes on returned streams.
//
// # Write postconditions
//
// OpenWrite differs between implementations:
//
//   - Local, destructive policy: the existing file is deleted when the
//     stream opens and recreated with the new content. Abort (or a failure
//     while writing) leaves no file on disk.
//   - Local, atomic policy: bytes are staged in a temporary file next to
//     the target and renamed over it on Close. Abort leaves the old file.
//   - Memory: bytes are buffered and swapped in on Close. Abort leaves the
//     old buffer and readers opened earlier keep seeing it.
type Backend interface {
	// Kind names the backend ("local", "memory").
	Kind() string

	// Scan reports pre-existing nodes, parents before children.
	Scan(visit func(ScanEntry) error) error

	// Stat returns the current physical attributes of a node.
	Stat(ref NodeRef) (Stat, error)

	// CreateFolder creates the physical counterpart of a new folder.
	CreateFolder(ref NodeRef) (Stat, error)

	// CreateFile stores length bytes read from src (UnknownLength reads to
	// EOF). A short source fails and leaves nothing behind.
	CreateFile(ref NodeRef, src io.Reader, length int64) (Stat, error)

	// Rename changes the last segment of a node's path.
	Rename(ref NodeRef, newPath string) error

	// Move relocates a node under another folder.
	Move(ref NodeRef, newPath string) error

	// Delete removes a node. For folders, subtree lists every descendant so
	// that per-node state can be released.
	Delete(ref NodeRef, subtree []NodeRef) error

	// OpenRead opens the content of a file.
	OpenRead(ref NodeRef) (io.ReadCloser, error)

	// OpenWrite opens a stream that replaces the content of a file.
	OpenWrite(ref NodeRef) (WriteStream, error)

	// Hash returns the lowercase hex SHA-256 of a file's content.
	Hash(ref NodeRef) (string, error)

	// Close releases backend resources.
	Close() error
}

// SharedNamespace is implemented by backends where a folder and a file in
// the same parent cannot carry the same name, such as a host directory.
// The storage then rejects such a name with ErrDuplicateName before any
// physical change.
type SharedNamespace interface {
	SharedNamespace() bool
}
