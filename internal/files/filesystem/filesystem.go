package filesystem

import (
	"io"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// DirEntry is an alias for fs.DirEntry from the standard library.
type DirEntry = fs.DirEntry

// File is an open host file.
type File interface {
	io.Reader
	io.Writer
	io.Closer

	// Name returns the host path the file was opened with.
	Name() string

	// Sync flushes written content to stable storage.
	Sync() error
}

// FileSystem is the set of host operations the local backend relies on.
// Paths are host paths, not virtual paths.
type FileSystem interface {
	// Stat returns file information for the given path
	Stat(path string) (FileInfo, error)

	// ReadDir returns the entries of a directory sorted by name.
	ReadDir(path string) ([]DirEntry, error)

	// Mkdir creates a single directory. It fails if the path exists.
	Mkdir(path string, perm fs.FileMode) error

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string, perm fs.FileMode) error

	// Open opens a file for reading.
	Open(path string) (File, error)

	// OpenFile opens a file with os.OpenFile flag semantics.
	OpenFile(path string, flag int, perm fs.FileMode) (File, error)

	// Rename moves oldPath to newPath.
	Rename(oldPath, newPath string) error

	// Remove deletes a file or an empty directory.
	Remove(path string) error

	// RemoveAll deletes path and everything below it.
	RemoveAll(path string) error
}
