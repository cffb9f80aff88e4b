// Package vtree defines the public contract of the virtual file tree:
// sentinel errors, exit codes, the Logger interface and the Backend
// interface that physical stores implement.
//
// The tree itself lives in internal/storage and is shared by every
// backend. A backend only performs physical I/O (directories and files on
// disk, or byte buffers in memory); names, parent links and path indexes
// are owned by the storage.
//
// # Paths
//
// Virtual paths use Separator ("/") regardless of the host platform. The
// root folder is addressed by Root. A folder and a file may share a name
// inside one parent; two siblings of the same kind may not.
//
// # Errors
//
// Every operation failure carries one of the error kinds declared in this
// package and can be tested with errors.Is:
//
//	if errors.Is(err, vtree.ErrDuplicateName) {
//	    // pick another name
//	}
package vtree
