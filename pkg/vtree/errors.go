package vtree

import (
	"errors"
	"strings"
)

// Error kinds returned by tree operations.
// Callers distinguish them using errors.Is().
//
// Example usage:
//
//	_, err := root.CreateFolder("docs")
//	if errors.Is(err, vtree.ErrDuplicateName) {
//	    // Handle the name clash
//	}
var (
	// ErrDuplicateName indicates a sibling of the same kind already has the name.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrNotFound indicates that no node exists at the given path or name.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPath indicates a malformed path or name.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidOperation indicates an operation that is never allowed,
	// such as renaming, moving or deleting the root folder.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrIOFailure indicates that the underlying physical store failed.
	// The tree is left unchanged when this is returned.
	ErrIOFailure = errors.New("i/o failure")

	// ErrDisposed indicates use of a node after it was deleted.
	ErrDisposed = errors.New("node disposed")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Operation names carried by Error.
const (
	OpCreateFolder = "create folder"
	OpCreateFile   = "create file"
	OpRename       = "rename"
	OpMove         = "move"
	OpDelete       = "delete"
	OpOpenRead     = "open read"
	OpOpenWrite    = "open write"
	OpCommit       = "commit write"
	OpResolve      = "resolve"
	OpHash         = "hash"
	OpScan         = "scan"
	OpStat         = "stat"
)

// Error records a failed tree operation together with the path it was
// applied to. Kind is one of the sentinel errors above and Err, when not
// nil, is the underlying cause (an *os.PathError, for example).
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

// NewError creates an Error for the given operation, path and kind.
func NewError(op, path string, kind, cause error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	// a cause that already wraps the kind describes it
	showKind := e.Kind != nil && (e.Err == nil || !errors.Is(e.Err, e.Kind))
	if showKind {
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		if showKind {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IOError wraps a physical failure as ErrIOFailure. An error that already
// carries a kind is returned unchanged.
func IOError(op, path string, cause error) error {
	if cause == nil {
		return nil
	}
	var e *Error
	if errors.As(cause, &e) && e.Kind != nil {
		return cause
	}
	return NewError(op, path, ErrIOFailure, cause)
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrDuplicateName):
		return ExitDuplicateName
	case errors.Is(err, ErrInvalidPath):
		return ExitInvalidPath
	case errors.Is(err, ErrInvalidOperation):
		return ExitInvalidOperation
	case errors.Is(err, ErrIOFailure):
		return ExitIOFailure
	case errors.Is(err, ErrDisposed):
		return ExitDisposed
	}

	// cobra reports argument and flag problems as plain errors
	errStr := err.Error()
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "accepts ") ||
		strings.Contains(errStr, "requires at least") {
		return ExitUsageError
	}

	return ExitGeneralError
}
