package vtree

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0  // Command completed successfully
	ExitGeneralError     = 1  // Unknown or unclassified error
	ExitUsageError       = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3  // Internal panic (unexpected crash)
	ExitConfigError      = 10 // Invalid configuration
	ExitNotFound         = 20 // Path does not exist
	ExitDuplicateName    = 21 // Sibling with the same name exists
	ExitInvalidPath      = 22 // Malformed path or name
	ExitInvalidOperation = 23 // Operation not allowed (e.g. on the root)
	ExitIOFailure        = 24 // Physical store failure
	ExitDisposed         = 25 // Node used after deletion
)

const (
	// Separator joins the segments of a virtual path.
	Separator = "/"

	// Root is the path of the root folder.
	Root = Separator

	// UnknownLength tells CreateFile to read its source until EOF.
	UnknownLength int64 = -1

	// ConfigFileName is the project configuration file looked up by the CLI.
	ConfigFileName = "vtree.yaml"

	// TempFilePrefix marks in-flight files written by the atomic write
	// policy. The local scan ignores them.
	TempFilePrefix = ".vtree-"

	// TempFileSuffix is the extension of in-flight files.
	TempFileSuffix = ".tmp"
)
