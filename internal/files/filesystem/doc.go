// Package filesystem abstracts the host filesystem operations used by the
// local backend.
//
// Key types:
//   - FileSystem: mutable host filesystem (stat, list, create, rename, remove)
//   - File: an open host file
//
// Implementations:
//   - OSFileSystem: production implementation using the os package
//   - FaultInjector: wrapper that fails selected operations, for tests of
//     failure paths
package filesystem
