// Package scanner discovers the contents of a host directory tree.
//
// The scanner is responsible for:
//   - Recursively discovering files and directories below a root
//   - Reporting size and modification time from the host stat
//   - Reporting entries parents-first so that callers can rebuild the tree
//     in a single pass
//
// The scanner is filesystem-agnostic through the filesystem.FileSystem
// interface, enabling fault injection in tests.
package scanner
