// Package files groups the host filesystem helpers used by the local
// backend.
//
//   - filesystem: the FileSystem interface, its OS implementation and a
//     FaultInjector for failure tests
//   - scanner: recursive directory walk producing relative paths, sizes
//     and modification times
package files
