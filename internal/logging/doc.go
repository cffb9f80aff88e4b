// Package logging provides concrete implementations of the vtree.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes plain prefixed lines to stderr
//   - ZapLogger: Structured output through go.uber.org/zap
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
