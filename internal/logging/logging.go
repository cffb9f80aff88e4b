package logging

import (
	"fmt"

	"github.com/s2quake/vtree/pkg/vtree"
)

// Formats accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns the logger for format: the plain console logger for
// "console" (or empty), a zap JSON logger for "json".
func New(format string, verbose bool) (vtree.Logger, error) {
	switch format {
	case "", FormatConsole:
		return NewConsoleLogger(verbose), nil
	case FormatJSON:
		return NewZapLogger(ZapConfig{Verbose: verbose, Format: FormatJSON})
	default:
		return nil, fmt.Errorf("unknown log format %q: %w", format, vtree.ErrInvalidConfig)
	}
}

var (
	_ vtree.Logger = (*ConsoleLogger)(nil)
	_ vtree.Logger = (*NullLogger)(nil)
	_ vtree.Logger = (*ZapLogger)(nil)
)
