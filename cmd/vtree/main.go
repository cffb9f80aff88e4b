package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/s2quake/vtree/internal/cli"
	"github.com/s2quake/vtree/pkg/vtree"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(vtree.ExitPanic)
		}
	}()

	if os.Getenv("VTREE_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(vtree.ExitCodeForError(err))
	}
}
