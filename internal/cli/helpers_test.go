package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// setupLocal points every command at a fresh local backend and returns its
// host directory.
func setupLocal(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"VTREE_BACKEND", "VTREE_ROOT", "VTREE_WRITE_POLICY", "VTREE_LOG_FORMAT", "VTREE_VERBOSE"} {
		t.Setenv(k, "")
	}
	t.Setenv("VTREE_NON_INTERACTIVE", "1")

	resetGlobalFlags()
	resetCommandFlags()
	t.Cleanup(func() {
		resetGlobalFlags()
		resetCommandFlags()
	})

	dir := t.TempDir()
	globalFlags.backend = "local"
	globalFlags.root = dir
	return dir
}

func resetCommandFlags() {
	lsFlags.long = false
	treeFlags.sizes = false
	mkdirFlags.parents = false
	renameFlags.file = false
	mvFlags.file = false
	rmFlags.yes = false
	rmFlags.file = false
}

// run calls fn the way cobra would for cmd, with stdin set to input, and
// returns what it wrote to stdout.
func run(t *testing.T, cmd *cobra.Command, fn func(*cobra.Command, []string) error, input string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(input))
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
		cmd.SetIn(nil)
	})

	err := fn(cmd, args)
	return out.String(), err
}

// mustRun is run for steps that set up a later assertion.
func mustRun(t *testing.T, cmd *cobra.Command, fn func(*cobra.Command, []string) error, args ...string) string {
	t.Helper()
	out, err := run(t, cmd, fn, "", args...)
	if err != nil {
		t.Fatalf("%s %v: %v", cmd.Name(), args, err)
	}
	return out
}

