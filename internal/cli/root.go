package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vtree",
	Short: "Virtual folder and file tree over a local directory or memory",
	Long: `vtree keeps a tree of folders and files in memory and mirrors every change
onto a storage backend: a host directory (local) or byte buffers (memory).

Paths are virtual: absolute, '/'-separated, case-sensitive. A leading '/'
may be omitted on the command line.

Configuration is read from vtree.yaml in the working directory (or --config),
then VTREE_* environment variables (a .env file is honored), then flags.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  20 - Path not found
  21 - Duplicate name
  22 - Invalid path or name
  23 - Invalid operation
  24 - Backend I/O failure
  25 - Node already deleted`,
	SilenceUsage: true,
}

// globalFlags holds the persistent flags shared by every command.
var globalFlags struct {
	configPath  string
	backend     string
	root        string
	writePolicy string
	verbose     bool
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalFlags.configPath, "config", "", "Config file (default: ./vtree.yaml when present)")
	pf.StringVar(&globalFlags.backend, "backend", "", "Storage backend: local or memory")
	pf.StringVar(&globalFlags.root, "root", "", "Host directory of the local backend (path or file:// URI)")
	pf.StringVar(&globalFlags.writePolicy, "write-policy", "", "Local write policy: destructive or atomic")
	pf.BoolVarP(&globalFlags.verbose, "verbose", "v", false, "Enable verbose output for all commands")
}

func resetGlobalFlags() {
	globalFlags.configPath = ""
	globalFlags.backend = ""
	globalFlags.root = ""
	globalFlags.writePolicy = ""
	globalFlags.verbose = false
}
