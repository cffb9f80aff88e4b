package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s2quake/vtree/internal/tui"
	"github.com/s2quake/vtree/pkg/vtree"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the tree in the terminal",
	Long: `Open a full-screen browser over the tree. Navigate with the arrow keys,
press x to hash the selected file, n to create a folder, d to delete and
q to quit. Requires an interactive terminal.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if why := tui.NonInteractiveReason(); why != "" {
		return fmt.Errorf("browse needs an interactive terminal (%s): %w", why, vtree.ErrInvalidOperation)
	}
	return withSession(cmd, func(s *session) error {
		return tui.RunBrowser(s.store)
	})
}
