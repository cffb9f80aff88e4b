package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s2quake/vtree/internal/snapshot"
	"github.com/s2quake/vtree/internal/tui"
)

var exportCmd = &cobra.Command{
	Use:   "export <out-file>",
	Short: "Write the whole tree to a snapshot file",
	Long: `Write every folder and file to a zstd-compressed CBOR snapshot. Each file
carries its SHA-256 so that import can verify it.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <in-file>",
	Short: "Recreate a snapshot inside the tree",
	Long: `Recreate the folders and files of a snapshot. Existing folders are reused;
an existing file with the same path fails the import.

Example (copy a local directory into a snapshot and back into another):
  vtree --root ./a export a.vts
  vtree --root ./b import a.vts`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		stats, err := snapshot.ExportFile(args[0], s.store)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "exported %d folders, %d files (%s) to %s\n",
			stats.Folders, stats.Files, tui.FormatSize(stats.Bytes), args[0])
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		s.display.Start(fmt.Sprintf("Importing %s", args[0]))
		stats, err := snapshot.ImportFile(args[0], s.store)
		if err != nil {
			s.display.Error(err.Error())
			return err
		}
		s.display.Success(fmt.Sprintf("Imported %d folders, %d files (%s)",
			stats.Folders, stats.Files, tui.FormatSize(stats.Bytes)))
		return nil
	})
}
