package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/s2quake/vtree/internal/storage"
	"github.com/s2quake/vtree/internal/tui"
)

var lsFlags struct {
	long bool
}

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a folder",
	Long: `List the child folders and files of a folder, folders first, each group
in creation order. Folder names end with '/'.

Examples:
  vtree ls
  vtree ls /docs -l`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

var treeFlags struct {
	sizes bool
}

var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Print a folder and everything below it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTree,
}

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show the attributes of a folder or file",
	Args:  cobra.ExactArgs(1),
	RunE:  runStat,
}

var hashCmd = &cobra.Command{
	Use:   "hash <path>",
	Short: "Print the SHA-256 of a file, or of every file below a folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runHash,
}

func init() {
	lsCmd.Flags().BoolVarP(&lsFlags.long, "long", "l", false, "Show sizes and modification times")
	treeCmd.Flags().BoolVar(&treeFlags.sizes, "sizes", false, "Show file sizes")

	rootCmd.AddCommand(lsCmd, treeCmd, statCmd, hashCmd)
}

func optionalPath(args []string) string {
	if len(args) == 0 {
		return "/"
	}
	return args[0]
}

func runLs(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		n, err := s.resolve(optionalPath(args), false)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
		if !n.isDir {
			printFile(w, n.file)
			return w.Flush()
		}

		folders, err := n.folder.Folders()
		if err != nil {
			return err
		}
		files, err := n.folder.Files()
		if err != nil {
			return err
		}
		for _, f := range folders {
			if lsFlags.long {
				fmt.Fprintf(w, "-\t%s\t%s/\n", f.ModTime().Format(time.DateTime), f.Name())
			} else {
				fmt.Fprintf(w, "%s/\n", f.Name())
			}
		}
		for _, f := range files {
			printFile(w, f)
		}
		return w.Flush()
	})
}

func printFile(w *tabwriter.Writer, f storage.File) {
	if lsFlags.long {
		fmt.Fprintf(w, "%d\t%s\t%s\n", f.Size(), f.ModTime().Format(time.DateTime), f.Name())
		return
	}
	fmt.Fprintln(w, f.Name())
}

func runTree(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		path, err := virtualPath(optionalPath(args))
		if err != nil {
			return err
		}
		folder, err := s.store.ResolveFolder(path)
		if err != nil {
			return err
		}
		return tui.RenderTree(s.out, folder, tui.TreeOptions{
			Styled: tui.IsInteractive(),
			Sizes:  treeFlags.sizes,
		})
	})
}

func runStat(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		n, err := s.resolve(args[0], false)
		if err != nil {
			return err
		}

		var info storage.Info
		if n.isDir {
			info, err = n.folder.Info()
		} else {
			info, err = n.file.Info()
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(s.out, 0, 4, 1, ' ', 0)
		fmt.Fprintf(w, "Path:\t%s\n", info.Path)
		fmt.Fprintf(w, "Kind:\t%s\n", info.Kind)
		if !n.isDir {
			fmt.Fprintf(w, "Size:\t%d\n", info.Size)
		}
		fmt.Fprintf(w, "Modified:\t%s\n", info.ModTime.Format(time.RFC3339))
		fmt.Fprintf(w, "Handle:\t%d\n", info.Handle)
		fmt.Fprintf(w, "Backend:\t%s\n", s.store.Backend().Kind())
		return w.Flush()
	})
}

func runHash(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		n, err := s.resolve(args[0], false)
		if err != nil {
			return err
		}
		if !n.isDir {
			return printHash(s, n.file)
		}

		prefix := n.folder.Path()
		for f := range s.store.AllFiles() {
			if prefix != "/" && !isBelow(f.Path(), prefix) {
				continue
			}
			if err := printHash(s, f); err != nil {
				return err
			}
		}
		return nil
	})
}

// isBelow reports whether path lies strictly inside folder.
func isBelow(path, folder string) bool {
	return strings.HasPrefix(path, folder+"/")
}

func printHash(s *session, f storage.File) error {
	sum, err := s.store.ComputeHash(f)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s  %s\n", sum, f.Path())
	return nil
}
