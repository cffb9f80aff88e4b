package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s2quake/vtree/internal/tui"
	"github.com/s2quake/vtree/internal/vpath"
	"github.com/s2quake/vtree/pkg/vtree"
)

var mkdirFlags struct {
	parents bool
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runMkdir,
}

var renameFlags struct {
	file bool
}

var renameCmd = &cobra.Command{
	Use:   "rename <path> <new-name>",
	Short: "Rename a folder or file in place",
	Args:  cobra.ExactArgs(2),
	RunE:  runRename,
}

var mvFlags struct {
	file bool
}

var mvCmd = &cobra.Command{
	Use:   "mv <path> <target-folder>",
	Short: "Move a folder or file into another folder",
	Long: `Move a folder (with everything below it) or a file into target-folder,
keeping its name.

Examples:
  vtree mv /drafts/report.txt /published
  vtree mv /old /archive`,
	Args: cobra.ExactArgs(2),
	RunE: runMv,
}

var rmFlags struct {
	yes  bool
	file bool
}

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a folder and everything below it, or a file",
	Long: `Delete a folder and its whole subtree, or a single file.

A folder and a file may share a name; the folder is chosen unless --file
is given. Deleting a folder asks for confirmation in an interactive
terminal unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func init() {
	mkdirCmd.Flags().BoolVarP(&mkdirFlags.parents, "parents", "p", false, "Create missing parent folders")
	renameCmd.Flags().BoolVar(&renameFlags.file, "file", false, "Rename the file when a folder has the same name")
	mvCmd.Flags().BoolVar(&mvFlags.file, "file", false, "Move the file when a folder has the same name")
	rmCmd.Flags().BoolVarP(&rmFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	rmCmd.Flags().BoolVar(&rmFlags.file, "file", false, "Delete the file when a folder has the same name")

	rootCmd.AddCommand(mkdirCmd, renameCmd, mvCmd, rmCmd)
}

func runMkdir(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		path, err := virtualPath(args[0])
		if err != nil {
			return err
		}
		segments, err := vpath.Split(path)
		if err != nil {
			return err
		}
		if len(segments) == 0 {
			return vtree.NewError(vtree.OpCreateFolder, path, vtree.ErrDuplicateName, nil)
		}

		cur := s.store.Root()
		for i, name := range segments {
			last := i == len(segments)-1
			next, err := cur.Folder(name)
			if err == nil && !last {
				cur = next
				continue
			}
			if err == nil && last && mkdirFlags.parents {
				return nil
			}
			if !last && !mkdirFlags.parents {
				return err
			}
			if cur, err = cur.CreateFolder(name); err != nil {
				return err
			}
		}
		s.logger.Info("created %s", path)
		return nil
	})
}

func runRename(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		n, err := s.resolve(args[0], renameFlags.file)
		if err != nil {
			return err
		}
		if n.isDir {
			err = n.folder.Rename(args[1])
		} else {
			err = n.file.Rename(args[1])
		}
		if err != nil {
			return err
		}
		s.logger.Info("renamed %s to %s", args[0], args[1])
		return nil
	})
}

func runMv(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		n, err := s.resolve(args[0], mvFlags.file)
		if err != nil {
			return err
		}
		target, err := virtualPath(args[1])
		if err != nil {
			return err
		}
		if n.isDir {
			err = n.folder.MoveTo(target)
		} else {
			err = n.file.MoveTo(target)
		}
		if err != nil {
			return err
		}
		s.logger.Info("moved %s into %s", args[0], target)
		return nil
	})
}

func runRm(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		n, err := s.resolve(args[0], rmFlags.file)
		if err != nil {
			return err
		}

		if !n.isDir {
			return n.file.Delete()
		}
		if !rmFlags.yes {
			msg := fmt.Sprintf("Delete folder %s and everything below it?", n.folder.Path())
			if !tui.PromptContinue(cmd.InOrStdin(), cmd.ErrOrStderr(), msg) {
				return fmt.Errorf("delete of %s cancelled: %w", n.folder.Path(), vtree.ErrInvalidOperation)
			}
		}
		return n.folder.Delete()
	})
}
