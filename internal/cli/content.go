package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/s2quake/vtree/internal/storage"
	"github.com/s2quake/vtree/internal/tui"
	"github.com/s2quake/vtree/internal/vpath"
	"github.com/s2quake/vtree/pkg/vtree"
)

var putCmd = &cobra.Command{
	Use:   "put <host-file> <path>",
	Short: "Copy a host file into the tree",
	Long: `Copy a host file into the tree as a new file. When path names an existing
folder the file keeps its host name inside that folder.

Examples:
  vtree put ./report.pdf /docs
  vtree put ./report.pdf /docs/q3.pdf`,
	Args: cobra.ExactArgs(2),
	RunE: runPut,
}

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Write a file's content to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runCat,
}

var writeCmd = &cobra.Command{
	Use:   "write <path>",
	Short: "Replace or create a file with content read from stdin",
	Long: `Read stdin to EOF and store it as the content of path. An existing file is
rewritten through a write stream; a missing file is created. If stdin fails
the write is aborted.

Example:
  echo hello | vtree write /greeting.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runWrite,
}

func init() {
	rootCmd.AddCommand(putCmd, catCmd, writeCmd)
}

// splitTarget resolves path to the folder that will hold a new file and the
// file's name. When path is an existing folder, fallback names the file.
func splitTarget(s *session, arg, fallback string) (storage.Folder, string, error) {
	path, err := virtualPath(arg)
	if err != nil {
		return storage.Folder{}, "", err
	}
	if folder, err := s.store.ResolveFolder(path); err == nil && fallback != "" {
		return folder, fallback, nil
	}
	parentPath, ok := vpath.Parent(path)
	if !ok {
		return storage.Folder{}, "", vtree.NewError(vtree.OpCreateFile, path, vtree.ErrInvalidPath, errors.New("the root is a folder"))
	}
	parent, err := s.store.ResolveFolder(parentPath)
	if err != nil {
		return storage.Folder{}, "", err
	}
	return parent, vpath.Name(path), nil
}

func runPut(cmd *cobra.Command, args []string) error {
	src, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer src.Close()
	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", args[0], err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", args[0], vtree.ErrInvalidOperation)
	}

	return withSession(cmd, func(s *session) error {
		parent, name, err := splitTarget(s, args[1], filepath.Base(args[0]))
		if err != nil {
			return err
		}

		s.display.Start(fmt.Sprintf("Copying %s (%s)", args[0], tui.FormatSize(info.Size())))
		f, err := parent.CreateFile(name, src, info.Size())
		if err != nil {
			s.display.Error(err.Error())
			return err
		}
		s.display.Success(fmt.Sprintf("Stored %s", f.Path()))
		return nil
	})
}

func runCat(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		path, err := virtualPath(args[0])
		if err != nil {
			return err
		}
		f, err := s.store.ResolveFile(path)
		if err != nil {
			return err
		}
		r, err := f.OpenRead()
		if err != nil {
			return err
		}
		defer r.Close()
		if _, err := io.Copy(s.out, r); err != nil {
			return vtree.IOError(vtree.OpOpenRead, path, err)
		}
		return nil
	})
}

func runWrite(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		path, err := virtualPath(args[0])
		if err != nil {
			return err
		}
		in := cmd.InOrStdin()

		f, err := s.store.ResolveFile(path)
		if errors.Is(err, vtree.ErrNotFound) {
			parent, name, err := splitTarget(s, path, "")
			if err != nil {
				return err
			}
			_, err = parent.CreateFile(name, in, vtree.UnknownLength)
			return err
		}
		if err != nil {
			return err
		}

		w, err := f.OpenWrite()
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, in); err != nil {
			if aerr := w.Abort(); aerr != nil {
				s.logger.Error("abort of %s failed: %v", path, aerr)
			}
			return vtree.IOError(vtree.OpOpenWrite, path, err)
		}
		return w.Close()
	})
}
