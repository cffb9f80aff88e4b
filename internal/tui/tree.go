package tui

import (
	"fmt"
	"io"

	"github.com/s2quake/vtree/internal/storage"
)

// TreeOptions controls RenderTree output.
type TreeOptions struct {
	// Styled applies the lipgloss styles; leave it off for pipes.
	Styled bool
	// Sizes appends file sizes.
	Sizes bool
}

// RenderTree writes the subtree of f as an indented tree, folders before
// files, each group in creation order.
func RenderTree(w io.Writer, f storage.Folder, opts TreeOptions) error {
	label := f.Path()
	if opts.Styled {
		label = FolderStyle.Render(label)
	}
	if _, err := fmt.Fprintln(w, label); err != nil {
		return err
	}
	return renderChildren(w, f, "", opts)
}

func renderChildren(w io.Writer, f storage.Folder, prefix string, opts TreeOptions) error {
	folders, err := f.Folders()
	if err != nil {
		return err
	}
	files, err := f.Files()
	if err != nil {
		return err
	}

	total := len(folders) + len(files)
	i := 0
	branch := func() (string, string) {
		i++
		if i == total {
			return "└── ", "    "
		}
		return "├── ", "│   "
	}

	for _, sub := range folders {
		b, indent := branch()
		name := sub.Name() + "/"
		if opts.Styled {
			name = FolderStyle.Render(name)
		}
		if _, err := fmt.Fprintln(w, prefix+b+name); err != nil {
			return err
		}
		if err := renderChildren(w, sub, prefix+indent, opts); err != nil {
			return err
		}
	}
	for _, file := range files {
		b, _ := branch()
		name := file.Name()
		if opts.Styled {
			name = FileStyle.Render(name)
		}
		if opts.Sizes {
			size := "(" + FormatSize(file.Size()) + ")"
			if opts.Styled {
				size = SizeStyle.Render(size)
			}
			name += " " + size
		}
		if _, err := fmt.Fprintln(w, prefix+b+name); err != nil {
			return err
		}
	}
	return nil
}
