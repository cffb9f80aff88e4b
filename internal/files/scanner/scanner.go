package scanner

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"time"

	"github.com/s2quake/vtree/internal/files/filesystem"
)

// Entry is a file or directory found below the scanned root.
type Entry struct {
	// RelPath is slash-separated and relative to the scanned root.
	RelPath string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Filter reports whether an entry should be skipped. Skipped directories
// are not descended into.
type Filter func(name string, isDir bool) bool

// Scanner discovers the files and directories of a host directory tree.
// Scanner is safe for concurrent use by multiple goroutines as long as the
// provided filesystem is also thread-safe.
type Scanner struct {
	fsProvider filesystem.FileSystem
	skip       Filter
}

// NewScanner creates a scanner over the OS filesystem.
func NewScanner() *Scanner {
	return &Scanner{fsProvider: filesystem.NewOSFileSystem()}
}

// NewScannerWithFS creates a scanner over a custom filesystem.
// Panics if fsProvider is nil.
func NewScannerWithFS(fsProvider filesystem.FileSystem) *Scanner {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{fsProvider: fsProvider}
}

// WithFilter returns a copy of s that skips entries matched by skip.
func (s *Scanner) WithFilter(skip Filter) *Scanner {
	c := *s
	c.skip = skip
	return &c
}

// Scan walks root and calls visit for every entry. Within one directory
// the files are reported first, in name order; then each subdirectory is
// reported and scanned before the next one. A directory entry therefore
// always precedes its contents.
//
// Entries that are neither regular files nor directories are ignored.
// A symbolic link to a regular file is reported as that file. Links to
// directories and dangling links are skipped, so a link loop cannot make
// the walk recurse.
func (s *Scanner) Scan(root string, visit func(Entry) error) error {
	info, err := s.fsProvider.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to access root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root is not a directory: %s", root)
	}
	return s.scanDir(root, "", visit)
}

func (s *Scanner) scanDir(hostDir, relDir string, visit func(Entry) error) error {
	entries, err := s.fsProvider.ReadDir(hostDir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", hostDir, err)
	}

	type child struct {
		name string
		info filesystem.FileInfo
	}
	var files, dirs []child

	for _, entry := range entries {
		link := entry.Type()&fs.ModeSymlink != 0
		info, err := s.fsProvider.Stat(filepath.Join(hostDir, entry.Name()))
		if err != nil {
			if link {
				continue
			}
			return fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		if link && info.IsDir() {
			continue
		}
		if s.skip != nil && s.skip(entry.Name(), info.IsDir()) {
			continue
		}
		switch {
		case info.IsDir():
			dirs = append(dirs, child{entry.Name(), info})
		case info.Mode().IsRegular():
			files = append(files, child{entry.Name(), info})
		}
	}

	for _, f := range files {
		err := visit(Entry{
			RelPath: path.Join(relDir, f.name),
			Size:    f.info.Size(),
			ModTime: f.info.ModTime(),
		})
		if err != nil {
			return err
		}
	}

	for _, d := range dirs {
		rel := path.Join(relDir, d.name)
		if err := visit(Entry{RelPath: rel, IsDir: true, ModTime: d.info.ModTime()}); err != nil {
			return err
		}
		if err := s.scanDir(filepath.Join(hostDir, d.name), rel, visit); err != nil {
			return err
		}
	}
	return nil
}
