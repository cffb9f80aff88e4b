package storage

import (
	"errors"
	"io"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/s2quake/vtree/internal/backend/local"
	"github.com/s2quake/vtree/internal/backend/memory"
	"github.com/s2quake/vtree/pkg/vtree"
)

type backendFactory struct {
	name string
	new  func(t *testing.T) vtree.Backend
}

var backends = []backendFactory{
	{"memory", func(t *testing.T) vtree.Backend {
		return memory.New(memory.Config{})
	}},
	{"local", func(t *testing.T) vtree.Backend {
		b, err := local.New(local.Config{Root: t.TempDir()})
		require.NoError(t, err)
		return b
	}},
	{"local-atomic", func(t *testing.T) vtree.Backend {
		b, err := local.New(local.Config{Root: t.TempDir(), WritePolicy: local.WriteAtomic})
		require.NoError(t, err)
		return b
	}},
}

// forEachBackend runs fn once per backend on a fresh storage.
func forEachBackend(t *testing.T, fn func(t *testing.T, s *Storage)) {
	for _, bf := range backends {
		t.Run(bf.name, func(t *testing.T) {
			s, err := New(bf.new(t))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			fn(t, s)
		})
	}
}

func mustFolder(t *testing.T, parent Folder, name string) Folder {
	t.Helper()
	f, err := parent.CreateFolder(name)
	require.NoError(t, err)
	return f
}

func mustFile(t *testing.T, parent Folder, name, content string) File {
	t.Helper()
	f, err := parent.CreateFile(name, strings.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	return f
}

func readFile(t *testing.T, f File) string {
	t.Helper()
	r, err := f.OpenRead()
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

// reachable walks the tree through the public API and returns the paths
// of every folder and file reachable from the root.
func reachable(t *testing.T, s *Storage) (folders, files []string) {
	t.Helper()
	var visit func(f Folder)
	visit = func(f Folder) {
		folders = append(folders, f.Path())
		children, err := f.Folders()
		require.NoError(t, err)
		for _, c := range children {
			visit(c)
		}
		fs, err := f.Files()
		require.NoError(t, err)
		for _, c := range fs {
			files = append(files, c.Path())
		}
	}
	visit(s.Root())
	sort.Strings(folders)
	sort.Strings(files)
	return folders, files
}

func requireConsistent(t *testing.T, s *Storage) {
	t.Helper()
	folders, files := reachable(t, s)
	require.Equal(t, folders, s.FolderPaths(), "folder index")
	union := append(slices.Clone(folders), files...)
	sort.Strings(union)
	require.Equal(t, slices.Compact(union), s.Paths(), "paths")
	if len(files) == 0 {
		require.Empty(t, s.FilePaths(), "file index")
		return
	}
	require.Equal(t, files, s.FilePaths(), "file index")
}

// failingBackend fails selected operations of an inner backend.
type failingBackend struct {
	vtree.Backend
	mu    sync.Mutex
	fail  map[string]error
	calls map[string]int
}

func newFailingBackend(inner vtree.Backend) *failingBackend {
	return &failingBackend{Backend: inner, fail: map[string]error{}, calls: map[string]int{}}
}

func (f *failingBackend) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.fail[op]
}

func (f *failingBackend) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *failingBackend) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

var errInjected = errors.New("injected failure")

func (f *failingBackend) CreateFolder(ref vtree.NodeRef) (vtree.Stat, error) {
	if err := f.check(vtree.OpCreateFolder); err != nil {
		return vtree.Stat{}, err
	}
	return f.Backend.CreateFolder(ref)
}

func (f *failingBackend) CreateFile(ref vtree.NodeRef, src io.Reader, length int64) (vtree.Stat, error) {
	if err := f.check(vtree.OpCreateFile); err != nil {
		return vtree.Stat{}, err
	}
	return f.Backend.CreateFile(ref, src, length)
}

func (f *failingBackend) Rename(ref vtree.NodeRef, newPath string) error {
	if err := f.check(vtree.OpRename); err != nil {
		return err
	}
	return f.Backend.Rename(ref, newPath)
}

func (f *failingBackend) Move(ref vtree.NodeRef, newPath string) error {
	if err := f.check(vtree.OpMove); err != nil {
		return err
	}
	return f.Backend.Move(ref, newPath)
}

func (f *failingBackend) Delete(ref vtree.NodeRef, subtree []vtree.NodeRef) error {
	if err := f.check(vtree.OpDelete); err != nil {
		return err
	}
	return f.Backend.Delete(ref, subtree)
}

func (f *failingBackend) Hash(ref vtree.NodeRef) (string, error) {
	if err := f.check(vtree.OpHash); err != nil {
		return "", err
	}
	return f.Backend.Hash(ref)
}
