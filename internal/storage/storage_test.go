package storage

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s2quake/vtree/internal/backend/local"
	"github.com/s2quake/vtree/internal/backend/memory"
	"github.com/s2quake/vtree/internal/files/filesystem"
	"github.com/s2quake/vtree/pkg/vtree"
)

func TestNew_RequiresBackend(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, vtree.ErrInvalidConfig)
}

func TestRoot(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		root := s.Root()
		assert.True(t, root.IsRoot())
		assert.Equal(t, "/", root.Path())
		assert.Equal(t, "", root.Name())
		assert.False(t, root.ModTime().IsZero())

		_, ok := root.Parent()
		assert.False(t, ok)

		assert.ErrorIs(t, root.Rename("x"), vtree.ErrInvalidOperation)
		assert.ErrorIs(t, root.MoveTo("/"), vtree.ErrInvalidOperation)
		assert.ErrorIs(t, root.Delete(), vtree.ErrInvalidOperation)
		requireConsistent(t, s)
	})
}

// The scenario every backend must agree on.
func TestBackendParity(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		a := mustFolder(t, s.Root(), "a")
		x := mustFile(t, a, "x.txt", "hi")
		assert.Equal(t, "/a/x.txt", x.Path())
		assert.Equal(t, int64(2), x.Size())

		require.NoError(t, a.Rename("b"))
		assert.Equal(t, "/b/x.txt", x.Path())
		got, err := s.ResolveFile("/b/x.txt")
		require.NoError(t, err)
		assert.Equal(t, x.Handle(), got.Handle())
		assert.Equal(t, "hi", readFile(t, got))

		b, err := s.ResolveFolder("/b")
		require.NoError(t, err)
		require.NoError(t, b.Delete())

		folders, err := s.Root().Folders()
		require.NoError(t, err)
		files, err := s.Root().Files()
		require.NoError(t, err)
		assert.Empty(t, folders)
		assert.Empty(t, files)
		assert.Equal(t, []string{"/"}, s.FolderPaths())
		assert.Empty(t, s.FilePaths())
	})
}

func TestCreate_DuplicatesAndKinds(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		root := s.Root()
		mustFolder(t, root, "same")

		_, err := root.CreateFolder("same")
		assert.ErrorIs(t, err, vtree.ErrDuplicateName)

		f := mustFile(t, root, "other", "content")
		_, err = root.CreateFile("other", strings.NewReader("x"), 1)
		assert.ErrorIs(t, err, vtree.ErrDuplicateName)
		assert.Equal(t, "content", readFile(t, f))

		requireConsistent(t, s)
	})
}

func TestCreate_FileAndFolderSharingName(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		root := s.Root()
		mustFolder(t, root, "same")

		f, err := root.CreateFile("same", strings.NewReader("content"), 7)
		if s.Backend().Kind() == local.Kind {
			// one host directory entry per name
			assert.ErrorIs(t, err, vtree.ErrDuplicateName)
			assert.NotErrorIs(t, err, vtree.ErrIOFailure)
			assert.Equal(t, []string{"/", "/same"}, s.FolderPaths())
			assert.Empty(t, s.FilePaths())
		} else {
			require.NoError(t, err)
			assert.Equal(t, "/same", f.Path())
			assert.Equal(t, "content", readFile(t, f))
			assert.Equal(t, []string{"/", "/same"}, s.Paths())
		}
		requireConsistent(t, s)
	})
}

func TestRenameMove_SharedNamespace(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		root := s.Root()
		d := mustFolder(t, root, "d")
		mustFolder(t, d, "x")
		f := mustFile(t, root, "y", "y")
		g := mustFile(t, root, "x", "x")

		renameErr := f.Rename("d")
		moveErr := g.MoveTo("/d")
		if s.Backend().Kind() == local.Kind {
			assert.ErrorIs(t, renameErr, vtree.ErrDuplicateName)
			assert.ErrorIs(t, moveErr, vtree.ErrDuplicateName)
			assert.Equal(t, "/y", f.Path())
			assert.Equal(t, "/x", g.Path())
		} else {
			assert.NoError(t, renameErr)
			assert.NoError(t, moveErr)
			assert.Equal(t, "/d", f.Path())
			assert.Equal(t, "/d/x", g.Path())
		}
		requireConsistent(t, s)
	})
}

func TestCreate_InvalidNames(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		for _, name := range []string{"", "a/b", ".", ".."} {
			_, err := s.Root().CreateFolder(name)
			assert.ErrorIs(t, err, vtree.ErrInvalidPath, "folder %q", name)
			_, err = s.Root().CreateFile(name, strings.NewReader(""), 0)
			assert.ErrorIs(t, err, vtree.ErrInvalidPath, "file %q", name)
		}
		requireConsistent(t, s)
	})
}

func TestCreateFile_ShortSource(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		_, err := s.Root().CreateFile("x", strings.NewReader("hi"), 10)
		assert.ErrorIs(t, err, vtree.ErrIOFailure)

		_, err = s.ResolveFile("/x")
		assert.ErrorIs(t, err, vtree.ErrNotFound)

		// the name is free again
		mustFile(t, s.Root(), "x", "hi")
	})
}

func TestCreateFile_ClaimedLengthBeyondSource(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		require.NotPanics(t, func() {
			_, err := s.Root().CreateFile("x", strings.NewReader("hi"), math.MaxInt64)
			assert.ErrorIs(t, err, vtree.ErrIOFailure)
		})
		assert.Empty(t, s.FilePaths())
		requireConsistent(t, s)
	})
}

func TestCreateFile_UnknownLength(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		f, err := s.Root().CreateFile("x", strings.NewReader("streamed"), vtree.UnknownLength)
		require.NoError(t, err)
		assert.Equal(t, int64(8), f.Size())

		_, err = s.Root().CreateFile("y", strings.NewReader(""), -7)
		assert.ErrorIs(t, err, vtree.ErrInvalidOperation)
	})
}

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte{0, 1, 2, 250, 'a'}, 20000)
	forEachBackend(t, func(t *testing.T, s *Storage) {
		f, err := s.Root().CreateFile("bin", bytes.NewReader(payload), int64(len(payload)))
		require.NoError(t, err)
		assert.Equal(t, string(payload), readFile(t, f))

		sum, err := s.ComputeHash(f)
		require.NoError(t, err)
		assert.Len(t, sum, 64)
	})
}

func TestRename(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		docs := mustFolder(t, s.Root(), "docs")
		inner := mustFolder(t, docs, "inner")
		deep := mustFile(t, inner, "deep.txt", "d")
		mustFolder(t, s.Root(), "taken")

		assert.ErrorIs(t, docs.Rename("taken"), vtree.ErrDuplicateName)
		assert.ErrorIs(t, docs.Rename("a/b"), vtree.ErrInvalidPath)
		assert.Equal(t, "/docs", docs.Path())

		require.NoError(t, docs.Rename("docs"), "same name is a no-op")
		require.NoError(t, docs.Rename("papers"))

		assert.Equal(t, "/papers/inner/deep.txt", deep.Path())
		_, err := s.ResolveFolder("/docs/inner")
		assert.ErrorIs(t, err, vtree.ErrNotFound)
		got, err := s.ResolveFolder("/papers/inner")
		require.NoError(t, err)
		assert.Equal(t, inner.Handle(), got.Handle())

		require.NoError(t, deep.Rename("shallow.txt"))
		assert.Equal(t, "d", readFile(t, deep))
		requireConsistent(t, s)
	})
}

func TestRename_KeepsSiblingOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		mustFile(t, s.Root(), "a", "")
		b := mustFile(t, s.Root(), "b", "")
		mustFile(t, s.Root(), "c", "")

		require.NoError(t, b.Rename("z"))

		files, err := s.Root().Files()
		require.NoError(t, err)
		var names []string
		for _, f := range files {
			names = append(names, f.Name())
		}
		assert.Equal(t, []string{"a", "z", "c"}, names)
	})
}

func TestMoveTo(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		src := mustFolder(t, s.Root(), "src")
		child := mustFolder(t, src, "child")
		file := mustFile(t, child, "f.txt", "payload")
		dst := mustFolder(t, s.Root(), "dst")

		assert.ErrorIs(t, src.MoveTo("/missing"), vtree.ErrNotFound)
		assert.ErrorIs(t, src.MoveTo("dst"), vtree.ErrInvalidPath)
		assert.ErrorIs(t, src.MoveTo("/src"), vtree.ErrInvalidOperation)
		assert.ErrorIs(t, src.MoveTo("/src/child"), vtree.ErrInvalidOperation)
		require.NoError(t, src.MoveTo("/"), "current parent is a no-op")

		require.NoError(t, src.MoveTo("/dst"))
		assert.Equal(t, "/dst/src/child/f.txt", file.Path())
		parent, ok := src.Parent()
		require.True(t, ok)
		assert.Equal(t, dst.Handle(), parent.Handle())
		assert.Equal(t, "payload", readFile(t, file))

		require.NoError(t, file.MoveTo("/"))
		assert.Equal(t, "/f.txt", file.Path())
		requireConsistent(t, s)
	})
}

func TestMoveTo_Duplicate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		a := mustFolder(t, s.Root(), "a")
		b := mustFolder(t, s.Root(), "b")
		mustFile(t, b, "x", "b's")
		x := mustFile(t, a, "x", "a's")

		assert.ErrorIs(t, x.MoveTo("/b"), vtree.ErrDuplicateName)
		assert.Equal(t, "/a/x", x.Path())
		requireConsistent(t, s)
	})
}

func TestDelete_DisposesSubtree(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		d := mustFolder(t, s.Root(), "d")
		e := mustFolder(t, d, "e")
		f := mustFile(t, e, "f", "x")
		keep := mustFile(t, s.Root(), "keep", "y")

		require.NoError(t, d.Delete())

		assert.False(t, d.Exists())
		assert.False(t, e.Exists())
		assert.False(t, f.Exists())
		assert.True(t, keep.Exists())

		assert.ErrorIs(t, d.Delete(), vtree.ErrDisposed)
		_, err := e.CreateFolder("z")
		assert.ErrorIs(t, err, vtree.ErrDisposed)
		_, err = f.OpenRead()
		assert.ErrorIs(t, err, vtree.ErrDisposed)
		_, err = f.Hash()
		assert.ErrorIs(t, err, vtree.ErrDisposed)
		assert.ErrorIs(t, f.Rename("g"), vtree.ErrDisposed)
		_, err = f.Info()
		assert.ErrorIs(t, err, vtree.ErrDisposed)
		assert.Equal(t, "", f.Path())

		// a new node with the same name gets a new handle
		d2 := mustFolder(t, s.Root(), "d")
		assert.NotEqual(t, d.Handle(), d2.Handle())
		requireConsistent(t, s)
	})
}

func TestResolve(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		d := mustFolder(t, s.Root(), "d")
		mustFile(t, d, "f", "")

		root, err := s.ResolveFolder("/")
		require.NoError(t, err)
		assert.True(t, root.IsRoot())

		_, err = s.ResolveFolder("/d/f")
		assert.ErrorIs(t, err, vtree.ErrNotFound)
		_, err = s.ResolveFile("/d")
		assert.ErrorIs(t, err, vtree.ErrNotFound)
		_, err = s.ResolveFile("d/f")
		assert.ErrorIs(t, err, vtree.ErrInvalidPath)
		_, err = s.ResolveFolder("/d/")
		assert.ErrorIs(t, err, vtree.ErrInvalidPath)

		got, err := d.File("f")
		require.NoError(t, err)
		assert.Equal(t, "/d/f", got.Path())
		_, err = d.Folder("f")
		assert.ErrorIs(t, err, vtree.ErrNotFound)
	})
}

func TestAllFiles_Order(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		root := s.Root()
		mustFile(t, root, "top.txt", "")
		d1 := mustFolder(t, root, "d1")
		mustFile(t, d1, "f1.txt", "")
		d2 := mustFolder(t, d1, "d2")
		mustFile(t, d2, "f2.txt", "")
		mustFolder(t, root, "empty")

		var paths []string
		for f := range s.AllFiles() {
			paths = append(paths, f.Path())
		}
		assert.Equal(t, []string{"/d1/d2/f2.txt", "/d1/f1.txt", "/top.txt"}, paths)

		var folders []string
		for f := range s.AllFolders() {
			folders = append(folders, f.Path())
		}
		assert.Equal(t, []string{"/", "/d1", "/d1/d2", "/empty"}, folders)
	})
}

func TestAllFiles_StopsEarly(t *testing.T) {
	s, err := New(memory.New(memory.Config{}))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		mustFile(t, s.Root(), fmt.Sprintf("f%d", i), "")
	}

	n := 0
	for range s.AllFiles() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestHash_CachedUntilWrite(t *testing.T) {
	fb := newFailingBackend(memory.New(memory.Config{}))
	s, err := New(fb)
	require.NoError(t, err)
	f := mustFile(t, s.Root(), "a", "hi")

	first, err := s.ComputeHash(f)
	require.NoError(t, err)
	assert.Equal(t, "8f434346648f6b96df89dda901c5176b10a6d83961dd3c1ac88b59b2dc327aa4", first)
	second, err := f.Hash()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fb.Calls(vtree.OpHash))

	w, err := f.OpenWrite()
	require.NoError(t, err)
	_, err = w.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	third, err := f.Hash()
	require.NoError(t, err)
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", third)
	assert.Equal(t, 2, fb.Calls(vtree.OpHash))
	assert.Equal(t, int64(11), f.Size())
}

func TestOpenWrite_CommitAndAbort(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		f := mustFile(t, s.Root(), "a", "old")

		w, err := f.OpenWrite()
		require.NoError(t, err)
		_, err = w.Write([]byte("brand new"))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		assert.Equal(t, "brand new", readFile(t, f))
		assert.Equal(t, int64(9), f.Size())

		assert.ErrorIs(t, w.Close(), ErrStreamClosed)
		_, err = w.Write([]byte("x"))
		assert.ErrorIs(t, err, ErrStreamClosed)
		assert.ErrorIs(t, w.Abort(), ErrStreamClosed)
	})
}

func TestOpenWrite_AbortPostconditions(t *testing.T) {
	t.Run("memory keeps old content", func(t *testing.T) {
		s, err := New(memory.New(memory.Config{}))
		require.NoError(t, err)
		f := mustFile(t, s.Root(), "a", "old")

		w, err := f.OpenWrite()
		require.NoError(t, err)
		_, err = w.Write([]byte("partial"))
		require.NoError(t, err)
		require.NoError(t, w.Abort())

		assert.Equal(t, "old", readFile(t, f))
	})

	t.Run("local atomic keeps old content", func(t *testing.T) {
		b, err := local.New(local.Config{Root: t.TempDir(), WritePolicy: local.WriteAtomic})
		require.NoError(t, err)
		s, err := New(b)
		require.NoError(t, err)
		f := mustFile(t, s.Root(), "a", "old")

		w, err := f.OpenWrite()
		require.NoError(t, err)
		require.NoError(t, w.Abort())
		assert.Equal(t, "old", readFile(t, f))
	})

	t.Run("local destructive leaves no file", func(t *testing.T) {
		root := t.TempDir()
		b, err := local.New(local.Config{Root: root})
		require.NoError(t, err)
		s, err := New(b)
		require.NoError(t, err)
		f := mustFile(t, s.Root(), "a", "old")

		w, err := f.OpenWrite()
		require.NoError(t, err)
		require.NoError(t, w.Abort())

		_, err = os.Stat(filepath.Join(root, "a"))
		assert.ErrorIs(t, err, os.ErrNotExist)
		_, err = f.OpenRead()
		assert.ErrorIs(t, err, vtree.ErrIOFailure)
	})
}

func TestOpenWrite_FileDeletedBeforeCommit(t *testing.T) {
	s, err := New(memory.New(memory.Config{}))
	require.NoError(t, err)
	f := mustFile(t, s.Root(), "a", "old")

	w, err := f.OpenWrite()
	require.NoError(t, err)
	require.NoError(t, f.Delete())

	assert.Error(t, w.Close())
}

func TestPhysicalFailureLeavesTreeUnchanged(t *testing.T) {
	ops := []string{vtree.OpCreateFolder, vtree.OpCreateFile, vtree.OpRename, vtree.OpMove, vtree.OpDelete}
	for _, op := range ops {
		t.Run(op, func(t *testing.T) {
			fb := newFailingBackend(memory.New(memory.Config{}))
			s, err := New(fb)
			require.NoError(t, err)
			a := mustFolder(t, s.Root(), "a")
			x := mustFile(t, a, "x", "hi")
			mustFolder(t, s.Root(), "b")
			beforeFolders, beforeFiles := s.FolderPaths(), s.FilePaths()

			fb.Fail(op, errInjected)
			switch op {
			case vtree.OpCreateFolder:
				_, err = a.CreateFolder("new")
			case vtree.OpCreateFile:
				_, err = a.CreateFile("new", strings.NewReader("x"), 1)
			case vtree.OpRename:
				err = a.Rename("renamed")
			case vtree.OpMove:
				err = x.MoveTo("/b")
			case vtree.OpDelete:
				err = a.Delete()
			}

			assert.ErrorIs(t, err, vtree.ErrIOFailure)
			assert.ErrorIs(t, err, errInjected)
			assert.Equal(t, beforeFolders, s.FolderPaths())
			assert.Equal(t, beforeFiles, s.FilePaths())
			assert.Equal(t, "/a/x", x.Path())
			assert.Equal(t, "hi", readFile(t, x))
			requireConsistent(t, s)
		})
	}
}

func TestLocal_HostFailureLeavesTreeUnchanged(t *testing.T) {
	root := t.TempDir()
	fi := filesystem.NewFaultInjector(filesystem.NewOSFileSystem())
	b, err := local.New(local.Config{Root: root}, local.WithFileSystem(fi))
	require.NoError(t, err)
	s, err := New(b)
	require.NoError(t, err)
	a := mustFolder(t, s.Root(), "a")

	fi.Fail(filesystem.OpMkdir, syscall.ENOSPC)
	_, err = a.CreateFolder("sub")
	assert.ErrorIs(t, err, vtree.ErrIOFailure)
	assert.ErrorIs(t, err, syscall.ENOSPC)
	fi.Clear(filesystem.OpMkdir)

	fi.Fail(filesystem.OpWrite, syscall.ENOSPC)
	_, err = a.CreateFile("big", strings.NewReader("data"), 4)
	assert.ErrorIs(t, err, vtree.ErrIOFailure)
	fi.Clear(filesystem.OpWrite)
	_, statErr := os.Stat(filepath.Join(root, "a", "big"))
	assert.ErrorIs(t, statErr, os.ErrNotExist, "partial file removed")

	fi.Fail(filesystem.OpRename, syscall.EACCES)
	assert.ErrorIs(t, a.Rename("b"), vtree.ErrIOFailure)
	assert.Equal(t, "/a", a.Path())

	assert.Equal(t, []string{"/", "/a"}, s.FolderPaths())
	assert.Empty(t, s.FilePaths())
}

func TestLocal_ScanSurvivesLinkLoop(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "d"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "d", "a.txt"), []byte("a"), 0644))
	if err := os.Symlink("..", filepath.Join(root, "d", "up")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	b, err := local.New(local.Config{Root: root})
	require.NoError(t, err)
	s, err := New(b)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, []string{"/", "/d"}, s.FolderPaths())
	assert.Equal(t, []string{"/d/a.txt"}, s.FilePaths())
}

func TestLocal_ScanFidelity(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "d1"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "d1", "f1.txt"), []byte("one"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "f2.txt"), []byte("second"), 0644))
	stamp := time.Date(2023, 6, 7, 8, 9, 10, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(root, "f2.txt"), stamp, stamp))

	b, err := local.New(local.Config{Root: root})
	require.NoError(t, err)
	s, err := New(b)
	require.NoError(t, err)

	assert.Equal(t, []string{"/", "/d1"}, s.FolderPaths())
	assert.Equal(t, []string{"/d1/f1.txt", "/f2.txt"}, s.FilePaths())

	f2, err := s.ResolveFile("/f2.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(6), f2.Size())
	assert.True(t, f2.ModTime().Equal(stamp))

	f1, err := s.ResolveFile("/d1/f1.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(3), f1.Size())
	assert.Equal(t, "one", readFile(t, f1))
	requireConsistent(t, s)
}

func TestProgress(t *testing.T) {
	var mu sync.Mutex
	var last, total int64
	s, err := New(memory.New(memory.Config{}), WithProgress(func(done, tot int64) {
		mu.Lock()
		defer mu.Unlock()
		last, total = done, tot
	}))
	require.NoError(t, err)

	content := strings.Repeat("z", 100000)
	mustFile(t, s.Root(), "big", content)

	assert.Equal(t, int64(len(content)), last)
	assert.Equal(t, int64(len(content)), total)
}

func TestClose_DisposesEverything(t *testing.T) {
	s, err := New(memory.New(memory.Config{}))
	require.NoError(t, err)
	f := mustFile(t, s.Root(), "a", "x")

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = f.OpenRead()
	assert.ErrorIs(t, err, vtree.ErrDisposed)
	_, err = s.Root().CreateFolder("b")
	assert.ErrorIs(t, err, vtree.ErrDisposed)
	_, err = s.ResolveFolder("/")
	assert.ErrorIs(t, err, vtree.ErrDisposed)
	assert.Empty(t, slices.Collect(s.AllFiles()))
}

func TestZeroValueHandles(t *testing.T) {
	var f Folder
	var file File

	_, err := f.CreateFolder("x")
	assert.ErrorIs(t, err, vtree.ErrDisposed)
	assert.False(t, f.Exists())
	assert.False(t, f.IsRoot())
	_, err = file.Hash()
	assert.ErrorIs(t, err, vtree.ErrDisposed)
	assert.Equal(t, int64(0), file.Size())
}

// Random operation sequences keep both indexes equal to the reachable set.
func TestIndexConsistency_RandomOperations(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Storage) {
		rng := rand.New(rand.NewSource(42))
		names := []string{"a", "b", "c", "d"}
		contents := map[vtree.Handle]string{}

		randomFolder := func() Folder {
			var all []Folder
			for f := range s.AllFolders() {
				all = append(all, f)
			}
			return all[rng.Intn(len(all))]
		}
		randomFile := func() (File, bool) {
			all := slices.Collect(s.AllFiles())
			if len(all) == 0 {
				return File{}, false
			}
			return all[rng.Intn(len(all))], true
		}

		for i := 0; i < 200; i++ {
			name := names[rng.Intn(len(names))]
			switch rng.Intn(7) {
			case 0, 1:
				randomFolder().CreateFolder(name)
			case 2, 3:
				content := fmt.Sprintf("content-%d", i)
				if f, err := randomFolder().CreateFile(name, strings.NewReader(content), int64(len(content))); err == nil {
					contents[f.Handle()] = content
				}
			case 4:
				f := randomFolder()
				if rng.Intn(2) == 0 {
					f.Rename(name)
				} else {
					f.MoveTo(randomFolder().Path())
				}
			case 5:
				if f, ok := randomFile(); ok {
					if rng.Intn(2) == 0 {
						f.Rename(name)
					} else {
						f.MoveTo(randomFolder().Path())
					}
				}
			case 6:
				if rng.Intn(3) == 0 {
					randomFolder().Delete()
				} else if f, ok := randomFile(); ok {
					f.Delete()
				}
			}
			requireConsistent(t, s)
		}

		for f := range s.AllFiles() {
			assert.Equal(t, contents[f.Handle()], readFile(t, f), "content follows the file")
		}
	})
}

func TestConcurrentCreates(t *testing.T) {
	s, err := New(memory.New(memory.Config{}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			d, err := s.Root().CreateFolder(fmt.Sprintf("w%d", id))
			if err != nil {
				t.Error(err)
				return
			}
			for j := 0; j < 20; j++ {
				if _, err := d.CreateFile(fmt.Sprintf("f%d", j), strings.NewReader("x"), 1); err != nil {
					t.Error(err)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.FilePaths(), 160)
	requireConsistent(t, s)
}

func TestLogger_ReceivesMutations(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(memory.New(memory.Config{}), WithLogger(testLogger{&buf}))
	require.NoError(t, err)
	mustFolder(t, s.Root(), "a")

	assert.Contains(t, buf.String(), "created folder /a")
}

type testLogger struct{ buf *bytes.Buffer }

func (l testLogger) Verbose(format string, args ...interface{}) {
	fmt.Fprintf(l.buf, format+"\n", args...)
}
func (l testLogger) Info(format string, args ...interface{})  {}
func (l testLogger) Error(format string, args ...interface{}) {}
