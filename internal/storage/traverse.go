package storage

import (
	"iter"

	"github.com/s2quake/vtree/pkg/vtree"
)

// AllFiles yields every file lazily. For each folder the child folders are
// visited first, then the folder's own files. The sequence is undefined if
// the tree changes while it is being consumed.
func (s *Storage) AllFiles() iter.Seq[File] {
	return func(yield func(File) bool) {
		s.walkFiles(s.root, yield)
	}
}

func (s *Storage) walkFiles(h vtree.Handle, yield func(File) bool) bool {
	folders, files, ok := s.snapshot(h)
	if !ok {
		return true
	}
	for _, c := range folders {
		if !s.walkFiles(c, yield) {
			return false
		}
	}
	for _, c := range files {
		if !yield(File{s: s, h: c}) {
			return false
		}
	}
	return true
}

// AllFolders yields every folder in pre-order, starting with the root.
func (s *Storage) AllFolders() iter.Seq[Folder] {
	return func(yield func(Folder) bool) {
		s.walkFolders(s.root, yield)
	}
}

func (s *Storage) walkFolders(h vtree.Handle, yield func(Folder) bool) bool {
	folders, _, ok := s.snapshot(h)
	if !ok {
		return true
	}
	if !yield(Folder{s: s, h: h}) {
		return false
	}
	for _, c := range folders {
		if !s.walkFolders(c, yield) {
			return false
		}
	}
	return true
}

// snapshot copies the children of h so that the lock is not held while
// the caller's loop body runs.
func (s *Storage) snapshot(h vtree.Handle) (folders, files []vtree.Handle, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, exists := s.nodes[h]
	if !exists || s.closed || n.kind != vtree.KindFolder {
		return nil, nil, false
	}
	return n.folders.Handles(), n.files.Handles(), true
}
