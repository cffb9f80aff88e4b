package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/s2quake/vtree/internal/streamutil"
	"github.com/s2quake/vtree/internal/vpath"
	"github.com/s2quake/vtree/pkg/vtree"
)

// Every mutation validates against the tree first, then performs the
// physical change through the backend, and only then updates the tree and
// both indexes. A failure at any step leaves the tree as it was.

func (s *Storage) create(parent vtree.Handle, kind vtree.Kind, name string, src io.Reader, length int64) (vtree.Handle, error) {
	op := vtree.OpCreateFolder
	if kind == vtree.KindFile {
		op = vtree.OpCreateFile
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.live(parent, op)
	if err != nil {
		return vtree.NoHandle, err
	}
	path := vpath.Child(s.pathOf(p), name)
	if err := vpath.ValidateName(name); err != nil {
		return vtree.NoHandle, vtree.NewError(op, path, vtree.ErrInvalidPath, err)
	}
	siblings := p.children(kind)
	if s.taken(p, kind, name) {
		return vtree.NoHandle, vtree.NewError(op, path, vtree.ErrDuplicateName, nil)
	}

	n := s.newNode(kind, name, p.handle)
	var st vtree.Stat
	if kind == vtree.KindFolder {
		st, err = s.backend.CreateFolder(s.ref(n, path))
	} else {
		if length < 0 && length != vtree.UnknownLength {
			return vtree.NoHandle, vtree.NewError(op, path, vtree.ErrInvalidOperation, fmt.Errorf("negative length %d", length))
		}
		if s.progress != nil {
			src = streamutil.NewProgressReader(src, length, s.progress)
		}
		st, err = s.backend.CreateFile(s.ref(n, path), src, length)
	}
	if err != nil {
		return vtree.NoHandle, vtree.IOError(op, path, err)
	}

	n.size = st.Size
	n.modTime = st.ModTime
	if err := siblings.Add(name, n.handle); err != nil {
		return vtree.NoHandle, vtree.NewError(op, path, vtree.ErrDuplicateName, err)
	}
	s.nodes[n.handle] = n
	s.indexOf(kind)[path] = n.handle

	s.logger.Verbose("created %s %s", kind, path)
	return n.handle, nil
}

func (s *Storage) rename(h vtree.Handle, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.live(h, vtree.OpRename)
	if err != nil {
		return err
	}
	oldPath := s.pathOf(n)
	if n.handle == s.root {
		return vtree.NewError(vtree.OpRename, oldPath, vtree.ErrInvalidOperation, errors.New("cannot rename the root folder"))
	}
	parent := s.nodes[n.parent]
	newPath := vpath.Child(s.pathOf(parent), newName)
	if err := vpath.ValidateName(newName); err != nil {
		return vtree.NewError(vtree.OpRename, oldPath, vtree.ErrInvalidPath, err)
	}
	if newName == n.name {
		return nil
	}
	siblings := parent.children(n.kind)
	if s.taken(parent, n.kind, newName) {
		return vtree.NewError(vtree.OpRename, newPath, vtree.ErrDuplicateName, nil)
	}

	if err := s.backend.Rename(s.ref(n, oldPath), newPath); err != nil {
		return vtree.IOError(vtree.OpRename, oldPath, err)
	}

	if err := siblings.Rename(n.name, newName); err != nil {
		return vtree.NewError(vtree.OpRename, oldPath, vtree.ErrDuplicateName, err)
	}
	n.name = newName
	s.reindex(n, oldPath, newPath)

	s.logger.Verbose("renamed %s %s to %s", n.kind, oldPath, newPath)
	return nil
}

func (s *Storage) move(h vtree.Handle, targetPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.live(h, vtree.OpMove)
	if err != nil {
		return err
	}
	oldPath := s.pathOf(n)
	if n.handle == s.root {
		return vtree.NewError(vtree.OpMove, oldPath, vtree.ErrInvalidOperation, errors.New("cannot move the root folder"))
	}
	target, err := s.resolve(targetPath, vtree.KindFolder)
	if err != nil {
		return err
	}
	if n.kind == vtree.KindFolder && vpath.IsWithin(targetPath, oldPath) {
		return vtree.NewError(vtree.OpMove, oldPath, vtree.ErrInvalidOperation,
			fmt.Errorf("cannot move a folder into %s", targetPath))
	}
	if target.handle == n.parent {
		return nil
	}
	dst := target.children(n.kind)
	newPath := vpath.Child(targetPath, n.name)
	if s.taken(target, n.kind, n.name) {
		return vtree.NewError(vtree.OpMove, newPath, vtree.ErrDuplicateName, nil)
	}

	if err := s.backend.Move(s.ref(n, oldPath), newPath); err != nil {
		return vtree.IOError(vtree.OpMove, oldPath, err)
	}

	if err := s.nodes[n.parent].children(n.kind).Remove(n.name); err != nil {
		return vtree.NewError(vtree.OpMove, oldPath, vtree.ErrNotFound, err)
	}
	if err := dst.Add(n.name, n.handle); err != nil {
		return vtree.NewError(vtree.OpMove, newPath, vtree.ErrDuplicateName, err)
	}
	n.parent = target.handle
	s.reindex(n, oldPath, newPath)

	s.logger.Verbose("moved %s %s to %s", n.kind, oldPath, newPath)
	return nil
}

func (s *Storage) delete(h vtree.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.live(h, vtree.OpDelete)
	if err != nil {
		return err
	}
	path := s.pathOf(n)
	if n.handle == s.root {
		return vtree.NewError(vtree.OpDelete, path, vtree.ErrInvalidOperation, errors.New("cannot delete the root folder"))
	}

	type entry struct {
		n    *node
		path string
	}
	var doomed []entry
	var descendants []vtree.NodeRef
	s.walk(n, path, func(c *node, p string) {
		doomed = append(doomed, entry{c, p})
		if c != n {
			descendants = append(descendants, s.ref(c, p))
		}
	})

	if err := s.backend.Delete(s.ref(n, path), descendants); err != nil {
		return vtree.IOError(vtree.OpDelete, path, err)
	}

	if err := s.nodes[n.parent].children(n.kind).Remove(n.name); err != nil {
		return vtree.NewError(vtree.OpDelete, path, vtree.ErrNotFound, err)
	}
	for _, d := range doomed {
		delete(s.indexOf(d.n.kind), d.path)
		delete(s.nodes, d.n.handle)
	}

	s.logger.Verbose("deleted %s %s (%d nodes)", n.kind, path, len(doomed))
	return nil
}

func (s *Storage) openRead(h vtree.Handle) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.live(h, vtree.OpOpenRead)
	if err != nil {
		return nil, err
	}
	path := s.pathOf(n)
	r, err := s.backend.OpenRead(s.ref(n, path))
	if err != nil {
		return nil, vtree.IOError(vtree.OpOpenRead, path, err)
	}
	return r, nil
}

func (s *Storage) openWrite(h vtree.Handle) (vtree.WriteStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.live(h, vtree.OpOpenWrite)
	if err != nil {
		return nil, err
	}
	path := s.pathOf(n)
	w, err := s.backend.OpenWrite(s.ref(n, path))
	if err != nil {
		return nil, vtree.IOError(vtree.OpOpenWrite, path, err)
	}
	// a destructive backend has already dropped the old content
	n.hash = ""
	return &writeStream{s: s, h: h, path: path, inner: w}, nil
}

func (s *Storage) hash(h vtree.Handle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.live(h, vtree.OpHash)
	if err != nil {
		return "", err
	}
	if n.hash != "" {
		return n.hash, nil
	}
	path := s.pathOf(n)
	sum, err := s.backend.Hash(s.ref(n, path))
	if err != nil {
		return "", vtree.IOError(vtree.OpHash, path, err)
	}
	n.hash = sum
	return sum, nil
}
