package storage

import (
	"io"
	"time"

	"github.com/s2quake/vtree/pkg/vtree"
)

// Info is a snapshot of a node's attributes.
type Info struct {
	Handle  vtree.Handle
	Kind    vtree.Kind
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

func (s *Storage) info(h vtree.Handle, op string) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.live(h, op)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Handle:  n.handle,
		Kind:    n.kind,
		Name:    n.name,
		Path:    s.pathOf(n),
		Size:    n.size,
		ModTime: n.modTime,
	}, nil
}

// Folder is a handle to a folder of a Storage. The zero value is not
// usable. Attribute getters return zero values once the folder is deleted;
// operations return ErrDisposed.
type Folder struct {
	s *Storage
	h vtree.Handle
}

// Handle returns the folder's stable handle.
func (f Folder) Handle() vtree.Handle { return f.h }

// IsRoot reports whether f is the root folder.
func (f Folder) IsRoot() bool { return f.s != nil && f.h == f.s.root }

// Exists reports whether f still belongs to its storage.
func (f Folder) Exists() bool {
	_, err := f.Info()
	return err == nil
}

// Info returns the folder's attributes.
func (f Folder) Info() (Info, error) {
	if f.s == nil {
		return Info{}, vtree.NewError(vtree.OpStat, "", vtree.ErrDisposed, nil)
	}
	return f.s.info(f.h, vtree.OpStat)
}

// Name returns the folder name; the root's name is empty.
func (f Folder) Name() string {
	info, _ := f.Info()
	return info.Name
}

// Path returns the full virtual path.
func (f Folder) Path() string {
	info, _ := f.Info()
	return info.Path
}

// ModTime returns the last modification time reported by the backend.
func (f Folder) ModTime() time.Time {
	info, _ := f.Info()
	return info.ModTime
}

// Parent returns the containing folder. The root has none.
func (f Folder) Parent() (Folder, bool) {
	if f.s == nil {
		return Folder{}, false
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	n, err := f.s.live(f.h, vtree.OpStat)
	if err != nil || n.parent == vtree.NoHandle {
		return Folder{}, false
	}
	return Folder{s: f.s, h: n.parent}, true
}

func (f Folder) childHandles(kind vtree.Kind, op string) ([]vtree.Handle, error) {
	if f.s == nil {
		return nil, vtree.NewError(op, "", vtree.ErrDisposed, nil)
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	n, err := f.s.live(f.h, op)
	if err != nil {
		return nil, err
	}
	return n.children(kind).Handles(), nil
}

// Folders returns the child folders in creation order.
func (f Folder) Folders() ([]Folder, error) {
	hs, err := f.childHandles(vtree.KindFolder, vtree.OpResolve)
	if err != nil {
		return nil, err
	}
	out := make([]Folder, len(hs))
	for i, h := range hs {
		out[i] = Folder{s: f.s, h: h}
	}
	return out, nil
}

// Files returns the child files in creation order.
func (f Folder) Files() ([]File, error) {
	hs, err := f.childHandles(vtree.KindFile, vtree.OpResolve)
	if err != nil {
		return nil, err
	}
	out := make([]File, len(hs))
	for i, h := range hs {
		out[i] = File{s: f.s, h: h}
	}
	return out, nil
}

func (f Folder) child(kind vtree.Kind, name string) (vtree.Handle, error) {
	if f.s == nil {
		return vtree.NoHandle, vtree.NewError(vtree.OpResolve, name, vtree.ErrDisposed, nil)
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	n, err := f.s.live(f.h, vtree.OpResolve)
	if err != nil {
		return vtree.NoHandle, err
	}
	h, ok := n.children(kind).Lookup(name)
	if !ok {
		return vtree.NoHandle, vtree.NewError(vtree.OpResolve, name, vtree.ErrNotFound, nil)
	}
	return h, nil
}

// Folder returns the child folder called name.
func (f Folder) Folder(name string) (Folder, error) {
	h, err := f.child(vtree.KindFolder, name)
	if err != nil {
		return Folder{}, err
	}
	return Folder{s: f.s, h: h}, nil
}

// File returns the child file called name.
func (f Folder) File(name string) (File, error) {
	h, err := f.child(vtree.KindFile, name)
	if err != nil {
		return File{}, err
	}
	return File{s: f.s, h: h}, nil
}

// CreateFolder adds a child folder.
func (f Folder) CreateFolder(name string) (Folder, error) {
	if f.s == nil {
		return Folder{}, vtree.NewError(vtree.OpCreateFolder, name, vtree.ErrDisposed, nil)
	}
	h, err := f.s.create(f.h, vtree.KindFolder, name, nil, 0)
	if err != nil {
		return Folder{}, err
	}
	return Folder{s: f.s, h: h}, nil
}

// CreateFile adds a child file holding exactly length bytes read from src.
// Pass vtree.UnknownLength to read src until EOF.
func (f Folder) CreateFile(name string, src io.Reader, length int64) (File, error) {
	if f.s == nil {
		return File{}, vtree.NewError(vtree.OpCreateFile, name, vtree.ErrDisposed, nil)
	}
	h, err := f.s.create(f.h, vtree.KindFile, name, src, length)
	if err != nil {
		return File{}, err
	}
	return File{s: f.s, h: h}, nil
}

// Rename changes the folder's name. The root cannot be renamed.
func (f Folder) Rename(newName string) error {
	if f.s == nil {
		return vtree.NewError(vtree.OpRename, "", vtree.ErrDisposed, nil)
	}
	return f.s.rename(f.h, newName)
}

// MoveTo moves the folder and its subtree into the folder at targetPath.
func (f Folder) MoveTo(targetPath string) error {
	if f.s == nil {
		return vtree.NewError(vtree.OpMove, "", vtree.ErrDisposed, nil)
	}
	return f.s.move(f.h, targetPath)
}

// Delete removes the folder and everything below it.
func (f Folder) Delete() error {
	if f.s == nil {
		return vtree.NewError(vtree.OpDelete, "", vtree.ErrDisposed, nil)
	}
	return f.s.delete(f.h)
}
