package storage

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/s2quake/vtree/internal/logging"
	"github.com/s2quake/vtree/internal/vpath"
	"github.com/s2quake/vtree/pkg/vtree"
)

// node is one arena slot. Folders own two containers; files own none.
type node struct {
	handle  vtree.Handle
	kind    vtree.Kind
	name    string
	parent  vtree.Handle
	size    int64
	modTime time.Time
	hash    string
	folders *container
	files   *container
}

func (n *node) children(kind vtree.Kind) *container {
	if kind == vtree.KindFolder {
		return n.folders
	}
	return n.files
}

// taken reports whether name is held in p by a node of kind, or by a node
// of the other kind when the backend has one namespace per folder.
func (s *Storage) taken(p *node, kind vtree.Kind, name string) bool {
	if _, ok := p.children(kind).Lookup(name); ok {
		return true
	}
	if !s.sharedNames {
		return false
	}
	other := vtree.KindFile
	if kind == vtree.KindFile {
		other = vtree.KindFolder
	}
	_, ok := p.children(other).Lookup(name)
	return ok
}

// Storage owns a tree of folders and files and the backend that stores
// them. All methods are safe for concurrent use; a single mutex serializes
// tree changes and backend calls.
type Storage struct {
	mu       sync.Mutex
	backend  vtree.Backend
	logger   vtree.Logger
	progress vtree.ProgressFunc

	// sharedNames is set when the backend keeps folders and files of one
	// parent in a single namespace.
	sharedNames bool

	nodes   map[vtree.Handle]*node
	folders map[string]vtree.Handle
	files   map[string]vtree.Handle
	root    vtree.Handle
	last    vtree.Handle
	closed  bool
}

// Option configures a Storage.
type Option func(*Storage)

// WithLogger sets the logger used for mutation traces.
func WithLogger(logger vtree.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProgress sets the sink that receives byte counts while file content
// is copied in by CreateFile.
func WithProgress(progress vtree.ProgressFunc) Option {
	return func(s *Storage) {
		s.progress = progress
	}
}

// New creates a storage over backend and loads whatever the backend
// already holds.
func New(backend vtree.Backend, opts ...Option) (*Storage, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required: %w", vtree.ErrInvalidConfig)
	}

	s := &Storage{
		backend: backend,
		logger:  logging.NewNullLogger(),
		nodes:   make(map[vtree.Handle]*node),
		folders: make(map[string]vtree.Handle),
		files:   make(map[string]vtree.Handle),
	}
	for _, opt := range opts {
		opt(s)
	}
	if sn, ok := backend.(vtree.SharedNamespace); ok {
		s.sharedNames = sn.SharedNamespace()
	}

	root := s.newNode(vtree.KindFolder, "", vtree.NoHandle)
	s.nodes[root.handle] = root
	s.folders[vtree.Root] = root.handle
	s.root = root.handle

	st, err := backend.Stat(vtree.NodeRef{Handle: root.handle, Kind: vtree.KindFolder, Path: vtree.Root})
	if err != nil {
		return nil, vtree.IOError(vtree.OpStat, vtree.Root, err)
	}
	root.modTime = st.ModTime

	if err := backend.Scan(s.load); err != nil {
		return nil, vtree.IOError(vtree.OpScan, vtree.Root, err)
	}

	s.logger.Verbose("opened %s storage: %d folders, %d files", backend.Kind(), len(s.folders), len(s.files))
	return s, nil
}

// load inserts one scanned entry. Parents are reported before children.
func (s *Storage) load(entry vtree.ScanEntry) error {
	if _, err := vpath.Split(entry.Path); err != nil || vpath.IsRoot(entry.Path) {
		return vtree.NewError(vtree.OpScan, entry.Path, vtree.ErrInvalidPath, err)
	}
	parentPath, _ := vpath.Parent(entry.Path)
	ph, ok := s.folders[parentPath]
	if !ok {
		return vtree.NewError(vtree.OpScan, entry.Path, vtree.ErrNotFound, fmt.Errorf("parent %s not loaded", parentPath))
	}
	parent := s.nodes[ph]

	n := s.newNode(entry.Kind, vpath.Name(entry.Path), ph)
	n.size = entry.Stat.Size
	n.modTime = entry.Stat.ModTime
	if err := parent.children(entry.Kind).Add(n.name, n.handle); err != nil {
		return vtree.NewError(vtree.OpScan, entry.Path, vtree.ErrDuplicateName, err)
	}
	s.nodes[n.handle] = n
	s.indexOf(n.kind)[entry.Path] = n.handle
	return nil
}

func (s *Storage) newNode(kind vtree.Kind, name string, parent vtree.Handle) *node {
	s.last++
	n := &node{handle: s.last, kind: kind, name: name, parent: parent}
	if kind == vtree.KindFolder {
		n.folders = newContainer()
		n.files = newContainer()
	}
	return n
}

func (s *Storage) indexOf(kind vtree.Kind) map[string]vtree.Handle {
	if kind == vtree.KindFolder {
		return s.folders
	}
	return s.files
}

// live returns the node for h or ErrDisposed. Callers hold s.mu.
func (s *Storage) live(h vtree.Handle, op string) (*node, error) {
	n, ok := s.nodes[h]
	if !ok || s.closed {
		return nil, vtree.NewError(op, "", vtree.ErrDisposed, nil)
	}
	return n, nil
}

// pathOf builds the path of n from its ancestors. Callers hold s.mu.
func (s *Storage) pathOf(n *node) string {
	if n.handle == s.root {
		return vtree.Root
	}
	var segments []string
	for cur := n; cur.handle != s.root; cur = s.nodes[cur.parent] {
		segments = append(segments, cur.name)
	}
	var b strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		b.WriteString(vtree.Separator)
		b.WriteString(segments[i])
	}
	return b.String()
}

func (s *Storage) ref(n *node, path string) vtree.NodeRef {
	return vtree.NodeRef{Handle: n.handle, Kind: n.kind, Path: path}
}

// walk visits n and its descendants in pre-order with their paths.
func (s *Storage) walk(n *node, path string, fn func(*node, string)) {
	fn(n, path)
	if n.kind != vtree.KindFolder {
		return
	}
	for _, h := range n.folders.Handles() {
		c := s.nodes[h]
		s.walk(c, vpath.Child(path, c.name), fn)
	}
	for _, h := range n.files.Handles() {
		c := s.nodes[h]
		fn(c, vpath.Child(path, c.name))
	}
}

// reindex moves the index entries of n's subtree from oldPath to newPath.
func (s *Storage) reindex(n *node, oldPath, newPath string) {
	s.walk(n, oldPath, func(c *node, p string) {
		delete(s.indexOf(c.kind), p)
	})
	s.walk(n, newPath, func(c *node, p string) {
		s.indexOf(c.kind)[p] = c.handle
	})
}

// resolve validates path and looks it up in the index for kind.
func (s *Storage) resolve(path string, kind vtree.Kind) (*node, error) {
	if _, err := vpath.Split(path); err != nil {
		return nil, vtree.NewError(vtree.OpResolve, path, vtree.ErrInvalidPath, err)
	}
	if s.closed {
		return nil, vtree.NewError(vtree.OpResolve, path, vtree.ErrDisposed, nil)
	}
	h, ok := s.indexOf(kind)[path]
	if !ok {
		return nil, vtree.NewError(vtree.OpResolve, path, vtree.ErrNotFound, fmt.Errorf("no %s", kind))
	}
	return s.nodes[h], nil
}

// Root returns the root folder.
func (s *Storage) Root() Folder {
	return Folder{s: s, h: s.root}
}

// ResolveFolder returns the folder at path.
func (s *Storage) ResolveFolder(path string) (Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.resolve(path, vtree.KindFolder)
	if err != nil {
		return Folder{}, err
	}
	return Folder{s: s, h: n.handle}, nil
}

// ResolveFile returns the file at path.
func (s *Storage) ResolveFile(path string) (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.resolve(path, vtree.KindFile)
	if err != nil {
		return File{}, err
	}
	return File{s: s, h: n.handle}, nil
}

// ComputeHash returns the SHA-256 of f's content as lowercase hex. The
// digest is cached until the next committed write.
func (s *Storage) ComputeHash(f File) (string, error) {
	return f.Hash()
}

// FolderPaths returns the paths of all folders, sorted.
func (s *Storage) FolderPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.folders)
}

// Paths returns the sorted union of folder and file paths. A path held by
// both a folder and a file is listed once.
func (s *Storage) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := append(sortedKeys(s.folders), sortedKeys(s.files)...)
	sort.Strings(all)
	return slices.Compact(all)
}

// FilePaths returns the paths of all files, sorted.
func (s *Storage) FilePaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.files)
}

func sortedKeys(m map[string]vtree.Handle) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Backend returns the backend the storage was created with.
func (s *Storage) Backend() vtree.Backend {
	return s.backend
}

// Close closes the backend. Every later operation fails with ErrDisposed.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.backend.Close(); err != nil {
		return fmt.Errorf("failed to close %s backend: %w", s.backend.Kind(), err)
	}
	return nil
}
