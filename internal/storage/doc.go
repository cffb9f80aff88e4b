// Package storage implements the virtual file tree shared by every backend.
//
// A Storage owns an arena of nodes keyed by vtree.Handle, a path index for
// folders and one for files, and the vtree.Backend that holds the physical
// content. Folder and File are small values that name a node by handle;
// they do not point at each other, so deleting a subtree simply drops its
// handles from the arena and later use reports vtree.ErrDisposed.
//
// # Mutation order
//
// Each mutation runs under the storage mutex in three steps: validate
// against the tree (names, duplicates, root restrictions), perform the
// physical change through the backend, then update the tree and both
// indexes. A validation or backend failure leaves the tree untouched.
//
// # Example Usage
//
//	s, err := storage.New(memory.New(memory.Config{}))
//	docs, err := s.Root().CreateFolder("docs")
//	f, err := docs.CreateFile("a.txt", strings.NewReader("hi"), 2)
//	sum, err := s.ComputeHash(f)
//	for file := range s.AllFiles() {
//	    fmt.Println(file.Path())
//	}
package storage
