package filesystem

import (
	"io/fs"
	"sync"
)

// Op names a FileSystem operation that FaultInjector can fail.
type Op string

const (
	OpStat      Op = "stat"
	OpReadDir   Op = "readdir"
	OpMkdir     Op = "mkdir"
	OpOpen      Op = "open"
	OpOpenFile  Op = "openfile"
	OpWrite     Op = "write"
	OpClose     Op = "close"
	OpRename    Op = "rename"
	OpRemove    Op = "remove"
	OpRemoveAll Op = "removeall"
)

// FaultInjector wraps a FileSystem and fails selected operations.
// It is used to exercise failure paths (full disk, permission errors)
// without touching real hardware. Safe for concurrent use.
type FaultInjector struct {
	base   FileSystem
	mu     sync.Mutex
	faults map[Op]error
	// remaining counts failures left for ops armed with FailTimes.
	remaining map[Op]int
}

// NewFaultInjector wraps base. No operation fails until Fail is called.
func NewFaultInjector(base FileSystem) *FaultInjector {
	return &FaultInjector{base: base, faults: make(map[Op]error), remaining: make(map[Op]int)}
}

// Fail makes every later call of op return err.
func (f *FaultInjector) Fail(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[op] = err
	delete(f.remaining, op)
}

// FailTimes makes the next n calls of op return err; later calls succeed.
func (f *FaultInjector) FailTimes(op Op, err error, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[op] = err
	f.remaining[op] = n
}

// Clear removes the fault for op.
func (f *FaultInjector) Clear(op Op) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.faults, op)
	delete(f.remaining, op)
}

func (f *FaultInjector) fault(op Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.faults[op]
	if n, ok := f.remaining[op]; ok && err != nil {
		if n <= 1 {
			delete(f.faults, op)
			delete(f.remaining, op)
		} else {
			f.remaining[op] = n - 1
		}
	}
	return err
}

func (f *FaultInjector) Stat(path string) (FileInfo, error) {
	if err := f.fault(OpStat); err != nil {
		return nil, &fs.PathError{Op: string(OpStat), Path: path, Err: err}
	}
	return f.base.Stat(path)
}

func (f *FaultInjector) ReadDir(path string) ([]DirEntry, error) {
	if err := f.fault(OpReadDir); err != nil {
		return nil, &fs.PathError{Op: string(OpReadDir), Path: path, Err: err}
	}
	return f.base.ReadDir(path)
}

func (f *FaultInjector) Mkdir(path string, perm fs.FileMode) error {
	if err := f.fault(OpMkdir); err != nil {
		return &fs.PathError{Op: string(OpMkdir), Path: path, Err: err}
	}
	return f.base.Mkdir(path, perm)
}

func (f *FaultInjector) MkdirAll(path string, perm fs.FileMode) error {
	if err := f.fault(OpMkdir); err != nil {
		return &fs.PathError{Op: string(OpMkdir), Path: path, Err: err}
	}
	return f.base.MkdirAll(path, perm)
}

func (f *FaultInjector) Open(path string) (File, error) {
	if err := f.fault(OpOpen); err != nil {
		return nil, &fs.PathError{Op: string(OpOpen), Path: path, Err: err}
	}
	return f.base.Open(path)
}

func (f *FaultInjector) OpenFile(path string, flag int, perm fs.FileMode) (File, error) {
	if err := f.fault(OpOpenFile); err != nil {
		return nil, &fs.PathError{Op: string(OpOpenFile), Path: path, Err: err}
	}
	file, err := f.base.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, owner: f}, nil
}

func (f *FaultInjector) Rename(oldPath, newPath string) error {
	if err := f.fault(OpRename); err != nil {
		return &fs.PathError{Op: string(OpRename), Path: oldPath, Err: err}
	}
	return f.base.Rename(oldPath, newPath)
}

func (f *FaultInjector) Remove(path string) error {
	if err := f.fault(OpRemove); err != nil {
		return &fs.PathError{Op: string(OpRemove), Path: path, Err: err}
	}
	return f.base.Remove(path)
}

func (f *FaultInjector) RemoveAll(path string) error {
	if err := f.fault(OpRemoveAll); err != nil {
		return &fs.PathError{Op: string(OpRemoveAll), Path: path, Err: err}
	}
	return f.base.RemoveAll(path)
}

type faultyFile struct {
	File
	owner *FaultInjector
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	if err := ff.owner.fault(OpWrite); err != nil {
		return 0, &fs.PathError{Op: string(OpWrite), Path: ff.Name(), Err: err}
	}
	return ff.File.Write(p)
}

func (ff *faultyFile) Close() error {
	err := ff.File.Close()
	if fault := ff.owner.fault(OpClose); fault != nil {
		return &fs.PathError{Op: string(OpClose), Path: ff.Name(), Err: fault}
	}
	return err
}

var _ FileSystem = (*FaultInjector)(nil)
