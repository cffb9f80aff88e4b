package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/s2quake/vtree/internal/checksum"
	"github.com/s2quake/vtree/internal/storage"
	"github.com/s2quake/vtree/internal/vpath"
	"github.com/s2quake/vtree/pkg/vtree"
)

var (
	// ErrInvalidSnapshot is returned when a stream is not a readable
	// snapshot or is truncated.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrChecksumMismatch is returned when a file's content does not match
	// the digest recorded next to it.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")
)

// Stats summarizes an export or import.
type Stats struct {
	Folders int
	Files   int
	Bytes   int64
}

// Export writes every folder and file of s to w.
func Export(w io.Writer, s *storage.Storage) (Stats, error) {
	var stats Stats

	sw, err := newWriter(w)
	if err != nil {
		return stats, fmt.Errorf("failed to start snapshot: %w", err)
	}

	header := record{
		Type:    recordHeader,
		Format:  Format,
		Version: Version,
		Backend: s.Backend().Kind(),
		ModTime: time.Now().UTC(),
	}
	if err := sw.write(header); err != nil {
		return stats, fmt.Errorf("failed to write snapshot header: %w", err)
	}

	for folder := range s.AllFolders() {
		if folder.IsRoot() {
			continue
		}
		info, err := folder.Info()
		if err != nil {
			return stats, err
		}
		if err := sw.write(record{Type: recordFolder, Path: info.Path, ModTime: info.ModTime}); err != nil {
			return stats, fmt.Errorf("failed to write folder %s: %w", info.Path, err)
		}
		stats.Folders++
	}

	for file := range s.AllFiles() {
		rec, err := fileRecord(s, file)
		if err != nil {
			return stats, err
		}
		if err := sw.write(rec); err != nil {
			return stats, fmt.Errorf("failed to write file %s: %w", rec.Path, err)
		}
		stats.Files++
		stats.Bytes += rec.Size
	}

	if err := sw.write(record{Type: recordEnd, Folders: stats.Folders, Files: stats.Files}); err != nil {
		return stats, fmt.Errorf("failed to write snapshot trailer: %w", err)
	}
	if err := sw.Close(); err != nil {
		return stats, fmt.Errorf("failed to finish snapshot: %w", err)
	}
	return stats, nil
}

func fileRecord(s *storage.Storage, file storage.File) (record, error) {
	info, err := file.Info()
	if err != nil {
		return record{}, err
	}
	r, err := file.OpenRead()
	if err != nil {
		return record{}, err
	}
	content, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return record{}, vtree.IOError(vtree.OpOpenRead, info.Path, err)
	}
	sum, err := s.ComputeHash(file)
	if err != nil {
		return record{}, err
	}
	return record{
		Type:    recordFile,
		Path:    info.Path,
		ModTime: info.ModTime,
		Size:    int64(len(content)),
		Hash:    sum,
		Content: content,
	}, nil
}

// Import recreates the snapshot read from r inside s. Folders that already
// exist are reused; a file that already exists fails the import with
// vtree.ErrDuplicateName. Modification times are taken from the target
// backend, not from the snapshot.
func Import(r io.Reader, s *storage.Storage) (Stats, error) {
	var stats Stats
	calc := checksum.New()

	sr, err := newReader(r)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	defer sr.Close()

	header, err := sr.next()
	if err != nil {
		return stats, fmt.Errorf("%w: reading header: %v", ErrInvalidSnapshot, err)
	}
	if header.Type != recordHeader || header.Format != Format {
		return stats, fmt.Errorf("%w: not a %s stream", ErrInvalidSnapshot, Format)
	}
	if header.Version != Version {
		return stats, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, header.Version)
	}

	for {
		rec, err := sr.next()
		if errors.Is(err, io.EOF) {
			return stats, fmt.Errorf("%w: missing end record", ErrInvalidSnapshot)
		}
		if err != nil {
			return stats, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}

		switch rec.Type {
		case recordFolder:
			if err := importFolder(s, rec.Path); err != nil {
				return stats, err
			}
			stats.Folders++

		case recordFile:
			if got := calc.CalculateRaw(rec.Content); got != rec.Hash {
				return stats, fmt.Errorf("%w: %s has %s, recorded %s", ErrChecksumMismatch, rec.Path, got, rec.Hash)
			}
			if err := importFile(s, rec); err != nil {
				return stats, err
			}
			stats.Files++
			stats.Bytes += int64(len(rec.Content))

		case recordEnd:
			if rec.Folders != stats.Folders || rec.Files != stats.Files {
				return stats, fmt.Errorf("%w: trailer counts %d folders and %d files, read %d and %d",
					ErrInvalidSnapshot, rec.Folders, rec.Files, stats.Folders, stats.Files)
			}
			return stats, nil

		default:
			return stats, fmt.Errorf("%w: unknown record type %q", ErrInvalidSnapshot, rec.Type)
		}
	}
}

func parentOf(s *storage.Storage, path string) (storage.Folder, string, error) {
	parentPath, ok := vpath.Parent(path)
	if !ok {
		return storage.Folder{}, "", fmt.Errorf("%w: record path %q", ErrInvalidSnapshot, path)
	}
	parent, err := s.ResolveFolder(parentPath)
	if err != nil {
		return storage.Folder{}, "", err
	}
	return parent, vpath.Name(path), nil
}

func importFolder(s *storage.Storage, path string) error {
	if _, err := s.ResolveFolder(path); err == nil {
		return nil
	}
	parent, name, err := parentOf(s, path)
	if err != nil {
		return err
	}
	_, err = parent.CreateFolder(name)
	return err
}

func importFile(s *storage.Storage, rec record) error {
	parent, name, err := parentOf(s, rec.Path)
	if err != nil {
		return err
	}
	_, err = parent.CreateFile(name, bytes.NewReader(rec.Content), int64(len(rec.Content)))
	return err
}

// ExportFile writes a snapshot of s to the host file at path.
func ExportFile(path string, s *storage.Storage) (Stats, error) {
	f, err := os.Create(path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create snapshot file: %w", err)
	}
	stats, err := Export(f, s)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close snapshot file: %w", cerr)
	}
	return stats, err
}

// ImportFile reads the snapshot in the host file at path into s.
func ImportFile(path string, s *storage.Storage) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()
	return Import(f, s)
}
