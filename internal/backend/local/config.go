package local

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/s2quake/vtree/pkg/vtree"
)

// WritePolicy selects how OpenWrite replaces file content on disk.
type WritePolicy string

const (
	// WriteDestructive deletes the file when the stream opens and writes a
	// new one in its place. An aborted write leaves no file behind.
	WriteDestructive WritePolicy = "destructive"

	// WriteAtomic stages content in a temporary file next to the target and
	// renames it over the target on Close.
	WriteAtomic WritePolicy = "atomic"
)

// ParseWritePolicy validates a policy name. An empty name selects
// WriteDestructive.
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch WritePolicy(strings.ToLower(s)) {
	case "", WriteDestructive:
		return WriteDestructive, nil
	case WriteAtomic:
		return WriteAtomic, nil
	default:
		return "", fmt.Errorf("unknown write policy %q: %w", s, vtree.ErrInvalidConfig)
	}
}

// Config configures the local backend.
type Config struct {
	// Root is the host directory mirrored by the tree. A file:// URI is
	// accepted as well as a plain path.
	Root string `yaml:"root"`

	// CreateRoot creates Root when it does not exist.
	CreateRoot bool `yaml:"create_root"`

	WritePolicy WritePolicy `yaml:"write_policy"`

	// Retries is how many times a host call failing with a transient error
	// (EINTR, EAGAIN, EBUSY) is repeated. Zero disables retries.
	Retries int `yaml:"retries"`
}

// ResolveRoot turns a plain path or a file:// URI into an absolute host path.
func ResolveRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("root directory is required: %w", vtree.ErrInvalidConfig)
	}
	if strings.HasPrefix(strings.ToLower(root), "file://") {
		u, err := url.Parse(root)
		if err != nil {
			return "", fmt.Errorf("invalid root URI %q: %v: %w", root, err, vtree.ErrInvalidConfig)
		}
		if u.Host != "" && u.Host != "localhost" {
			return "", fmt.Errorf("root URI %q names a remote host: %w", root, vtree.ErrInvalidConfig)
		}
		root = u.Path
		// file:///C:/data parses to /C:/data
		if runtime.GOOS == "windows" && len(root) > 2 && root[0] == '/' && root[2] == ':' {
			root = root[1:]
		}
		root = filepath.FromSlash(root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %q: %w", root, err)
	}
	return abs, nil
}
