// Package vpath manipulates virtual paths.
//
// A virtual path is absolute, uses vtree.Separator between segments and
// has no trailing separator except for the root path itself. Host-specific
// separators never appear here; backends translate at their boundary.
package vpath

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/s2quake/vtree/pkg/vtree"
)

// ValidateName reports whether name can be used as a single path segment.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty name: %w", vtree.ErrInvalidPath)
	case name == "." || name == "..":
		return fmt.Errorf("reserved name %q: %w", name, vtree.ErrInvalidPath)
	case strings.Contains(name, vtree.Separator):
		return fmt.Errorf("name %q contains %q: %w", name, vtree.Separator, vtree.ErrInvalidPath)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("name %q contains NUL: %w", name, vtree.ErrInvalidPath)
	}
	return nil
}

// Join builds a path from segments. No segments yields the root path.
func Join(segments ...string) (string, error) {
	if len(segments) == 0 {
		return vtree.Root, nil
	}
	for _, s := range segments {
		if err := ValidateName(s); err != nil {
			return "", err
		}
	}
	return vtree.Separator + strings.Join(segments, vtree.Separator), nil
}

// Split returns the segments of path. The root path has no segments.
func Split(path string) ([]string, error) {
	if path == vtree.Root {
		return []string{}, nil
	}
	if !strings.HasPrefix(path, vtree.Separator) {
		return nil, fmt.Errorf("path %q is not absolute: %w", path, vtree.ErrInvalidPath)
	}
	segments := strings.Split(path[len(vtree.Separator):], vtree.Separator)
	for _, s := range segments {
		if err := ValidateName(s); err != nil {
			return nil, fmt.Errorf("path %q: %w", path, err)
		}
	}
	return segments, nil
}

// IsRoot reports whether path is the root path.
func IsRoot(path string) bool {
	return path == vtree.Root
}

// Parent returns the path of the folder containing path.
// The root has no parent.
func Parent(path string) (string, bool) {
	if IsRoot(path) || path == "" {
		return "", false
	}
	i := strings.LastIndex(path, vtree.Separator)
	if i <= 0 {
		return vtree.Root, true
	}
	return path[:i], true
}

// Name returns the last segment of path, or "" for the root.
func Name(path string) string {
	if IsRoot(path) {
		return ""
	}
	return path[strings.LastIndex(path, vtree.Separator)+1:]
}

// Child returns the path of name inside parent. Neither is validated.
func Child(parent, name string) string {
	if IsRoot(parent) {
		return vtree.Separator + name
	}
	return parent + vtree.Separator + name
}

// IsWithin reports whether path equals ancestor or lies below it.
func IsWithin(path, ancestor string) bool {
	if path == ancestor || IsRoot(ancestor) {
		return true
	}
	return strings.HasPrefix(path, ancestor+vtree.Separator)
}

// RelativeTo strips root from the front of path, ignoring case. The match
// must end on a segment boundary, so "/ab" is not below "/a". When root is
// not such a prefix, path is returned unchanged. Stripping everything
// yields the root path.
func RelativeTo(path, root string) string {
	rest, ok := trimFoldPrefix(path, root)
	switch {
	case !ok:
		return path
	case rest == "":
		return vtree.Root
	case strings.HasPrefix(rest, vtree.Separator):
		return rest
	case strings.HasSuffix(root, vtree.Separator):
		return vtree.Separator + rest
	default:
		return path
	}
}

// trimFoldPrefix removes prefix from s comparing rune by rune under case
// folding; folded runes may differ in encoded length.
func trimFoldPrefix(s, prefix string) (string, bool) {
	for prefix != "" {
		if s == "" {
			return "", false
		}
		_, pn := utf8.DecodeRuneInString(prefix)
		_, sn := utf8.DecodeRuneInString(s)
		if !strings.EqualFold(prefix[:pn], s[:sn]) {
			return "", false
		}
		prefix, s = prefix[pn:], s[sn:]
	}
	return s, true
}
