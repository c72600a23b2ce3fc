// Package security confines file paths received from MCP clients to the
// configured directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for paths that escape the configured directory
var ErrOutsideRoot = errors.New("path is outside configured directory")

// PathValidator resolves request paths against a root directory
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at dir. The directory does not
// have to exist yet.
func NewPathValidator(dir string) (*PathValidator, error) {
	if dir == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	return &PathValidator{root: abs}, nil
}

// Root returns the absolute configured directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve turns a request path into an absolute path inside the root.
// Relative paths are taken relative to the root; NUL bytes are stripped.
// The path itself need not exist, which lets callers resolve output files.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	path = filepath.Clean(path)

	if !v.Contains(path) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return path, nil
}

// Contains reports whether path lies inside the root, both lexically and
// after resolving symlinks of the parts of the path that exist.
func (v *PathValidator) Contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	if !within(abs, v.root) {
		return false
	}

	resolved, ok := realPath(abs)
	if !ok {
		return false
	}
	realRoot, ok := realPath(v.root)
	if !ok {
		return false
	}
	return within(resolved, realRoot)
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

// realPath resolves symlinks in the longest existing prefix of path and
// appends the remaining components unchanged. It fails on components that
// exist but cannot be resolved, such as dangling symlinks.
func realPath(path string) (string, bool) {
	var rest []string
	current := path
	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), true
		}
		if _, err := os.Lstat(current); err == nil {
			return "", false
		}

		parent := filepath.Dir(current)
		if parent == current {
			return path, true
		}
		rest = append([]string{filepath.Base(current)}, rest...)
		current = parent
	}
}
