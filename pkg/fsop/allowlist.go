package fsop

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Allowlist is the set of root directories operations may touch.  The zero
// value allows nothing.
type Allowlist struct {
	roots []string
}

// NewAllowlist absolutizes and symlink-resolves the given roots.
func NewAllowlist(roots []string) (Allowlist, error) {
	resolved := make([]string, 0, len(roots))
	for _, root := range roots {
		r, err := resolvePath(root)
		if err != nil {
			return Allowlist{}, fmt.Errorf("resolve allowlist root %s: %w", root, err)
		}
		resolved = append(resolved, r)
	}
	return Allowlist{roots: resolved}, nil
}

// Roots returns a copy of the resolved roots.
func (a Allowlist) Roots() []string {
	roots := make([]string, len(a.roots))
	copy(roots, a.roots)
	return roots
}

// Check fails with ErrNotAllowed unless path resolves under one of the
// roots.  Paths that do not exist yet resolve through their deepest existing
// ancestor, so a symlinked parent cannot smuggle a path outside the
// allowlist.
func (a Allowlist) Check(path string) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	for _, root := range a.roots {
		if resolved == root || strings.HasPrefix(resolved, root+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("%s resolves outside allowed roots: %w", path, ErrNotAllowed)
}

// resolvePath returns an absolute, symlink-free form of path even when path
// does not exist yet: the deepest existing ancestor is resolved and the
// remainder is joined back onto it.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	existing := abs
	var rest []string
	for {
		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs, nil
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}
}
