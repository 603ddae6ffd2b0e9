package boundary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Set is the immutable allow-list of playground roots plus the designated
// home directory. Built once per session; safe to share across concurrent
// invocations.
type Set struct {
	roots []string
	home  string
}

// NewSet builds a Set from already-expanded root paths and a home directory.
// Construction fails if the root list is empty, any root does not exist, is
// not a directory, or resolves through a symlink, or if home is not within
// any root. Roots are cleaned, deduplicated, and sorted for determinism.
func NewSet(roots []string, home string) (*Set, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("boundary: no roots configured")
	}

	seen := make(map[string]bool)
	var cleaned []string
	for _, r := range roots {
		abs, err := filepath.Abs(filepath.Clean(r))
		if err != nil {
			return nil, fmt.Errorf("boundary: cannot resolve root %s: %w", r, err)
		}
		if err := checkRoot(abs); err != nil {
			return nil, err
		}
		if !seen[abs] {
			seen[abs] = true
			cleaned = append(cleaned, abs)
		}
	}
	sort.Strings(cleaned)

	if home == "" {
		home = cleaned[0]
	}
	absHome, err := filepath.Abs(filepath.Clean(home))
	if err != nil {
		return nil, fmt.Errorf("boundary: cannot resolve home %s: %w", home, err)
	}
	inBounds := false
	for _, r := range cleaned {
		if Within(absHome, r) {
			inBounds = true
			break
		}
	}
	if !inBounds {
		return nil, fmt.Errorf("boundary: home %s is not within any root", absHome)
	}

	return &Set{roots: cleaned, home: absHome}, nil
}

// Default returns a Set with the process working directory as the sole root
// and home.
func Default() (*Set, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("boundary: cannot determine working directory: %w", err)
	}
	return NewSet([]string{cwd}, cwd)
}

// checkRoot verifies a root exists, is a directory, and that no component of
// its path is a symlink. A symlinked root would let every later containment
// check be retargeted out from under us.
func checkRoot(abs string) error {
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("boundary: root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("boundary: root %s is not a directory", abs)
	}
	if _, err := walkComponents(abs); err != nil {
		return fmt.Errorf("boundary: root %s resolves through a symlink", abs)
	}
	return nil
}

// Roots returns a copy of the root list.
func (s *Set) Roots() []string {
	out := make([]string, len(s.roots))
	copy(out, s.roots)
	return out
}

// Home returns the designated home directory.
func (s *Set) Home() string {
	return s.home
}

// Contains reports whether an already-canonical absolute path lies within
// any root.
func (s *Set) Contains(path string) bool {
	for _, r := range s.roots {
		if Within(path, r) {
			return true
		}
	}
	return false
}
