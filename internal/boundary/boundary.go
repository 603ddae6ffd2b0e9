// Package boundary decides whether caller-supplied paths resolve inside the
// configured playground. Every path that reaches a filesystem syscall must
// pass through Validate immediately beforehand; results are never cached.
package boundary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Reason classifies why a path was denied. Reasons are internal diagnostics
// only — the user-facing surface renders every denial as a generic
// "No such file or directory" so callers cannot probe what exists outside
// the playground.
type Reason string

const (
	// ReasonOutside means the canonical path lies outside every root.
	ReasonOutside Reason = "outside-boundary"
	// ReasonSymlink means a component of the path is a symlink.
	ReasonSymlink Reason = "symlink"
	// ReasonEmbeddedVar means the path contains an unexpanded $ reference.
	ReasonEmbeddedVar Reason = "embedded-var"
)

// DenialError is the internal denial record. Command handlers must not
// surface its text to users; they render their own 404-style message and
// may log the reason for diagnostics.
type DenialError struct {
	Path   string
	Reason Reason
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("path denied (%s): %s", e.Reason, e.Path)
}

// Denied reports whether err is a boundary denial and returns its reason.
func Denied(err error) (Reason, bool) {
	if d, ok := err.(*DenialError); ok {
		return d.Reason, true
	}
	return "", false
}

// Within reports whether path lies inside root. Both arguments must already
// be canonical absolute paths. Containment requires equality or alignment on
// a full separator boundary: /sandbox2/x is not within /sandbox.
func Within(path, root string) bool {
	if path == "" || root == "" {
		return false
	}
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// Validate resolves raw against currentDir and the set's roots, returning
// the canonical absolute path or a *DenialError.
//
// The checks run in order:
//  1. Any $ in the path is rejected — variables are never expanded, closing
//     an injection-style escape vector.
//  2. Relative paths join against currentDir (or the first root when empty);
//     absolute paths are taken as-is. The candidate is not cleaned here:
//     canonicalization happens during the walk below, after each component
//     has been inspected.
//  3. The components are walked left to right. Each existing component is
//     checked with Lstat as it is reached, before a later .. can lexically
//     erase it, so link/../x is denied even though it resolves to x. A
//     symlink anywhere in the chain is denied regardless of its target.
//     Components past the first non-existent one are accepted, so a
//     to-be-created leaf (touch, redirect target) validates.
//  4. The resolved path must lie within at least one root.
func (s *Set) Validate(raw, currentDir string) (string, error) {
	if raw == "" {
		return "", &DenialError{Path: raw, Reason: ReasonOutside}
	}
	if strings.Contains(raw, "$") {
		return "", &DenialError{Path: raw, Reason: ReasonEmbeddedVar}
	}

	candidate := raw
	if !filepath.IsAbs(candidate) {
		base := currentDir
		if base == "" {
			base = s.roots[0]
		}
		// Plain concatenation: filepath.Join cleans, which would resolve
		// .. before the walk gets to look at what it pops.
		candidate = base + string(filepath.Separator) + candidate
	}

	resolved, err := walkComponents(candidate)
	if err != nil {
		return "", err
	}

	for _, root := range s.roots {
		if Within(resolved, root) {
			return resolved, nil
		}
	}
	return "", &DenialError{Path: resolved, Reason: ReasonOutside}
}

// walkComponents resolves an absolute, possibly un-cleaned path one
// component at a time, Lstat-checking every existing prefix as it is built.
// "." is dropped and ".." pops the stack — but only after the popped
// component was itself checked, which is what makes the ordering sound.
// The check is suspended past the first component that does not exist (what
// isn't there can't be a link) and resumes if .. backs out of the missing
// region. Returns the canonical path, equal to filepath.Clean of the input.
func walkComponents(abs string) (string, error) {
	sep := string(filepath.Separator)
	var stack []string
	missingAt := -1 // stack index of the first non-existent component
	for _, part := range strings.Split(abs, sep) {
		switch part {
		case "", ".":
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if missingAt >= 0 && len(stack) <= missingAt {
				missingAt = -1
			}
		default:
			stack = append(stack, part)
			if missingAt >= 0 {
				continue
			}
			prefix := sep + strings.Join(stack, sep)
			info, err := os.Lstat(prefix)
			if err != nil {
				if os.IsNotExist(err) {
					missingAt = len(stack) - 1
					continue
				}
				// Unreadable ancestors deny rather than trust.
				return "", &DenialError{Path: abs, Reason: ReasonOutside}
			}
			if info.Mode()&os.ModeSymlink != 0 {
				return "", &DenialError{Path: abs, Reason: ReasonSymlink}
			}
		}
	}
	if len(stack) == 0 {
		return sep, nil
	}
	return sep + strings.Join(stack, sep), nil
}
