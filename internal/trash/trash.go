// Package trash implements soft delete: rm moves targets into a .trash
// directory under the boundary home instead of unlinking them. Moves are a
// single atomic rename — never copy-then-delete — so an interruption can
// not leave a half-moved tree.
package trash

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kokistudios/playsh/internal/boundary"
)

// DirName is the trash directory name under the boundary home.
const DirName = ".trash"

// seq disambiguates entries trashed within the same second.
var seq atomic.Uint64

// Dir returns the trash directory path for a boundary set.
func Dir(set *boundary.Set) string {
	return filepath.Join(set.Home(), DirName)
}

// Contains reports whether path is the trash directory or lies inside it.
func Contains(set *boundary.Set, path string) bool {
	return boundary.Within(path, Dir(set))
}

// Move soft-deletes path into the trash, prefixing the entry with a
// monotonically unique identifier so repeated deletions of the same name
// never collide. path must already be validated and in bounds.
func Move(set *boundary.Set, path string) error {
	dir := Dir(set)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("trash: cannot create %s: %w", dir, err)
	}
	id := fmt.Sprintf("%d-%04d", time.Now().Unix(), seq.Add(1))
	dest := filepath.Join(dir, id+"-"+filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("trash: cannot move %s: %w", path, err)
	}
	return nil
}

// Entry is one trashed item.
type Entry struct {
	Name     string // prefixed on-disk name
	Original string // original base name
	Size     int64
	IsDir    bool
	Modified time.Time
}

// List returns trash entries sorted by on-disk name (which sorts oldest
// first thanks to the timestamp prefix). An absent trash directory is an
// empty trash, not an error.
func List(set *boundary.Set) ([]Entry, error) {
	entries, err := os.ReadDir(Dir(set))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("trash: %w", err)
	}
	var out []Entry
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Name:     e.Name(),
			Original: originalName(e.Name()),
			Size:     info.Size(),
			IsDir:    e.IsDir(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Empty removes every trashed entry and returns how many were deleted.
func Empty(set *boundary.Set) (int, error) {
	entries, err := List(set)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(Dir(set), e.Name)); err != nil {
			return removed, fmt.Errorf("trash: cannot remove %s: %w", e.Name, err)
		}
		removed++
	}
	return removed, nil
}

// originalName strips the "<unix>-<seq>-" prefix added by Move.
func originalName(name string) string {
	parts := strings.SplitN(name, "-", 3)
	if len(parts) < 3 || parts[2] == "" {
		return name
	}
	return parts[2]
}
