package builtin

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kokistudios/playsh/internal/exec"
	"github.com/kokistudios/playsh/internal/trash"
)

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	sort.Strings(names)
	return names, nil
}

// lsHandler lists directories and stats files. -a includes dotfiles, -l
// emits a long listing. Output is capped at maxLines entries with a
// trailing summary line.
func lsHandler(maxLines int) exec.Handler {
	return func(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
		flags, rest := splitFlags(args)
		targets := expandGlobs("ls", rest, ctx)
		if len(targets) == 0 {
			targets = []string{"."}
		}

		var b strings.Builder
		multiple := len(targets) > 1
		for i, target := range targets {
			path, err := validatePath("ls", target, ctx)
			if err != nil {
				return exec.Result{}, err
			}
			info, err := os.Stat(path)
			if err != nil {
				return exec.Result{}, cmdErr("ls", target, reasonNotFound)
			}

			if !info.IsDir() {
				b.WriteString(lsLine(flags["l"], info, filepath.Base(path)))
				continue
			}

			entries, err := os.ReadDir(path)
			if err != nil {
				return exec.Result{}, cmdErr("ls", target, reasonPermission)
			}
			if multiple {
				if i > 0 {
					b.WriteString("\n")
				}
				fmt.Fprintf(&b, "%s:\n", target)
			}
			var lines []string
			for _, e := range entries {
				if !flags["a"] && strings.HasPrefix(e.Name(), ".") {
					continue
				}
				ei, err := e.Info()
				if err != nil {
					continue
				}
				lines = append(lines, lsLine(flags["l"], ei, e.Name()))
			}
			sort.Strings(lines)
			for _, line := range capEntries(lines, maxLines) {
				b.WriteString(line)
				if !strings.HasSuffix(line, "\n") {
					b.WriteString("\n")
				}
			}
		}
		return exec.Result{Output: b.String()}, nil
	}
}

func lsLine(long bool, info os.FileInfo, name string) string {
	if info.IsDir() {
		name += "/"
	}
	if !long {
		return name + "\n"
	}
	return fmt.Sprintf("%s %8d %s %s\n",
		info.Mode().String(), info.Size(), info.ModTime().Format("Jan _2 15:04"), name)
}

// mkdirHandler creates directories; -p creates parents and tolerates
// existing targets.
func mkdirHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	flags, rest := splitFlags(args)
	if len(rest) == 0 {
		return exec.Result{}, cmdErr("mkdir", "", reasonMissingArg)
	}
	for _, a := range rest {
		path, err := validatePath("mkdir", a.Text, ctx)
		if err != nil {
			return exec.Result{}, err
		}
		if flags["p"] {
			if err := os.MkdirAll(path, 0755); err != nil {
				return exec.Result{}, cmdErr("mkdir", a.Text, reasonPermission)
			}
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return exec.Result{}, cmdErr("mkdir", a.Text, reasonExists)
		}
		if err := os.Mkdir(path, 0755); err != nil {
			if os.IsNotExist(err) {
				return exec.Result{}, cmdErr("mkdir", a.Text, reasonNotFound)
			}
			return exec.Result{}, cmdErr("mkdir", a.Text, reasonPermission)
		}
	}
	return exec.Result{}, nil
}

// rmdirHandler removes empty directories only.
func rmdirHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	_, rest := splitFlags(args)
	if len(rest) == 0 {
		return exec.Result{}, cmdErr("rmdir", "", reasonMissingArg)
	}
	for _, target := range expandGlobs("rmdir", rest, ctx) {
		path, err := validatePath("rmdir", target, ctx)
		if err != nil {
			return exec.Result{}, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return exec.Result{}, cmdErr("rmdir", target, reasonNotFound)
		}
		if !info.IsDir() {
			return exec.Result{}, cmdErr("rmdir", target, reasonNotDir)
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return exec.Result{}, cmdErr("rmdir", target, reasonPermission)
		}
		if len(entries) > 0 {
			return exec.Result{}, cmdErr("rmdir", target, reasonNotEmpty)
		}
		if err := os.Remove(path); err != nil {
			return exec.Result{}, cmdErr("rmdir", target, reasonPermission)
		}
	}
	return exec.Result{}, nil
}

// touchHandler creates empty files or refreshes timestamps. A non-existent
// leaf under validated ancestors is the normal case, not an error.
func touchHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	_, rest := splitFlags(args)
	if len(rest) == 0 {
		return exec.Result{}, cmdErr("touch", "", reasonMissingArg)
	}
	for _, a := range rest {
		path, err := validatePath("touch", a.Text, ctx)
		if err != nil {
			return exec.Result{}, err
		}
		if info, err := os.Stat(path); err == nil {
			if info.IsDir() {
				continue // touching a directory is a no-op
			}
			now := time.Now()
			if err := os.Chtimes(path, now, now); err != nil {
				return exec.Result{}, cmdErr("touch", a.Text, reasonPermission)
			}
			continue
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			if os.IsNotExist(err) {
				return exec.Result{}, cmdErr("touch", a.Text, reasonNotFound)
			}
			return exec.Result{}, cmdErr("touch", a.Text, reasonPermission)
		}
		f.Close()
	}
	return exec.Result{}, nil
}

// rmHandler soft-deletes targets into the trash. Removing a directory
// requires -r; the trash itself is protected.
func rmHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	flags, rest := splitFlags(args)
	if len(rest) == 0 {
		return exec.Result{}, cmdErr("rm", "", reasonMissingArg)
	}
	for _, target := range expandGlobs("rm", rest, ctx) {
		path, err := validatePath("rm", target, ctx)
		if err != nil {
			return exec.Result{}, err
		}
		if protectedFromRemoval(path, ctx) {
			return exec.Result{}, cmdErr("rm", target, reasonPermission)
		}
		info, err := os.Lstat(path)
		if err != nil {
			return exec.Result{}, cmdErr("rm", target, reasonNotFound)
		}
		if info.IsDir() && !flags["r"] {
			return exec.Result{}, cmdErr("rm", target, reasonIsDir)
		}
		if err := trash.Move(ctx.Boundary, path); err != nil {
			return exec.Result{}, cmdErr("rm", target, reasonPermission)
		}
	}
	return exec.Result{}, nil
}

// mvHandler renames within the playground. Renames are atomic; moving onto
// an existing directory places the source inside it.
func mvHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	_, rest := splitFlags(args)
	targets := expandGlobs("mv", rest, ctx)
	if len(targets) < 2 {
		return exec.Result{}, cmdErr("mv", "", reasonMissingArg)
	}
	destRaw := targets[len(targets)-1]
	sources := targets[:len(targets)-1]

	dest, err := validatePath("mv", destRaw, ctx)
	if err != nil {
		return exec.Result{}, err
	}
	destInfo, destErr := os.Stat(dest)
	destIsDir := destErr == nil && destInfo.IsDir()
	if len(sources) > 1 && !destIsDir {
		return exec.Result{}, cmdErr("mv", destRaw, reasonNotDir)
	}

	for _, src := range sources {
		from, err := validatePath("mv", src, ctx)
		if err != nil {
			return exec.Result{}, err
		}
		if protectedFromRemoval(from, ctx) {
			return exec.Result{}, cmdErr("mv", src, reasonPermission)
		}
		if _, err := os.Lstat(from); err != nil {
			return exec.Result{}, cmdErr("mv", src, reasonNotFound)
		}
		to := dest
		if destIsDir {
			to = filepath.Join(dest, filepath.Base(from))
		}
		if err := os.Rename(from, to); err != nil {
			return exec.Result{}, cmdErr("mv", src, reasonPermission)
		}
	}
	return exec.Result{}, nil
}

// cpHandler copies files; -r copies directories recursively. Symlinks never
// survive validation, so the copy never follows one.
func cpHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	flags, rest := splitFlags(args)
	targets := expandGlobs("cp", rest, ctx)
	if len(targets) < 2 {
		return exec.Result{}, cmdErr("cp", "", reasonMissingArg)
	}
	destRaw := targets[len(targets)-1]
	sources := targets[:len(targets)-1]

	dest, err := validatePath("cp", destRaw, ctx)
	if err != nil {
		return exec.Result{}, err
	}
	destInfo, destErr := os.Stat(dest)
	destIsDir := destErr == nil && destInfo.IsDir()
	if len(sources) > 1 && !destIsDir {
		return exec.Result{}, cmdErr("cp", destRaw, reasonNotDir)
	}

	for _, src := range sources {
		from, err := validatePath("cp", src, ctx)
		if err != nil {
			return exec.Result{}, err
		}
		info, err := os.Stat(from)
		if err != nil {
			return exec.Result{}, cmdErr("cp", src, reasonNotFound)
		}
		to := dest
		if destIsDir {
			to = filepath.Join(dest, filepath.Base(from))
		}
		if info.IsDir() {
			if !flags["r"] {
				return exec.Result{}, cmdErr("cp", src, reasonIsDir)
			}
			if err := copyTree(from, to); err != nil {
				return exec.Result{}, cmdErr("cp", src, reasonPermission)
			}
			continue
		}
		if err := copyFile(from, to, info.Mode()); err != nil {
			return exec.Result{}, cmdErr("cp", src, reasonPermission)
		}
	}
	return exec.Result{}, nil
}

func copyFile(from, to string, mode os.FileMode) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

func copyTree(from, to string) error {
	return filepath.WalkDir(from, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		target := filepath.Join(to, rel)
		if d.Type()&os.ModeSymlink != 0 {
			return nil // links are never copied
		}
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode())
	})
}
