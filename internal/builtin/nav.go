package builtin

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kokistudios/playsh/internal/exec"
)

// cdHandler validates the target and returns a SetCurrentDirectory effect;
// the executor applies it only after the stage succeeds. Error messages use
// the interactive shell's "bash: cd:" prefix.
func cdHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	target := ""
	if rest := exec.Strings(args); len(rest) > 0 {
		target = rest[0]
	}
	if target == "" || target == "~" {
		return exec.Result{
			Effects: []exec.Effect{exec.SetCurrentDirectory{Dir: ctx.Boundary.Home()}},
		}, nil
	}

	path, err := ctx.Boundary.Validate(target, ctx.Dir)
	if err != nil {
		logValidateDenial("cd", err)
		return exec.Result{}, cmdErr("bash: cd", target, reasonNotFound)
	}
	info, err := os.Stat(path)
	if err != nil {
		return exec.Result{}, cmdErr("bash: cd", target, reasonNotFound)
	}
	if !info.IsDir() {
		return exec.Result{}, cmdErr("bash: cd", target, reasonNotDir)
	}
	return exec.Result{
		Effects: []exec.Effect{exec.SetCurrentDirectory{Dir: path}},
	}, nil
}

// pwdHandler prints the current directory.
func pwdHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	return exec.Result{Output: ctx.Dir + "\n"}, nil
}

// dateHandler prints the current time in the conventional date(1) layout.
func dateHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	return exec.Result{Output: time.Now().Format("Mon Jan  2 15:04:05 MST 2006") + "\n"}, nil
}

// findHandler walks directories recursively. Supported predicates:
// -name <glob> and -type f|d. Symlinks are never descended or reported.
// Results are capped at maxLines entries plus a summary line.
func findHandler(maxLines int) exec.Handler {
	return func(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
		var starts []string
		namePattern := ""
		typeFilter := ""

		texts := args
		for i := 0; i < len(texts); i++ {
			switch texts[i].Text {
			case "-name":
				if i+1 >= len(texts) {
					return exec.Result{}, cmdErr("find", "-name", reasonInvalidFlag)
				}
				namePattern = texts[i+1].Text
				i++
			case "-type":
				if i+1 >= len(texts) || (texts[i+1].Text != "f" && texts[i+1].Text != "d") {
					return exec.Result{}, cmdErr("find", "-type", reasonInvalidFlag)
				}
				typeFilter = texts[i+1].Text
				i++
			default:
				if strings.HasPrefix(texts[i].Text, "-") {
					return exec.Result{}, cmdErr("find", texts[i].Text, reasonInvalidFlag)
				}
				starts = append(starts, texts[i].Text)
			}
		}
		if len(starts) == 0 {
			starts = []string{"."}
		}

		var results []string
		for _, start := range starts {
			root, err := validatePath("find", start, ctx)
			if err != nil {
				return exec.Result{}, err
			}
			if _, err := os.Stat(root); err != nil {
				return exec.Result{}, cmdErr("find", start, reasonNotFound)
			}
			walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return nil
				}
				if d.Type()&os.ModeSymlink != 0 {
					return nil
				}
				if namePattern != "" {
					ok, err := filepath.Match(namePattern, d.Name())
					if err != nil {
						return err
					}
					if !ok {
						return nil
					}
				}
				if typeFilter == "f" && d.IsDir() {
					return nil
				}
				if typeFilter == "d" && !d.IsDir() {
					return nil
				}
				rel, err := filepath.Rel(root, path)
				if err != nil {
					return nil
				}
				if rel == "." {
					results = append(results, start)
				} else {
					results = append(results, filepath.Join(start, rel))
				}
				return nil
			})
			if walkErr != nil {
				return exec.Result{}, cmdErr("find", namePattern, reasonInvalidFlag)
			}
		}

		var b strings.Builder
		for _, line := range capEntries(results, maxLines) {
			b.WriteString(line)
			b.WriteString("\n")
		}
		return exec.Result{Output: b.String()}, nil
	}
}
