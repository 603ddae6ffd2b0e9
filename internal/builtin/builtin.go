// Package builtin implements the playground shell's command vocabulary.
// Every handler follows the uniform contract from internal/exec: positional
// args in, materialized output plus optional effects out, errors rendered
// as "<command>: <target>: <reason>\n". Every caller-supplied path passes
// through the boundary validator immediately before use, and every denial
// renders as the command's own not-found message.
package builtin

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kokistudios/playsh/internal/boundary"
	"github.com/kokistudios/playsh/internal/exec"
	"github.com/kokistudios/playsh/internal/parser"
	"github.com/kokistudios/playsh/internal/trash"
	"github.com/kokistudios/playsh/internal/ui"
)

// Fixed reason vocabulary for user-facing errors. Internal denial detail
// never reaches this surface.
const (
	reasonNotFound    = "No such file or directory"
	reasonIsDir       = "Is a directory"
	reasonNotDir      = "Not a directory"
	reasonExists      = "File exists"
	reasonPermission  = "Permission denied"
	reasonNotEmpty    = "Directory not empty"
	reasonMissingArg  = "missing operand"
	reasonInvalidFlag = "invalid option"
)

// Table builds the handler table keyed by the parser's closed command enum.
// maxLines caps entries emitted by listing-style handlers (<=0 selects the
// executor default).
func Table(maxLines int) map[parser.Name]exec.Handler {
	if maxLines <= 0 {
		maxLines = exec.DefaultMaxLines
	}
	return map[parser.Name]exec.Handler{
		parser.Ls:    lsHandler(maxLines),
		parser.Cd:    cdHandler,
		parser.Pwd:   pwdHandler,
		parser.Cat:   catHandler,
		parser.Echo:  echoHandler,
		parser.Grep:  grepHandler,
		parser.Find:  findHandler(maxLines),
		parser.Wc:    wcHandler,
		parser.Head:  headHandler,
		parser.Tail:  tailHandler,
		parser.Sort:  sortHandler,
		parser.Uniq:  uniqHandler,
		parser.Mkdir: mkdirHandler,
		parser.Rmdir: rmdirHandler,
		parser.Touch: touchHandler,
		parser.Rm:    rmHandler,
		parser.Mv:    mvHandler,
		parser.Cp:    cpHandler,
		parser.Date:  dateHandler,
	}
}

// cmdErr renders the uniform "<command>: <target>: <reason>\n" error.
func cmdErr(cmd, target, reason string) error {
	if target == "" {
		return fmt.Errorf("%s: %s\n", cmd, reason)
	}
	return fmt.Errorf("%s: %s: %s\n", cmd, target, reason)
}

// validatePath runs the boundary check for a handler, logging the internal
// denial reason and collapsing every denial into the command's 404.
func validatePath(cmd, raw string, ctx *exec.Context) (string, error) {
	path, err := ctx.Boundary.Validate(raw, ctx.Dir)
	if err != nil {
		logValidateDenial(cmd, err)
		return "", cmdErr(cmd, raw, reasonNotFound)
	}
	return path, nil
}

// logValidateDenial records the internal denial reason on the debug channel.
// It never surfaces in command output.
func logValidateDenial(cmd string, err error) {
	if reason, ok := boundary.Denied(err); ok && ui.Logger != nil {
		ui.Logger.Debug("boundary denial", "command", cmd, "reason", string(reason))
	}
}

// splitFlags separates leading dash-flags from positional arguments.
// Combined single-letter flags (-la) are split apart. A bare "-" or
// anything after the first positional is positional.
func splitFlags(args []exec.Arg) (flags map[string]bool, rest []exec.Arg) {
	flags = make(map[string]bool)
	for i, a := range args {
		if a.Glob || !strings.HasPrefix(a.Text, "-") || a.Text == "-" {
			rest = append(rest, args[i:]...)
			return flags, rest
		}
		for _, r := range strings.TrimPrefix(a.Text, "-") {
			flags[string(r)] = true
		}
	}
	return flags, nil
}

// expandGlobs resolves Glob-flagged arguments against the current directory.
// Matching is restricted to the final path component; entries are sorted,
// dotfiles are skipped unless the pattern component starts with a dot, and
// a pattern with no matches passes through as a literal (which then 404s in
// path positions). Non-glob args pass through untouched.
func expandGlobs(cmd string, args []exec.Arg, ctx *exec.Context) []string {
	var out []string
	for _, a := range args {
		if !a.Glob {
			out = append(out, a.Text)
			continue
		}
		matches := expandOne(cmd, a.Text, ctx)
		if len(matches) == 0 {
			out = append(out, a.Text)
			continue
		}
		out = append(out, matches...)
	}
	return out
}

func expandOne(cmd, pattern string, ctx *exec.Context) []string {
	dir, base := filepath.Split(pattern)
	if strings.ContainsAny(dir, "*?[") {
		// Directory-level wildcards are out of vocabulary; treat the whole
		// pattern as a literal.
		return nil
	}
	searchDir := ctx.Dir
	prefix := ""
	if dir != "" {
		validated, err := validatePath(cmd, dir, ctx)
		if err != nil {
			return nil
		}
		searchDir = validated
		prefix = dir
	}

	entries, err := readDirNames(searchDir)
	if err != nil {
		return nil
	}
	var matches []string
	for _, name := range entries {
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		ok, err := filepath.Match(base, name)
		if err != nil || !ok {
			continue
		}
		matches = append(matches, prefix+name)
	}
	sort.Strings(matches)
	return matches
}

// capEntries truncates a listing to max entries, appending one summary line
// naming the omitted count and the true total.
func capEntries(entries []string, max int) []string {
	if len(entries) <= max {
		return entries
	}
	omitted := len(entries) - max
	total := len(entries)
	capped := append([]string{}, entries[:max]...)
	return append(capped, fmt.Sprintf("... (%d entries omitted, %d total)", omitted, total))
}

// protectedFromRemoval reports whether path is the trash directory or lies
// inside it; rm and mv refuse these targets to keep soft delete coherent.
func protectedFromRemoval(path string, ctx *exec.Context) bool {
	return trash.Contains(ctx.Boundary, path)
}
