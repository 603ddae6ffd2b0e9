package builtin

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/kokistudios/playsh/internal/exec"
)

// readInput collects handler input: file arguments when present, otherwise
// piped stdin. A present-but-empty stdin is valid input, not a missing
// operand.
func readInput(cmd string, paths []string, ctx *exec.Context) (string, error) {
	if len(paths) == 0 {
		if ctx.HasStdin() {
			return ctx.StdinText(), nil
		}
		return "", cmdErr(cmd, "", reasonMissingArg)
	}
	var b strings.Builder
	for _, target := range paths {
		path, err := validatePath(cmd, target, ctx)
		if err != nil {
			return "", err
		}
		info, err := os.Stat(path)
		if err != nil {
			return "", cmdErr(cmd, target, reasonNotFound)
		}
		if info.IsDir() {
			return "", cmdErr(cmd, target, reasonIsDir)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", cmdErr(cmd, target, reasonPermission)
		}
		b.Write(data)
	}
	return b.String(), nil
}

// splitLines splits text into lines without a phantom trailing entry.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// catHandler concatenates files, or echoes stdin when piped with no args.
func catHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	_, rest := splitFlags(args)
	text, err := readInput("cat", expandGlobs("cat", rest, ctx), ctx)
	if err != nil {
		return exec.Result{}, err
	}
	return exec.Result{Output: text}, nil
}

// echoHandler prints its arguments joined by single spaces. There is no
// variable expansion anywhere in this shell: echo $HOME prints the literal
// text. -n suppresses the trailing newline.
func echoHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	newline := true
	texts := exec.Strings(args)
	if len(texts) > 0 && texts[0] == "-n" {
		newline = false
		texts = texts[1:]
	}
	out := strings.Join(texts, " ")
	if newline {
		out += "\n"
	}
	return exec.Result{Output: out}, nil
}

// grepHandler searches for a Go-regexp pattern. -i case-insensitive,
// -n line numbers, -v invert, -r recursive directory search.
func grepHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	flags, rest := splitFlags(args)
	if len(rest) == 0 {
		return exec.Result{}, cmdErr("grep", "", reasonMissingArg)
	}
	pattern := rest[0].Text
	if flags["i"] {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return exec.Result{}, fmt.Errorf("grep: invalid pattern: %s\n", rest[0].Text)
	}

	paths := expandGlobs("grep", rest[1:], ctx)

	if flags["r"] {
		if len(paths) == 0 {
			paths = []string{"."}
		}
		return grepRecursive(re, flags, paths, ctx)
	}

	var b strings.Builder
	if len(paths) == 0 {
		if !ctx.HasStdin() {
			return exec.Result{}, cmdErr("grep", "", reasonMissingArg)
		}
		grepText(&b, re, flags, "", ctx.StdinText(), false)
		return exec.Result{Output: b.String()}, nil
	}

	prefix := len(paths) > 1
	for _, target := range paths {
		path, err := validatePath("grep", target, ctx)
		if err != nil {
			return exec.Result{}, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return exec.Result{}, cmdErr("grep", target, reasonNotFound)
		}
		if info.IsDir() {
			return exec.Result{}, cmdErr("grep", target, reasonIsDir)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return exec.Result{}, cmdErr("grep", target, reasonPermission)
		}
		grepText(&b, re, flags, target, string(data), prefix)
	}
	return exec.Result{Output: b.String()}, nil
}

func grepText(b *strings.Builder, re *regexp.Regexp, flags map[string]bool, name, text string, prefix bool) {
	for i, line := range splitLines(text) {
		matched := re.MatchString(line)
		if flags["v"] {
			matched = !matched
		}
		if !matched {
			continue
		}
		if prefix && name != "" {
			fmt.Fprintf(b, "%s:", name)
		}
		if flags["n"] {
			fmt.Fprintf(b, "%d:", i+1)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func grepRecursive(re *regexp.Regexp, flags map[string]bool, targets []string, ctx *exec.Context) (exec.Result, error) {
	var b strings.Builder
	for _, target := range targets {
		root, err := validatePath("grep", target, ctx)
		if err != nil {
			return exec.Result{}, err
		}
		walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.Type()&os.ModeSymlink != 0 {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			rel, err := filepath.Rel(ctx.Dir, path)
			if err != nil {
				rel = path
			}
			grepText(&b, re, flags, rel, string(data), true)
			return nil
		})
		if walkErr != nil {
			return exec.Result{}, cmdErr("grep", target, reasonPermission)
		}
	}
	return exec.Result{Output: b.String()}, nil
}

// wcHandler counts lines, words, and bytes. With no flags all three print
// in the conventional order.
func wcHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	flags, rest := splitFlags(args)
	text, err := readInput("wc", expandGlobs("wc", rest, ctx), ctx)
	if err != nil {
		return exec.Result{}, err
	}
	lines := len(splitLines(text))
	words := len(strings.Fields(text))
	bytes := len(text)

	var fields []string
	if flags["l"] {
		fields = append(fields, strconv.Itoa(lines))
	}
	if flags["w"] {
		fields = append(fields, strconv.Itoa(words))
	}
	if flags["c"] {
		fields = append(fields, strconv.Itoa(bytes))
	}
	if len(fields) == 0 {
		fields = []string{strconv.Itoa(lines), strconv.Itoa(words), strconv.Itoa(bytes)}
	}
	return exec.Result{Output: strings.Join(fields, " ") + "\n"}, nil
}

// parseCount reads an -n N argument pair (or -nN), returning the count and
// the remaining args.
func parseCount(cmd string, args []exec.Arg) (int, []exec.Arg, error) {
	count := 10
	var rest []exec.Arg
	for i := 0; i < len(args); i++ {
		text := args[i].Text
		switch {
		case text == "-n":
			if i+1 >= len(args) {
				return 0, nil, cmdErr(cmd, "-n", reasonInvalidFlag)
			}
			n, err := strconv.Atoi(args[i+1].Text)
			if err != nil || n < 0 {
				return 0, nil, cmdErr(cmd, args[i+1].Text, reasonInvalidFlag)
			}
			count = n
			i++
		case strings.HasPrefix(text, "-n") && !args[i].Glob:
			n, err := strconv.Atoi(strings.TrimPrefix(text, "-n"))
			if err != nil || n < 0 {
				return 0, nil, cmdErr(cmd, text, reasonInvalidFlag)
			}
			count = n
		default:
			rest = append(rest, args[i])
		}
	}
	return count, rest, nil
}

// headHandler prints the first N lines (default 10).
func headHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	count, rest, err := parseCount("head", args)
	if err != nil {
		return exec.Result{}, err
	}
	text, err := readInput("head", expandGlobs("head", rest, ctx), ctx)
	if err != nil {
		return exec.Result{}, err
	}
	lines := splitLines(text)
	if len(lines) > count {
		lines = lines[:count]
	}
	return exec.Result{Output: joinLines(lines)}, nil
}

// tailHandler prints the last N lines (default 10).
func tailHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	count, rest, err := parseCount("tail", args)
	if err != nil {
		return exec.Result{}, err
	}
	text, err := readInput("tail", expandGlobs("tail", rest, ctx), ctx)
	if err != nil {
		return exec.Result{}, err
	}
	lines := splitLines(text)
	if len(lines) > count {
		lines = lines[len(lines)-count:]
	}
	return exec.Result{Output: joinLines(lines)}, nil
}

// sortHandler sorts lines. -r reverses, -u deduplicates.
func sortHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	flags, rest := splitFlags(args)
	text, err := readInput("sort", expandGlobs("sort", rest, ctx), ctx)
	if err != nil {
		return exec.Result{}, err
	}
	lines := splitLines(text)
	sort.Strings(lines)
	if flags["u"] {
		var uniq []string
		for _, line := range lines {
			if len(uniq) == 0 || uniq[len(uniq)-1] != line {
				uniq = append(uniq, line)
			}
		}
		lines = uniq
	}
	if flags["r"] {
		for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
			lines[i], lines[j] = lines[j], lines[i]
		}
	}
	return exec.Result{Output: joinLines(lines)}, nil
}

// uniqHandler collapses adjacent duplicate lines. -c prefixes counts.
func uniqHandler(args []exec.Arg, ctx *exec.Context) (exec.Result, error) {
	flags, rest := splitFlags(args)
	text, err := readInput("uniq", expandGlobs("uniq", rest, ctx), ctx)
	if err != nil {
		return exec.Result{}, err
	}
	var b strings.Builder
	lines := splitLines(text)
	for i := 0; i < len(lines); {
		j := i
		for j < len(lines) && lines[j] == lines[i] {
			j++
		}
		if flags["c"] {
			fmt.Fprintf(&b, "%7d %s\n", j-i, lines[i])
		} else {
			b.WriteString(lines[i])
			b.WriteString("\n")
		}
		i = j
	}
	return exec.Result{Output: b.String()}, nil
}
