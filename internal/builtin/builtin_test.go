package builtin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kokistudios/playsh/internal/boundary"
	"github.com/kokistudios/playsh/internal/exec"
	"github.com/kokistudios/playsh/internal/trash"
)

func newTestCtx(t *testing.T) *exec.Context {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	set, err := boundary.NewSet([]string{root}, "")
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return exec.NewContext(set)
}

func writeFile(t *testing.T, ctx *exec.Context, name, content string) string {
	t.Helper()
	path := filepath.Join(ctx.Dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func words(texts ...string) []exec.Arg {
	args := make([]exec.Arg, len(texts))
	for i, s := range texts {
		args[i] = exec.Arg{Text: s}
	}
	return args
}

func run(t *testing.T, h exec.Handler, ctx *exec.Context, texts ...string) exec.Result {
	t.Helper()
	res, err := h(words(texts...), ctx)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	return res
}

func runErr(t *testing.T, h exec.Handler, ctx *exec.Context, texts ...string) string {
	t.Helper()
	_, err := h(words(texts...), ctx)
	if err == nil {
		t.Fatal("expected error")
	}
	return err.Error()
}

func TestLs(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "b.txt", "x")
	writeFile(t, ctx, "a.txt", "x")
	writeFile(t, ctx, ".hidden", "x")
	os.Mkdir(filepath.Join(ctx.Dir, "sub"), 0755)

	h := lsHandler(200)
	res := run(t, h, ctx)
	if res.Output != "a.txt\nb.txt\nsub/\n" {
		t.Errorf("unexpected listing: %q", res.Output)
	}

	res = run(t, h, ctx, "-a")
	if !strings.Contains(res.Output, ".hidden\n") {
		t.Errorf("-a should include dotfiles: %q", res.Output)
	}

	res = run(t, h, ctx, "-l")
	if !strings.Contains(res.Output, "-rw-") {
		t.Errorf("-l should include mode strings: %q", res.Output)
	}
}

func TestLsDenialRendersNotFound(t *testing.T) {
	ctx := newTestCtx(t)
	got := runErr(t, lsHandler(200), ctx, "/etc")
	if got != "ls: /etc: No such file or directory\n" {
		t.Errorf("unexpected error: %q", got)
	}
}

func TestLsCapsEntries(t *testing.T) {
	ctx := newTestCtx(t)
	for i := 0; i < 8; i++ {
		writeFile(t, ctx, strings.Repeat("a", i+1)+".txt", "x")
	}
	res := run(t, lsHandler(5), ctx)
	lines := strings.Split(strings.TrimRight(res.Output, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 5 entries plus summary, got %d lines: %q", len(lines), res.Output)
	}
	if lines[5] != "... (3 entries omitted, 8 total)" {
		t.Errorf("unexpected summary line: %q", lines[5])
	}
}

func TestCd(t *testing.T) {
	ctx := newTestCtx(t)
	sub := filepath.Join(ctx.Dir, "sub")
	os.Mkdir(sub, 0755)

	res := run(t, cdHandler, ctx, "sub")
	if len(res.Effects) != 1 {
		t.Fatalf("expected one effect, got %d", len(res.Effects))
	}
	eff, ok := res.Effects[0].(exec.SetCurrentDirectory)
	if !ok {
		t.Fatalf("expected SetCurrentDirectory, got %T", res.Effects[0])
	}
	if eff.Dir != sub {
		t.Errorf("expected %s, got %s", sub, eff.Dir)
	}
}

func TestCdEscapeAtRoot(t *testing.T) {
	ctx := newTestCtx(t)
	got := runErr(t, cdHandler, ctx, "..")
	if got != "bash: cd: ..: No such file or directory\n" {
		t.Errorf("unexpected error: %q", got)
	}
}

func TestCdFile(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "f.txt", "x")
	got := runErr(t, cdHandler, ctx, "f.txt")
	if got != "bash: cd: f.txt: Not a directory\n" {
		t.Errorf("unexpected error: %q", got)
	}
}

func TestCdNoArgsGoesHome(t *testing.T) {
	ctx := newTestCtx(t)
	os.Mkdir(filepath.Join(ctx.Dir, "sub"), 0755)
	ctx.Dir = filepath.Join(ctx.Dir, "sub")

	res := run(t, cdHandler, ctx)
	eff := res.Effects[0].(exec.SetCurrentDirectory)
	if eff.Dir != ctx.Boundary.Home() {
		t.Errorf("expected home %s, got %s", ctx.Boundary.Home(), eff.Dir)
	}
}

func TestPwd(t *testing.T) {
	ctx := newTestCtx(t)
	res := run(t, pwdHandler, ctx)
	if res.Output != ctx.Dir+"\n" {
		t.Errorf("unexpected output: %q", res.Output)
	}
}

func TestCat(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "a.txt", "hello\n")
	writeFile(t, ctx, "b.txt", "world\n")

	res := run(t, catHandler, ctx, "a.txt", "b.txt")
	if res.Output != "hello\nworld\n" {
		t.Errorf("unexpected output: %q", res.Output)
	}
}

func TestCatMissing(t *testing.T) {
	ctx := newTestCtx(t)
	got := runErr(t, catHandler, ctx, "missing.txt")
	if got != "cat: missing.txt: No such file or directory\n" {
		t.Errorf("unexpected error: %q", got)
	}
}

func TestCatDirectory(t *testing.T) {
	ctx := newTestCtx(t)
	os.Mkdir(filepath.Join(ctx.Dir, "sub"), 0755)
	got := runErr(t, catHandler, ctx, "sub")
	if got != "cat: sub: Is a directory\n" {
		t.Errorf("unexpected error: %q", got)
	}
}

func TestCatStdin(t *testing.T) {
	ctx := newTestCtx(t)
	in := "piped\n"
	ctx.Stdin = &in
	res := run(t, catHandler, ctx)
	if res.Output != "piped\n" {
		t.Errorf("unexpected output: %q", res.Output)
	}
}

func TestCatEmptyStdinIsValid(t *testing.T) {
	ctx := newTestCtx(t)
	in := ""
	ctx.Stdin = &in
	res := run(t, catHandler, ctx)
	if res.Output != "" {
		t.Errorf("expected empty output, got %q", res.Output)
	}
}

func TestEcho(t *testing.T) {
	ctx := newTestCtx(t)
	res := run(t, echoHandler, ctx, "hello", "world")
	if res.Output != "hello world\n" {
		t.Errorf("unexpected output: %q", res.Output)
	}

	res = run(t, echoHandler, ctx, "-n", "hi")
	if res.Output != "hi" {
		t.Errorf("-n should suppress newline: %q", res.Output)
	}

	res = run(t, echoHandler, ctx, "$HOME")
	if res.Output != "$HOME\n" {
		t.Errorf("variables must print literally: %q", res.Output)
	}
}

func TestGrep(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "f.txt", "alpha\nbeta\nGamma\n")

	res := run(t, grepHandler, ctx, "a$", "f.txt")
	if res.Output != "alpha\nbeta\n" {
		t.Errorf("unexpected output: %q", res.Output)
	}

	res = run(t, grepHandler, ctx, "-i", "gamma", "f.txt")
	if res.Output != "Gamma\n" {
		t.Errorf("-i failed: %q", res.Output)
	}

	res = run(t, grepHandler, ctx, "-n", "beta", "f.txt")
	if res.Output != "2:beta\n" {
		t.Errorf("-n failed: %q", res.Output)
	}

	res = run(t, grepHandler, ctx, "-v", "a$", "f.txt")
	if res.Output != "Gamma\n" {
		t.Errorf("-v failed: %q", res.Output)
	}
}

func TestGrepStdin(t *testing.T) {
	ctx := newTestCtx(t)
	in := "hi\nho\n"
	ctx.Stdin = &in
	res := run(t, grepHandler, ctx, "hi")
	if res.Output != "hi\n" {
		t.Errorf("unexpected output: %q", res.Output)
	}
}

func TestGrepRecursive(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "sub/deep.txt", "needle\n")
	writeFile(t, ctx, "top.txt", "needle\n")

	res := run(t, grepHandler, ctx, "-r", "needle", ".")
	if !strings.Contains(res.Output, "sub/deep.txt:needle") {
		t.Errorf("missing nested match: %q", res.Output)
	}
	if !strings.Contains(res.Output, "top.txt:needle") {
		t.Errorf("missing top match: %q", res.Output)
	}
}

func TestGrepInvalidPattern(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "f.txt", "x\n")
	got := runErr(t, grepHandler, ctx, "[", "f.txt")
	if !strings.HasPrefix(got, "grep: invalid pattern") {
		t.Errorf("unexpected error: %q", got)
	}
}

func TestWc(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "f.txt", "one two\nthree\n")

	res := run(t, wcHandler, ctx, "f.txt")
	if res.Output != "2 3 14\n" {
		t.Errorf("unexpected output: %q", res.Output)
	}

	res = run(t, wcHandler, ctx, "-l", "f.txt")
	if res.Output != "2\n" {
		t.Errorf("-l failed: %q", res.Output)
	}
}

func TestHeadTail(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "f.txt", "1\n2\n3\n4\n5\n")

	res := run(t, headHandler, ctx, "-n", "2", "f.txt")
	if res.Output != "1\n2\n" {
		t.Errorf("head -n 2 failed: %q", res.Output)
	}

	res = run(t, tailHandler, ctx, "-n2", "f.txt")
	if res.Output != "4\n5\n" {
		t.Errorf("tail -n2 failed: %q", res.Output)
	}

	res = run(t, headHandler, ctx, "f.txt")
	if res.Output != "1\n2\n3\n4\n5\n" {
		t.Errorf("head default should keep short input whole: %q", res.Output)
	}
}

func TestSortUniq(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "f.txt", "b\na\nb\n")

	res := run(t, sortHandler, ctx, "f.txt")
	if res.Output != "a\nb\nb\n" {
		t.Errorf("sort failed: %q", res.Output)
	}

	res = run(t, sortHandler, ctx, "-u", "f.txt")
	if res.Output != "a\nb\n" {
		t.Errorf("sort -u failed: %q", res.Output)
	}

	res = run(t, sortHandler, ctx, "-r", "f.txt")
	if res.Output != "b\nb\na\n" {
		t.Errorf("sort -r failed: %q", res.Output)
	}

	in := "a\na\nb\na\n"
	ctx.Stdin = &in
	res = run(t, uniqHandler, ctx)
	if res.Output != "a\nb\na\n" {
		t.Errorf("uniq collapses adjacent only: %q", res.Output)
	}

	res = run(t, uniqHandler, ctx, "-c")
	if !strings.Contains(res.Output, "2 a\n") {
		t.Errorf("uniq -c failed: %q", res.Output)
	}
}

func TestMkdirRmdir(t *testing.T) {
	ctx := newTestCtx(t)

	if _, err := mkdirHandler(words("sub"), ctx); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if info, err := os.Stat(filepath.Join(ctx.Dir, "sub")); err != nil || !info.IsDir() {
		t.Fatal("expected directory to exist")
	}

	got := runErr(t, mkdirHandler, ctx, "sub")
	if got != "mkdir: sub: File exists\n" {
		t.Errorf("unexpected error: %q", got)
	}

	got = runErr(t, mkdirHandler, ctx, "a/b/c")
	if got != "mkdir: a/b/c: No such file or directory\n" {
		t.Errorf("unexpected error: %q", got)
	}
	if _, err := mkdirHandler(words("-p", "a/b/c"), ctx); err != nil {
		t.Fatalf("mkdir -p failed: %v", err)
	}

	writeFile(t, ctx, "sub/f.txt", "x")
	got = runErr(t, rmdirHandler, ctx, "sub")
	if got != "rmdir: sub: Directory not empty\n" {
		t.Errorf("unexpected error: %q", got)
	}
	os.Remove(filepath.Join(ctx.Dir, "sub/f.txt"))
	if _, err := rmdirHandler(words("sub"), ctx); err != nil {
		t.Fatalf("rmdir failed: %v", err)
	}
}

func TestTouch(t *testing.T) {
	ctx := newTestCtx(t)
	if _, err := touchHandler(words("new.txt"), ctx); err != nil {
		t.Fatalf("touch failed: %v", err)
	}
	info, err := os.Stat(filepath.Join(ctx.Dir, "new.txt"))
	if err != nil {
		t.Fatal("expected file to exist")
	}
	if info.Size() != 0 {
		t.Errorf("expected empty file, got %d bytes", info.Size())
	}
}

func TestRmMovesToTrash(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "doomed.txt", "x")

	if _, err := rmHandler(words("doomed.txt"), ctx); err != nil {
		t.Fatalf("rm failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ctx.Dir, "doomed.txt")); !os.IsNotExist(err) {
		t.Error("expected file gone from original location")
	}
	entries, err := trash.List(ctx.Boundary)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Original != "doomed.txt" {
		t.Errorf("expected one trashed entry named doomed.txt, got %+v", entries)
	}
}

func TestRmDirectoryNeedsRecursive(t *testing.T) {
	ctx := newTestCtx(t)
	os.Mkdir(filepath.Join(ctx.Dir, "sub"), 0755)

	got := runErr(t, rmHandler, ctx, "sub")
	if got != "rm: sub: Is a directory\n" {
		t.Errorf("unexpected error: %q", got)
	}
	if _, err := rmHandler(words("-r", "sub"), ctx); err != nil {
		t.Fatalf("rm -r failed: %v", err)
	}
}

func TestRmTrashProtected(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "f.txt", "x")
	if _, err := rmHandler(words("f.txt"), ctx); err != nil {
		t.Fatalf("rm failed: %v", err)
	}
	got := runErr(t, rmHandler, ctx, "-r", trash.DirName)
	if got != "rm: .trash: Permission denied\n" {
		t.Errorf("unexpected error: %q", got)
	}
}

func TestMv(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "a.txt", "x")
	os.Mkdir(filepath.Join(ctx.Dir, "sub"), 0755)

	if _, err := mvHandler(words("a.txt", "b.txt"), ctx); err != nil {
		t.Fatalf("mv rename failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ctx.Dir, "b.txt")); err != nil {
		t.Fatal("expected renamed file")
	}

	if _, err := mvHandler(words("b.txt", "sub"), ctx); err != nil {
		t.Fatalf("mv into dir failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ctx.Dir, "sub", "b.txt")); err != nil {
		t.Fatal("expected file inside destination directory")
	}
}

func TestCp(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "a.txt", "content")

	if _, err := cpHandler(words("a.txt", "b.txt"), ctx); err != nil {
		t.Fatalf("cp failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(ctx.Dir, "b.txt"))
	if err != nil || string(data) != "content" {
		t.Errorf("expected copied content, got %q (%v)", data, err)
	}

	got := runErr(t, cpHandler, ctx, "a.txt", "b.txt", "c.txt")
	if got != "cp: c.txt: Not a directory\n" {
		t.Errorf("unexpected error: %q", got)
	}
}

func TestCpRecursive(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "src/deep/f.txt", "x")

	got := runErr(t, cpHandler, ctx, "src", "dst")
	if got != "cp: src: Is a directory\n" {
		t.Errorf("unexpected error: %q", got)
	}
	if _, err := cpHandler(words("-r", "src", "dst"), ctx); err != nil {
		t.Fatalf("cp -r failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ctx.Dir, "dst", "deep", "f.txt")); err != nil {
		t.Error("expected nested copy to exist")
	}
}

func TestFind(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "sub/a.go", "x")
	writeFile(t, ctx, "sub/b.txt", "x")

	h := findHandler(200)
	res := run(t, h, ctx, ".", "-name", "*.go")
	if res.Output != "sub/a.go\n" {
		t.Errorf("find -name failed: %q", res.Output)
	}

	res = run(t, h, ctx, ".", "-type", "d")
	if !strings.Contains(res.Output, "sub\n") {
		t.Errorf("find -type d failed: %q", res.Output)
	}
	if strings.Contains(res.Output, "a.go") {
		t.Errorf("find -type d should skip files: %q", res.Output)
	}
}

func TestDate(t *testing.T) {
	ctx := newTestCtx(t)
	res := run(t, dateHandler, ctx)
	if !strings.HasSuffix(res.Output, "\n") || len(res.Output) < 20 {
		t.Errorf("unexpected date output: %q", res.Output)
	}
}

func TestExpandGlobs(t *testing.T) {
	ctx := newTestCtx(t)
	writeFile(t, ctx, "b.txt", "x")
	writeFile(t, ctx, "a.txt", "x")
	writeFile(t, ctx, ".dot.txt", "x")
	writeFile(t, ctx, "c.go", "x")

	got := expandGlobs("ls", []exec.Arg{{Text: "*.txt", Glob: true}}, ctx)
	if len(got) != 2 || got[0] != "a.txt" || got[1] != "b.txt" {
		t.Errorf("expected sorted visible matches, got %v", got)
	}

	got = expandGlobs("ls", []exec.Arg{{Text: ".*", Glob: true}}, ctx)
	if len(got) != 1 || got[0] != ".dot.txt" {
		t.Errorf("dot pattern should match dotfiles, got %v", got)
	}

	got = expandGlobs("ls", []exec.Arg{{Text: "*.rs", Glob: true}}, ctx)
	if len(got) != 1 || got[0] != "*.rs" {
		t.Errorf("zero matches should pass the literal through, got %v", got)
	}

	got = expandGlobs("ls", []exec.Arg{{Text: "*.txt"}}, ctx)
	if len(got) != 1 || got[0] != "*.txt" {
		t.Errorf("non-glob args must pass through untouched, got %v", got)
	}
}

func TestCapEntries(t *testing.T) {
	entries := make([]string, 250)
	for i := range entries {
		entries[i] = fmt.Sprintf("entry-%03d", i)
	}

	capped := capEntries(entries, 200)
	if len(capped) != 201 {
		t.Fatalf("expected 200 entries plus summary, got %d", len(capped))
	}
	if capped[200] != "... (50 entries omitted, 250 total)" {
		t.Errorf("unexpected summary line: %q", capped[200])
	}

	short := capEntries(entries[:10], 200)
	if len(short) != 10 {
		t.Errorf("under-limit listings must pass through, got %d", len(short))
	}
}

func TestSplitFlags(t *testing.T) {
	flags, rest := splitFlags(words("-la", "file", "-x"))
	if !flags["l"] || !flags["a"] {
		t.Errorf("combined flags not split: %v", flags)
	}
	if len(rest) != 2 || rest[0].Text != "file" || rest[1].Text != "-x" {
		t.Errorf("flags after first positional must stay positional: %v", rest)
	}
}
