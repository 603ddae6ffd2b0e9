package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kokistudios/playsh/internal/boundary"
	"github.com/kokistudios/playsh/internal/builtin"
	"github.com/kokistudios/playsh/internal/exec"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	set, err := boundary.NewSet([]string{root}, "")
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return NewServer(exec.New(builtin.Table(0), 0), set, "test")
}

func TestHandleExec(t *testing.T) {
	s := newTestServer(t)
	if err := os.WriteFile(filepath.Join(s.ctx.Dir, "f.txt"), []byte("hello\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, raw, err := s.handleExec(context.Background(), nil, ExecArgs{Command: "cat f.txt"})
	if err != nil {
		t.Fatalf("handleExec failed: %v", err)
	}
	res := raw.(ExecResult)
	if res.Output != "hello\n" || res.Error != "" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestHandleExecDenialInErrorField(t *testing.T) {
	s := newTestServer(t)

	_, raw, err := s.handleExec(context.Background(), nil, ExecArgs{Command: "ls /etc"})
	if err != nil {
		t.Fatalf("denials must not be protocol errors: %v", err)
	}
	res := raw.(ExecResult)
	if res.Error != "ls: /etc: No such file or directory\n" {
		t.Errorf("unexpected error field: %q", res.Error)
	}
}

func TestHandleExecCwdPersists(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	if _, _, err := s.handleExec(ctx, nil, ExecArgs{Command: "mkdir sub"}); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if _, _, err := s.handleExec(ctx, nil, ExecArgs{Command: "cd sub"}); err != nil {
		t.Fatalf("cd failed: %v", err)
	}
	_, raw, err := s.handleExec(ctx, nil, ExecArgs{Command: "pwd"})
	if err != nil {
		t.Fatalf("pwd failed: %v", err)
	}
	res := raw.(ExecResult)
	want := filepath.Join(s.ctx.Boundary.Home(), "sub")
	if res.Cwd != want || res.Output != want+"\n" {
		t.Errorf("cwd should persist across calls: %+v", res)
	}
}

func TestHandleExecCwdOverride(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, raw, err := s.handleExec(ctx, nil, ExecArgs{Command: "pwd", Cwd: "/etc"})
	if err != nil {
		t.Fatalf("handleExec failed: %v", err)
	}
	res := raw.(ExecResult)
	if res.Error == "" || res.Cwd != s.ctx.Boundary.Home() {
		t.Errorf("out-of-bounds cwd must be rejected in place: %+v", res)
	}
}

func TestHandleExecCwdMustBeDirectory(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	// In-bounds but non-existent: Validate would accept it as a creatable
	// leaf, but a working directory has to exist.
	_, raw, err := s.handleExec(ctx, nil, ExecArgs{Command: "pwd", Cwd: "nope"})
	if err != nil {
		t.Fatalf("handleExec failed: %v", err)
	}
	res := raw.(ExecResult)
	if res.Error != "bash: cd: nope: No such file or directory\n" || res.Cwd != s.ctx.Boundary.Home() {
		t.Errorf("missing cwd must be rejected in place: %+v", res)
	}

	// In-bounds regular file.
	if err := os.WriteFile(filepath.Join(s.ctx.Dir, "f.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, raw, err = s.handleExec(ctx, nil, ExecArgs{Command: "pwd", Cwd: "f.txt"})
	if err != nil {
		t.Fatalf("handleExec failed: %v", err)
	}
	res = raw.(ExecResult)
	if res.Error != "bash: cd: f.txt: Not a directory\n" || res.Cwd != s.ctx.Boundary.Home() {
		t.Errorf("file cwd must be rejected in place: %+v", res)
	}
}

func TestHandleRoots(t *testing.T) {
	s := newTestServer(t)

	_, raw, err := s.handleRoots(context.Background(), nil, RootsArgs{})
	if err != nil {
		t.Fatalf("handleRoots failed: %v", err)
	}
	res := raw.(RootsResult)
	if len(res.Roots) != 1 || res.Home != res.Roots[0] || res.Cwd != res.Home {
		t.Errorf("unexpected roots result: %+v", res)
	}
}
