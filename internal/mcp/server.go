// Package mcp exposes the playground shell over the Model Context Protocol
// so agent runtimes can call it as a tool instead of spawning a process.
package mcp

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kokistudios/playsh/internal/boundary"
	"github.com/kokistudios/playsh/internal/exec"
	"github.com/kokistudios/playsh/internal/lexer"
	"github.com/kokistudios/playsh/internal/parser"
)

// Server wraps the MCP server around one shell session. The working
// directory persists across tool calls, like an interactive shell.
type Server struct {
	executor *exec.Executor
	server   *mcp.Server

	mu  sync.Mutex
	ctx *exec.Context
}

// NewServer creates a playsh MCP server over a prepared executor and
// boundary set.
func NewServer(executor *exec.Executor, set *boundary.Set, version string) *Server {
	s := &Server{
		executor: executor,
		ctx:      exec.NewContext(set),
	}

	impl := &mcp.Implementation{
		Name:    "playsh",
		Version: version,
	}

	s.server = mcp.NewServer(impl, nil)
	s.registerTools()

	return s
}

// Run starts the MCP server on stdio.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "playsh_exec",
		Description: "Run one shell command line inside the sandboxed playground. " +
			"Supports a POSIX-style vocabulary (ls, cd, cat, grep, find, head, tail, sort, uniq, wc, " +
			"mkdir, rmdir, touch, rm, mv, cp, echo, pwd, date), pipes, quoting, globs, and redirects. " +
			"Every path is confined to the playground roots; anything outside reports " +
			"'No such file or directory'. rm is a soft delete into the playground trash. " +
			"The working directory persists across calls; pass cwd to jump before running.",
	}, s.handleExec)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "playsh_roots",
		Description: "List the playground: root directories commands are confined to, the home " +
			"directory sessions start in, and the current working directory. Call this first to " +
			"learn where you can work.",
	}, s.handleRoots)
}

// ExecArgs defines the input for playsh_exec.
type ExecArgs struct {
	Command string `json:"command" jsonschema:"The command line to run (e.g. 'grep -rn TODO src | head -n 5')"`
	Cwd     string `json:"cwd,omitempty" jsonschema:"Directory to switch to before running (optional; must be inside the playground)"`
}

// ExecResult is the output of playsh_exec.
type ExecResult struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
	Cwd    string `json:"cwd"`
}

func (s *Server) handleExec(ctx context.Context, req *mcp.CallToolRequest, args ExecArgs) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cwd := strings.TrimSpace(args.Cwd); cwd != "" {
		// Same checks cd performs: Validate accepts a non-existent leaf,
		// but a working directory has to exist and be a directory.
		path, err := s.ctx.Boundary.Validate(cwd, s.ctx.Dir)
		if err != nil {
			return nil, ExecResult{
				Error: "bash: cd: " + cwd + ": No such file or directory\n",
				Cwd:   s.ctx.Dir,
			}, nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, ExecResult{
				Error: "bash: cd: " + cwd + ": No such file or directory\n",
				Cwd:   s.ctx.Dir,
			}, nil
		}
		if !info.IsDir() {
			return nil, ExecResult{
				Error: "bash: cd: " + cwd + ": Not a directory\n",
				Cwd:   s.ctx.Dir,
			}, nil
		}
		s.ctx.Dir = path
	}

	out := ExecResult{Cwd: s.ctx.Dir}
	line := strings.TrimSpace(args.Command)
	if line == "" {
		return nil, out, nil
	}

	tokens, err := lexer.Tokenize(line)
	if err != nil {
		out.Error = err.Error() + "\n"
		return nil, out, nil
	}
	cmd, err := parser.Parse(tokens)
	if err != nil {
		out.Error = err.Error() + "\n"
		return nil, out, nil
	}

	output, err := s.executor.Run(cmd, s.ctx)
	out.Cwd = s.ctx.Dir
	if err != nil {
		out.Error = err.Error()
		return nil, out, nil
	}
	out.Output = output
	return nil, out, nil
}

// RootsArgs defines the (empty) input for playsh_roots.
type RootsArgs struct{}

// RootsResult is the output of playsh_roots.
type RootsResult struct {
	Roots []string `json:"roots"`
	Home  string   `json:"home"`
	Cwd   string   `json:"cwd"`
}

func (s *Server) handleRoots(ctx context.Context, req *mcp.CallToolRequest, args RootsArgs) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return nil, RootsResult{
		Roots: s.ctx.Boundary.Roots(),
		Home:  s.ctx.Boundary.Home(),
		Cwd:   s.ctx.Dir,
	}, nil
}
