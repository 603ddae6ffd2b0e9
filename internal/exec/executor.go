// Package exec walks a parsed Command and runs it: depth guard, per-stage
// handler dispatch, side-effect application, and redirect routing through
// the boundary validator. One invocation runs to completion sequentially;
// each stage's output is fully materialized before the next stage starts.
package exec

import (
	"fmt"
	"os"

	"github.com/kokistudios/playsh/internal/boundary"
	"github.com/kokistudios/playsh/internal/lexer"
	"github.com/kokistudios/playsh/internal/parser"
	"github.com/kokistudios/playsh/internal/ui"
)

const (
	// DefaultMaxDepth is the pipeline depth limit: stages beyond it fail
	// fast before any handler runs.
	DefaultMaxDepth = 10
	// DefaultMaxLines caps entries emitted by listing-style handlers.
	DefaultMaxLines = 200
)

// Executor dispatches parsed commands to their handlers. Immutable after
// construction; safe to share across invocations (each invocation owns its
// own Context).
type Executor struct {
	handlers map[parser.Name]Handler
	maxDepth int
}

// New builds an Executor over a handler table. maxDepth <= 0 selects
// DefaultMaxDepth.
func New(handlers map[parser.Name]Handler, maxDepth int) *Executor {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Executor{handlers: handlers, maxDepth: maxDepth}
}

// Run executes one parsed pipeline against ctx and returns the materialized
// output of the final stage. The first failing stage aborts the remainder;
// output already written to earlier redirect targets stays written.
func (e *Executor) Run(cmd *parser.Command, ctx *Context) (string, error) {
	if depth := cmd.Depth(); depth > e.maxDepth {
		return "", fmt.Errorf("pipeline depth %d exceeds maximum of %d", depth, e.maxDepth)
	}

	stages := append([]*parser.Command{cmd}, cmd.Pipes...)
	carry := ctx.Stdin
	out := ""
	for _, stage := range stages {
		var err error
		out, err = e.runStage(stage, ctx, carry)
		if err != nil {
			return "", err
		}
		carry = &out
	}
	return out, nil
}

// runStage dispatches a single stage. stdin is the previous stage's output
// (nil for the first stage unless the caller seeded one).
func (e *Executor) runStage(stage *parser.Command, ctx *Context, stdin *string) (string, error) {
	handler, ok := e.handlers[stage.Name]
	if stage.Name == parser.Unknown || !ok {
		return "", fmt.Errorf("%s: command not found\n", stage.Raw)
	}

	stageCtx := &Context{Dir: ctx.Dir, Boundary: ctx.Boundary, Stdin: stdin}

	// A stdin redirect replaces piped input for this stage.
	for _, rd := range stage.Redirects {
		if rd.Kind == lexer.RedirectStdin {
			text, err := readRedirectSource(stage.Raw, rd.Target, stageCtx)
			if err != nil {
				return "", err
			}
			stageCtx.Stdin = &text
		}
	}

	args := make([]Arg, len(stage.Args))
	for i, a := range stage.Args {
		args[i] = Arg{Text: a.Text, Glob: a.Glob}
	}

	result, runErr := handler(args, stageCtx)

	output := result.Output
	for _, rd := range stage.Redirects {
		switch rd.Kind {
		case lexer.RedirectStdout, lexer.RedirectStdoutAppend:
			// The target is opened (created, truncated, or appended to)
			// even when the stage failed, matching file-open semantics;
			// only a successful stage's output is written to it.
			text := output
			if runErr != nil {
				text = ""
			}
			if err := writeRedirectTarget(stage.Raw, rd, text, stageCtx); err != nil {
				if runErr != nil {
					return "", runErr
				}
				return "", err
			}
			if runErr == nil {
				output = ""
			}
		case lexer.RedirectStderr, lexer.RedirectStderrAppend:
			// Stderr redirects capture the stage's rendered error text and
			// consume the failure; with no error the target is still
			// created (or appended to), matching file-open semantics.
			text := ""
			if runErr != nil {
				text = runErr.Error()
			}
			if err := writeRedirectTarget(stage.Raw, rd, text, stageCtx); err != nil {
				return "", err
			}
			runErr = nil
		}
	}
	if runErr != nil {
		return "", runErr
	}

	// Side effects apply strictly after success, before the next stage.
	for _, eff := range result.Effects {
		eff.apply(ctx)
	}
	return output, nil
}

// readRedirectSource validates and reads a < source file.
func readRedirectSource(cmdName, target string, ctx *Context) (string, error) {
	path, err := ctx.Boundary.Validate(target, ctx.Dir)
	if err != nil {
		logDenial(cmdName, err)
		return "", notFound(cmdName, target)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", notFound(cmdName, target)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: %s: Is a directory\n", cmdName, target)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", notFound(cmdName, target)
	}
	return string(data), nil
}

// writeRedirectTarget validates the target and writes or appends text to it.
// Out-of-bounds targets render the uniform 404; a directory target fails
// with "Is a directory". Neither aborts the process, only the pipeline.
func writeRedirectTarget(cmdName string, rd parser.Redirect, text string, ctx *Context) error {
	path, err := ctx.Boundary.Validate(rd.Target, ctx.Dir)
	if err != nil {
		logDenial(cmdName, err)
		return notFound(cmdName, rd.Target)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%s: %s: Is a directory\n", cmdName, rd.Target)
	}

	flags := os.O_WRONLY | os.O_CREATE
	switch rd.Kind {
	case lexer.RedirectStdoutAppend, lexer.RedirectStderrAppend:
		flags |= os.O_APPEND
	default:
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%s: %s: Permission denied\n", cmdName, rd.Target)
		}
		return notFound(cmdName, rd.Target)
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("%s: %s: Permission denied\n", cmdName, rd.Target)
	}
	return nil
}

func notFound(cmdName, target string) error {
	return fmt.Errorf("%s: %s: No such file or directory\n", cmdName, target)
}

// logDenial records the internal denial reason for diagnostics. The reason
// never reaches the user-facing surface.
func logDenial(cmdName string, err error) {
	if reason, ok := boundary.Denied(err); ok && ui.Logger != nil {
		ui.Logger.Debug("boundary denial", "command", cmdName, "reason", string(reason))
	}
}
