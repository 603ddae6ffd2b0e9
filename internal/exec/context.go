package exec

import "github.com/kokistudios/playsh/internal/boundary"

// Context is the per-invocation execution state handed to every command
// handler. One Context exists per pipeline run; it is never shared between
// concurrent invocations. Dir is the only mutable field and only the
// executor mutates it, by applying a SetCurrentDirectory effect after a
// stage succeeds.
type Context struct {
	// Dir is the current directory, always canonical and in bounds.
	Dir string
	// Boundary is the immutable playground allow-list.
	Boundary *boundary.Set
	// Stdin carries the previous pipeline stage's output, or a stdin
	// redirect's file contents. nil means no stdin; a non-nil empty string
	// is valid (empty) input, not a missing operand.
	Stdin *string
}

// NewContext returns a Context rooted at the boundary's home directory.
func NewContext(set *boundary.Set) *Context {
	return &Context{Dir: set.Home(), Boundary: set}
}

// HasStdin reports whether the handler was piped input, possibly empty.
func (c *Context) HasStdin() bool {
	return c.Stdin != nil
}

// StdinText returns the piped input, or "" when none is present.
func (c *Context) StdinText() string {
	if c.Stdin == nil {
		return ""
	}
	return *c.Stdin
}

// Effect is a side-effect directive a handler returns for the executor to
// apply after the stage succeeds. Handlers never mutate shared state
// directly; the closed set of effects keeps them referentially transparent.
type Effect interface {
	apply(ctx *Context)
}

// SetCurrentDirectory replaces the context's current directory. The path
// must already be validated; cd is the only producer.
type SetCurrentDirectory struct {
	Dir string
}

func (e SetCurrentDirectory) apply(ctx *Context) {
	ctx.Dir = e.Dir
}

// Result is a handler's successful return: materialized output plus any
// side-effect directives.
type Result struct {
	Output  string
	Effects []Effect
}

// Arg is one positional argument as dispatched to a handler. Glob marks
// arguments whose metacharacters were unquoted at lex time; the handler is
// responsible for expanding them (a quoted "*.go" arrives with Glob false
// and must be treated literally).
type Arg struct {
	Text string
	Glob bool
}

// Strings flattens args to their literal text.
func Strings(args []Arg) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.Text
	}
	return out
}

// Handler is the uniform contract every builtin implements. args are the
// positional arguments, flags included; errors must be pre-rendered
// user-facing messages in the "<command>: <target>: <reason>\n" convention.
type Handler func(args []Arg, ctx *Context) (Result, error)
