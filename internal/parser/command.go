package parser

import "github.com/kokistudios/playsh/internal/lexer"

// Name is the closed enumeration of known commands. Command-name resolution
// maps literal strings onto this table; anything else becomes Unknown and
// fails at dispatch, never at parse. Dispatch goes through an explicit
// lookup keyed by Name — identifiers are never constructed from untrusted
// strings.
type Name int

const (
	Unknown Name = iota
	Ls
	Cd
	Pwd
	Cat
	Echo
	Grep
	Find
	Wc
	Head
	Tail
	Sort
	Uniq
	Mkdir
	Rmdir
	Touch
	Rm
	Mv
	Cp
	Date
)

var commandNames = map[string]Name{
	"ls":    Ls,
	"cd":    Cd,
	"pwd":   Pwd,
	"cat":   Cat,
	"echo":  Echo,
	"grep":  Grep,
	"find":  Find,
	"wc":    Wc,
	"head":  Head,
	"tail":  Tail,
	"sort":  Sort,
	"uniq":  Uniq,
	"mkdir": Mkdir,
	"rmdir": Rmdir,
	"touch": Touch,
	"rm":    Rm,
	"mv":    Mv,
	"cp":    Cp,
	"date":  Date,
}

// Resolve maps a literal command string to its Name, or Unknown.
func Resolve(name string) Name {
	if n, ok := commandNames[name]; ok {
		return n
	}
	return Unknown
}

// String returns the canonical command spelling, or "" for Unknown.
func (n Name) String() string {
	for s, v := range commandNames {
		if v == n {
			return s
		}
	}
	return ""
}

// Arg is one positional argument. Glob arguments keep their raw pattern;
// expansion is the consuming handler's job.
type Arg struct {
	Text string
	Glob bool
}

// Redirect binds a redirect operator to its target path.
type Redirect struct {
	Kind   lexer.RedirectKind
	Target string
}

// Command is the parsed form of one pipeline. Pipes is a flat ordered list
// of the stages after the first; pipeline depth is 1 + len(Pipes). Built
// once per parse and never mutated afterward.
type Command struct {
	Name      Name
	Raw       string // the literal command string as typed
	Args      []Arg
	Pipes     []*Command
	Redirects []Redirect
}

// Depth returns the pipeline depth.
func (c *Command) Depth() int {
	return 1 + len(c.Pipes)
}

// ArgStrings returns the positional arguments as plain strings.
func (c *Command) ArgStrings() []string {
	out := make([]string, len(c.Args))
	for i, a := range c.Args {
		out[i] = a.Text
	}
	return out
}
