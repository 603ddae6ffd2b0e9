package lexer

// Kind discriminates token variants.
type Kind int

const (
	// Word is a plain argument or command name.
	Word Kind = iota
	// Glob is a word containing unquoted *, ?, or [...] metacharacters.
	// Expansion is deferred to the consuming command handler.
	Glob
	// Pipe is the | operator.
	Pipe
	// Redirect is one of >, >>, 2>, 2>>, <.
	Redirect
	// Chain is one of &&, ||, ;.
	Chain
)

// RedirectKind identifies the redirect operator.
type RedirectKind int

const (
	RedirectStdout RedirectKind = iota
	RedirectStdoutAppend
	RedirectStderr
	RedirectStderrAppend
	RedirectStdin
)

func (k RedirectKind) String() string {
	switch k {
	case RedirectStdout:
		return ">"
	case RedirectStdoutAppend:
		return ">>"
	case RedirectStderr:
		return "2>"
	case RedirectStderrAppend:
		return "2>>"
	case RedirectStdin:
		return "<"
	}
	return "?"
}

// ChainOp identifies the chain operator.
type ChainOp int

const (
	ChainAnd ChainOp = iota // &&
	ChainOr                 // ||
	ChainSeq                // ;
)

func (op ChainOp) String() string {
	switch op {
	case ChainAnd:
		return "&&"
	case ChainOr:
		return "||"
	case ChainSeq:
		return ";"
	}
	return "?"
}

// Token is one lexed unit of a command line. Tokens are transient: the
// parser consumes them and they are discarded.
type Token struct {
	Kind     Kind
	Text     string // Word and Glob carry the (unquoted) text or raw pattern
	Redirect RedirectKind
	Chain    ChainOp
}
