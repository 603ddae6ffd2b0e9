// Package parser consumes the lexer's token stream into exactly one Command
// tree. Parsing is pure and deterministic; nothing here touches the
// filesystem or executes anything.
package parser

import (
	"fmt"

	"github.com/kokistudios/playsh/internal/lexer"
)

// Parse builds the executable Command from a token stream.
//
// Chain operators (&&, ||, ;) are accepted syntactically but only the
// segment before the first one is parsed for execution; trailing segments
// are a documented no-op. Pipelines are flat: the first segment becomes the
// root Command, later segments its Pipes.
func Parse(tokens []lexer.Token) (*Command, error) {
	// Keep only the leading chain segment.
	for i, tok := range tokens {
		if tok.Kind == lexer.Chain {
			tokens = tokens[:i]
			break
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	segments := splitPipes(tokens)
	root, err := parseSegment(segments[0])
	if err != nil {
		return nil, err
	}
	for _, seg := range segments[1:] {
		stage, err := parseSegment(seg)
		if err != nil {
			return nil, err
		}
		root.Pipes = append(root.Pipes, stage)
	}
	return root, nil
}

func splitPipes(tokens []lexer.Token) [][]lexer.Token {
	var segments [][]lexer.Token
	start := 0
	for i, tok := range tokens {
		if tok.Kind == lexer.Pipe {
			segments = append(segments, tokens[start:i])
			start = i + 1
		}
	}
	return append(segments, tokens[start:])
}

// parseSegment parses one pipe-delimited segment. The first token must be a
// Word naming the command; a Redirect immediately followed by a Word or Glob
// binds as a (kind, target) pair; a trailing Redirect with no target is
// silently dropped, mirroring interactive incomplete-input tolerance.
func parseSegment(tokens []lexer.Token) (*Command, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty command segment")
	}
	head := tokens[0]
	switch head.Kind {
	case lexer.Word:
		// ok
	case lexer.Glob:
		return nil, fmt.Errorf("glob pattern cannot be a command name: %s", head.Text)
	default:
		return nil, fmt.Errorf("command segment must begin with a command name")
	}

	cmd := &Command{
		Name: Resolve(head.Text),
		Raw:  head.Text,
	}

	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Kind {
		case lexer.Redirect:
			if i+1 < len(tokens) {
				next := tokens[i+1]
				if next.Kind == lexer.Word || next.Kind == lexer.Glob {
					cmd.Redirects = append(cmd.Redirects, Redirect{
						Kind:   tok.Redirect,
						Target: next.Text,
					})
					i++
					continue
				}
			}
			// Trailing redirect without a target: dropped.
		case lexer.Word:
			cmd.Args = append(cmd.Args, Arg{Text: tok.Text})
		case lexer.Glob:
			cmd.Args = append(cmd.Args, Arg{Text: tok.Text, Glob: true})
		default:
			return nil, fmt.Errorf("unexpected token in command segment")
		}
	}
	return cmd, nil
}
