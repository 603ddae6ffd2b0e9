// Package lexer turns a raw command line into a flat token sequence.
// The scan is a single pass with no lookbehind; nothing blocks and nothing
// touches the filesystem.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
)

// Tokenize lexes a raw command line. Empty or whitespace-only input yields
// an empty token sequence. An unterminated quote is a fatal lex error that
// names the quote character left open.
func Tokenize(line string) ([]Token, error) {
	var (
		tokens  []Token
		word    strings.Builder
		inWord  bool
		quoted  bool // any part of the current word came from quotes
		hasGlob bool // unquoted *, ?, or [ seen in the current word
	)

	flush := func() {
		if !inWord {
			return
		}
		kind := Word
		if hasGlob {
			kind = Glob
		}
		tokens = append(tokens, Token{Kind: kind, Text: word.String()})
		word.Reset()
		inWord = false
		quoted = false
		hasGlob = false
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'':
			end := indexRune(runes, i+1, '\'')
			if end < 0 {
				return nil, fmt.Errorf("unterminated single quote")
			}
			word.WriteString(string(runes[i+1 : end]))
			inWord = true
			quoted = true
			i = end

		case r == '"':
			segment, end, err := scanDoubleQuote(runes, i+1)
			if err != nil {
				return nil, err
			}
			word.WriteString(segment)
			inWord = true
			quoted = true
			i = end

		case r == '\\':
			// Backslash escapes the next rune: a space folds into the word,
			// a glob metacharacter becomes literal. A trailing backslash is
			// kept as-is.
			if i+1 < len(runes) {
				word.WriteRune(runes[i+1])
				i++
			} else {
				word.WriteRune(r)
			}
			inWord = true

		case unicode.IsSpace(r):
			flush()

		case r == '|':
			flush()
			if i+1 < len(runes) && runes[i+1] == '|' {
				tokens = append(tokens, Token{Kind: Chain, Chain: ChainOr})
				i++
			} else {
				tokens = append(tokens, Token{Kind: Pipe})
			}

		case r == '&':
			if i+1 < len(runes) && runes[i+1] == '&' {
				flush()
				tokens = append(tokens, Token{Kind: Chain, Chain: ChainAnd})
				i++
			} else {
				// A lone & has no job-control meaning here; keep it literal.
				word.WriteRune(r)
				inWord = true
			}

		case r == ';':
			flush()
			tokens = append(tokens, Token{Kind: Chain, Chain: ChainSeq})

		case r == '>':
			kind := RedirectStdout
			// "2>" only binds as a stderr redirect when the 2 is its own
			// unquoted word directly before the operator.
			if inWord && !quoted && word.String() == "2" {
				word.Reset()
				inWord = false
				hasGlob = false
				kind = RedirectStderr
			} else {
				flush()
			}
			if i+1 < len(runes) && runes[i+1] == '>' {
				if kind == RedirectStderr {
					kind = RedirectStderrAppend
				} else {
					kind = RedirectStdoutAppend
				}
				i++
			}
			tokens = append(tokens, Token{Kind: Redirect, Redirect: kind})

		case r == '<':
			flush()
			tokens = append(tokens, Token{Kind: Redirect, Redirect: RedirectStdin})

		default:
			if r == '*' || r == '?' || r == '[' {
				hasGlob = true
			}
			word.WriteRune(r)
			inWord = true
		}
	}
	flush()

	return tokens, nil
}

// scanDoubleQuote consumes a double-quoted segment starting just past the
// opening quote. Backslash escapes an embedded " or \; any other backslash
// is literal. Returns the segment text and the index of the closing quote.
func scanDoubleQuote(runes []rune, start int) (string, int, error) {
	var b strings.Builder
	for i := start; i < len(runes); i++ {
		switch runes[i] {
		case '"':
			return b.String(), i, nil
		case '\\':
			if i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\') {
				b.WriteRune(runes[i+1])
				i++
			} else {
				b.WriteRune('\\')
			}
		default:
			b.WriteRune(runes[i])
		}
	}
	return "", 0, fmt.Errorf("unterminated double quote")
}

func indexRune(runes []rune, start int, want rune) int {
	for i := start; i < len(runes); i++ {
		if runes[i] == want {
			return i
		}
	}
	return -1
}
