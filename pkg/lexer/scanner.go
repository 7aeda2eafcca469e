package lexer

import (
	"github.com/xplshn/glex/pkg/dfa"
	"github.com/xplshn/glex/pkg/token"
)

// Scanner walks one input. Unlike the Lexer it is stateful and must not be
// shared between goroutines.
type Scanner struct {
	lx     *Lexer
	input  []byte
	source string
	pos    int
	line   int
	column int
	errors int
}

func (lx *Lexer) NewScanner(input []byte, source string) *Scanner {
	return &Scanner{lx: lx, input: input, source: source, line: 1, column: 1}
}

// Next returns the next token that is not ignored. A byte that starts no
// token comes back as a one-byte token.Error token. At end of input Next
// returns token.EOF, and keeps returning it.
func (s *Scanner) Next() token.Token {
	for {
		start, line, column := s.pos, s.line, s.column
		if s.pos >= len(s.input) {
			return token.Token{ID: token.EOF, Line: line, Column: column, Offset: start}
		}

		n, id := s.longest()
		if n == 0 {
			n, id = 1, token.Error
			if s.lx.defaultChars {
				id = token.Type(s.input[start])
			} else {
				s.errors++
			}
		}
		s.advance(n)
		if s.lx.Ignored(id) {
			continue
		}
		return token.Token{
			ID:     id,
			Lexeme: string(s.input[start:s.pos]),
			Line:   line,
			Column: column,
			Offset: start,
		}
	}
}

// longest runs the table from the current position until it dies and
// returns the last accepting length.
func (s *Scanner) longest() (n int, id token.Type) {
	t := s.lx.table
	state := t.Start
	for i := s.pos; i < len(s.input); i++ {
		state = t.Next(state, s.input[i])
		if state == dfa.Dead {
			break
		}
		if acc := t.AcceptID(state); acc != dfa.NoAccept {
			n, id = i+1-s.pos, token.Type(acc)
		}
	}
	return n, id
}

func (s *Scanner) advance(n int) {
	for _, c := range s.input[s.pos : s.pos+n] {
		if c == '\n' {
			s.line++
			s.column = 1
		} else {
			s.column++
		}
	}
	s.pos += n
}

// Errors is the number of error tokens returned so far.
func (s *Scanner) Errors() int { return s.errors }

func (s *Scanner) Source() string { return s.source }

// Tokenize scans all of input. It never fails: unmatched bytes become error
// tokens and are counted in the stream.
func (lx *Lexer) Tokenize(input []byte, source string) *token.Stream {
	s := lx.NewScanner(input, source)
	out := &token.Stream{Source: source}
	for {
		tok := s.Next()
		if tok.ID == token.EOF {
			break
		}
		out.Tokens = append(out.Tokens, tok)
	}
	out.Errors = s.errors
	return out
}
