package token

import (
	"fmt"
	"strconv"

	"github.com/xplshn/glex/pkg/charclass"
)

type Type int

const (
	// Error is produced for a byte that starts no token.
	Error Type = -1
	// EOF is returned by a scanner once the input is exhausted.
	EOF Type = -2

	// Ids below FirstID are single-byte matches; declared tokens are
	// numbered from FirstID in declaration order.
	FirstID Type = 256
)

type Token struct {
	ID     Type
	Lexeme string
	Line   int
	Column int
	Offset int
}

func (t Token) Len() int { return len(t.Lexeme) }

// Info describes one declared token type.
type Info struct {
	ID      Type
	Name    string
	Pattern string
	Ignore  bool
}

// Registry maps token names to ids and back.
type Registry struct {
	types  []Info
	byName map[string]Type
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Type)}
}

// Add declares a token type and returns its id. Names are unique.
func (r *Registry) Add(name, pattern string, ignore bool) (Type, error) {
	if _, dup := r.byName[name]; dup {
		return 0, fmt.Errorf("token %q already declared", name)
	}
	id := FirstID + Type(len(r.types))
	r.types = append(r.types, Info{ID: id, Name: name, Pattern: pattern, Ignore: ignore})
	r.byName[name] = id
	return id, nil
}

func (r *Registry) ByName(name string) (Info, bool) {
	id, ok := r.byName[name]
	if !ok {
		return Info{}, false
	}
	return r.types[id-FirstID], true
}

func (r *Registry) ByID(id Type) (Info, bool) {
	if id < FirstID || int(id-FirstID) >= len(r.types) {
		return Info{}, false
	}
	return r.types[id-FirstID], true
}

// Name returns a printable name for any id, including the sentinels and
// single-byte ids.
func (r *Registry) Name(id Type) string {
	switch {
	case id == Error:
		return "ERROR"
	case id == EOF:
		return "EOF"
	case id >= 0 && id < FirstID:
		return "'" + charclass.Quote(byte(id)) + "'"
	}
	if info, ok := r.ByID(id); ok {
		return info.Name
	}
	return "token(" + strconv.Itoa(int(id)) + ")"
}

// ID returns the id declared for name.
func (r *Registry) ID(name string) (Type, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Types returns the declared token types in declaration order.
func (r *Registry) Types() []Info {
	return append([]Info(nil), r.types...)
}

func (r *Registry) Len() int { return len(r.types) }

// Stream is the result of tokenizing one input.
type Stream struct {
	Source string
	Tokens []Token
	// Errors counts the Error tokens in Tokens.
	Errors int
}

func (s *Stream) HasErrors() bool { return s.Errors > 0 }
