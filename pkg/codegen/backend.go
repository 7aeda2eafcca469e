package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/xplshn/glex/pkg/config"
	"github.com/xplshn/glex/pkg/dfa"
	"github.com/xplshn/glex/pkg/lexer"
)

// Backend is the interface that all output backends must implement.
type Backend interface {
	// Generate takes a compiled lexer and a configuration, and renders the
	// lexer in the backend's output format.
	Generate(lx *lexer.Lexer, cfg *config.Config) (*bytes.Buffer, error)
}

var ErrUnknownBackend = errors.New("unknown backend")

var backends = map[string]func() Backend{
	"go":   NewGoBackend,
	"dot":  NewDotBackend,
	"nfa":  NewNFABackend,
	"json": NewJSONBackend,
}

// Select returns the backend registered under name.
func Select(name string) (Backend, error) {
	newBackend, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w '%s' (available: %v)", ErrUnknownBackend, name, Names())
	}
	return newBackend(), nil
}

func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// compressed narrows t to one column per byte equivalence class.
func compressed(t *dfa.Table) (classOf [256]int, rows [][]int32) {
	classOf, n := t.ByteClasses()
	reps := make([]int, n)
	for b := 255; b >= 0; b-- {
		reps[classOf[b]] = b
	}
	rows = make([][]int32, t.NumStates())
	for s := range rows {
		rows[s] = make([]int32, n)
		for c, b := range reps {
			rows[s][c] = t.Trans[s][b]
		}
	}
	return classOf, rows
}
