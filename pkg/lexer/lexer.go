// Package lexer turns an ordered list of token definitions into a
// table-driven tokenizer.
package lexer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xplshn/glex/pkg/config"
	"github.com/xplshn/glex/pkg/dfa"
	"github.com/xplshn/glex/pkg/diag"
	"github.com/xplshn/glex/pkg/nfa"
	"github.com/xplshn/glex/pkg/regex"
	"github.com/xplshn/glex/pkg/token"
)

// Definition declares one token type. Order matters: when two tokens match
// the same longest lexeme, the one declared first wins. Line is the source
// line of the declaration, if any.
type Definition struct {
	Name    string
	Pattern string
	Ignore  bool
	Line    int
}

// Lexer is a compiled set of token definitions. It is never modified after
// Build returns, so one Lexer may tokenize from many goroutines.
type Lexer struct {
	table        *dfa.Table
	registry     *token.Registry
	ignore       []bool
	nfa          *nfa.NFA
	defaultChars bool
}

// Build validates defs and compiles them. A nil cfg means the defaults. The
// returned list holds every error and enabled warning; when it has errors
// the Lexer is nil.
func Build(defs []Definition, cfg *config.Config) (*Lexer, diag.List) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	var ds diag.List
	report := func(sev diag.Severity, i int, format string, args ...any) {
		d := diag.Diagnostic{Severity: sev, Index: i, Col: -1, Msg: fmt.Sprintf(format, args...)}
		if i >= 0 {
			d.Line, d.Name, d.Pattern = defs[i].Line, defs[i].Name, defs[i].Pattern
		}
		ds = append(ds, d)
	}
	warn := func(wt config.Warning, i int, format string, args ...any) {
		if !cfg.IsWarningEnabled(wt) {
			return
		}
		report(diag.Warning, i, format, args...)
		ds[len(ds)-1].Warning = cfg.WarningName(wt)
	}

	if len(defs) == 0 {
		report(diag.Error, -1, "no token definitions")
		return nil, ds
	}

	parser := regex.Parser{MaxRepeat: cfg.MaxRepeat}
	registry := token.NewRegistry()
	patterns := make([]*regex.Regex, len(defs))
	declared := make(map[string]int)
	folded := make(map[string]int)
	for i, def := range defs {
		switch {
		case def.Name == "":
			report(diag.Error, i, "empty token name")
		case !isIdent(def.Name):
			report(diag.Error, i, "token name may only contain letters, digits and '_'")
		default:
			if first, dup := declared[def.Name]; dup {
				report(diag.Error, i, "duplicate token name; first declared as definition %d", first+1)
				break
			}
			declared[def.Name] = i
			if _, err := registry.Add(def.Name, def.Pattern, def.Ignore); err != nil {
				report(diag.Error, i, "%v", err)
				break
			}
			lower := strings.ToLower(def.Name)
			if j, ok := folded[lower]; ok {
				warn(config.WarnExtra, i, "token name differs from '%s' only in case", defs[j].Name)
			} else {
				folded[lower] = i
			}
		}

		if def.Pattern == "" {
			report(diag.Error, i, "empty pattern")
			continue
		}
		re := parser.Parse(def.Pattern)
		for _, note := range re.Notes {
			report(diag.Error, i, "%s", note.Msg)
			ds[len(ds)-1].Col = note.Pos
		}
		patterns[i] = re
	}
	if ds.HasErrors() {
		return nil, ds
	}

	b := nfa.NewBuilder()
	for i, re := range patterns {
		if re.Nullable() {
			warn(config.WarnNullable, i, "pattern matches the empty string; empty matches are never produced")
		}
		b.AddToken(re.Compile(b), i, int(token.FirstID)+i)
	}
	n := b.NFA()

	table, err := dfa.Build(n, dfa.Options{MaxStates: cfg.MaxStates})
	if errors.Is(err, dfa.ErrTooManyStates) {
		report(diag.Error, -1, "automaton exceeds %d states; simplify the patterns or raise the state limit", cfg.MaxStates)
		return nil, ds
	} else if err != nil {
		report(diag.Error, -1, "%v", err)
		return nil, ds
	}
	if cfg.IsFeatureEnabled(config.FeatMinimize) {
		table = table.Minimize()
	}

	produced := table.Tokens()
	for i := range defs {
		if !produced[int(token.FirstID)+i] {
			warn(config.WarnShadowed, i, "token is never produced; earlier declarations win every match it could make")
		}
	}
	if table.NumStates() > cfg.LargeTable {
		warn(config.WarnLargeTable, -1, "DFA has %d states, more than %d", table.NumStates(), cfg.LargeTable)
	}

	lx := &Lexer{
		table:        table,
		registry:     registry,
		ignore:       make([]bool, len(defs)),
		nfa:          n,
		defaultChars: cfg.IsFeatureEnabled(config.FeatDefaultChars),
	}
	for i, def := range defs {
		lx.ignore[i] = def.Ignore
	}
	return lx, ds
}

func isIdent(name string) bool {
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// Builder collects definitions in declaration order.
type Builder struct {
	defs []Definition
	cfg  *config.Config
}

func NewBuilder(cfg *config.Config) *Builder { return &Builder{cfg: cfg} }

func (b *Builder) AddToken(name, pattern string) *Builder {
	b.defs = append(b.defs, Definition{Name: name, Pattern: pattern})
	return b
}

// IgnoreToken declares a token that consumes input but is never emitted.
func (b *Builder) IgnoreToken(name, pattern string) *Builder {
	b.defs = append(b.defs, Definition{Name: name, Pattern: pattern, Ignore: true})
	return b
}

func (b *Builder) Build() (*Lexer, diag.List) { return Build(b.defs, b.cfg) }

func (lx *Lexer) Table() *dfa.Table { return lx.table }

func (lx *Lexer) Registry() *token.Registry { return lx.registry }

// NFA returns the merged automaton the table was built from.
func (lx *Lexer) NFA() *nfa.NFA { return lx.nfa }

// DefaultChars reports whether unmatched bytes become byte-valued tokens
// instead of errors.
func (lx *Lexer) DefaultChars() bool { return lx.defaultChars }

func (lx *Lexer) TokenName(id token.Type) string { return lx.registry.Name(id) }

func (lx *Lexer) TokenID(name string) (token.Type, bool) { return lx.registry.ID(name) }

// Ignored reports whether id is a declared token flagged ignore.
func (lx *Lexer) Ignored(id token.Type) bool {
	i := int(id - token.FirstID)
	return i >= 0 && i < len(lx.ignore) && lx.ignore[i]
}
