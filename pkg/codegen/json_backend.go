package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xplshn/glex/pkg/config"
	"github.com/xplshn/glex/pkg/lexer"
	"github.com/xplshn/glex/pkg/token"
)

// Table is the JSON form of a compiled lexer. With Classes present, each
// row of Transitions is indexed by Classes[byte] instead of the byte.
type Table struct {
	Fingerprint  string      `json:"fingerprint"`
	DefaultChars bool        `json:"defaultChars"`
	Tokens       []TokenType `json:"tokens"`
	Start        int         `json:"start"`
	Accept       []int       `json:"accept"`
	Classes      []int       `json:"classes,omitempty"`
	Transitions  [][]int32   `json:"transitions"`
}

type TokenType struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Ignore  bool   `json:"ignore,omitempty"`
}

type jsonBackend struct{}

func NewJSONBackend() Backend { return jsonBackend{} }

func (jsonBackend) Generate(lx *lexer.Lexer, cfg *config.Config) (*bytes.Buffer, error) {
	out := ExportTable(lx, cfg.IsFeatureEnabled(config.FeatCompress))
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encoding table: %w", err)
	}
	return &buf, nil
}

// ExportTable converts lx to its JSON form.
func ExportTable(lx *lexer.Lexer, compress bool) *Table {
	t := lx.Table()
	out := &Table{
		Fingerprint:  fmt.Sprintf("%016x", t.Fingerprint()),
		DefaultChars: lx.DefaultChars(),
		Start:        t.Start,
		Accept:       append([]int(nil), t.Accept...),
	}
	for _, info := range lx.Registry().Types() {
		out.Tokens = append(out.Tokens, TokenType{
			ID:      int(info.ID),
			Name:    info.Name,
			Pattern: info.Pattern,
			Ignore:  info.Ignore,
		})
	}
	if compress {
		classOf, rows := compressed(t)
		out.Classes = classOf[:]
		out.Transitions = rows
		return out
	}
	out.Transitions = make([][]int32, t.NumStates())
	for s, row := range t.Trans {
		out.Transitions[s] = row[:]
	}
	return out
}

// Match runs the exported table the way the tokenizer does and returns the
// longest accepted prefix.
func (t *Table) Match(input []byte) (length int, id token.Type, ok bool) {
	state := t.Start
	for i, c := range input {
		col := int(c)
		if t.Classes != nil {
			col = t.Classes[c]
		}
		if state = int(t.Transitions[state][col]); state == 0 {
			break
		}
		if a := t.Accept[state]; a >= 0 {
			length, id, ok = i+1, token.Type(a), true
		}
	}
	return length, id, ok
}
