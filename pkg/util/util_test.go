package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xplshn/glex/pkg/diag"
	"github.com/xplshn/glex/pkg/token"
)

func TestDiagnostics(t *testing.T) {
	src := SourceFileRecord{
		Name:    "calc.lex",
		Content: []byte("# tokens\nNUM   [0-9\nID    [a-z]+\n"),
	}
	ds := diag.List{
		{Severity: diag.Error, Index: 0, Line: 2, Name: "NUM", Pattern: "[0-9", Col: 0, Msg: "unmatched '['"},
		{Severity: diag.Warning, Index: 1, Line: 3, Name: "ID", Pattern: "[a-z]+", Col: -1, Warning: "shadowed", Msg: "token is never produced"},
		{Severity: diag.Error, Index: -1, Col: -1, Msg: "automaton too large"},
	}
	var buf bytes.Buffer
	r := NewReporter(&buf)
	r.Diagnostics(src, ds)

	want := "calc.lex:2:7: error: token 'NUM': unmatched '['\n" +
		"  NUM   [0-9\n" +
		"        ^\n" +
		"calc.lex:3:1: warning: token 'ID': token is never produced [-Wshadowed]\n" +
		"  ID    [a-z]+\n" +
		"  ^~~~~~~~~~~~\n" +
		"calc.lex: error: automaton too large\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 2, r.Errors)
	assert.Equal(t, 1, r.Warnings)
}

func TestLexicalErrors(t *testing.T) {
	src := SourceFileRecord{Name: "in.txt", Content: []byte("12\n3 # 4\n")}
	stream := &token.Stream{
		Tokens: []token.Token{
			{ID: token.FirstID, Lexeme: "12", Line: 1, Column: 1},
			{ID: token.Error, Lexeme: "#", Line: 2, Column: 3, Offset: 5},
		},
		Errors: 1,
	}
	var buf bytes.Buffer
	r := NewReporter(&buf)
	r.LexicalErrors(src, stream)
	assert.Equal(t, "in.txt:2:3: error: unrecognized byte \"#\"\n  3 # 4\n    ^\n", buf.String())
	assert.Equal(t, 1, r.Errors)
}

func TestLineAt(t *testing.T) {
	content := []byte("a\tb\r\nsecond\nthird")
	assert.Equal(t, "a b", lineAt(content, 1))
	assert.Equal(t, "second", lineAt(content, 2))
	assert.Equal(t, "third", lineAt(content, 3))
	assert.Equal(t, "", lineAt(content, 4))
}

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf).Info("glex", "wrote %d states", 7)
	assert.Equal(t, "glex: info: wrote 7 states\n", buf.String())
}
