package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"strings"

	"github.com/xplshn/glex/pkg/charclass"
	"github.com/xplshn/glex/pkg/config"
	"github.com/xplshn/glex/pkg/dfa"
	"github.com/xplshn/glex/pkg/lexer"
	gtoken "github.com/xplshn/glex/pkg/token"
)

type goBackend struct {
	out  *bytes.Buffer
	lx   *lexer.Lexer
	cfg  *config.Config
	name string
	priv string
}

func NewGoBackend() Backend { return &goBackend{} }

// Generate emits a self-contained Go file: token id constants, the
// transition table and a Tokenize driver with the same semantics as
// lexer.Lexer.Tokenize.
func (b *goBackend) Generate(lx *lexer.Lexer, cfg *config.Config) (*bytes.Buffer, error) {
	if !token.IsIdentifier(cfg.PackageName) {
		return nil, fmt.Errorf("invalid package name '%s'", cfg.PackageName)
	}
	if !token.IsIdentifier(cfg.LexerName) {
		return nil, fmt.Errorf("invalid lexer name '%s'", cfg.LexerName)
	}
	b.out, b.lx, b.cfg = new(bytes.Buffer), lx, cfg
	b.name = cfg.LexerName
	b.priv = strings.ToLower(b.name[:1]) + b.name[1:]

	b.genHeader()
	b.genIDs()
	b.genTables()
	b.genDriver()

	src, err := format.Source(b.out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated source: %w\n%s", err, b.out.String())
	}
	return bytes.NewBuffer(src), nil
}

func (b *goBackend) p(format string, args ...any) {
	fmt.Fprintf(b.out, format, args...)
	b.out.WriteByte('\n')
}

func (b *goBackend) genHeader() {
	b.p("// Code generated by glex; DO NOT EDIT.")
	b.p("// table fingerprint: %016x", b.lx.Table().Fingerprint())
	b.p("")
	b.p("package %s", b.cfg.PackageName)
	b.p("")
	b.p(`import "strconv"`)
	b.p("")
}

func (b *goBackend) genIDs() {
	b.p("// Token ids. Ids below %d are single bytes.", int(gtoken.FirstID))
	b.p("const (")
	b.p("%sError = %d", b.name, int(gtoken.Error))
	b.p("%sEOF = %d", b.name, int(gtoken.EOF))
	for _, info := range b.lx.Registry().Types() {
		b.p("ID_%s = %d // %s", info.Name, int(info.ID), sanitizeComment(info.Pattern))
	}
	b.p(")")
	b.p("")

	b.p("var %sNames = [...]string{", b.priv)
	for _, info := range b.lx.Registry().Types() {
		b.p("%q,", info.Name)
	}
	b.p("}")
	b.p("")
	b.p("var %sIgnore = [...]bool{", b.priv)
	for _, info := range b.lx.Registry().Types() {
		b.p("%t,", info.Ignore)
	}
	b.p("}")
	b.p("")

	b.p("var %sByteNames = [%d]string{", b.priv, int(gtoken.FirstID))
	for c := 0; c < int(gtoken.FirstID); c++ {
		b.p("%q,", "'"+charclass.Quote(byte(c))+"'")
	}
	b.p("}")
	b.p("")

	b.p("// %sTokenName returns the declared name of id.", b.name)
	b.p("func %sTokenName(id int) string {", b.name)
	b.p("switch {")
	b.p("case id == %sError:", b.name)
	b.p(`return "ERROR"`)
	b.p("case id == %sEOF:", b.name)
	b.p(`return "EOF"`)
	b.p("case id >= 0 && id < %d:", int(gtoken.FirstID))
	b.p("return %sByteNames[id]", b.priv)
	b.p("case id >= %d && id-%d < len(%sNames):", int(gtoken.FirstID), int(gtoken.FirstID), b.priv)
	b.p("return %sNames[id-%d]", b.priv, int(gtoken.FirstID))
	b.p("}")
	b.p(`return "token(" + strconv.Itoa(id) + ")"`)
	b.p("}")
	b.p("")
}

func (b *goBackend) genTables() {
	t := b.lx.Table()
	elem := stateType(t.NumStates())

	b.p("const %sStart = %d", b.priv, t.Start)
	b.p("")
	b.p("var %sAccept = [...]int32{", b.priv)
	b.ints(len(t.Accept), func(i int) int { return t.Accept[i] })
	b.p("}")
	b.p("")

	if b.cfg.IsFeatureEnabled(config.FeatCompress) {
		classOf, rows := compressed(t)
		b.p("var %sClass = [256]uint8{", b.priv)
		b.ints(256, func(i int) int { return classOf[i] })
		b.p("}")
		b.p("")
		b.p("var %sTrans = [...][%d]%s{", b.priv, len(rows[0]), elem)
		for _, row := range rows {
			b.p("{")
			b.ints(len(row), func(i int) int { return int(row[i]) })
			b.p("},")
		}
		b.p("}")
		b.p("")
		b.p("func %sNext(state int, c byte) int { return int(%sTrans[state][%sClass[c]]) }", b.priv, b.priv, b.priv)
	} else {
		b.p("var %sTrans = [...][256]%s{", b.priv, elem)
		for s := range t.Trans {
			b.p("{")
			b.ints(256, func(i int) int { return int(t.Trans[s][i]) })
			b.p("},")
		}
		b.p("}")
		b.p("")
		b.p("func %sNext(state int, c byte) int { return int(%sTrans[state][c]) }", b.priv, b.priv)
	}
	b.p("")
}

// ints writes n comma-separated values, sixteen per line.
func (b *goBackend) ints(n int, at func(int) int) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(strconv.Itoa(at(i)))
		sb.WriteByte(',')
		if i%16 == 15 || i == n-1 {
			b.p("%s", sb.String())
			sb.Reset()
		} else {
			sb.WriteByte(' ')
		}
	}
}

func (b *goBackend) genDriver() {
	n, v := b.name, b.priv
	b.p("type %sToken struct {", n)
	b.p("ID int")
	b.p("Lexeme string")
	b.p("Line, Column, Offset int")
	b.p("}")
	b.p("")
	b.p("// %sTokenize splits input into tokens, longest match first and the", n)
	b.p("// earliest declaration on ties. Ignored tokens are dropped. A byte that")
	b.p("// starts no token is returned as a one-byte %sError token and counted.", n)
	b.p("func %sTokenize(input []byte) (tokens []%sToken, errors int) {", n, n)
	b.p("line, column := 1, 1")
	b.p("for pos := 0; pos < len(input); {")
	b.p("state, length, id := %sStart, 0, %sError", v, n)
	b.p("for i := pos; i < len(input); i++ {")
	b.p("if state = %sNext(state, input[i]); state == %d {", v, dfa.Dead)
	b.p("break")
	b.p("}")
	b.p("if a := %sAccept[state]; a >= 0 {", v)
	b.p("length, id = i+1-pos, int(a)")
	b.p("}")
	b.p("}")
	b.p("if length == 0 {")
	if b.lx.DefaultChars() {
		b.p("length, id = 1, int(input[pos])")
	} else {
		b.p("length = 1")
		b.p("errors++")
	}
	b.p("}")
	b.p("tok := %sToken{ID: id, Lexeme: string(input[pos : pos+length]), Line: line, Column: column, Offset: pos}", n)
	b.p("for _, c := range input[pos : pos+length] {")
	b.p("if c == '\\n' {")
	b.p("line, column = line+1, 1")
	b.p("} else {")
	b.p("column++")
	b.p("}")
	b.p("}")
	b.p("pos += length")
	b.p("if id < %d || !%sIgnore[id-%d] {", int(gtoken.FirstID), v, int(gtoken.FirstID))
	b.p("tokens = append(tokens, tok)")
	b.p("}")
	b.p("}")
	b.p("return tokens, errors")
	b.p("}")
}

func stateType(n int) string {
	switch {
	case n <= 1<<8:
		return "uint8"
	case n <= 1<<16:
		return "uint16"
	}
	return "uint32"
}

func sanitizeComment(s string) string {
	return strings.NewReplacer("\n", `\n`, "\r", `\r`).Replace(s)
}
