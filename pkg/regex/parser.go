// Package regex parses the token pattern language and compiles patterns
// into NFA fragments.
//
// Binding strength, highest first: atoms (literal bytes, escapes, shortcut
// classes, '.', bracket expressions, "quoted strings", parenthesized
// groups), postfix quantifiers (? * + {n} {n,} {m,n}), concatenation,
// alternation '|'. Quoting is the only way to match an operator character
// without a backslash.
package regex

import (
	"fmt"
	"strings"

	"github.com/xplshn/glex/pkg/charclass"
)

const (
	// DefaultMaxRepeat bounds the counts accepted in {m,n}. Repetitions are
	// unrolled into copies, so large bounds blow up the automaton.
	DefaultMaxRepeat = 255
	// DefaultMaxSize bounds the estimated NFA states of one pattern.
	DefaultMaxSize = 1 << 20
)

// Note describes a syntax problem. Pos is a byte offset into the pattern.
type Note struct {
	Pos int
	Msg string
}

func (n Note) String() string { return fmt.Sprintf("col %d: %s", n.Pos+1, n.Msg) }

// Regex is a parsed pattern. Root is nil whenever Notes is not empty.
type Regex struct {
	Pattern string
	Root    Node
	Notes   []Note
}

// Valid reports whether the pattern parsed without notes.
func (r *Regex) Valid() bool { return len(r.Notes) == 0 }

// Nullable reports whether the pattern matches the empty string.
func (r *Regex) Nullable() bool { return r.Root != nil && r.Root.nullable() }

func (r *Regex) String() string {
	if r.Root == nil {
		return "<invalid>"
	}
	return r.Root.String()
}

// Parser holds the limits applied while parsing.
type Parser struct {
	MaxRepeat int
	MaxSize   int
}

// Parse parses pattern with the default limits.
func Parse(pattern string) *Regex {
	return Parser{MaxRepeat: DefaultMaxRepeat, MaxSize: DefaultMaxSize}.Parse(pattern)
}

func (ps Parser) Parse(pattern string) *Regex {
	if ps.MaxRepeat <= 0 {
		ps.MaxRepeat = DefaultMaxRepeat
	}
	if ps.MaxSize <= 0 {
		ps.MaxSize = DefaultMaxSize
	}
	p := &parser{src: pattern, maxRepeat: ps.MaxRepeat}
	re := &Regex{Pattern: pattern}

	root := p.parseAlternate()
	switch {
	case p.failed:
	case p.pos < len(p.src):
		p.fail(p.pos, "unmatched ')'")
	case root == nil:
		p.fail(0, "empty pattern")
	case root.size(ps.MaxSize) >= ps.MaxSize:
		p.fail(0, "pattern expands to more than %d automaton states", ps.MaxSize)
	}

	re.Notes = p.notes
	if !p.failed {
		re.Root = root
	}
	return re
}

type parser struct {
	src       string
	pos       int
	maxRepeat int
	notes     []Note
	failed    bool
}

func (p *parser) fail(pos int, format string, args ...any) {
	if p.failed {
		return
	}
	p.failed = true
	p.notes = append(p.notes, Note{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

// parseAlternate returns nil for an empty expression.
func (p *parser) parseAlternate() Node {
	var branches []Node
	var bars []int
	for {
		branches = append(branches, p.parseConcat())
		if p.failed {
			return nil
		}
		if p.eof() || p.peek() != '|' {
			break
		}
		bars = append(bars, p.pos)
		p.pos++
	}
	if len(branches) == 1 {
		return branches[0]
	}
	for i, b := range branches {
		if b == nil {
			pos := bars[max(i-1, 0)]
			p.fail(pos, "empty alternation branch")
			return nil
		}
	}
	return &Alternate{Items: branches}
}

func (p *parser) parseConcat() Node {
	var items []Node
	for !p.eof() && p.peek() != '|' && p.peek() != ')' {
		n := p.parseRepeat()
		if p.failed {
			return nil
		}
		items = append(items, n)
	}
	switch len(items) {
	case 0:
		return nil
	case 1:
		return items[0]
	}
	return &Concat{Items: items}
}

func (p *parser) parseRepeat() Node {
	n := p.parseAtom()
	for !p.failed && !p.eof() {
		switch p.peek() {
		case '?':
			n = &Repeat{Sub: n, Min: 0, Max: 1}
		case '*':
			n = &Repeat{Sub: n, Min: 0, Max: Unbounded}
		case '+':
			n = &Repeat{Sub: n, Min: 1, Max: Unbounded}
		case '{':
			lo, hi, ok := p.parseBounds()
			if !ok {
				return nil
			}
			n = &Repeat{Sub: n, Min: lo, Max: hi}
			continue
		default:
			return n
		}
		p.pos++
	}
	return n
}

// parseBounds reads {n}, {n,} or {m,n} and leaves pos after the brace.
func (p *parser) parseBounds() (lo, hi int, ok bool) {
	open := p.pos
	p.pos++
	lo, digits := p.number()
	if digits == 0 {
		p.fail(open, "missing repetition count after '{'")
		return 0, 0, false
	}
	hi = lo
	if p.peek() == ',' {
		p.pos++
		var n int
		if n, digits = p.number(); digits == 0 {
			hi = Unbounded
		} else {
			hi = n
		}
	}
	if p.eof() || p.peek() != '}' {
		p.fail(open, "unterminated repetition '{'")
		return 0, 0, false
	}
	p.pos++
	if lo > p.maxRepeat || hi > p.maxRepeat {
		p.fail(open, "repetition bound exceeds maximum of %d", p.maxRepeat)
		return 0, 0, false
	}
	if hi != Unbounded && hi < lo {
		p.fail(open, "invalid repetition bounds {%d,%d}", lo, hi)
		return 0, 0, false
	}
	return lo, hi, true
}

// number reads decimal digits, saturating well above any accepted bound.
func (p *parser) number() (n, digits int) {
	for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
		if n < 1<<20 {
			n = n*10 + int(p.peek()-'0')
		}
		p.pos++
		digits++
	}
	return n, digits
}

func (p *parser) parseAtom() Node {
	start := p.pos
	c := p.peek()
	switch c {
	case '(':
		p.pos++
		sub := p.parseAlternate()
		if p.failed {
			return nil
		}
		if p.eof() || p.peek() != ')' {
			p.fail(start, "unmatched '('")
			return nil
		}
		p.pos++
		if sub == nil {
			p.fail(start, "empty group '()'")
			return nil
		}
		return sub
	case '[':
		return p.parseBracket()
	case '"':
		return p.parseQuoted()
	case '.':
		p.pos++
		return &Class{Set: charclass.Dot()}
	case '\\':
		set, _, ok := p.parseEscape(true)
		if !ok {
			return nil
		}
		return &Class{Set: set}
	case '?', '*', '+', '{':
		p.fail(start, "quantifier '%c' has nothing to repeat", c)
		return nil
	case ']':
		p.fail(start, "unmatched ']'")
		return nil
	}
	p.pos++
	return &Class{Set: charclass.Byte(c)}
}

const punct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~ "

// parseEscape reads a backslash sequence. single is the byte value for
// escapes naming one byte and -1 for shortcut classes, which are only
// accepted when shortcuts is set.
func (p *parser) parseEscape(shortcuts bool) (set charclass.Class, single int, ok bool) {
	start := p.pos
	p.pos++
	if p.eof() {
		p.fail(start, "trailing backslash")
		return set, -1, false
	}
	c := p.peek()
	p.pos++
	switch c {
	case 'n':
		return charclass.Byte('\n'), '\n', true
	case 't':
		return charclass.Byte('\t'), '\t', true
	case 'r':
		return charclass.Byte('\r'), '\r', true
	case 'f':
		return charclass.Byte('\f'), '\f', true
	case 'v':
		return charclass.Byte('\v'), '\v', true
	case '0':
		return charclass.Byte(0), 0, true
	case 'x':
		if p.pos+2 > len(p.src) || !isHex(p.src[p.pos]) || !isHex(p.src[p.pos+1]) {
			p.fail(start, "invalid hex escape; want \\xHH")
			return set, -1, false
		}
		b := hexVal(p.src[p.pos])<<4 | hexVal(p.src[p.pos+1])
		p.pos += 2
		return charclass.Byte(b), int(b), true
	}
	if cls, isShortcut := charclass.Shortcut(c); isShortcut {
		if !shortcuts {
			p.fail(start, "class shortcut '\\%c' cannot bound a range", c)
			return set, -1, false
		}
		return cls, -1, true
	}
	if strings.IndexByte(punct, c) >= 0 {
		return charclass.Byte(c), int(c), true
	}
	p.fail(start, "unknown escape sequence '\\%c'", c)
	return set, -1, false
}

func (p *parser) parseBracket() Node {
	open := p.pos
	p.pos++
	negate := false
	if p.peek() == '^' {
		negate = true
		p.pos++
	}
	var set charclass.Class
	first := true
	for {
		if p.eof() {
			p.fail(open, "unmatched '['")
			return nil
		}
		if p.peek() == ']' {
			if first {
				p.fail(open, "empty character class")
				return nil
			}
			p.pos++
			break
		}
		first = false

		lo, cls, ok := p.bracketMember(true)
		if !ok {
			return nil
		}
		if lo < 0 {
			set = set.Union(cls)
			continue
		}
		if p.peek() == '-' && p.pos+1 < len(p.src) && p.src[p.pos+1] != ']' {
			dash := p.pos
			p.pos++
			hi, _, ok := p.bracketMember(false)
			if !ok {
				return nil
			}
			if hi < lo {
				p.fail(dash, "invalid range '%s-%s'", charclass.Quote(byte(lo)), charclass.Quote(byte(hi)))
				return nil
			}
			set = set.Union(charclass.Range(byte(lo), byte(hi)))
			continue
		}
		set = set.Union(charclass.Byte(byte(lo)))
	}
	if negate {
		set = set.Negate()
	}
	return &Class{Set: set}
}

// bracketMember reads one byte or escape inside a bracket expression. b is
// -1 when a shortcut class was read.
func (p *parser) bracketMember(shortcuts bool) (b int, set charclass.Class, ok bool) {
	if p.peek() == '\\' {
		set, single, ok := p.parseEscape(shortcuts)
		return single, set, ok
	}
	c := p.peek()
	p.pos++
	return int(c), charclass.Byte(c), true
}

func (p *parser) parseQuoted() Node {
	open := p.pos
	p.pos++
	var items []Node
	for {
		if p.eof() {
			p.fail(open, "unterminated quoted string")
			return nil
		}
		c := p.peek()
		if c == '"' {
			p.pos++
			break
		}
		if c == '\\' {
			esc := p.pos
			p.pos++
			if p.eof() {
				p.fail(esc, "trailing backslash")
				return nil
			}
			c = p.peek()
			switch c {
			case '"', '\\':
			case 'n':
				c = '\n'
			case 't':
				c = '\t'
			case 'r':
				c = '\r'
			case 'f':
				c = '\f'
			case 'v':
				c = '\v'
			case '0':
				c = 0
			default:
				p.fail(esc, "unknown escape sequence '\\%c' in quoted string", c)
				return nil
			}
		}
		p.pos++
		items = append(items, &Class{Set: charclass.Byte(c)})
	}
	switch len(items) {
	case 0:
		return &Empty{}
	case 1:
		return items[0]
	}
	return &Concat{Items: items}
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}
