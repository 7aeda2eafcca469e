package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/glex/pkg/nfa"
)

func TestParseStructure(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"abc", "abc"},
		{"a|bc", "(a|bc)"},
		{"(ab)+", "(ab)+"},
		{"a{2,3}", "a{2,3}"},
		{"a{2}", "a{2}"},
		{"a{2,}", "a{2,}"},
		{"a*?", "a*?"},
		{`"|"`, "|"},
		{`"if"`, "if"},
		{`""`, `""`},
		{"[0-9]+", "[0-9]+"},
		{`\d`, "[0-9]"},
		{".", `[^\n]`},
		{"[^a]", "[^a]"},
		{"[a-]", `[\-a]`},
		{`\x41`, "A"},
		{"(if)|(for)", "(if|for)"},
		{"x(y|z)w", "x(y|z)w"},
		{`[\d_]`, "[0-9_]"},
		{`\.`, "."},
	}
	for _, tt := range tests {
		re := Parse(tt.pattern)
		require.Empty(t, re.Notes, "pattern %q", tt.pattern)
		assert.Equal(t, tt.want, re.String(), "pattern %q", tt.pattern)
	}
}

func TestParseNotes(t *testing.T) {
	tests := []struct {
		pattern string
		pos     int
		msg     string
	}{
		{"", 0, "empty pattern"},
		{"(ab", 0, "unmatched '('"},
		{"ab)", 2, "unmatched ')'"},
		{"[ab", 0, "unmatched '['"},
		{"a]", 1, "unmatched ']'"},
		{"[]", 0, "empty character class"},
		{"[z-a]", 2, "invalid range"},
		{`\q`, 0, "unknown escape sequence"},
		{`ab\`, 2, "trailing backslash"},
		{"*a", 0, "nothing to repeat"},
		{"a|", 1, "empty alternation branch"},
		{"|a", 0, "empty alternation branch"},
		{"a||b", 1, "empty alternation branch"},
		{"()", 0, "empty group"},
		{"a{3,2}", 1, "invalid repetition bounds"},
		{"a{256}", 1, "exceeds maximum of 255"},
		{"a{", 1, "missing repetition count"},
		{"a{2", 1, "unterminated repetition"},
		{`"abc`, 0, "unterminated quoted string"},
		{`\xZZ`, 0, "invalid hex escape"},
		{`[a-\d]`, 3, "cannot bound a range"},
		{`"\q"`, 1, "unknown escape sequence"},
		{"((a{200}){200}){200}", 0, "pattern expands"},
	}
	for _, tt := range tests {
		re := Parse(tt.pattern)
		require.Len(t, re.Notes, 1, "pattern %q", tt.pattern)
		assert.Nil(t, re.Root, "pattern %q", tt.pattern)
		assert.False(t, re.Valid())
		assert.Equal(t, tt.pos, re.Notes[0].Pos, "pattern %q", tt.pattern)
		assert.Contains(t, re.Notes[0].Msg, tt.msg, "pattern %q", tt.pattern)
	}
}

func TestParserLimit(t *testing.T) {
	re := Parser{MaxRepeat: 4}.Parse("a{5}")
	require.Len(t, re.Notes, 1)
	assert.Contains(t, re.Notes[0].Msg, "maximum of 4")

	re = Parser{MaxRepeat: 4}.Parse("a{4}")
	assert.True(t, re.Valid())
}

func TestNoteString(t *testing.T) {
	assert.Equal(t, "col 3: unmatched ')'", Note{Pos: 2, Msg: "unmatched ')'"}.String())
}

func TestNullable(t *testing.T) {
	tests := map[string]bool{
		"a*":        true,
		"a+":        false,
		`""`:        true,
		"a|b?":      true,
		"(ab){0,3}": true,
		"(ab){1,3}": false,
		"a?b":       false,
		"(a*)+":     true,
	}
	for pattern, want := range tests {
		re := Parse(pattern)
		require.True(t, re.Valid(), pattern)
		assert.Equal(t, want, re.Nullable(), pattern)
	}
}

func longest(t *testing.T, pattern, input string) int {
	t.Helper()
	re := Parse(pattern)
	require.True(t, re.Valid(), "pattern %q: %v", pattern, re.Notes)
	b := nfa.NewBuilder()
	b.AddToken(re.Compile(b), 0, 1)
	n, _, _ := b.NFA().LongestMatch([]byte(input))
	return n
}

func TestCompileMatches(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    int
	}{
		{"A{2,3}", "AAAA", 3},
		{"A{2,3}", "A", 0},
		{"a{2,}", "aaaaa", 5},
		{"a{2,}", "a", 0},
		{"a{0,2}b", "aab", 3},
		{"a{3}", "aaaa", 3},
		{"(if)|(for)", "for", 3},
		{"[a-zA-Z_][a-zA-Z0-9_]*", "if7 x", 3},
		{`"+"+`, "+++-", 3},
		{"a?b", "b", 1},
		{"a?b", "ab", 2},
		{"c*d", "cccd", 4},
		{"(ab)+", "ababa", 4},
		{"x0[0-9a-fA-F]+", "x0fFz", 4},
		{`(http(s?)"://")?\w+([./]\w+)+`, "https://a.b/c d", 13},
		{".*", "abc\ndef", 3},
		{`/[*]([^*]|([*]+[^*/]))*[*]+/`, "/* x ** y */z", 12},
		{`\"([^"\\]|\\.)*\"`, `"a\"b" rest`, 6},
		{`[^0-9]+`, "ab1", 2},
		{`"::"|"->"`, "->x", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, longest(t, tt.pattern, tt.input), "pattern %q on %q", tt.pattern, tt.input)
	}
}

func TestCompileInvalidPanics(t *testing.T) {
	re := Parse("(")
	assert.Panics(t, func() { re.Compile(nfa.NewBuilder()) })
}
