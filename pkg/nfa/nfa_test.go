package nfa

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/glex/pkg/charclass"
)

func lit(b *Builder, s string) Fragment {
	var frags []Fragment
	for i := 0; i < len(s); i++ {
		frags = append(frags, b.Literal(charclass.Byte(s[i])))
	}
	return b.Concat(frags...)
}

func TestLongestMatchPrefersLongest(t *testing.T) {
	b := NewBuilder()
	b.AddToken(lit(b, "if"), 0, 100)
	b.AddToken(b.Star(b.Literal(charclass.Range('a', 'z'))), 1, 101)
	n := b.NFA()

	length, acc, ok := n.LongestMatch([]byte("iffy!"))
	require.True(t, ok)
	assert.Equal(t, 4, length)
	assert.Equal(t, 101, acc.Token)

	length, acc, ok = n.LongestMatch([]byte("if("))
	require.True(t, ok)
	assert.Equal(t, 2, length)
	assert.Equal(t, 100, acc.Token, "earlier declaration wins equal-length matches")
}

func TestLongestMatchIgnoresEmptyMatch(t *testing.T) {
	b := NewBuilder()
	b.AddToken(b.Star(b.Literal(charclass.Byte('a'))), 0, 7)
	n := b.NFA()

	_, _, ok := n.LongestMatch([]byte("b"))
	assert.False(t, ok)
}

func TestClosureIsSortedAndComplete(t *testing.T) {
	b := NewBuilder()
	f := b.Optional(lit(b, "ab"))
	b.AddToken(f, 0, 1)
	n := b.NFA()

	set := n.Closure([]int{Start})
	assert.Contains(t, set, f.Start)
	assert.Contains(t, set, f.End)
	assert.IsIncreasing(t, set)

	acc, ok := n.Best(set)
	require.True(t, ok)
	assert.Equal(t, 1, acc.Token)
}

func TestAlternateOfOneIsIdentity(t *testing.T) {
	b := NewBuilder()
	f := b.Literal(charclass.Byte('x'))
	assert.Equal(t, f, b.Alternate(f))
}

func TestWriteDot(t *testing.T) {
	b := NewBuilder()
	b.AddToken(lit(b, "a"), 0, 256)
	n := b.NFA()

	var buf bytes.Buffer
	require.NoError(t, n.WriteDot(&buf, func(int) string { return "A" }))
	out := buf.String()
	assert.Contains(t, out, "digraph nfa {")
	assert.Contains(t, out, "doublecircle")
	assert.Contains(t, out, `label="a"`)
	assert.Contains(t, out, "style=dashed")
}
