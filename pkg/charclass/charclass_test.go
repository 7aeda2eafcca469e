package charclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeAndContains(t *testing.T) {
	c := Range('a', 'f')
	assert.True(t, c.Contains('a'))
	assert.True(t, c.Contains('f'))
	assert.False(t, c.Contains('g'))
	assert.Equal(t, 6, c.Len())
	assert.True(t, Range('z', 'a').Empty())
}

func TestNegateDoesNotMutate(t *testing.T) {
	c := Byte('x')
	n := c.Negate()
	assert.True(t, c.Contains('x'))
	assert.False(t, n.Contains('x'))
	assert.Equal(t, 255, n.Len())
	assert.Equal(t, c, n.Negate())
}

func TestUnion(t *testing.T) {
	c := Range('0', '9').Union(Byte('_'))
	assert.Equal(t, 11, c.Len())
	assert.True(t, c.Contains('_'))
	assert.True(t, c.Contains('5'))
}

func TestHighBytes(t *testing.T) {
	c := Byte(255).Union(Byte(128))
	assert.True(t, c.Contains(255))
	assert.True(t, c.Contains(128))
	assert.False(t, c.Contains(127))
	assert.Equal(t, []byte{128, 255}, c.Bytes())
}

func TestShortcuts(t *testing.T) {
	tests := []struct {
		letter byte
		in     string
		out    string
	}{
		{'d', "0189", "a _"},
		{'D', "a _", "0189"},
		{'s', " \t\n\r\f\v", "a0"},
		{'S', "a0", " \t\n"},
		{'w', "azAZ09_", " -."},
		{'W', " -.", "aZ0_"},
		{'l', "azAZ", "0_"},
		{'L', "0_ ", "aZ"},
	}
	for _, tt := range tests {
		c, ok := Shortcut(tt.letter)
		require.True(t, ok, "shortcut %c", tt.letter)
		for i := 0; i < len(tt.in); i++ {
			assert.True(t, c.Contains(tt.in[i]), "\\%c should hold %q", tt.letter, tt.in[i])
		}
		for i := 0; i < len(tt.out); i++ {
			assert.False(t, c.Contains(tt.out[i]), "\\%c should not hold %q", tt.letter, tt.out[i])
		}
	}

	_, ok := Shortcut('q')
	assert.False(t, ok)
}

func TestDot(t *testing.T) {
	d := Dot()
	assert.False(t, d.Contains('\n'))
	assert.True(t, d.Contains('\r'))
	assert.True(t, d.Contains(0))
	assert.Equal(t, 255, d.Len())
}

func TestString(t *testing.T) {
	assert.Equal(t, "a", Byte('a').String())
	assert.Equal(t, `\n`, Byte('\n').String())
	assert.Equal(t, "[0-9]", Range('0', '9').String())
	assert.Equal(t, "[ab]", Of("ab").String())
	assert.Equal(t, `[^\n]`, Dot().String())
	assert.Equal(t, "[]", Class{}.String())
	assert.Equal(t, "[^]", All().String())
}

func TestPartition(t *testing.T) {
	idx, n := Partition([]Class{Range('a', 'z'), Range('0', '9'), Byte('x')})
	// classes: everything else, a-w+y-z, x, 0-9
	assert.Equal(t, 4, n)
	assert.Equal(t, 0, idx[0])
	assert.Equal(t, idx['a'], idx['z'])
	assert.NotEqual(t, idx['a'], idx['x'])
	assert.Equal(t, idx['0'], idx['9'])
	assert.NotEqual(t, idx['0'], idx['a'])
	assert.Equal(t, idx[' '], idx[255])

	_, n = Partition(nil)
	assert.Equal(t, 1, n)
}
