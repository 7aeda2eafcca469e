package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	ws, err := r.Add("WHITESPACE", "[ \t\n]+", true)
	require.NoError(t, err)
	id, err := r.Add("ID", "[a-z]+", false)
	require.NoError(t, err)

	assert.Equal(t, FirstID, ws)
	assert.Equal(t, FirstID+1, id)
	assert.Equal(t, 2, r.Len())

	_, err = r.Add("ID", "x", false)
	assert.Error(t, err)
	assert.Equal(t, 2, r.Len())

	info, ok := r.ByName("WHITESPACE")
	require.True(t, ok)
	assert.True(t, info.Ignore)
	assert.Equal(t, "[ \t\n]+", info.Pattern)

	got, ok := r.ID("ID")
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = r.ByID(FirstID + 2)
	assert.False(t, ok)
	_, ok = r.ByName("NUMBER")
	assert.False(t, ok)
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	_, err := r.Add("NUM", "[0-9]+", false)
	require.NoError(t, err)

	assert.Equal(t, "NUM", r.Name(FirstID))
	assert.Equal(t, "ERROR", r.Name(Error))
	assert.Equal(t, "EOF", r.Name(EOF))
	assert.Equal(t, "'+'", r.Name('+'))
	assert.Equal(t, `'\n'`, r.Name('\n'))
	assert.Equal(t, "token(300)", r.Name(300))
}

func TestTypesIsACopy(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Add("A", "a", false)
	types := r.Types()
	types[0].Name = "B"
	assert.Equal(t, "A", r.Name(FirstID))
}

func TestStream(t *testing.T) {
	s := &Stream{Tokens: []Token{{ID: FirstID, Lexeme: "ab"}}}
	assert.False(t, s.HasErrors())
	s.Errors++
	assert.True(t, s.HasErrors())
	assert.Equal(t, 2, s.Tokens[0].Len())
}
