package diag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	tests := []struct {
		d    Diagnostic
		want string
	}{
		{
			Diagnostic{Severity: Error, Index: 2, Line: 7, Name: "X", Col: -1, Msg: "duplicate token name"},
			"7: error: token 'X': duplicate token name",
		},
		{
			Diagnostic{Severity: Error, Index: 0, Name: "NUM", Pattern: "[0-9", Col: 0, Msg: "unmatched '['"},
			"error: token 'NUM': unmatched '[' (col 1)",
		},
		{
			Diagnostic{Severity: Error, Index: 1, Col: -1, Msg: "empty token name"},
			"error: definition 2: empty token name",
		},
		{
			Diagnostic{Severity: Warning, Index: -1, Col: -1, Warning: "large-table", Msg: "DFA has 5000 states"},
			"warning: DFA has 5000 states [-Wlarge-table]",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.d.String())
	}
}

func TestList(t *testing.T) {
	var l List
	assert.False(t, l.HasErrors())
	assert.NoError(t, l.Err())

	l = append(l, Diagnostic{Severity: Warning, Index: 0, Name: "A", Col: -1, Msg: "w"})
	assert.False(t, l.HasErrors())
	assert.NoError(t, l.Err())

	l = append(l,
		Diagnostic{Severity: Error, Index: 1, Name: "B", Col: -1, Msg: "e1"},
		Diagnostic{Severity: Error, Index: 2, Name: "C", Col: -1, Msg: "e2"},
	)
	assert.True(t, l.HasErrors())
	assert.Len(t, l.Errors(), 2)
	assert.Len(t, l.Warnings(), 1)

	err := l.Err()
	require.Error(t, err)
	assert.Equal(t, "error: token 'B': e1 (and 1 more errors)", err.Error())
	var le *ListError
	require.True(t, errors.As(err, &le))
	assert.Len(t, le.List, 2)
}
