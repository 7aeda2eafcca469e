package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/glex/pkg/lexer"
)

func TestExtendDefinitions(t *testing.T) {
	defs := []lexer.Definition{
		{Name: "WS", Pattern: `[ \t]+`, Line: 1},
		{Name: "NUM", Pattern: `[0-9]+`, Line: 2},
	}
	got, err := extendDefinitions(defs, []string{"EQ=a=b"}, []string{"WS"})
	require.NoError(t, err)
	assert.Equal(t, []lexer.Definition{
		{Name: "WS", Pattern: `[ \t]+`, Ignore: true, Line: 1},
		{Name: "NUM", Pattern: `[0-9]+`, Line: 2},
		{Name: "EQ", Pattern: "a=b"},
	}, got)

	_, err = extendDefinitions(nil, []string{"NOPATTERN"}, nil)
	assert.EqualError(t, err, "-DNOPATTERN: want NAME=PATTERN")

	_, err = extendDefinitions(defs, nil, []string{"COMMENT"})
	assert.EqualError(t, err, "--ignore: no token named 'COMMENT'")
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexer.go")
	require.NoError(t, writeOutput(path, []byte("package lexer\n")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package lexer\n", string(data))

	err = writeOutput(filepath.Join(t.TempDir(), "missing", "lexer.go"), nil)
	assert.ErrorContains(t, err, "failed to write")
}
