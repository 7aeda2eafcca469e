package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	var (
		out      string
		target   string
		states   int
		tokens   bool
		includes []string
		defines  []string
	)
	fs := NewFlagSet("glex")
	fs.String(&out, "output", "o", "lexer.go", "Output file", "file")
	fs.String(&target, "target", "t", "go", "Backend", "backend")
	fs.Int(&states, "max-states", "", 65536, "State limit", "n")
	fs.Bool(&tokens, "tokens", "k", false, "Print tokens")
	fs.List(&includes, "include", "I", nil, "Include path", "dir")
	fs.Special(&defines, "D", "Extra definition", "NAME=PATTERN")

	err := fs.Parse([]string{"-o", "out.go", "--target=dot", "--max-states", "12", "-k", "-Ia", "-I", "b", "-DNUM=[0-9]+", "spec.lex", "--", "-x"})
	require.NoError(t, err)

	assert.Equal(t, "out.go", out)
	assert.Equal(t, "dot", target)
	assert.Equal(t, 12, states)
	assert.True(t, tokens)
	assert.Equal(t, []string{"a", "b"}, includes)
	assert.Equal(t, []string{"NUM=[0-9]+"}, defines)
	assert.Equal(t, []string{"spec.lex", "-x"}, fs.Args())
}

func TestParseErrors(t *testing.T) {
	var n int
	fs := NewFlagSet("glex")
	fs.Int(&n, "max-repeat", "", 255, "Bound", "n")

	assert.EqualError(t, fs.Parse([]string{"--nope"}), "unknown flag: --nope")
	assert.EqualError(t, fs.Parse([]string{"-z"}), "unknown shorthand flag: -z")
	assert.EqualError(t, fs.Parse([]string{"--max-repeat"}), "flag needs an argument: --max-repeat")
	assert.ErrorContains(t, fs.Parse([]string{"--max-repeat=lots"}), "invalid integer value 'lots'")
}

func TestAppRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := NewApp("glex")
	app.Synopsis = "[options] <spec.lex> [input ...]"
	app.Description = "Compiles token definitions into a table-driven lexer."
	app.Authors = []string{"xplshn"}
	app.Stdout, app.Stderr = &stdout, &stderr

	var got []string
	app.Action = func(args []string) error {
		got = args
		return nil
	}
	require.NoError(t, app.Run([]string{"a.lex"}))
	assert.Equal(t, []string{"a.lex"}, got)

	app = NewApp("glex")
	app.Synopsis = "[options] <spec.lex> [input ...]"
	app.Stdout, app.Stderr = &stdout, &stderr
	require.Error(t, app.Run([]string{"--bogus"}))
	assert.Contains(t, stderr.String(), "glex: unknown flag: --bogus")
	assert.Contains(t, stderr.String(), "Usage: glex [options] <spec.lex> [input ...]")

	app = NewApp("glex")
	app.Synopsis = "[options] <spec.lex>"
	app.Description = "Compiles token definitions."
	app.Stdout, app.Stderr = &stdout, &stderr
	stdout.Reset()
	require.NoError(t, app.Run([]string{"--help"}))
	assert.Contains(t, stdout.String(), "glex <options> <spec.lex>")
	assert.Contains(t, stdout.String(), "Compiles token definitions.")
	assert.Contains(t, stdout.String(), "--help")
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two three", 8))
	assert.Equal(t, []string{}, wrapText("   ", 8))
}

func TestHelpPageGroups(t *testing.T) {
	var stdout bytes.Buffer
	app := NewApp("glex")
	app.Synopsis = "[options] <spec.lex>"
	app.Authors = []string{"xplshn"}
	app.Since = 2020
	app.Stdout = &stdout

	var out string
	var defines []string
	on, off := true, false
	app.FlagSet.String(&out, "output", "o", "", "Output file", "file")
	app.FlagSet.Special(&defines, "D", "Extra definition", "NAME=PATTERN")
	app.FlagSet.AddFlagGroup("Warning Flags", "Toggle warnings", "warning", "Available Warnings:", []FlagGroupEntry{
		{Name: "shadowed", Prefix: "W", Usage: "Token never produced", Enabled: &on, Disabled: &off},
	})
	require.NoError(t, app.Run([]string{"--help"}))

	page := stdout.String()
	assert.Contains(t, page, "Copyright (c) 2020-")
	assert.Contains(t, page, "-o <file>, --output <file>")
	assert.Contains(t, page, "-W<warning>")
	assert.Contains(t, page, "-Wno-<warning>")
	assert.Regexp(t, `shadowed\s+Token never produced\s+\|x\|`, page)
	assert.NotContains(t, page, "--Wshadowed")
	assert.NotContains(t, page, "--D")
}
