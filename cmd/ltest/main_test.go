package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestdataMatchesGolden(t *testing.T) {
	files, err := expandGlobPatterns(filepath.Join("..", "..", "testdata", "*.lex"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			res := testFile(file, TestSuiteResults{})
			assert.Equal(t, "PASS", res.Status, "%s\n%s", res.Message, res.Diff)
		})
	}
}

func TestMismatchFails(t *testing.T) {
	dir := t.TempDir()
	lexFile := filepath.Join(dir, "num.lex")
	require.NoError(t, os.WriteFile(lexFile, []byte("NUM [0-9]+\n-WS \" \"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "num.in"), []byte("1 22"), 0644))
	golden := `{"tokens":[{"name":"NUM","lexeme":"1","line":1,"column":1}],"errors":0}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".num.in.json"), []byte(golden), 0644))

	res := testFile(lexFile, TestSuiteResults{})
	assert.Equal(t, "FAIL", res.Status)
	assert.Contains(t, res.Diff, `"22"`)
	assert.Len(t, res.Result.Inputs["num.in"].Tokens, 2)
}

func TestBrokenDefinitionsFail(t *testing.T) {
	dir := t.TempDir()
	lexFile := filepath.Join(dir, "bad.lex")
	require.NoError(t, os.WriteFile(lexFile, []byte("A [a-\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.in"), []byte("a"), 0644))

	res := testFile(lexFile, TestSuiteResults{})
	assert.Equal(t, "FAIL", res.Status)
	assert.Equal(t, "Definition file does not build", res.Message)
	assert.NotEmpty(t, res.Diff)
}

func TestInputsFor(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.lex", "c.in", "c.b.in", "c.a.in", "d.in"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	got := inputsFor(filepath.Join(dir, "c.lex"))
	want := []string{filepath.Join(dir, "c.in"), filepath.Join(dir, "c.a.in"), filepath.Join(dir, "c.b.in")}
	assert.Equal(t, want, got)
}

func TestHashCaseChangesWithInputs(t *testing.T) {
	dir := t.TempDir()
	lexFile := filepath.Join(dir, "h.lex")
	in := filepath.Join(dir, "h.in")
	require.NoError(t, os.WriteFile(lexFile, []byte("A a\n"), 0644))
	require.NoError(t, os.WriteFile(in, []byte("a"), 0644))
	h1, err := hashCase(lexFile, []string{in})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(in, []byte("aa"), 0644))
	h2, err := hashCase(lexFile, []string{in})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
