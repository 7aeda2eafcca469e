package lexfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/glex/pkg/lexer"
)

const sample = `# arithmetic
-WS	[ \t]+

NUMBER  [0-9]+
OP      "+"|"-"|"*"|"/"
  -COMMENT   "//".*
EMPTY
`

func TestParse(t *testing.T) {
	defs, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	want := []lexer.Definition{
		{Name: "WS", Pattern: `[ \t]+`, Ignore: true, Line: 2},
		{Name: "NUMBER", Pattern: "[0-9]+", Line: 4},
		{Name: "OP", Pattern: `"+"|"-"|"*"|"/"`, Line: 5},
		{Name: "COMMENT", Pattern: `"//".*`, Ignore: true, Line: 6},
		{Name: "EMPTY", Line: 7},
	}
	if diff := cmp.Diff(want, defs); diff != "" {
		t.Errorf("definitions mismatch (-want +got):\n%s", diff)
	}

	// The missing pattern is reported by the builder against its line.
	_, ds := lexer.Build(defs, nil)
	require.True(t, ds.HasErrors())
	assert.Equal(t, 7, ds.Errors()[0].Line)
	assert.Equal(t, "empty pattern", ds.Errors()[0].Msg)
}

func TestWriteRoundTrip(t *testing.T) {
	defs := []lexer.Definition{
		{Name: "WS", Pattern: `[ \t\n]+`, Ignore: true},
		{Name: "IDENT", Pattern: `[a-zA-Z_]\w*`},
		{Name: "STR", Pattern: `"\""[^"]*"\""`},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, defs))
	assert.Equal(t, "-WS   [ \\t\\n]+\nIDENT [a-zA-Z_]\\w*\nSTR   \"\\\"\"[^\"]*\"\\\"\"\n", buf.String())

	back, err := Parse(&buf)
	require.NoError(t, err)
	for i := range back {
		back[i].Line = 0
	}
	if diff := cmp.Diff(defs, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calc.lex")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	defs, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, defs, 5)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.lex"))
	assert.Error(t, err)
}
