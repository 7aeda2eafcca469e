// Package lexfile reads and writes token definition files.
//
// Each non-blank line that does not start with '#' declares one token: a
// name, whitespace, then the pattern running to the end of the line. A '-'
// before the name marks the token as ignored.
//
//	# C-like tokens
//	-WS      [ \t\n]+
//	NUMBER   [0-9]+
//	IDENT    [a-zA-Z_]\w*
package lexfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xplshn/glex/pkg/lexer"
)

// Parse reads definitions in file order. Malformed declarations are kept
// with whatever fields were present so that lexer.Build can report them
// against their line.
func Parse(r io.Reader) ([]lexer.Definition, error) {
	var defs []lexer.Definition
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		def := lexer.Definition{Line: line}
		if rest, ok := strings.CutPrefix(trimmed, "-"); ok {
			def.Ignore = true
			trimmed = strings.TrimLeft(rest, " \t")
		}
		name, pattern := trimmed, ""
		if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
			name, pattern = trimmed[:i], trimmed[i+1:]
		}
		def.Name = name
		def.Pattern = strings.TrimSpace(pattern)
		defs = append(defs, def)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading definitions: %w", err)
	}
	return defs, nil
}

func ParseFile(path string) ([]lexer.Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	defs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// Write emits defs in the format Parse reads, names padded to a common
// column.
func Write(w io.Writer, defs []lexer.Definition) error {
	width := 0
	for _, d := range defs {
		if n := len(d.Name) + boolInt(d.Ignore); n > width {
			width = n
		}
	}
	bw := bufio.NewWriter(w)
	for _, d := range defs {
		name := d.Name
		if d.Ignore {
			name = "-" + name
		}
		fmt.Fprintf(bw, "%-*s %s\n", width, name, d.Pattern)
	}
	return bw.Flush()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
