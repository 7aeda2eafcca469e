package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/xplshn/glex/pkg/diag"
	"github.com/xplshn/glex/pkg/token"
)

const (
	cReset  = "\033[0m"
	cRed    = "\033[31m"
	cGreen  = "\033[32m"
	cYellow = "\033[33m"
)

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []byte
}

// Reporter prints diagnostics in file:line:col form with the offending line
// and a caret under it.
type Reporter struct {
	w     io.Writer
	color bool
	// Errors and Warnings count what has been printed.
	Errors   int
	Warnings int
}

// NewReporter writes to w. Colors are used only when w is a terminal.
func NewReporter(w io.Writer) *Reporter {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Reporter{w: w, color: color}
}

func (r *Reporter) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + cReset
}

// Diagnostics prints the diagnostics of a definition file. Lines of the
// file are taken from src; diagnostics without a line are reported against
// the file as a whole.
func (r *Reporter) Diagnostics(src SourceFileRecord, ds diag.List) {
	for _, d := range ds {
		label := r.paint(cRed, "error:")
		if d.Severity == diag.Warning {
			label = r.paint(cYellow, "warning:")
			r.Warnings++
		} else {
			r.Errors++
		}

		msg := d.Msg
		if d.Name != "" {
			msg = fmt.Sprintf("token '%s': %s", d.Name, msg)
		}
		if d.Warning != "" {
			msg += " [-W" + d.Warning + "]"
		}
		if d.Line <= 0 {
			fmt.Fprintf(r.w, "%s: %s %s\n", src.Name, label, msg)
			continue
		}

		line := lineAt(src.Content, d.Line)
		col, length := 1, len(line)
		if d.Col >= 0 {
			pattern := strings.ReplaceAll(d.Pattern, "\t", " ")
			if i := strings.LastIndex(line, pattern); i >= 0 && pattern != "" {
				col, length = i+d.Col+1, 1
			}
		}
		fmt.Fprintf(r.w, "%s:%d:%d: %s %s\n", src.Name, d.Line, col, label, msg)
		r.caret(line, col, length)
	}
}

// LexicalErrors prints one line per error token in s.
func (r *Reporter) LexicalErrors(src SourceFileRecord, s *token.Stream) {
	for _, tok := range s.Tokens {
		if tok.ID != token.Error {
			continue
		}
		r.Errors++
		fmt.Fprintf(r.w, "%s:%d:%d: %s unrecognized byte %q\n", src.Name, tok.Line, tok.Column, r.paint(cRed, "error:"), tok.Lexeme)
		r.caret(lineAt(src.Content, tok.Line), tok.Column, tok.Len())
	}
}

func (r *Reporter) caret(line string, col, length int) {
	if line == "" || col < 1 {
		return
	}
	fmt.Fprintf(r.w, "  %s\n", line)
	marker := "^"
	if length > 1 {
		marker += strings.Repeat("~", length-1)
	}
	fmt.Fprintf(r.w, "  %s%s\n", strings.Repeat(" ", col-1), r.paint(cGreen, marker))
}

// Info prints a progress line in the "name: info: ..." form.
func (r *Reporter) Info(name, format string, args ...any) {
	fmt.Fprintf(r.w, "%s: info: %s\n", name, fmt.Sprintf(format, args...))
}

// Fatal prints an error without source position and exits.
func Fatal(name, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s: %s ", name, NewReporter(os.Stderr).paint(cRed, "error:"))
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

// lineAt returns line n (1-based) of content without its newline. Tabs are
// replaced by spaces so that the caret lines up.
func lineAt(content []byte, n int) string {
	start := 0
	for i := 0; i < len(content) && n > 1; i++ {
		if content[i] == '\n' {
			n--
			start = i + 1
		}
	}
	if n > 1 {
		return ""
	}
	end := start
	for end < len(content) && content[end] != '\n' {
		end++
	}
	return strings.ReplaceAll(strings.TrimRight(string(content[start:end]), "\r"), "\t", " ")
}
