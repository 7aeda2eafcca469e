// Package diag holds the problems found in a set of token definitions.
// Diagnostics are plain data; rendering is left to the caller.
package diag

import (
	"fmt"
	"strings"
)

type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic describes one problem. Index is the 0-based declaration it
// belongs to, or -1 when it concerns the whole definition set. Col is a
// byte offset into Pattern, or -1.
type Diagnostic struct {
	Severity Severity
	Index    int
	Line     int
	Name     string
	Pattern  string
	Col      int
	// Warning is the -W flag name that controls a warning.
	Warning string
	Msg     string
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	if d.Line > 0 {
		fmt.Fprintf(&sb, "%d: ", d.Line)
	}
	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")
	if d.Name != "" {
		fmt.Fprintf(&sb, "token '%s': ", d.Name)
	} else if d.Index >= 0 {
		fmt.Fprintf(&sb, "definition %d: ", d.Index+1)
	}
	sb.WriteString(d.Msg)
	if d.Col >= 0 && d.Pattern != "" {
		fmt.Fprintf(&sb, " (col %d)", d.Col+1)
	}
	if d.Warning != "" {
		fmt.Fprintf(&sb, " [-W%s]", d.Warning)
	}
	return sb.String()
}

type List []Diagnostic

func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (l List) Errors() List   { return l.filter(Error) }
func (l List) Warnings() List { return l.filter(Warning) }

func (l List) filter(s Severity) List {
	var out List
	for _, d := range l {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// Err returns the list as an error when it holds at least one error.
func (l List) Err() error {
	if !l.HasErrors() {
		return nil
	}
	return &ListError{List: l.Errors()}
}

type ListError struct {
	List List
}

func (e *ListError) Error() string {
	if len(e.List) == 1 {
		return e.List[0].String()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.List[0], len(e.List)-1)
}
