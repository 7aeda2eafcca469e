package dfa

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/xplshn/glex/pkg/charclass"
)

// WriteDot renders the table as a Graphviz digraph. The dead state and the
// edges into it are omitted.
func (t *Table) WriteDot(w io.Writer, name func(token int) string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph dfa {")
	fmt.Fprintln(bw, "  rankdir=LR;")
	fmt.Fprintln(bw, "  node [shape=circle];")
	fmt.Fprintf(bw, "  start [shape=point];\n  start -> %d;\n", t.Start)
	for s := range t.Trans {
		if s == Dead {
			continue
		}
		if id := t.Accept[s]; id != NoAccept {
			fmt.Fprintf(bw, "  %d [shape=doublecircle,label=%q];\n", s, strconv.Itoa(s)+"\n"+name(id))
		}
		var targets []int
		edges := make(map[int]charclass.Class)
		for b := 0; b < 256; b++ {
			next := int(t.Trans[s][b])
			if next == Dead {
				continue
			}
			if _, ok := edges[next]; !ok {
				targets = append(targets, next)
			}
			edges[next] = edges[next].Union(charclass.Byte(byte(b)))
		}
		for _, next := range targets {
			fmt.Fprintf(bw, "  %d -> %d [label=%q];\n", s, next, edges[next].String())
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}
