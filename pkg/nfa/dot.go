package nfa

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteDot renders the automaton as a Graphviz digraph. Accepting states
// are drawn as double circles labelled with their annotations.
func (n *NFA) WriteDot(w io.Writer, name func(token int) string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph nfa {")
	fmt.Fprintln(bw, "  rankdir=LR;")
	fmt.Fprintln(bw, "  node [shape=circle];")
	for i, st := range n.States {
		if len(st.Accepts) > 0 {
			label := strconv.Itoa(i)
			for _, a := range st.Accepts {
				label += "\n" + name(a.Token)
			}
			fmt.Fprintf(bw, "  %d [shape=doublecircle,label=%q];\n", i, label)
		}
		for _, e := range st.Edges {
			if e.Epsilon {
				fmt.Fprintf(bw, "  %d -> %d [style=dashed];\n", i, e.To)
				continue
			}
			fmt.Fprintf(bw, "  %d -> %d [label=%q];\n", i, e.To, e.Class.String())
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}
