package regex

import (
	"fmt"

	"github.com/xplshn/glex/pkg/nfa"
)

// Compile adds the automaton for r to b and returns its fragment. Bounded
// repetition is unrolled: {n} becomes n copies, {m,n} m copies followed by
// n-m optional copies, and {n,} n copies followed by a starred copy.
//
// Compile panics if r carries notes; callers must reject invalid patterns
// first.
func (r *Regex) Compile(b *nfa.Builder) nfa.Fragment {
	if !r.Valid() || r.Root == nil {
		panic(fmt.Sprintf("regex: Compile called on invalid pattern %q", r.Pattern))
	}
	return compile(b, r.Root)
}

func compile(b *nfa.Builder, n Node) nfa.Fragment {
	switch n := n.(type) {
	case *Class:
		return b.Literal(n.Set)
	case *Empty:
		return b.Empty()
	case *Concat:
		frags := make([]nfa.Fragment, len(n.Items))
		for i, it := range n.Items {
			frags[i] = compile(b, it)
		}
		return b.Concat(frags...)
	case *Alternate:
		frags := make([]nfa.Fragment, len(n.Items))
		for i, it := range n.Items {
			frags[i] = compile(b, it)
		}
		return b.Alternate(frags...)
	case *Repeat:
		var frags []nfa.Fragment
		for i := 0; i < n.Min; i++ {
			frags = append(frags, compile(b, n.Sub))
		}
		if n.Max == Unbounded {
			frags = append(frags, b.Star(compile(b, n.Sub)))
		} else {
			for i := n.Min; i < n.Max; i++ {
				frags = append(frags, b.Optional(compile(b, n.Sub)))
			}
		}
		return b.Concat(frags...)
	}
	panic(fmt.Sprintf("regex: unknown node %T", n))
}
