// Package nfa holds the nondeterministic automaton that token patterns are
// compiled into before subset construction. States live in an arena and
// refer to each other by index, so cyclic graphs need no owning pointers.
package nfa

import (
	"slices"

	"github.com/xplshn/glex/pkg/charclass"
)

// Start is the index of the global start state of every NFA built by a
// Builder.
const Start = 0

// Edge is a transition. Epsilon edges consume nothing and ignore Class.
type Edge struct {
	Epsilon bool
	Class   charclass.Class
	To      int
}

// Accept marks a state as the end of a token. Priority is the token's
// declaration order; a lower value wins ties.
type Accept struct {
	Priority int
	Token    int
}

type State struct {
	Edges   []Edge
	Accepts []Accept
}

// Fragment is a partially built sub-automaton with one entry and one exit.
type Fragment struct {
	Start, End int
}

type NFA struct {
	States []State
}

// Builder grows an NFA. It starts with the global start state at index 0.
type Builder struct {
	nfa NFA
}

func NewBuilder() *Builder {
	b := &Builder{}
	b.NewState()
	return b
}

func (b *Builder) NewState() int {
	b.nfa.States = append(b.nfa.States, State{})
	return len(b.nfa.States) - 1
}

func (b *Builder) Epsilon(from, to int) {
	b.nfa.States[from].Edges = append(b.nfa.States[from].Edges, Edge{Epsilon: true, To: to})
}

func (b *Builder) Edge(from int, c charclass.Class, to int) {
	b.nfa.States[from].Edges = append(b.nfa.States[from].Edges, Edge{Class: c, To: to})
}

// Literal builds a fragment consuming one byte of c.
func (b *Builder) Literal(c charclass.Class) Fragment {
	f := Fragment{Start: b.NewState(), End: b.NewState()}
	b.Edge(f.Start, c, f.End)
	return f
}

// Empty builds a fragment matching the empty string.
func (b *Builder) Empty() Fragment {
	f := Fragment{Start: b.NewState(), End: b.NewState()}
	b.Epsilon(f.Start, f.End)
	return f
}

// Concat joins fragments in sequence. With no fragments it matches the
// empty string.
func (b *Builder) Concat(frags ...Fragment) Fragment {
	if len(frags) == 0 {
		return b.Empty()
	}
	for i := 1; i < len(frags); i++ {
		b.Epsilon(frags[i-1].End, frags[i].Start)
	}
	return Fragment{Start: frags[0].Start, End: frags[len(frags)-1].End}
}

// Alternate builds a choice between fragments.
func (b *Builder) Alternate(frags ...Fragment) Fragment {
	if len(frags) == 1 {
		return frags[0]
	}
	f := Fragment{Start: b.NewState(), End: b.NewState()}
	for _, sub := range frags {
		b.Epsilon(f.Start, sub.Start)
		b.Epsilon(sub.End, f.End)
	}
	return f
}

// Star builds zero or more repetitions of sub.
func (b *Builder) Star(sub Fragment) Fragment {
	f := Fragment{Start: b.NewState(), End: b.NewState()}
	b.Epsilon(f.Start, sub.Start)
	b.Epsilon(f.Start, f.End)
	b.Epsilon(sub.End, sub.Start)
	b.Epsilon(sub.End, f.End)
	return f
}

// Optional builds zero or one occurrence of sub.
func (b *Builder) Optional(sub Fragment) Fragment {
	f := Fragment{Start: b.NewState(), End: b.NewState()}
	b.Epsilon(f.Start, sub.Start)
	b.Epsilon(f.Start, f.End)
	b.Epsilon(sub.End, f.End)
	return f
}

// AddToken merges a token fragment into the automaton: the global start
// gains an epsilon edge to the fragment and the fragment's exit is marked
// as accepting token with the given priority.
func (b *Builder) AddToken(f Fragment, priority, token int) {
	b.Epsilon(Start, f.Start)
	st := &b.nfa.States[f.End]
	st.Accepts = append(st.Accepts, Accept{Priority: priority, Token: token})
}

// NFA returns the automaton built so far. The builder must not be used
// afterwards.
func (b *Builder) NFA() *NFA {
	n := b.nfa
	b.nfa = NFA{}
	return &n
}

func (n *NFA) Len() int { return len(n.States) }

// Closure extends set (sorted state indexes) with every state reachable
// through epsilon edges and returns it sorted.
func (n *NFA) Closure(set []int) []int {
	seen := make([]bool, len(n.States))
	stack := make([]int, 0, len(set))
	out := make([]int, 0, len(set))
	for _, s := range set {
		if !seen[s] {
			seen[s] = true
			stack = append(stack, s)
			out = append(out, s)
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range n.States[s].Edges {
			if e.Epsilon && !seen[e.To] {
				seen[e.To] = true
				stack = append(stack, e.To)
				out = append(out, e.To)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Step returns the epsilon closure of the states reachable from set by
// consuming c.
func (n *NFA) Step(set []int, c byte) []int {
	var next []int
	for _, s := range set {
		for _, e := range n.States[s].Edges {
			if !e.Epsilon && e.Class.Contains(c) {
				next = append(next, e.To)
			}
		}
	}
	return n.Closure(next)
}

// Best returns the winning accept annotation among the states of set: the
// one with the lowest priority.
func (n *NFA) Best(set []int) (Accept, bool) {
	var best Accept
	found := false
	for _, s := range set {
		for _, a := range n.States[s].Accepts {
			if !found || a.Priority < best.Priority {
				best, found = a, true
			}
		}
	}
	return best, found
}

// Classes returns the labels of every byte-consuming edge.
func (n *NFA) Classes() []charclass.Class {
	var out []charclass.Class
	for _, st := range n.States {
		for _, e := range st.Edges {
			if !e.Epsilon {
				out = append(out, e.Class)
			}
		}
	}
	return out
}

// LongestMatch simulates the automaton on a prefix of input and reports
// the length of the longest non-empty accepted prefix with its winning
// annotation. It is slow and exists to cross-check compiled tables.
func (n *NFA) LongestMatch(input []byte) (length int, acc Accept, ok bool) {
	set := n.Closure([]int{Start})
	for i := 0; i < len(input) && len(set) > 0; i++ {
		set = n.Step(set, input[i])
		if a, found := n.Best(set); found {
			length, acc, ok = i+1, a, true
		}
	}
	return length, acc, ok
}
