package regex

import (
	"strconv"
	"strings"

	"github.com/xplshn/glex/pkg/charclass"
)

// Unbounded is the Max of a repetition with no upper limit.
const Unbounded = -1

// Node is an element of a parsed pattern.
type Node interface {
	String() string
	nullable() bool
	// size estimates the number of NFA states the node expands to, capped
	// at limit.
	size(limit int) int
}

// Class consumes one byte of Set.
type Class struct{ Set charclass.Class }

// Concat matches Items in sequence.
type Concat struct{ Items []Node }

// Alternate matches any one of Items.
type Alternate struct{ Items []Node }

// Repeat matches Sub between Min and Max times; Max may be Unbounded.
type Repeat struct {
	Sub      Node
	Min, Max int
}

// Empty matches the empty string. It only arises from an empty quoted
// literal.
type Empty struct{}

func (n *Class) String() string { return n.Set.String() }

func (n *Concat) String() string {
	var sb strings.Builder
	for _, it := range n.Items {
		sb.WriteString(it.String())
	}
	return sb.String()
}

func (n *Alternate) String() string {
	parts := make([]string, len(n.Items))
	for i, it := range n.Items {
		parts[i] = it.String()
	}
	return "(" + strings.Join(parts, "|") + ")"
}

func (n *Repeat) String() string {
	sub := n.Sub.String()
	if _, ok := n.Sub.(*Concat); ok {
		sub = "(" + sub + ")"
	}
	switch {
	case n.Min == 0 && n.Max == 1:
		return sub + "?"
	case n.Min == 0 && n.Max == Unbounded:
		return sub + "*"
	case n.Min == 1 && n.Max == Unbounded:
		return sub + "+"
	case n.Max == Unbounded:
		return sub + "{" + strconv.Itoa(n.Min) + ",}"
	case n.Min == n.Max:
		return sub + "{" + strconv.Itoa(n.Min) + "}"
	}
	return sub + "{" + strconv.Itoa(n.Min) + "," + strconv.Itoa(n.Max) + "}"
}

func (n *Empty) String() string { return `""` }

func (n *Class) nullable() bool { return false }
func (n *Empty) nullable() bool { return true }

func (n *Concat) nullable() bool {
	for _, it := range n.Items {
		if !it.nullable() {
			return false
		}
	}
	return true
}

func (n *Alternate) nullable() bool {
	for _, it := range n.Items {
		if it.nullable() {
			return true
		}
	}
	return false
}

func (n *Repeat) nullable() bool { return n.Min == 0 || n.Sub.nullable() }

func (n *Class) size(int) int { return 2 }
func (n *Empty) size(int) int { return 2 }

func (n *Concat) size(limit int) int {
	total := 0
	for _, it := range n.Items {
		total = min(total+it.size(limit), limit)
	}
	return total
}

func (n *Alternate) size(limit int) int {
	total := 2
	for _, it := range n.Items {
		total = min(total+it.size(limit), limit)
	}
	return total
}

func (n *Repeat) size(limit int) int {
	copies := n.Max
	if copies == Unbounded {
		copies = n.Min + 1
	}
	sub := n.Sub.size(limit)
	if copies > 0 && sub > limit/copies {
		return limit
	}
	return min(copies*(sub+2), limit)
}
