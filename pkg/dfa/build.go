package dfa

import (
	"encoding/binary"
	"errors"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/xplshn/glex/pkg/charclass"
	"github.com/xplshn/glex/pkg/nfa"
)

// DefaultMaxStates bounds subset construction. The number of subsets is
// finite but can grow exponentially with the number of NFA states.
const DefaultMaxStates = 1 << 16

var ErrTooManyStates = errors.New("dfa: automaton exceeds the state limit")

type Options struct {
	MaxStates int
}

// builder owns the intermediate subsets; they are dropped once the table is
// returned.
type builder struct {
	nfa    *nfa.NFA
	sets   [][]int
	index  map[uint64][]int
	table  *Table
	max    int
	keyBuf []byte
}

// Build runs subset construction on n. Each DFA state stands for the
// epsilon closure of a set of NFA states; it accepts the token with the
// lowest priority among the annotations in that set. State 0 is Dead and
// the start state is 1.
func Build(n *nfa.NFA, opts Options) (*Table, error) {
	if opts.MaxStates <= 0 {
		opts.MaxStates = DefaultMaxStates
	}
	b := &builder{
		nfa:   n,
		index: make(map[uint64][]int),
		table: &Table{},
		max:   opts.MaxStates,
	}

	// Dead state: empty subset, all-zero row.
	b.sets = append(b.sets, nil)
	b.table.Trans = append(b.table.Trans, [256]int32{})
	b.table.Accept = append(b.table.Accept, NoAccept)

	classOf, k := charclass.Partition(n.Classes())
	members := make([][]byte, k)
	for c := 0; c < 256; c++ {
		members[classOf[c]] = append(members[classOf[c]], byte(c))
	}

	start, err := b.intern(n.Closure([]int{nfa.Start}))
	if err != nil {
		return nil, err
	}
	b.table.Start = start

	for s := 1; s < len(b.sets); s++ {
		set := b.sets[s]
		for _, bytes := range members {
			next, err := b.intern(n.Step(set, bytes[0]))
			if err != nil {
				return nil, err
			}
			for _, c := range bytes {
				b.table.Trans[s][c] = int32(next)
			}
		}
	}

	b.table.mustValidate()
	return b.table, nil
}

// intern returns the DFA state for set, creating it if needed. set must be
// sorted.
func (b *builder) intern(set []int) (int, error) {
	if len(set) == 0 {
		return Dead, nil
	}
	b.keyBuf = b.keyBuf[:0]
	for _, s := range set {
		b.keyBuf = binary.LittleEndian.AppendUint32(b.keyBuf, uint32(s))
	}
	key := xxhash.Sum64(b.keyBuf)
	for _, id := range b.index[key] {
		if slices.Equal(b.sets[id], set) {
			return id, nil
		}
	}

	if len(b.sets) >= b.max {
		return 0, ErrTooManyStates
	}
	id := len(b.sets)
	b.sets = append(b.sets, set)
	b.index[key] = append(b.index[key], id)

	accept := NoAccept
	if a, ok := b.nfa.Best(set); ok {
		accept = a.Token
	}
	b.table.Trans = append(b.table.Trans, [256]int32{})
	b.table.Accept = append(b.table.Accept, accept)
	return id, nil
}
