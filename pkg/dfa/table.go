// Package dfa converts a token NFA into a dense deterministic transition
// table.
package dfa

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

const (
	// Dead is the reject state: non-accepting, every byte loops back to it.
	Dead = 0
	// NoAccept marks a non-accepting state in Table.Accept.
	NoAccept = -1
)

// Table is a compiled automaton. Every state has exactly one successor per
// byte value. A Table is never modified after it is built and may be shared
// between goroutines.
type Table struct {
	Trans  [][256]int32
	Accept []int
	Start  int
}

func (t *Table) NumStates() int { return len(t.Trans) }

func (t *Table) Next(state int, b byte) int { return int(t.Trans[state][b]) }

// AcceptID returns the token accepted in state, or NoAccept.
func (t *Table) AcceptID(state int) int { return t.Accept[state] }

// Validate checks the structural invariants of the table. A failure means
// the builder is broken, not that the input was bad.
func (t *Table) Validate() error {
	n := len(t.Trans)
	if n == 0 {
		return fmt.Errorf("dfa: table has no states")
	}
	if len(t.Accept) != n {
		return fmt.Errorf("dfa: %d accept entries for %d states", len(t.Accept), n)
	}
	if t.Start < 0 || t.Start >= n {
		return fmt.Errorf("dfa: start state %d out of range", t.Start)
	}
	if t.Accept[Dead] != NoAccept {
		return fmt.Errorf("dfa: dead state accepts token %d", t.Accept[Dead])
	}
	for s, row := range t.Trans {
		for b, next := range row {
			if next < 0 || int(next) >= n {
				return fmt.Errorf("dfa: state %d byte %d leads to undefined state %d", s, b, next)
			}
			if s == Dead && next != Dead {
				return fmt.Errorf("dfa: dead state escapes on byte %d", b)
			}
		}
	}
	return nil
}

func (t *Table) mustValidate() {
	if err := t.Validate(); err != nil {
		panic(err)
	}
}

// Fingerprint returns a digest of the table contents. Equal tables have
// equal fingerprints.
func (t *Table) Fingerprint() uint64 {
	h := xxhash.New()
	buf := make([]byte, 0, 256*4)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(t.Start))
	h.Write(buf)
	for s, row := range t.Trans {
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(t.Accept[s])))
		for _, next := range row {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(next))
		}
		h.Write(buf)
	}
	return h.Sum64()
}

// ByteClasses groups bytes whose columns are identical in every state. It
// returns the class of each byte and the number of classes; class indexes
// follow first appearance, so byte 0 is in class 0.
func (t *Table) ByteClasses() (index [256]int, n int) {
	seen := make(map[uint64][]int)
	col := make([]byte, 0, 4*len(t.Trans))
	reps := make([]int, 0, 256)
	for b := 0; b < 256; b++ {
		col = col[:0]
		for _, row := range t.Trans {
			col = binary.LittleEndian.AppendUint32(col, uint32(row[b]))
		}
		key := xxhash.Sum64(col)
		found := -1
		for _, c := range seen[key] {
			if t.sameColumn(reps[c], b) {
				found = c
				break
			}
		}
		if found < 0 {
			found = len(reps)
			reps = append(reps, b)
			seen[key] = append(seen[key], found)
		}
		index[b] = found
	}
	return index, len(reps)
}

func (t *Table) sameColumn(a, b int) bool {
	for _, row := range t.Trans {
		if row[a] != row[b] {
			return false
		}
	}
	return true
}

// Tokens reports which token ids some state accepts.
func (t *Table) Tokens() map[int]bool {
	out := make(map[int]bool)
	for _, id := range t.Accept {
		if id != NoAccept {
			out[id] = true
		}
	}
	return out
}

// Match runs the table from the start state over input and returns the
// length and token of the longest non-empty accepted prefix.
func (t *Table) Match(input []byte) (length, token int, ok bool) {
	state := t.Start
	for i := 0; i < len(input); i++ {
		state = t.Next(state, input[i])
		if state == Dead {
			break
		}
		if id := t.Accept[state]; id != NoAccept {
			length, token, ok = i+1, id, true
		}
	}
	return length, token, ok
}
