package dfa

// Minimize returns an equivalent table with the fewest states, computed by
// Hopcroft's partition refinement over the byte equivalence classes. States
// accepting different tokens are never merged. Dead stays state 0 and the
// remaining states are numbered in breadth-first order from the start state.
func (t *Table) Minimize() *Table {
	classOf, k := t.ByteClasses()
	reps := make([]int, k)
	for b := 255; b >= 0; b-- {
		reps[classOf[b]] = b
	}
	n := t.NumStates()

	// Predecessors per class: in[c][off[c][s]:off[c][s+1]] are the states
	// whose transition on class c leads to s.
	off := make([][]int32, k)
	in := make([][]int32, k)
	for c, b := range reps {
		o := make([]int32, n+1)
		for s := 0; s < n; s++ {
			o[t.Trans[s][b]+1]++
		}
		for s := 0; s < n; s++ {
			o[s+1] += o[s]
		}
		fill := append([]int32(nil), o[:n]...)
		l := make([]int32, n)
		for s := 0; s < n; s++ {
			d := t.Trans[s][b]
			l[fill[d]] = int32(s)
			fill[d]++
		}
		off[c], in[c] = o, l
	}

	p := newPartition(t.Accept)
	work := make([]int, 0, len(p.start))
	inWork := make([]bool, len(p.start))
	for blk := range p.start {
		work = append(work, blk)
		inWork[blk] = true
	}
	push := func(blk int) {
		for len(inWork) <= blk {
			inWork = append(inWork, false)
		}
		if !inWork[blk] {
			inWork[blk] = true
			work = append(work, blk)
		}
	}

	var splitter []int
	var touched []int
	for len(work) > 0 {
		a := work[len(work)-1]
		work = work[:len(work)-1]
		inWork[a] = false
		splitter = append(splitter[:0], p.members(a)...)

		for c := 0; c < k; c++ {
			touched = touched[:0]
			for _, s := range splitter {
				for _, q := range in[c][off[c][s]:off[c][s+1]] {
					if blk := p.mark(int(q)); blk >= 0 {
						touched = append(touched, blk)
					}
				}
			}
			for _, blk := range touched {
				nb, ok := p.split(blk)
				if !ok {
					continue
				}
				if blk < len(inWork) && inWork[blk] || p.size(nb) <= p.size(blk) {
					push(nb)
				} else {
					push(blk)
				}
			}
		}
	}
	block, count := p.block, len(p.start)

	// Renumber blocks: dead first, then breadth-first from start.
	rep := make([]int, count)
	for s := n - 1; s >= 0; s-- {
		rep[block[s]] = s
	}
	order := make([]int, count)
	for i := range order {
		order[i] = -1
	}
	order[block[Dead]] = Dead
	queue := []int{block[Dead]}
	if order[block[t.Start]] < 0 {
		order[block[t.Start]] = 1
		queue = append(queue, block[t.Start])
	}
	nextID := len(queue)
	for i := 0; i < len(queue); i++ {
		s := rep[queue[i]]
		for b := 0; b < 256; b++ {
			tb := block[t.Trans[s][b]]
			if order[tb] < 0 {
				order[tb] = nextID
				nextID++
				queue = append(queue, tb)
			}
		}
	}

	out := &Table{
		Trans:  make([][256]int32, nextID),
		Accept: make([]int, nextID),
		Start:  order[block[t.Start]],
	}
	for _, blk := range queue {
		s := rep[blk]
		id := order[blk]
		out.Accept[id] = t.Accept[s]
		for b := 0; b < 256; b++ {
			out.Trans[id][b] = int32(order[block[t.Trans[s][b]]])
		}
	}
	out.mustValidate()
	return out
}

// partition keeps the states of each block contiguous in elems so that a
// block can be split in time proportional to its marked states.
type partition struct {
	elems  []int
	loc    []int // position of each state in elems
	block  []int
	start  []int
	end    []int
	marked []int
}

// newPartition groups states by accept id, blocks numbered in order of
// first appearance.
func newPartition(accept []int) *partition {
	n := len(accept)
	p := &partition{
		elems: make([]int, n),
		loc:   make([]int, n),
		block: make([]int, n),
	}
	ids := make(map[int]int)
	var size []int
	for s, a := range accept {
		id, ok := ids[a]
		if !ok {
			id = len(size)
			ids[a] = id
			size = append(size, 0)
		}
		p.block[s] = id
		size[id]++
	}
	pos := 0
	for _, sz := range size {
		p.start = append(p.start, pos)
		p.end = append(p.end, pos)
		pos += sz
	}
	p.marked = make([]int, len(size))
	for s := range accept {
		blk := p.block[s]
		p.elems[p.end[blk]] = s
		p.loc[s] = p.end[blk]
		p.end[blk]++
	}
	return p
}

func (p *partition) members(blk int) []int { return p.elems[p.start[blk]:p.end[blk]] }

func (p *partition) size(blk int) int { return p.end[blk] - p.start[blk] }

// mark moves s to the marked prefix of its block. It returns the block when
// s is the first state marked in it, and -1 otherwise.
func (p *partition) mark(s int) int {
	blk := p.block[s]
	i, j := p.loc[s], p.start[blk]+p.marked[blk]
	p.elems[i], p.elems[j] = p.elems[j], p.elems[i]
	p.loc[p.elems[i]], p.loc[p.elems[j]] = i, j
	p.marked[blk]++
	if p.marked[blk] == 1 {
		return blk
	}
	return -1
}

// split moves the marked states of blk into a new block and clears the
// marks. It reports false when every state or none was marked.
func (p *partition) split(blk int) (int, bool) {
	m := p.marked[blk]
	p.marked[blk] = 0
	if m == 0 || m == p.size(blk) {
		return 0, false
	}
	nb := len(p.start)
	p.start = append(p.start, p.start[blk])
	p.end = append(p.end, p.start[blk]+m)
	p.marked = append(p.marked, 0)
	p.start[blk] += m
	for _, s := range p.members(nb) {
		p.block[s] = nb
	}
	return nb, true
}
