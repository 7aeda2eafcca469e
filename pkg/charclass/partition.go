package charclass

// Partition splits the byte alphabet into equivalence classes: two bytes
// share a class exactly when every class in sets either holds both or
// neither. It returns the class index of each byte and the number of
// classes. Indexes are assigned in order of first appearance, so byte 0
// always lands in class 0.
func Partition(sets []Class) (index [256]int, n int) {
	// signature of each byte, refined one set at a time
	var sig [256]int
	for _, s := range sets {
		remap := make(map[[2]int]int)
		for b := 0; b < 256; b++ {
			in := 0
			if s.Contains(byte(b)) {
				in = 1
			}
			key := [2]int{sig[b], in}
			id, ok := remap[key]
			if !ok {
				id = len(remap)
				remap[key] = id
			}
			sig[b] = id
		}
	}

	seen := make(map[int]int)
	for b := 0; b < 256; b++ {
		id, ok := seen[sig[b]]
		if !ok {
			id = len(seen)
			seen[sig[b]] = id
		}
		index[b] = id
	}
	return index, len(seen)
}
