package graph

import "github.com/bits-and-blooms/bitset"

// VisitSet tracks which nodes one traversal has already expanded. It is
// owned by a single search call and never stored on the graph.
type VisitSet struct {
	bits *bitset.BitSet
}

// NewVisitSet returns a set sized for s.
func (s *Store) NewVisitSet() *VisitSet {
	return &VisitSet{bits: bitset.New(uint(len(s.nodes)))}
}

// Visit marks id and reports whether it was unmarked before.
func (v *VisitSet) Visit(id NodeID) bool {
	if v.bits.Test(uint(id)) {
		return false
	}
	v.bits.Set(uint(id))
	return true
}

// Visited reports whether id is marked.
func (v *VisitSet) Visited(id NodeID) bool {
	return v.bits.Test(uint(id))
}

// Count returns the number of marked nodes.
func (v *VisitSet) Count() int {
	return int(v.bits.Count())
}

// Reset clears every mark.
func (v *VisitSet) Reset() {
	v.bits.ClearAll()
}
