package unit

import (
	"math/bits"
	"strconv"
	"strings"
)

// BitSet is a growable set of small non-negative integers. The compiler
// uses one per object to record which bindings are deferred or claimed by a
// custom parser.
type BitSet struct {
	words []uint64
}

// NewBitSet returns a set sized for n bits.
func NewBitSet(n int) *BitSet {
	return &BitSet{words: make([]uint64, (n+63)/64)}
}

// Set adds i to the set.
func (b *BitSet) Set(i int) {
	w := i / 64
	for len(b.words) <= w {
		b.words = append(b.words, 0)
	}
	b.words[w] |= 1 << uint(i%64)
}

// Test reports whether i is in the set.
func (b *BitSet) Test(i int) bool {
	if b == nil || i < 0 {
		return false
	}
	w := i / 64
	if w >= len(b.words) {
		return false
	}
	return b.words[w]&(1<<uint(i%64)) != 0
}

// Count returns the number of members.
func (b *BitSet) Count() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether the set has no members.
func (b *BitSet) IsEmpty() bool {
	return b.Count() == 0
}

// Indices returns the members in increasing order.
func (b *BitSet) Indices() []int {
	if b == nil {
		return nil
	}
	var out []int
	for wi, w := range b.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			out = append(out, wi*64+tz)
			w &^= 1 << uint(tz)
		}
	}
	return out
}

func (b *BitSet) String() string {
	idx := b.Indices()
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
