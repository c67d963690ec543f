package cache

import "log"

// A ReplacementPolicy tracks the recency of the ways of one set.
type ReplacementPolicy interface {
	TouchLRU(way int)
	TouchMRU(way int)
	LRUWay() int
	MRUWay() int
	Reset()
}

// A ReplacementFactory creates the policy state of one set.
type ReplacementFactory func(ways int) ReplacementPolicy

// NewTreePLRUPolicy is a ReplacementFactory for TreePLRU.
func NewTreePLRUPolicy(ways int) ReplacementPolicy {
	return NewTreePLRU(ways)
}

// TreePLRU approximates LRU with a binary tree of ways-1 bits. Node 1 is the
// root and node i has children 2i and 2i+1; leaves ways..2*ways-1 stand for
// the ways. Each bit points at the child on the less recently used side.
type TreePLRU struct {
	ways   int
	levels int
	bits   []uint8
}

// NewTreePLRU creates a tree for a power-of-two number of ways.
func NewTreePLRU(ways int) *TreePLRU {
	if ways <= 0 || !IsPowerOfTwo(uint64(ways)) {
		log.Panicf("tree PLRU needs a power-of-two number of ways, got %d",
			ways)
	}

	return &TreePLRU{
		ways:   ways,
		levels: int(log2(uint64(ways))),
		bits:   make([]uint8, ways),
	}
}

// TouchMRU marks the way as the most recently used one.
func (p *TreePLRU) TouchMRU(way int) {
	p.walkUp(way, 1)
}

// TouchLRU marks the way as the least recently used one.
func (p *TreePLRU) TouchLRU(way int) {
	p.walkUp(way, 0)
}

// walkUp updates the nodes on the path from the way's leaf to the root. Each
// parent records the side of the child it came from, complemented when flip
// is 1.
func (p *TreePLRU) walkUp(way int, flip uint8) {
	p.wayMustBeValid(way)

	idx := way + p.ways
	for i := 0; i < p.levels; i++ {
		side := uint8(idx & 1)
		idx >>= 1
		p.bits[idx] = side ^ flip
	}
}

// LRUWay returns the way the tree points at. It does not change the tree.
func (p *TreePLRU) LRUWay() int {
	return p.walkDown(0)
}

// MRUWay returns the way the tree points away from. It does not change the
// tree.
func (p *TreePLRU) MRUWay() int {
	return p.walkDown(1)
}

func (p *TreePLRU) walkDown(flip uint8) int {
	idx := 1
	for i := 0; i < p.levels; i++ {
		idx = 2*idx + int(p.bits[idx]^flip)
	}

	return idx - p.ways
}

// Reset clears the recency state.
func (p *TreePLRU) Reset() {
	clear(p.bits)
}

func (p *TreePLRU) wayMustBeValid(way int) {
	if way < 0 || way >= p.ways {
		log.Panicf("way %d out of range [0, %d)", way, p.ways)
	}
}
