package cache

// A CacheSet is a fixed group of ways that an address can be stored in. Each
// set owns its own replacement state.
type CacheSet struct {
	lines  []*CacheLine
	policy ReplacementPolicy
}

// NewCacheSet creates a set of invalid lines.
func NewCacheSet(
	ways int,
	lineSize uint64,
	policy ReplacementPolicy,
) *CacheSet {
	s := &CacheSet{
		lines:  make([]*CacheLine, ways),
		policy: policy,
	}

	for i := range s.lines {
		s.lines[i] = NewCacheLine(lineSize)
	}

	return s
}

// Ways returns the associativity of the set.
func (s *CacheSet) Ways() int {
	return len(s.lines)
}

// Line returns the line stored in a way.
func (s *CacheSet) Line(way int) *CacheLine {
	return s.lines[way]
}

// Lookup returns the way of the valid line with the tag.
func (s *CacheSet) Lookup(tag uint64) (way int, ok bool) {
	for i, l := range s.lines {
		if l.Valid() && l.Tag == tag {
			return i, true
		}
	}

	return 0, false
}

// VictimForReplacement returns the first invalid way, or the LRU way if the
// set is full.
func (s *CacheSet) VictimForReplacement() int {
	for i, l := range s.lines {
		if !l.Valid() {
			return i
		}
	}

	return s.policy.LRUWay()
}

// TouchMRU records an access to the way.
func (s *CacheSet) TouchMRU(way int) {
	s.policy.TouchMRU(way)
}

// TouchLRU makes the way the next replacement candidate.
func (s *CacheSet) TouchLRU(way int) {
	s.policy.TouchLRU(way)
}

// LRUWay returns the least recently used way.
func (s *CacheSet) LRUWay() int {
	return s.policy.LRUWay()
}

// MRUWay returns the most recently used way.
func (s *CacheSet) MRUWay() int {
	return s.policy.MRUWay()
}

// Reset invalidates all the lines and clears the replacement state.
func (s *CacheSet) Reset() {
	for _, l := range s.lines {
		l.Unset()
	}

	s.policy.Reset()
}
