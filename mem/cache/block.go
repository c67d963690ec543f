package cache

// A LineRef names one line of a CacheBlock by set and way.
type LineRef struct {
	Set int
	Way int
}

// A CacheBlock is the storage array of one cache. It is addressed only
// through its AGU.
type CacheBlock struct {
	geometry Geometry
	agu      AGU
	sets     []*CacheSet
}

// NewCacheBlock creates the array. Every set gets its own policy from
// newPolicy.
func NewCacheBlock(
	g Geometry,
	agu AGU,
	newPolicy ReplacementFactory,
) *CacheBlock {
	b := &CacheBlock{
		geometry: g,
		agu:      agu,
		sets:     make([]*CacheSet, g.NumSets()),
	}

	for i := range b.sets {
		b.sets[i] = NewCacheSet(
			int(g.Ways), g.LineSize, newPolicy(int(g.Ways)))
	}

	return b
}

// Geometry returns the shape of the array.
func (b *CacheBlock) Geometry() Geometry {
	return b.geometry
}

// AGU returns the decoder of the array.
func (b *CacheBlock) AGU() AGU {
	return b.agu
}

// NumSets returns the number of sets.
func (b *CacheBlock) NumSets() int {
	return len(b.sets)
}

// GetSet returns the set that the address maps to.
func (b *CacheBlock) GetSet(addr uint64) *CacheSet {
	return b.sets[b.agu.Index(addr)]
}

// Set returns a set by index.
func (b *CacheBlock) Set(index int) *CacheSet {
	return b.sets[index]
}

// GetLine finds the valid line that holds the address.
func (b *CacheBlock) GetLine(addr uint64) (LineRef, *CacheLine, bool) {
	setIndex := int(b.agu.Index(addr))

	way, ok := b.sets[setIndex].Lookup(b.agu.Tag(addr))
	if !ok {
		return LineRef{}, nil, false
	}

	ref := LineRef{Set: setIndex, Way: way}

	return ref, b.Line(ref), true
}

// Line resolves a line reference.
func (b *CacheBlock) Line(ref LineRef) *CacheLine {
	return b.sets[ref.Set].Line(ref.Way)
}

// Touch records an access to the referenced line.
func (b *CacheBlock) Touch(ref LineRef) {
	b.sets[ref.Set].TouchMRU(ref.Way)
}

// Read copies len(dst) bytes at addr into dst if the line is present.
func (b *CacheBlock) Read(addr uint64, dst []byte) bool {
	ref, line, ok := b.GetLine(addr)
	if !ok {
		return false
	}

	line.Read(b.agu.LineOffset(addr), dst)
	b.Touch(ref)

	return true
}

// Write copies src into the line at addr if the line is present. The line
// becomes Modified.
func (b *CacheBlock) Write(addr uint64, src []byte) bool {
	ref, line, ok := b.GetLine(addr)
	if !ok {
		return false
	}

	line.Write(b.agu.LineOffset(addr), src)
	b.Touch(ref)

	return true
}

// VictimFor returns the line to replace when addr is allocated.
func (b *CacheBlock) VictimFor(addr uint64) LineRef {
	setIndex := int(b.agu.Index(addr))

	return LineRef{
		Set: setIndex,
		Way: b.sets[setIndex].VictimForReplacement(),
	}
}

// Install gives the referenced line the identity of addr and touches it. The
// line becomes Modified until its state is set otherwise.
func (b *CacheBlock) Install(ref LineRef, addr uint64) *CacheLine {
	line := b.Line(ref)
	line.Set(b.agu.LineAddr(addr), b.agu.Tag(addr))
	b.Touch(ref)

	return line
}

// Invalidate drops the line holding addr. It returns false if there is no
// such line.
func (b *CacheBlock) Invalidate(addr uint64) bool {
	_, line, ok := b.GetLine(addr)
	if !ok {
		return false
	}

	line.Unset()

	return true
}

// Reset invalidates the whole array.
func (b *CacheBlock) Reset() {
	for _, s := range b.sets {
		s.Reset()
	}
}
