package cache

// An AGU decodes an address into the coordinates of the cache array. It is a
// pure function of the address.
type AGU interface {
	Tag(addr uint64) uint64
	Index(addr uint64) uint64
	LineAddr(addr uint64) uint64
	LineOffset(addr uint64) uint64
}

// DefaultAGU decodes addresses with masks and shifts derived from a Geometry.
//
//	offset = addr & (lineSize-1)
//	index  = (addr >> log2(stride)) & (numSets-1)
//	tag    = addr >> log2(numSets*stride)
//
// When the stride is larger than the line size, the line-number bits below
// the stride are appended to the tag so that a tag and an index still name
// exactly one line.
type DefaultAGU struct {
	offsetMask    uint64
	indexShift    uint64
	indexMask     uint64
	tagShift      uint64
	lineShift     uint64
	subStrideBits uint64
	subStrideMask uint64
}

// NewDefaultAGU creates an AGU for a validated geometry.
func NewDefaultAGU(g Geometry) *DefaultAGU {
	numSets := g.NumSets()
	subStrideBits := log2(g.Stride) - log2(g.LineSize)

	return &DefaultAGU{
		offsetMask:    g.LineSize - 1,
		indexShift:    log2(g.Stride),
		indexMask:     numSets - 1,
		tagShift:      log2(numSets * g.Stride),
		lineShift:     log2(g.LineSize),
		subStrideBits: subStrideBits,
		subStrideMask: (1 << subStrideBits) - 1,
	}
}

// Tag returns the tag of the address.
func (a *DefaultAGU) Tag(addr uint64) uint64 {
	tag := addr >> a.tagShift
	if a.subStrideBits == 0 {
		return tag
	}

	subStride := (addr >> a.lineShift) & a.subStrideMask

	return tag<<a.subStrideBits | subStride
}

// Index returns the set index of the address.
func (a *DefaultAGU) Index(addr uint64) uint64 {
	return (addr >> a.indexShift) & a.indexMask
}

// LineAddr returns the address of the first byte of the line.
func (a *DefaultAGU) LineAddr(addr uint64) uint64 {
	return addr &^ a.offsetMask
}

// LineOffset returns the position of the address within its line.
func (a *DefaultAGU) LineOffset(addr uint64) uint64 {
	return addr & a.offsetMask
}
