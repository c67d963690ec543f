package cache

import "math/bits"

// Geometry describes the shape of a cache array. It is immutable once built.
type Geometry struct {
	TotalSize uint64
	LineSize  uint64
	Ways      uint64

	// Stride is the address distance between two consecutive sets. It equals
	// LineSize unless set interleaving is coarser than a line.
	Stride uint64
}

// NewGeometry creates and validates a geometry. A zero stride means the
// stride equals the line size.
func NewGeometry(totalSize, lineSize, ways, stride uint64) (Geometry, error) {
	if stride == 0 {
		stride = lineSize
	}

	g := Geometry{
		TotalSize: totalSize,
		LineSize:  lineSize,
		Ways:      ways,
		Stride:    stride,
	}

	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}

	return g, nil
}

// MustNewGeometry is like NewGeometry but panics on an invalid geometry.
func MustNewGeometry(totalSize, lineSize, ways, stride uint64) Geometry {
	g, err := NewGeometry(totalSize, lineSize, ways, stride)
	if err != nil {
		panic(err)
	}

	return g
}

// Validate returns a *ConfigError if the geometry cannot be decoded with
// masks and shifts.
func (g Geometry) Validate() error {
	powerOfTwoFields := []struct {
		name  string
		value uint64
	}{
		{"LineSize", g.LineSize},
		{"Ways", g.Ways},
		{"Stride", g.Stride},
	}

	for _, f := range powerOfTwoFields {
		if !IsPowerOfTwo(f.value) {
			return &ConfigError{
				Field:  f.name,
				Value:  f.value,
				Reason: "must be a power of two",
			}
		}
	}

	if g.Stride < g.LineSize {
		return &ConfigError{
			Field:  "Stride",
			Value:  g.Stride,
			Reason: "must not be smaller than the line size",
		}
	}

	lineBytesPerSet := g.LineSize * g.Ways
	if g.TotalSize == 0 || g.TotalSize%lineBytesPerSet != 0 {
		return &ConfigError{
			Field:  "TotalSize",
			Value:  g.TotalSize,
			Reason: "must be a non-zero multiple of line size times ways",
		}
	}

	if !IsPowerOfTwo(g.NumSets()) {
		return &ConfigError{
			Field:  "TotalSize",
			Value:  g.TotalSize,
			Reason: "must give a power-of-two number of sets",
		}
	}

	return nil
}

// NumSets returns the number of sets in the cache.
func (g Geometry) NumSets() uint64 {
	return g.TotalSize / (g.LineSize * g.Ways)
}

// IsPowerOfTwo returns true if v is a non-zero power of two.
func IsPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}

func log2(v uint64) uint64 {
	return uint64(bits.TrailingZeros64(v))
}
