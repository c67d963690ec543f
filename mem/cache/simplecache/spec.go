// Package simplecache provides a non-pipelined cache that serves one request
// at a time and keeps at most one miss outstanding.
package simplecache

import (
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/sim"
)

// Spec holds the parameters of a cache.
type Spec struct {
	Size     uint64 `json:"size"`
	Ways     uint64 `json:"ways"`
	LineSize uint64 `json:"line_size"`

	// Stride is the address distance between consecutive sets. Zero means
	// the line size.
	Stride uint64 `json:"stride"`

	Inclusive     bool `json:"inclusive"`
	FirstLevel    bool `json:"first_level"`
	LastLevel     bool `json:"last_level"`
	DataCache     bool `json:"data_cache"`
	WriteAllocate bool `json:"write_allocate"`
	WriteBack     bool `json:"write_back"`

	// MarkFillsModified makes every filled line dirty, even if it was
	// filled by a read.
	MarkFillsModified bool `json:"mark_fills_modified"`

	// Latency is the number of cycles between a request arriving and its
	// lookup.
	Latency int      `json:"latency"`
	Freq    sim.Freq `json:"freq"`
}

// Defaults returns the parameters of a 1 KiB, 4-way cache with 64-byte lines.
func Defaults() Spec {
	return Spec{
		Size:          1024,
		Ways:          4,
		LineSize:      64,
		Inclusive:     true,
		DataCache:     true,
		WriteAllocate: true,
		WriteBack:     true,
		Latency:       1,
		Freq:          1 * sim.GHz,
	}
}

// Geometry returns the shape of the storage array.
func (s Spec) Geometry() (cache.Geometry, error) {
	return cache.NewGeometry(s.Size, s.LineSize, s.Ways, s.Stride)
}

// Validate returns a *cache.ConfigError if the cache cannot be built.
func (s Spec) Validate() error {
	if _, err := s.Geometry(); err != nil {
		return err
	}

	if s.Latency < 0 {
		return &cache.ConfigError{
			Field:  "Latency",
			Value:  uint64(s.Latency),
			Reason: "must not be negative",
		}
	}

	if s.Freq <= 0 {
		return &cache.ConfigError{
			Field:  "Freq",
			Value:  uint64(s.Freq),
			Reason: "must be positive",
		}
	}

	return nil
}

// exclusiveLower tells if the cache keeps no copy of the data it fetches for
// the level above.
func (s Spec) exclusiveLower() bool {
	return !s.Inclusive && !s.FirstLevel
}
