package mem

import (
	"fmt"
)

const storageUnitSize = 4096

// A Storage keeps the data of the simulated memory. Units of 4 KiB are
// allocated only when first touched, so a large, sparsely used capacity costs
// little host memory.
type Storage struct {
	capacity uint64
	units    map[uint64][]byte
}

// NewStorage creates a storage object with the specified capacity
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		capacity: capacity,
		units:    make(map[uint64][]byte),
	}
}

// Capacity returns the number of bytes the storage can hold.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

// Read copies len(dst) bytes starting at address into dst.
func (s *Storage) Read(address uint64, dst []byte) error {
	return s.walk(address, uint64(len(dst)),
		func(unit []byte, bufOffset uint64) {
			copy(dst[bufOffset:], unit)
		})
}

// Write copies data into the storage starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	return s.walk(address, uint64(len(data)),
		func(unit []byte, bufOffset uint64) {
			copy(unit, data[bufOffset:])
		})
}

// walk visits the part of each unit covered by [address, address+length).
// The callback receives the unit slice starting at the access position and
// bounded to the covered part.
func (s *Storage) walk(
	address, length uint64,
	visit func(unit []byte, bufOffset uint64),
) error {
	if address+length > s.capacity || address+length < address {
		return fmt.Errorf(
			"accessing [0x%x, 0x%x) beyond the storage capacity 0x%x",
			address, address+length, s.capacity)
	}

	done := uint64(0)
	for done < length {
		curr := address + done
		base := curr - curr%storageUnitSize
		inUnit := curr - base

		n := min(storageUnitSize-inUnit, length-done)
		visit(s.unit(base)[inUnit:inUnit+n], done)
		done += n
	}

	return nil
}

func (s *Storage) unit(base uint64) []byte {
	u, ok := s.units[base]
	if !ok {
		u = make([]byte, storageUnitSize)
		s.units[base] = u
	}

	return u
}
