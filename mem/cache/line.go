package cache

import (
	"fmt"
	"log"
)

// LineState is the coherence state of a cache line.
type LineState uint8

// All the line states. Only Modified lines are dirty.
const (
	Invalid LineState = iota
	Shared
	Owned
	Exclusive
	Modified
)

func (s LineState) String() string {
	switch s {
	case Invalid:
		return "I"
	case Shared:
		return "S"
	case Owned:
		return "O"
	case Exclusive:
		return "E"
	case Modified:
		return "M"
	default:
		return fmt.Sprintf("LineState(%d)", uint8(s))
	}
}

// A CacheLine is one way of a set.
type CacheLine struct {
	Tag     uint64
	Address uint64
	State   LineState
	Data    []byte
}

// NewCacheLine creates an invalid line that holds lineSize bytes.
func NewCacheLine(lineSize uint64) *CacheLine {
	return &CacheLine{Data: make([]byte, lineSize)}
}

// Valid returns true if the line holds data.
func (l *CacheLine) Valid() bool {
	return l.State != Invalid
}

// Dirty returns true if the line differs from the next level.
func (l *CacheLine) Dirty() bool {
	return l.State == Modified
}

// Set installs a new identity into the line and marks it Modified.
func (l *CacheLine) Set(addr, tag uint64) {
	l.Address = addr
	l.Tag = tag
	l.State = Modified
}

// SetState changes the coherence state of a valid line.
func (l *CacheLine) SetState(s LineState) {
	l.State = s
}

// Unset invalidates the line.
func (l *CacheLine) Unset() {
	l.State = Invalid
}

// Read copies len(dst) bytes starting at offset into dst.
func (l *CacheLine) Read(offset uint64, dst []byte) {
	l.mustBeInLine(offset, len(dst))
	copy(dst, l.Data[offset:])
}

// Write copies src into the line at offset. The line becomes Modified.
func (l *CacheLine) Write(offset uint64, src []byte) {
	l.mustBeInLine(offset, len(src))
	copy(l.Data[offset:], src)
	l.State = Modified
}

// Fill replaces the whole line content and sets the state.
func (l *CacheLine) Fill(src []byte, state LineState) {
	l.mustBeInLine(0, len(src))
	copy(l.Data, src)
	l.State = state
}

func (l *CacheLine) mustBeInLine(offset uint64, size int) {
	if offset+uint64(size) > uint64(len(l.Data)) {
		log.Panicf("access [%d, %d) is outside a %d-byte line",
			offset, offset+uint64(size), len(l.Data))
	}
}

func (l *CacheLine) String() string {
	return fmt.Sprintf("[%s tag=0x%x addr=0x%x]", l.State, l.Tag, l.Address)
}
