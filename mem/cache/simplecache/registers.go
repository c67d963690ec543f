package simplecache

import "github.com/sarchlab/cachesim/mem/mem"

type mshrState int

const (
	mshrIdle mshrState = iota
	mshrBlocked
	mshrInFlight
)

func (s mshrState) String() string {
	return [...]string{"Idle", "Blocked", "InFlight"}[s]
}

type mshrPurpose int

const (
	// mshrFill fetches the whole line that the inflight request missed on.
	mshrFill mshrPurpose = iota

	// mshrPassThrough carries the inflight write to the next level without
	// allocating a line.
	mshrPassThrough
)

// mshrEntry is the single miss status holding register.
type mshrEntry struct {
	state   mshrState
	purpose mshrPurpose
	req     *mem.MemReq
	rsp     *mem.MemRsp
}

func (m *mshrEntry) reset() {
	*m = mshrEntry{}
}

type evictState int

const (
	evictIdle evictState = iota
	evictBlocked
)

func (s evictState) String() string {
	return [...]string{"Idle", "Blocked"}[s]
}

// evictEntry holds the write-back of a dirty victim until it can be sent.
type evictEntry struct {
	state evictState
	req   *mem.MemReq
}

type upstreamPending int

const (
	upstreamNone upstreamPending = iota
	upstreamForward
	upstreamHit
)

func (p upstreamPending) String() string {
	return [...]string{"None", "Forward", "Hit"}[p]
}

type allocStall int

const (
	allocNotStalled allocStall = iota
	allocStalledOnWrite
	allocStalledOnFill
)

func (s allocStall) String() string {
	return [...]string{"None", "OnWrite", "OnFill"}[s]
}
