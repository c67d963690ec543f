package simplecache

import (
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim"
)

func simEventAfter(c *Comp, cycles int) *sim.EventBase {
	now := c.engine.CurrentTime()
	return sim.NewEventBase(c.freq.NCyclesLater(cycles, now), c)
}

// issueMiss asks the level below for what the inflight request needs. Only
// one miss can be outstanding.
func (c *Comp) issueMiss() {
	if c.mshr.state != mshrIdle {
		c.missWaiting = true
		return
	}

	req := c.inflightReq
	builder := mem.MemReqBuilder{}.
		WithSrc(c.lower.ReqOut.AsRemote()).
		WithDst(c.lower.ReqOut.Peer()).
		WithCPUID(req.CPUID).
		WithThreadID(req.ThreadID).
		WithTimestamp(c.now()).
		WithPC(req.PC)

	if c.passesThrough(req) {
		c.mshr.purpose = mshrPassThrough
		builder = builder.
			WithKind(mem.Write).
			WithPhysAddr(req.PhysAddr).
			WithVirtAddr(req.VirtAddr).
			WithPayload(req.Payload)
	} else {
		c.mshr.purpose = mshrFill
		lineAddr := c.agu.LineAddr(req.PhysAddr)
		builder = builder.
			WithKind(mem.Read).
			WithPhysAddr(lineAddr).
			WithVirtAddr(c.agu.LineAddr(req.VirtAddr)).
			WithPayload(mem.NewPayload(uint32(c.spec.LineSize)))
	}

	c.mshr.req = builder.Build()
	c.mshr.state = mshrBlocked

	c.trySendMSHR()
}

// passesThrough tells if a write goes to the level below without allocating
// a line.
func (c *Comp) passesThrough(req *mem.MemReq) bool {
	if !req.IsWrite() {
		return false
	}

	return c.spec.exclusiveLower() ||
		!c.spec.WriteAllocate ||
		!c.spec.WriteBack
}

func (c *Comp) trySendMSHR() bool {
	if c.mshr.state != mshrBlocked || !c.lowerReqCredit.Available() {
		return false
	}

	c.lowerReqCredit.Consume()
	c.lower.ReqOut.Send(c.mshr.req)
	c.mshr.state = mshrInFlight

	return true
}

// allocate picks a line for addr, writing the victim back if it is dirty. It
// fails if the victim needs a write-back while another one is still waiting
// to be sent.
func (c *Comp) allocate(addr uint64) (cache.LineRef, bool) {
	ref := c.block.VictimFor(addr)
	victim := c.block.Line(ref)

	if victim.Dirty() {
		if c.evict.state != evictIdle {
			return cache.LineRef{}, false
		}

		c.evict.req = c.writeBackReq(victim)
		c.evict.state = evictBlocked
		c.trySendEvict()
	}

	if victim.Valid() {
		c.stats.Evictions++
	}

	c.block.Install(ref, addr)

	return ref, true
}

func (c *Comp) writeBackReq(victim *cache.CacheLine) *mem.MemReq {
	payload := mem.NewPayload(uint32(len(victim.Data)))
	copy(payload.Data, victim.Data)

	return mem.MemReqBuilder{}.
		WithSrc(c.lower.ReqOut.AsRemote()).
		WithDst(c.lower.ReqOut.Peer()).
		WithTimestamp(c.now()).
		WithPhysAddr(victim.Address).
		WithKind(mem.Write).
		WithPayload(payload).
		Build()
}

func (c *Comp) trySendEvict() bool {
	if c.evict.state != evictBlocked || !c.lowerReqCredit.Available() {
		return false
	}

	c.lowerReqCredit.Consume()
	c.lower.ReqOut.Send(c.evict.req)
	c.writebacks[c.evict.req.ID] = c.evict.req
	c.stats.WriteBacks++

	c.evict = evictEntry{}

	return true
}

// driveDownstream runs the work that waits for a lower request credit, in
// priority order.
func (c *Comp) driveDownstream() {
	c.trySendEvict()

	if c.allocStall == allocStalledOnWrite {
		c.allocStall = allocNotStalled
		c.writeAllocate()
	}

	if c.allocStall == allocStalledOnFill {
		c.allocStall = allocNotStalled
		c.fill()
	}

	c.trySendMSHR()

	if c.missWaiting && c.mshr.state == mshrIdle {
		c.missWaiting = false
		c.issueMiss()
	}
}

func (c *Comp) handleLowerRsp(rsp *mem.MemRsp) {
	mem.SendCredit(c.lower.RspCreditOut, 1)

	if _, ok := c.writebacks[rsp.RespondTo]; ok {
		delete(c.writebacks, rsp.RespondTo)
		return
	}

	if c.mshr.state != mshrInFlight || rsp.RespondTo != c.mshr.req.ID {
		c.violation(c.lower.RspIn,
			"response %s to %s matches no outstanding request",
			rsp.ID, rsp.RespondTo)
	}

	c.mshr.rsp = rsp

	switch {
	case c.mshr.purpose == mshrPassThrough:
		c.mshr.reset()
		c.completeUpstream(upstreamHit)
	case c.spec.exclusiveLower():
		c.forward()
	default:
		c.fill()
	}
}

// forward copies the requested bytes from the fill into the inflight
// request without keeping the line.
func (c *Comp) forward() {
	req := c.inflightReq
	offset := c.agu.LineOffset(req.PhysAddr)

	copy(req.Payload.Bytes(), c.mshr.rsp.Payload.Data[offset:])
	c.mshr.reset()

	c.completeUpstream(upstreamForward)
}

// fill installs the line fetched by the MSHR and serves the inflight request
// from it.
func (c *Comp) fill() {
	req := c.inflightReq

	ref, ok := c.allocate(req.PhysAddr)
	if !ok {
		c.allocStall = allocStalledOnFill
		return
	}

	state := cache.Exclusive
	if c.spec.MarkFillsModified {
		state = cache.Modified
	}

	line := c.block.Line(ref)
	line.Fill(c.mshr.rsp.Payload.Bytes(), state)
	c.mshr.reset()

	offset := c.agu.LineOffset(req.PhysAddr)
	if req.IsRead() {
		line.Read(offset, req.Payload.Bytes())
	} else {
		line.Write(offset, req.Payload.Bytes())
	}

	c.completeUpstream(upstreamHit)
}
