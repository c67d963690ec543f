package simplecache

import (
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/tracing"
)

func (c *Comp) handleUpperReq(req *mem.MemReq) {
	if c.inflightReq != nil {
		c.violation(c.upper.ReqIn,
			"request %s arrived while %s is in flight",
			req.ID, c.inflightReq.ID)
	}

	offset := c.agu.LineOffset(req.PhysAddr)
	if offset+uint64(req.Payload.Size) > c.spec.LineSize {
		c.violation(c.upper.ReqIn,
			"request %s crosses a line boundary", req.ID)
	}

	c.inflightReq = req

	tracing.StartTask(
		taskID(req, c),
		req.ID,
		c,
		"req_in",
		req.Kind.String(),
		req,
	)

	if c.spec.Latency == 0 {
		c.lookup()
		return
	}

	c.engine.Schedule(&lookupEvent{
		EventBase: simEventAfter(c, c.spec.Latency),
	})
}

// lookup decides between a hit and a miss for the inflight request.
func (c *Comp) lookup() {
	req := c.inflightReq

	if req.IsWrite() && c.spec.exclusiveLower() {
		c.writeExclusive()
		return
	}

	if req.IsRead() {
		c.lookupRead(req)
	} else {
		c.lookupWrite(req)
	}
}

func (c *Comp) lookupRead(req *mem.MemReq) {
	if c.block.Read(req.PhysAddr, req.Payload.Bytes()) {
		c.stats.ReadHit++
		tracing.AddTaskStep(taskID(req, c), c, "hit")
		c.completeUpstream(upstreamHit)

		return
	}

	c.stats.ReadMiss++
	tracing.AddTaskStep(taskID(req, c), c, "miss")
	c.issueMiss()
}

func (c *Comp) lookupWrite(req *mem.MemReq) {
	_, line, hit := c.block.GetLine(req.PhysAddr)

	if !hit {
		c.stats.WriteMiss++
		tracing.AddTaskStep(taskID(req, c), c, "miss")
		c.issueMiss()

		return
	}

	c.stats.WriteHit++
	tracing.AddTaskStep(taskID(req, c), c, "hit")

	state := line.State
	c.block.Write(req.PhysAddr, req.Payload.Bytes())

	if c.spec.WriteBack {
		c.completeUpstream(upstreamHit)
		return
	}

	// The line stays clean as the next level receives the same bytes.
	line.SetState(state)
	c.issueMiss()
}

// writeExclusive serves a write at a cache that does not keep copies of the
// lines it fetches. A present line is overwritten in place. A full-line write
// takes a line without fetching it first. Any other write is passed to the
// level below, as the rest of the line is unknown here.
func (c *Comp) writeExclusive() {
	req := c.inflightReq

	if c.block.Write(req.PhysAddr, req.Payload.Bytes()) {
		c.stats.WriteHit++
		tracing.AddTaskStep(taskID(req, c), c, "hit")
		c.completeUpstream(upstreamHit)

		return
	}

	c.stats.WriteMiss++

	if uint64(req.Payload.Size) < c.spec.LineSize {
		tracing.AddTaskStep(taskID(req, c), c, "miss")
		c.issueMiss()

		return
	}

	tracing.AddTaskStep(taskID(req, c), c, "allocate")
	c.writeAllocate()
}

// writeAllocate places the inflight write in a new line without fetching the
// line first.
func (c *Comp) writeAllocate() {
	req := c.inflightReq

	ref, ok := c.allocate(req.PhysAddr)
	if !ok {
		c.allocStall = allocStalledOnWrite
		return
	}

	line := c.block.Line(ref)
	line.Write(c.agu.LineOffset(req.PhysAddr), req.Payload.Bytes())

	c.completeUpstream(upstreamHit)
}

// completeUpstream builds the response of the inflight request and tries to
// send it. If the response slot is taken, the work is remembered.
func (c *Comp) completeUpstream(kind upstreamPending) {
	if c.inflightRsp != nil {
		c.upstreamPending = kind
		return
	}

	if kind == upstreamForward {
		c.stats.Forwards++
	}

	c.inflightRsp = mem.MemRspBuilder{}.
		WithSrc(c.upper.RspOut.AsRemote()).
		WithDst(c.upper.RspOut.Peer()).
		WithReq(c.inflightReq).
		Build()

	c.trySendUpperRsp()
}

// trySendUpperRsp sends the inflight response if a credit allows it. Sending
// completes the request and lets the level above send the next one.
func (c *Comp) trySendUpperRsp() bool {
	if c.inflightRsp == nil || !c.upperRspCredit.Available() {
		return false
	}

	c.upperRspCredit.Consume()
	c.upper.RspOut.Send(c.inflightRsp)

	tracing.EndTask(taskID(c.inflightReq, c), c)

	c.inflightReq = nil
	c.inflightRsp = nil

	mem.SendCredit(c.upper.ReqCreditOut, 1)

	return true
}

// driveUpstream runs the work that waits for an upper response credit, in
// priority order.
func (c *Comp) driveUpstream() {
	if c.inflightRsp != nil && !c.trySendUpperRsp() {
		return
	}

	pending := c.upstreamPending
	if pending == upstreamNone {
		return
	}

	c.upstreamPending = upstreamNone

	if c.inflightReq != nil {
		c.completeUpstream(pending)
	}
}
