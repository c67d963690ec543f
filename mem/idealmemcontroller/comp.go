package idealmemcontroller

import (
	"fmt"
	"log"
	"reflect"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/tracing"
)

type respondEvent struct {
	*sim.EventBase
	req *mem.MemReq
}

// A Comp is an ideal memory controller. It serves each request a fixed
// number of cycles after it arrives, with no limit on concurrency other than
// the request credits it grants.
type Comp struct {
	*sim.TickingComponent

	spec    Spec
	ports   mem.ResponderPorts
	storage *mem.Storage

	rspCredit     *sim.CreditCounter
	creditsGiven  bool
	reqCreditSent uint64
	servicing     int
	rspQueue      []*mem.MemRsp
}

// ResponderPorts returns the ports that face the level above.
func (c *Comp) ResponderPorts() mem.ResponderPorts {
	return c.ports
}

// Storage returns the backing store.
func (c *Comp) Storage() *mem.Storage {
	return c.storage
}

// RspCreditCounter returns the credits the memory holds for sending
// responses.
func (c *Comp) RspCreditCounter() *sim.CreditCounter {
	return c.rspCredit
}

// CreditCounters returns the credit counters of the channels the memory
// sends on.
func (c *Comp) CreditCounters() []*sim.CreditCounter {
	return []*sim.CreditCounter{c.rspCredit}
}

// ReqCreditsSent returns the number of request credits granted so far.
func (c *Comp) ReqCreditsSent() uint64 {
	return c.reqCreditSent
}

// Idle tells if the memory has no request in service.
func (c *Comp) Idle() bool {
	return c.servicing == 0 && len(c.rspQueue) == 0
}

// Handle defines how the Comp handles event
func (c *Comp) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *respondEvent:
		c.respond(e.req)
	case sim.TickEvent:
		return c.TickingComponent.Handle(e)
	default:
		log.Panicf("cannot handle event of %s", reflect.TypeOf(e))
	}

	return nil
}

// Tick grants the initial credits, accepts requests, and sends responses.
func (c *Comp) Tick() bool {
	madeProgress := false

	if !c.creditsGiven {
		c.sendReqCredit(c.spec.ReqCredits)
		c.creditsGiven = true
		madeProgress = true
	}

	madeProgress = c.takeCredits() || madeProgress
	madeProgress = c.takeRequests() || madeProgress
	madeProgress = c.sendResponses() || madeProgress

	return madeProgress
}

func (c *Comp) sendReqCredit(n uint32) {
	mem.SendCredit(c.ports.ReqCreditOut, n)
	c.reqCreditSent += uint64(n)
}

func (c *Comp) takeCredits() bool {
	madeProgress := false

	for {
		msg := c.ports.RspCreditIn.RetrieveIncoming()
		if msg == nil {
			return madeProgress
		}

		credit, ok := msg.(*mem.CreditMsg)
		if !ok {
			c.violation(c.ports.RspCreditIn, "unexpected %s", reflect.TypeOf(msg))
		}

		c.rspCredit.Add(credit.Amount)
		madeProgress = true
	}
}

func (c *Comp) takeRequests() bool {
	madeProgress := false

	for {
		msg := c.ports.ReqIn.RetrieveIncoming()
		if msg == nil {
			return madeProgress
		}

		req, ok := msg.(*mem.MemReq)
		if !ok {
			c.violation(c.ports.ReqIn, "unexpected %s", reflect.TypeOf(msg))
		}

		c.addressMustBeInRange(req)

		tracing.StartTask(
			c.taskID(req.ID),
			req.ID,
			c,
			"req_in",
			req.Kind.String(),
			req,
		)

		c.servicing++
		respondAt := c.Freq.NCyclesLater(c.spec.Latency, c.CurrentTime())
		c.Engine.Schedule(&respondEvent{
			EventBase: sim.NewEventBase(respondAt, c),
			req:       req,
		})

		madeProgress = true
	}
}

func (c *Comp) addressMustBeInRange(req *mem.MemReq) {
	end := c.spec.BaseAddr + c.spec.Capacity
	if req.PhysAddr < c.spec.BaseAddr ||
		req.PhysAddr+uint64(req.Payload.Size) > end {
		c.violation(c.ports.ReqIn,
			"access [0x%x, 0x%x) is outside [0x%x, 0x%x)",
			req.PhysAddr, req.PhysAddr+uint64(req.Payload.Size),
			c.spec.BaseAddr, end)
	}
}

func (c *Comp) respond(req *mem.MemReq) {
	addr := req.PhysAddr - c.spec.BaseAddr

	var err error
	if req.IsRead() {
		err = c.storage.Read(addr, req.Payload.Bytes())
	} else {
		err = c.storage.Write(addr, req.Payload.Bytes())
	}

	if err != nil {
		panic(fmt.Errorf("%s: %w", c.Name(), err))
	}

	c.servicing--

	rsp := mem.MemRspBuilder{}.
		WithSrc(c.ports.RspOut.AsRemote()).
		WithDst(c.ports.RspOut.Peer()).
		WithReq(req).
		Build()
	c.rspQueue = append(c.rspQueue, rsp)

	c.TickNow()
}

// sendResponses sends the queued responses in order while credits last. Each
// response frees the slot of a request.
func (c *Comp) sendResponses() bool {
	madeProgress := false

	for len(c.rspQueue) > 0 && c.rspCredit.Available() {
		rsp := c.rspQueue[0]
		c.rspQueue = c.rspQueue[1:]

		c.rspCredit.Consume()
		c.ports.RspOut.Send(rsp)
		tracing.EndTask(c.taskID(rsp.RespondTo), c)

		c.sendReqCredit(1)

		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) taskID(reqID string) string {
	return reqID + "@" + c.Name()
}

func (c *Comp) violation(port sim.Port, format string, args ...any) {
	panic(&cache.ProtocolViolation{
		Unit:      c.Name(),
		Channel:   port.Name(),
		Timestamp: c.Freq.Cycle(c.CurrentTime()),
		Reason:    fmt.Sprintf(format, args...),
	})
}
