package simplecache

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim"
)

// Comp is a cache that serves one request at a time. It talks to the level
// above through its upper ports and to the level below through its lower
// ports. Every message is handled as soon as it arrives; work that cannot
// proceed waits in a register until a credit arrives.
type Comp struct {
	*sim.ComponentBase

	engine sim.EventScheduler
	freq   sim.Freq
	spec   Spec

	block *cache.CacheBlock
	agu   cache.AGU

	upper mem.ResponderPorts
	lower mem.RequesterPorts

	upperRspCredit      *sim.CreditCounter
	lowerReqCredit      *sim.CreditCounter
	upperSnoopReqCredit *sim.CreditCounter
	lowerSnoopRspCredit *sim.CreditCounter

	inflightReq     *mem.MemReq
	inflightRsp     *mem.MemRsp
	mshr            mshrEntry
	evict           evictEntry
	writebacks      map[string]*mem.MemReq
	upstreamPending upstreamPending
	allocStall      allocStall
	missWaiting     bool

	stats Stats
}

// UpperPorts returns the ports that face the level above.
func (c *Comp) UpperPorts() mem.ResponderPorts {
	return c.upper
}

// LowerPorts returns the ports that face the level below.
func (c *Comp) LowerPorts() mem.RequesterPorts {
	return c.lower
}

// Spec returns the parameters the cache was built with.
func (c *Comp) Spec() Spec {
	return c.spec
}

// Block returns the storage array.
func (c *Comp) Block() *cache.CacheBlock {
	return c.block
}

// IsLastLevel tells if the cache is the last one before memory.
func (c *Comp) IsLastLevel() bool {
	return c.spec.LastLevel
}

// IsDataCache tells if the cache holds data rather than instructions.
func (c *Comp) IsDataCache() bool {
	return c.spec.DataCache
}

// Stats returns the counters of the cache.
func (c *Comp) Stats() Stats {
	return c.stats
}

// CreditCounters returns the credit counters of the channels the cache
// sends on.
func (c *Comp) CreditCounters() []*sim.CreditCounter {
	return []*sim.CreditCounter{
		c.upperRspCredit,
		c.lowerReqCredit,
		c.upperSnoopReqCredit,
		c.lowerSnoopRspCredit,
	}
}

// Idle tells if the cache holds no request, miss, or write-back.
func (c *Comp) Idle() bool {
	return c.inflightReq == nil &&
		c.inflightRsp == nil &&
		c.mshr.state == mshrIdle &&
		c.evict.state == evictIdle &&
		len(c.writebacks) == 0
}

// State returns a snapshot of the registers.
func (c *Comp) State() State {
	s := State{
		InflightReq:       msgString(c.inflightReq),
		InflightRsp:       msgString(c.inflightRsp),
		MSHR:              c.mshr.state.String(),
		MSHRReq:           msgString(c.mshr.req),
		Evict:             c.evict.state.String(),
		PendingWriteBacks: len(c.writebacks),
		UpstreamPending:   c.upstreamPending.String(),
		AllocStall:        c.allocStall.String(),
		MissWaiting:       c.missWaiting,
		UpperRspCredit:    c.upperRspCredit.Count(),
		LowerReqCredit:    c.lowerReqCredit.Count(),
	}

	return s
}

func msgString[T fmt.Stringer](m T) string {
	if reflect.ValueOf(m).IsNil() {
		return ""
	}

	return m.String()
}

// NotifyRecv handles all the messages waiting at the port.
func (c *Comp) NotifyRecv(port sim.Port) {
	for {
		msg := port.RetrieveIncoming()
		if msg == nil {
			return
		}

		c.handleMsg(port, msg)
	}
}

func (c *Comp) handleMsg(port sim.Port, msg sim.Msg) {
	switch port {
	case c.upper.ReqIn:
		c.handleUpperReq(c.mustBeMemReq(port, msg))
	case c.upper.RspCreditIn:
		c.upperRspCredit.Add(c.mustBeCredit(port, msg).Amount)
		c.driveUpstream()
	case c.lower.ReqCreditIn:
		c.lowerReqCredit.Add(c.mustBeCredit(port, msg).Amount)
		c.driveDownstream()
	case c.lower.RspIn:
		c.handleLowerRsp(c.mustBeMemRsp(port, msg))
	default:
		c.handleSnoopMsg(port, msg)
	}
}

// Handle processes the events the cache schedules for itself.
func (c *Comp) Handle(e sim.Event) error {
	switch e.(type) {
	case *startupEvent:
		c.sendInitialCredits()
	case *lookupEvent:
		c.lookup()
	default:
		return fmt.Errorf("%s cannot handle event of type %s",
			c.Name(), reflect.TypeOf(e))
	}

	return nil
}

type startupEvent struct {
	*sim.EventBase
}

type lookupEvent struct {
	*sim.EventBase
}

func (c *Comp) sendInitialCredits() {
	mem.SendCredit(c.upper.ReqCreditOut, 1)
	mem.SendCredit(c.lower.RspCreditOut, 1)

	if c.upper.SnoopRspCreditOut.Connected() {
		mem.SendCredit(c.upper.SnoopRspCreditOut, 1)
	}

	if c.lower.SnoopReqCreditOut.Connected() {
		mem.SendCredit(c.lower.SnoopReqCreditOut, 1)
	}
}

func (c *Comp) now() uint64 {
	return c.freq.Cycle(c.engine.CurrentTime())
}

func (c *Comp) violation(port sim.Port, format string, args ...any) {
	panic(&cache.ProtocolViolation{
		Unit:      c.Name(),
		Channel:   port.Name(),
		Timestamp: c.now(),
		Reason:    fmt.Sprintf(format, args...),
	})
}

func (c *Comp) mustBeMemReq(port sim.Port, msg sim.Msg) *mem.MemReq {
	req, ok := msg.(*mem.MemReq)
	if !ok {
		c.violation(port, "unexpected %s", reflect.TypeOf(msg))
	}

	return req
}

func (c *Comp) mustBeMemRsp(port sim.Port, msg sim.Msg) *mem.MemRsp {
	rsp, ok := msg.(*mem.MemRsp)
	if !ok {
		c.violation(port, "unexpected %s", reflect.TypeOf(msg))
	}

	return rsp
}

func (c *Comp) mustBeCredit(port sim.Port, msg sim.Msg) *mem.CreditMsg {
	credit, ok := msg.(*mem.CreditMsg)
	if !ok {
		c.violation(port, "unexpected %s", reflect.TypeOf(msg))
	}

	return credit
}
