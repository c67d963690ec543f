package simplecache

import (
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim"
)

// requester is a component that issues requests on demand and records what
// comes back.
type requester struct {
	*sim.ComponentBase

	engine sim.EventScheduler
	ports  mem.RequesterPorts

	autoReturnCredit bool
	reqCredit        uint32
	rsps             []*mem.MemRsp

	// onCredit, if set, runs every time a request credit arrives.
	onCredit func()
}

func newRequester(name string, engine sim.EventScheduler) *requester {
	r := &requester{
		ComponentBase:    sim.NewComponentBase(name),
		engine:           engine,
		autoReturnCredit: true,
	}

	port := func(local string) sim.Port {
		p := sim.NewPort(r, 8, sim.BuildName(name, local))
		r.AddPort(local, p)

		return p
	}

	r.ports = mem.RequesterPorts{
		ReqOut:       port("Req"),
		ReqCreditIn:  port("ReqCredit"),
		RspIn:        port("Rsp"),
		RspCreditOut: port("RspCredit"),
	}

	return r
}

func (r *requester) Handle(e sim.Event) error {
	e.(*callEvent).f()
	return nil
}

func (r *requester) NotifyRecv(port sim.Port) {
	for msg := port.RetrieveIncoming(); msg != nil; msg = port.RetrieveIncoming() {
		switch msg := msg.(type) {
		case *mem.CreditMsg:
			r.reqCredit += msg.Amount

			if r.onCredit != nil {
				r.onCredit()
			}
		case *mem.MemRsp:
			r.rsps = append(r.rsps, msg)

			if r.autoReturnCredit {
				mem.SendCredit(r.ports.RspCreditOut, 1)
			}
		}
	}
}

type callEvent struct {
	*sim.EventBase
	f func()
}

// at runs f at the given time.
func (r *requester) at(t sim.VTimeInSec, f func()) {
	r.engine.Schedule(&callEvent{EventBase: sim.NewEventBase(t, r), f: f})
}

func (r *requester) send(kind mem.AccessKind, addr uint64, data []byte) *mem.MemReq {
	payload := mem.Payload{Size: uint32(len(data)), Data: data}

	req := mem.MemReqBuilder{}.
		WithSrc(r.ports.ReqOut.AsRemote()).
		WithDst(r.ports.ReqOut.Peer()).
		WithTimestamp(42).
		WithPhysAddr(addr).
		WithKind(kind).
		WithPayload(payload).
		Build()

	r.reqCredit--
	r.ports.ReqOut.Send(req)

	return req
}

// msgRecorder keeps every request that arrives at a port.
type msgRecorder struct {
	reqs []*mem.MemReq
}

func (h *msgRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosPortMsgRecvd {
		return
	}

	if req, ok := ctx.Item.(*mem.MemReq); ok {
		h.reqs = append(h.reqs, req)
	}
}

func lineOfBytes(base byte, n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = base + byte(i)
	}

	return data
}
