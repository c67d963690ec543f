package mem

import (
	"log"

	"github.com/sarchlab/cachesim/sim"
)

// RequesterPorts are the ports of a unit that sends requests to the next
// level down. Every directed channel has its own port; the credit ports carry
// CreditMsg only. The snoop ports are optional.
type RequesterPorts struct {
	ReqOut       sim.Port
	ReqCreditIn  sim.Port
	RspIn        sim.Port
	RspCreditOut sim.Port

	SnoopReqIn        sim.Port
	SnoopReqCreditOut sim.Port
	SnoopRspOut       sim.Port
	SnoopRspCreditIn  sim.Port
}

// ResponderPorts are the ports of a unit that serves requests from the level
// above.
type ResponderPorts struct {
	ReqIn        sim.Port
	ReqCreditOut sim.Port
	RspOut       sim.Port
	RspCreditIn  sim.Port

	SnoopReqOut       sim.Port
	SnoopReqCreditIn  sim.Port
	SnoopRspIn        sim.Port
	SnoopRspCreditOut sim.Port
}

type channel struct {
	name     string
	from, to sim.Port
	optional bool
}

// Connect wires a requester to a responder with one Wire per directed
// channel. Snoop channels are only wired if both sides provide the ports.
func Connect(
	name string,
	engine sim.EventScheduler,
	freq sim.Freq,
	latency int,
	requester RequesterPorts,
	responder ResponderPorts,
) []*sim.Wire {
	channels := []channel{
		{"Req", requester.ReqOut, responder.ReqIn, false},
		{"ReqCredit", responder.ReqCreditOut, requester.ReqCreditIn, false},
		{"Rsp", responder.RspOut, requester.RspIn, false},
		{"RspCredit", requester.RspCreditOut, responder.RspCreditIn, false},
		{"SnoopReq", responder.SnoopReqOut, requester.SnoopReqIn, true},
		{"SnoopReqCredit",
			requester.SnoopReqCreditOut, responder.SnoopReqCreditIn, true},
		{"SnoopRsp", requester.SnoopRspOut, responder.SnoopRspIn, true},
		{"SnoopRspCredit",
			responder.SnoopRspCreditOut, requester.SnoopRspCreditIn, true},
	}

	wires := make([]*sim.Wire, 0, len(channels))

	for _, ch := range channels {
		if ch.from == nil || ch.to == nil {
			if !ch.optional {
				log.Panicf("%s: channel %s is missing a port", name, ch.name)
			}

			continue
		}

		w := sim.NewWire(sim.BuildName(name, ch.name), engine, freq, latency)
		w.PlugIn(ch.from)
		w.PlugIn(ch.to)
		wires = append(wires, w)
	}

	return wires
}
