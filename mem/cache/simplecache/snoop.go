package simplecache

import (
	"reflect"

	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim"
)

// handleSnoopMsg acknowledges snoop traffic. The cache takes no coherence
// action; it only keeps the credits of the snoop channels flowing.
func (c *Comp) handleSnoopMsg(port sim.Port, msg sim.Msg) {
	switch port {
	case c.lower.SnoopReqIn:
		if _, ok := msg.(*mem.SnoopReq); !ok {
			c.violation(port, "unexpected %s", reflect.TypeOf(msg))
		}

		mem.SendCredit(c.lower.SnoopReqCreditOut, 1)
	case c.upper.SnoopRspIn:
		if _, ok := msg.(*mem.SnoopRsp); !ok {
			c.violation(port, "unexpected %s", reflect.TypeOf(msg))
		}

		mem.SendCredit(c.upper.SnoopRspCreditOut, 1)
	case c.upper.SnoopReqCreditIn:
		c.upperSnoopReqCredit.Add(c.mustBeCredit(port, msg).Amount)
	case c.lower.SnoopRspCreditIn:
		c.lowerSnoopRspCredit.Add(c.mustBeCredit(port, msg).Amount)
	default:
		c.violation(port, "no handler for %s", reflect.TypeOf(msg))
	}
}
