package mem

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/sim"
)

type inbox struct {
	*sim.ComponentBase
	received []sim.Msg
}

func newInbox(name string) *inbox {
	return &inbox{ComponentBase: sim.NewComponentBase(name)}
}

func (c *inbox) Handle(_ sim.Event) error { return nil }

func (c *inbox) NotifyRecv(port sim.Port) {
	c.received = append(c.received, port.RetrieveIncoming())
}

func (c *inbox) port(name string) sim.Port {
	p := sim.NewPort(c, 1, c.Name()+"."+name)
	c.AddPort(name, p)

	return p
}

var _ = Describe("Connect", func() {
	var (
		engine    *sim.SerialEngine
		upper     *inbox
		lower     *inbox
		requester RequesterPorts
		responder ResponderPorts
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		upper = newInbox("Upper")
		lower = newInbox("Lower")

		requester = RequesterPorts{
			ReqOut:       upper.port("ReqOut"),
			ReqCreditIn:  upper.port("ReqCreditIn"),
			RspIn:        upper.port("RspIn"),
			RspCreditOut: upper.port("RspCreditOut"),
		}
		responder = ResponderPorts{
			ReqIn:        lower.port("ReqIn"),
			ReqCreditOut: lower.port("ReqCreditOut"),
			RspOut:       lower.port("RspOut"),
			RspCreditIn:  lower.port("RspCreditIn"),
		}
	})

	It("should wire the core channels only", func() {
		wires := Connect("Link", engine, 1*sim.GHz, 1, requester, responder)

		Expect(wires).To(HaveLen(4))
		Expect(requester.ReqOut.Peer()).To(Equal(responder.ReqIn.AsRemote()))
		Expect(responder.RspOut.Peer()).To(Equal(requester.RspIn.AsRemote()))
	})

	It("should wire snoop channels when both sides have them", func() {
		requester.SnoopReqIn = upper.port("SnoopReqIn")
		requester.SnoopReqCreditOut = upper.port("SnoopReqCreditOut")
		requester.SnoopRspOut = upper.port("SnoopRspOut")
		requester.SnoopRspCreditIn = upper.port("SnoopRspCreditIn")
		responder.SnoopReqOut = lower.port("SnoopReqOut")
		responder.SnoopReqCreditIn = lower.port("SnoopReqCreditIn")
		responder.SnoopRspIn = lower.port("SnoopRspIn")
		responder.SnoopRspCreditOut = lower.port("SnoopRspCreditOut")

		wires := Connect("Link", engine, 1*sim.GHz, 1, requester, responder)

		Expect(wires).To(HaveLen(8))
	})

	It("should leave a half-provided snoop channel unwired", func() {
		requester.SnoopReqIn = upper.port("SnoopReqIn")

		Connect("Link", engine, 1*sim.GHz, 1, requester, responder)

		Expect(requester.SnoopReqIn.Connected()).To(BeFalse())
	})

	It("should panic when a core port is missing", func() {
		responder.RspOut = nil

		Expect(func() {
			Connect("Link", engine, 1*sim.GHz, 1, requester, responder)
		}).To(Panic())
	})

	It("should carry credits", func() {
		Connect("Link", engine, 1*sim.GHz, 1, requester, responder)

		SendCredit(responder.ReqCreditOut, 3)
		Expect(engine.Run()).To(Succeed())

		Expect(upper.received).To(HaveLen(1))
		credit := upper.received[0].(*CreditMsg)
		Expect(credit.Amount).To(Equal(uint32(3)))
		Expect(credit.Dst).To(Equal(requester.ReqCreditIn.AsRemote()))
	})
})
