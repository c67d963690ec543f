package memaccessagent

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/mem/idealmemcontroller"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim"
)

var _ = Describe("MemAccessAgent", func() {
	var (
		engine *sim.SerialEngine
		agent  *MemAccessAgent
		memCtl *idealmemcontroller.Comp
	)

	build := func(spec Spec, reqCredits uint32) {
		engine = sim.NewSerialEngine()

		agent = MakeBuilder().
			WithEngine(engine).
			WithSpec(spec).
			Build("Agent")

		memCtl = idealmemcontroller.MakeBuilder().
			WithEngine(engine).
			WithLatency(5).
			WithCapacity(spec.MaxAddress).
			WithReqCredits(reqCredits).
			Build("Mem")

		mem.Connect("Link", engine, 1*sim.GHz, 1,
			agent.RequesterPorts(), memCtl.ResponderPorts())
	}

	It("should issue and complete all accesses without mismatches", func() {
		spec := Defaults()
		spec.MaxAddress = 4096
		spec.NumAccesses = 300

		build(spec, 4)

		Expect(engine.Run()).To(Succeed())

		Expect(agent.Done()).To(BeTrue())
		Expect(agent.Issued()).To(Equal(300))
		Expect(agent.Completed()).To(Equal(300))
		Expect(agent.NumMismatches()).To(BeZero())
		Expect(agent.KnownMemValue).NotTo(BeEmpty())
		Expect(agent.ReqCreditCounter().Conserved()).To(BeTrue())
		Expect(agent.ReqCreditCounter().Received()).
			To(Equal(memCtl.ReqCreditsSent()))
	})

	It("should detect data that does not match what was written", func() {
		spec := Defaults()
		spec.MaxAddress = 64
		spec.NumAccesses = 200
		spec.ReadPercent = 50

		build(spec, 1)

		corrupter := &storageCorrupter{memCtl: memCtl}
		memCtl.ResponderPorts().RspOut.AcceptHook(corrupter)

		Expect(engine.Run()).To(Succeed())

		Expect(agent.Done()).To(BeTrue())
		Expect(agent.NumMismatches()).To(BeNumerically(">", 0))
	})

	It("should honor the generation probability", func() {
		spec := Defaults()
		spec.NumAccesses = 20
		spec.GenProb = 0.25

		build(spec, 1)

		Expect(engine.Run()).To(Succeed())
		Expect(agent.Done()).To(BeTrue())
	})

	It("should reject invalid specs", func() {
		spec := Defaults()
		spec.ReadPercent = 101
		Expect(spec.Validate()).To(HaveOccurred())

		spec = Defaults()
		spec.GenProb = 0
		Expect(spec.Validate()).To(HaveOccurred())

		spec = Defaults()
		spec.MaxAddress = 32
		Expect(spec.Validate()).To(HaveOccurred())
	})
})

// storageCorrupter flips the first byte of every read response as it leaves
// the memory.
type storageCorrupter struct {
	memCtl *idealmemcontroller.Comp
}

func (h *storageCorrupter) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosPortMsgSend {
		return
	}

	rsp, ok := ctx.Item.(*mem.MemRsp)
	if !ok || rsp.Kind != mem.Read {
		return
	}

	rsp.Payload.Data[0] ^= 0xff
}
