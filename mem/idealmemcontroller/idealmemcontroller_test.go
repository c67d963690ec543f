package idealmemcontroller

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim"
)

var _ = Describe("Ideal Memory Controller", func() {
	var (
		engine *sim.SerialEngine
		memCtl *Comp
		agent  *requester
	)

	build := func(spec Spec) {
		engine = sim.NewSerialEngine()
		memCtl = MakeBuilder().
			WithEngine(engine).
			WithSpec(spec).
			Build("Mem")
		agent = newRequester("Agent", engine)

		mem.Connect("Link", engine, spec.Freq, 1,
			agent.ports, memCtl.ResponderPorts())

		agent.at(0, func() { mem.SendCredit(agent.ports.RspCreditOut, 1) })
	}

	BeforeEach(func() {
		spec := Defaults()
		spec.Latency = 10
		spec.Capacity = 1 << 20
		spec.ReqCredits = 2
		build(spec)
	})

	It("should grant the request credits", func() {
		Expect(engine.Run()).To(Succeed())

		Expect(agent.reqCredit).To(Equal(uint32(2)))
		Expect(memCtl.ReqCreditsSent()).To(Equal(uint64(2)))
	})

	It("should read back what was written", func() {
		var read *mem.MemReq

		agent.at(5e-9, func() {
			agent.send(mem.Write, 0x1000, []byte{1, 2, 3, 4})
		})
		agent.at(6e-9, func() {
			read = agent.send(mem.Read, 0x1002, make([]byte, 2))
		})

		Expect(engine.Run()).To(Succeed())

		Expect(agent.rsps).To(HaveLen(2))
		Expect(agent.rsps[1].RespondTo).To(Equal(read.ID))
		Expect(agent.rsps[1].Payload.Bytes()).To(Equal([]byte{3, 4}))
		Expect(agent.reqCredit).To(Equal(uint32(2)))
		Expect(memCtl.Idle()).To(BeTrue())
	})

	It("should respond after the latency", func() {
		agent.at(5e-9, func() {
			agent.send(mem.Read, 0x40, make([]byte, 8))
		})

		Expect(engine.Run()).To(Succeed())

		Expect(agent.rspTimes).To(HaveLen(1))
		Expect(agent.rspTimes[0]).To(BeNumerically(">=", 16e-9-1e-15))
	})

	It("should hold responses until a credit arrives", func() {
		agent.autoReturnCredit = false

		agent.at(5e-9, func() {
			agent.send(mem.Read, 0x40, make([]byte, 8))
			agent.send(mem.Read, 0x80, make([]byte, 8))
		})

		Expect(engine.Run()).To(Succeed())
		Expect(agent.rsps).To(HaveLen(1))

		agent.at(engine.CurrentTime(), func() {
			mem.SendCredit(agent.ports.RspCreditOut, 1)
		})

		Expect(engine.Run()).To(Succeed())
		Expect(agent.rsps).To(HaveLen(2))
		Expect(memCtl.RspCreditCounter().Conserved()).To(BeTrue())
		Expect(memCtl.RspCreditCounter().Received()).To(Equal(uint64(2)))
	})

	It("should reject accesses outside its range", func() {
		agent.at(5e-9, func() {
			agent.send(mem.Read, 1<<20, make([]byte, 8))
		})

		Expect(func() { engine.Run() }).
			To(PanicWith(BeAssignableToTypeOf(&cache.ProtocolViolation{})))
	})

	It("should reject invalid specs", func() {
		spec := Defaults()
		spec.ReqCredits = 0

		Expect(spec.Validate()).To(HaveOccurred())
		Expect(func() { MakeBuilder().WithSpec(spec).Build("Mem") }).
			To(Panic())
	})
})
