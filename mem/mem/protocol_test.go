package mem

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MemReq and MemRsp", func() {
	It("should build a request", func() {
		payload := NewPayload(8)
		req := MemReqBuilder{}.
			WithSrc("Agent.ReqOut").
			WithDst("Cache.UpperReq").
			WithCPUID(1).
			WithThreadID(2).
			WithTimestamp(30).
			WithPhysAddr(0x1008).
			WithPC(0x400000).
			WithKind(Write).
			WithPayload(payload).
			Build()

		Expect(req.ID).NotTo(BeEmpty())
		Expect(req.VirtAddr).To(Equal(uint64(0x1008)))
		Expect(req.IsWrite()).To(BeTrue())
		Expect(req.IsRead()).To(BeFalse())
		Expect(req.TrafficBytes).To(Equal(accessReqByteOverhead + 8))
		Expect(req.String()).To(ContainSubstring("pa=0x1008"))
	})

	It("should keep an explicit virtual address", func() {
		req := MemReqBuilder{}.
			WithPhysAddr(0x1000).
			WithVirtAddr(0x7000).
			Build()

		Expect(req.VirtAddr).To(Equal(uint64(0x7000)))
	})

	It("should mirror the request in the response", func() {
		req := MemReqBuilder{}.
			WithTimestamp(12).
			WithPhysAddr(0x40).
			WithKind(Read).
			WithPayload(NewPayload(4)).
			Build()

		rsp := MemRspBuilder{}.
			WithSrc("Cache.UpperRsp").
			WithDst("Agent.RspIn").
			WithReq(req).
			Build()

		Expect(rsp.GetRspTo()).To(Equal(req.ID))
		Expect(rsp.Timestamp).To(Equal(uint64(12)))
		Expect(rsp.Kind).To(Equal(Read))

		rsp.Payload.Data[0] = 0xab
		Expect(req.Payload.Bytes()[0]).To(Equal(byte(0xab)))
	})

	It("should clone with a new ID and shared payload", func() {
		req := MemReqBuilder{}.WithPayload(NewPayload(2)).Build()
		clone := req.Clone().(*MemReq)

		Expect(clone.ID).NotTo(Equal(req.ID))
		clone.Payload.Data[1] = 7
		Expect(req.Payload.Data[1]).To(Equal(byte(7)))
	})

	It("should name access kinds", func() {
		Expect(Read.String()).To(Equal("Read"))
		Expect(Write.String()).To(Equal("Write"))
		Expect(AccessKind(9).String()).To(Equal("AccessKind(9)"))
	})

	It("should pair snoop requests and responses", func() {
		req := NewSnoopReq("Low.SnoopReq", "Up.SnoopReq", 3, 0x80)
		rsp := NewSnoopRsp("Up.SnoopRsp", "Low.SnoopRsp", req)

		Expect(rsp.RespondTo).To(Equal(req.ID))
		Expect(rsp.PhysAddr).To(Equal(uint64(0x80)))
	})
})
