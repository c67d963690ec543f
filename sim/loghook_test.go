package sim

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Log hooks", func() {
	var (
		mockCtrl *gomock.Controller
		buf      *bytes.Buffer
		logger   *log.Logger
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		buf = new(bytes.Buffer)
		logger = log.New(buf, "", 0)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should log events before they are handled", func() {
		comp := NewMockComponent(mockCtrl)
		comp.EXPECT().Name().Return("Comp").AnyTimes()

		h := NewEventLogger(logger)
		evt := NewEventBase(2, comp)

		h.Func(HookCtx{Pos: HookPosAfterEvent, Item: evt})
		Expect(buf.Len()).To(BeZero())

		h.Func(HookCtx{Pos: HookPosBeforeEvent, Item: evt})
		Expect(buf.String()).To(ContainSubstring("2.0000000000"))
		Expect(buf.String()).To(ContainSubstring("-> Comp"))
	})

	It("should log messages that cross a port", func() {
		engine := NewSerialEngine()
		port := NewPort(nil, 1, "Comp.In")
		msg := &sampleMsg{MsgMeta{ID: "m1", Src: "Other.Out", Dst: "Comp.In"}}

		h := NewPortMsgLogger(logger, engine)
		h.Func(HookCtx{Domain: port, Pos: HookPosPortMsgRecvd, Item: msg})

		Expect(buf.String()).To(ContainSubstring(
			"Comp.In,Port Msg Recv,Other.Out,Comp.In,*sim.sampleMsg,m1"))
	})
})
