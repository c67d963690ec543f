package sim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

func mockEventAt(
	ctrl *gomock.Controller,
	t VTimeInSec,
	handler Handler,
	secondary bool,
) *MockEvent {
	evt := NewMockEvent(ctrl)
	evt.EXPECT().Time().Return(t).AnyTimes()
	evt.EXPECT().Handler().Return(handler).AnyTimes()
	evt.EXPECT().IsSecondary().Return(secondary).AnyTimes()

	return evt
}

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should schedule events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		evt1 := mockEventAt(mockCtrl, 4.0, handler1, false)
		evt2 := mockEventAt(mockCtrl, 2.0, handler2, false)
		evt3 := mockEventAt(mockCtrl, 3.0, handler1, false)
		evt4 := mockEventAt(mockCtrl, 5.0, handler1, false)

		gomock.InOrder(
			handler2.EXPECT().Handle(evt2).Do(func(e Event) {
				engine.Schedule(evt3)
				engine.Schedule(evt4)
			}),
			handler1.EXPECT().Handle(evt3),
			handler1.EXPECT().Handle(evt1),
			handler1.EXPECT().Handle(evt4),
		)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(5.0)))
	})

	It("should run same-time events in scheduling order", func() {
		handler := NewMockHandler(mockCtrl)
		evts := make([]*MockEvent, 8)
		calls := make([]any, 8)

		for i := range evts {
			evts[i] = mockEventAt(mockCtrl, 1.0, handler, false)
			calls[i] = handler.EXPECT().Handle(evts[i])
		}

		gomock.InOrder(calls...)

		for _, evt := range evts {
			engine.Schedule(evt)
		}

		Expect(engine.Run()).To(Succeed())
	})

	It("should consider secondary events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		handler3 := NewMockHandler(mockCtrl)
		evt1 := mockEventAt(mockCtrl, 2.0, handler1, true)
		evt2 := mockEventAt(mockCtrl, 2.0, handler2, false)
		evt3 := mockEventAt(mockCtrl, 2.0, handler3, false)

		gomock.InOrder(
			handler2.EXPECT().Handle(evt2),
			handler3.EXPECT().Handle(evt3),
			handler1.EXPECT().Handle(evt1),
		)

		engine.Schedule(evt1)
		engine.Schedule(evt2)
		engine.Schedule(evt3)

		Expect(engine.Run()).To(Succeed())
	})

	It("should panic when scheduling an event in the past", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEventAt(mockCtrl, 2.0, handler, false)
		evt2 := mockEventAt(mockCtrl, 1.0, handler, false)

		handler.EXPECT().Handle(evt1).Do(func(e Event) {
			engine.Schedule(evt2)
		})

		engine.Schedule(evt1)

		Expect(func() { _ = engine.Run() }).To(Panic())
	})

	It("should stop and return handler errors", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEventAt(mockCtrl, 1.0, handler, false)
		evt2 := mockEventAt(mockCtrl, 2.0, handler, false)
		errBroken := errors.New("broken")

		handler.EXPECT().Handle(evt1).Return(errBroken)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		err := engine.Run()
		Expect(err).To(MatchError(errBroken))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(1.0)))
	})

	It("should invoke hooks around each event", func() {
		handler := NewMockHandler(mockCtrl)
		evt := mockEventAt(mockCtrl, 1.0, handler, false)
		hook := &recordingHook{}
		engine.AcceptHook(hook)

		handler.EXPECT().Handle(evt)
		engine.Schedule(evt)

		Expect(engine.Run()).To(Succeed())
		Expect(hook.positions).To(Equal(
			[]*HookPos{HookPosBeforeEvent, HookPosAfterEvent}))
	})

	It("should call simulation end handlers", func() {
		h := &endRecorder{}
		engine.RegisterSimulationEndHandler(h)

		var endTime VTimeInSec = -1
		engine.RegisterSimulationEndHandler(
			SimulationEndHandlerFunc(func(now VTimeInSec) { endTime = now }))

		engine.Finished()

		Expect(h.called).To(BeTrue())
		Expect(endTime).To(Equal(VTimeInSec(0)))
	})
})

type recordingHook struct {
	positions []*HookPos
	items     []interface{}
}

func (h *recordingHook) Func(ctx HookCtx) {
	h.positions = append(h.positions, ctx.Pos)
	h.items = append(h.items, ctx.Item)
}

type endRecorder struct {
	called bool
}

func (h *endRecorder) Handle(_ VTimeInSec) {
	h.called = true
}
