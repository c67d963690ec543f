package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cachesim/sim"
)

var _ = Describe("Api", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("with hooks", func() {
		BeforeEach(func() {
			domain.EXPECT().NumHooks().Return(1).AnyTimes()
		})

		It("should panic if ID is not given", func() {
			Expect(func() {
				StartTask("", "123", domain, "kind", "what", nil)
			}).Should(Panic())
		})

		It("should panic if domain's name is empty", func() {
			domain.EXPECT().Name().Return("").AnyTimes()
			Expect(func() {
				StartTask("id", "123", domain, "kind", "what", nil)
			}).Should(Panic())
		})

		It("should panic if kind is empty", func() {
			Expect(func() {
				StartTask("id", "123", domain, "", "what", nil)
			}).Should(Panic())
		})

		It("should panic if what is empty", func() {
			Expect(func() {
				StartTask("id", "123", domain, "kind", "", nil)
			}).Should(Panic())
		})

		It("should start a task at the domain", func() {
			domain.EXPECT().Name().Return("Cache").AnyTimes()
			domain.EXPECT().InvokeHook(gomock.Any()).Do(func(ctx sim.HookCtx) {
				task := ctx.Item.(Task)
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosTaskStart))
				Expect(task.ID).To(Equal("id"))
				Expect(task.ParentID).To(Equal("123"))
				Expect(task.Where).To(Equal("Cache"))
			})

			StartTask("id", "123", domain, "kind", "what", nil)
		})

		It("should add a step", func() {
			domain.EXPECT().InvokeHook(gomock.Any()).Do(func(ctx sim.HookCtx) {
				task := ctx.Item.(Task)
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosTaskStep))
				Expect(task.Steps).To(HaveLen(1))
				Expect(task.Steps[0].What).To(Equal("hit"))
			})

			AddTaskStep("id", domain, "hit")
		})

		It("should end a task", func() {
			domain.EXPECT().InvokeHook(gomock.Any()).Do(func(ctx sim.HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosTaskEnd))
				Expect(ctx.Item.(Task).ID).To(Equal("id"))
			})

			EndTask("id", domain)
		})
	})

	It("should panic if domain is nil", func() {
		Expect(func() {
			StartTask("id", "123", nil, "kind", "what", nil)
		}).Should(Panic())
	})

	It("should skip domains without hooks", func() {
		domain.EXPECT().NumHooks().Return(0).Times(3)

		StartTask("", "", domain, "", "", nil)
		AddTaskStep("id", domain, "hit")
		EndTask("id", domain)
	})
})

var _ = Describe("CollectTrace", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		domain   *sim.HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)
		domain = sim.NewHookableBase()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should route task hooks to the tracer", func() {
		d := &namedDomain{HookableBase: domain, name: "Domain"}
		CollectTrace(d, tracer)

		gomock.InOrder(
			tracer.EXPECT().StartTask(gomock.Any()),
			tracer.EXPECT().StepTask(gomock.Any()),
			tracer.EXPECT().EndTask(gomock.Any()),
		)

		StartTask("1", "", d, "req_in", "Read", nil)
		AddTaskStep("1", d, "miss")
		EndTask("1", d)
	})

	It("should ignore hooks that do not carry tasks", func() {
		d := &namedDomain{HookableBase: domain, name: "Domain"}
		CollectTrace(d, tracer)

		d.InvokeHook(sim.HookCtx{Domain: d, Pos: sim.HookPosBeforeEvent})
		d.InvokeHook(sim.HookCtx{
			Domain: d,
			Pos:    HookPosTaskStart,
			Item:   "not a task",
		})
	})
})

type namedDomain struct {
	*sim.HookableBase
	name string
}

func (d *namedDomain) Name() string {
	return d.name
}
