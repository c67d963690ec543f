package tracing

import "github.com/sarchlab/cachesim/sim"

// A Tracer receives the tasks of the domains it collects from.
type Tracer interface {
	StartTask(task Task)
	StepTask(task Task)
	EndTask(task Task)
}

// CollectTrace attaches the tracer to a domain.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	domain.AcceptHook(taskHook{tracer: tracer})
}

// taskHook forwards task hook positions to a tracer and ignores the others.
type taskHook struct {
	tracer Tracer
}

func (h taskHook) Func(ctx sim.HookCtx) {
	task, ok := ctx.Item.(Task)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosTaskStart:
		h.tracer.StartTask(task)
	case HookPosTaskStep:
		h.tracer.StepTask(task)
	case HookPosTaskEnd:
		h.tracer.EndTask(task)
	}
}
