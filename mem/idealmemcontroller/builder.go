package idealmemcontroller

import (
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim"
)

// A Builder can build ideal memory controllers.
type Builder struct {
	engine sim.EventScheduler
	spec   Spec
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{spec: Defaults()}
}

// WithEngine sets the engine that drives the memory.
func (b Builder) WithEngine(engine sim.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithSpec sets the parameters of the memory.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// WithLatency sets the number of cycles a request takes.
func (b Builder) WithLatency(latency int) Builder {
	b.spec.Latency = latency
	return b
}

// WithCapacity sets the number of bytes the memory stores.
func (b Builder) WithCapacity(capacity uint64) Builder {
	b.spec.Capacity = capacity
	return b
}

// WithReqCredits sets how many requests the memory accepts at a time.
func (b Builder) WithReqCredits(n uint32) Builder {
	b.spec.ReqCredits = n
	return b
}

// Build creates an ideal memory controller.
func (b Builder) Build(name string) *Comp {
	if err := b.spec.Validate(); err != nil {
		panic(err)
	}

	c := &Comp{
		spec:    b.spec,
		storage: mem.NewStorage(b.spec.Capacity),
	}
	c.TickingComponent = sim.NewTickingComponent(
		name, b.engine, b.spec.Freq, c)

	port := func(local string, bufCap int) sim.Port {
		p := sim.NewPort(c, bufCap, sim.BuildName(name, local))
		c.AddPort(local, p)

		return p
	}

	c.ports = mem.ResponderPorts{
		ReqIn:        port("Req", int(b.spec.ReqCredits)),
		ReqCreditOut: port("ReqCredit", 1),
		RspOut:       port("Rsp", 1),
		RspCreditIn:  port("RspCredit", 4),
	}

	c.rspCredit = sim.NewCreditCounter(c.ports.RspOut.Name())
	c.TickLater()

	return c
}
