package memaccessagent

import (
	"math/rand"

	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim"
)

// A Builder can build MemAccessAgents.
type Builder struct {
	engine sim.EventScheduler
	freq   sim.Freq
	spec   Spec
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
		spec: Defaults(),
	}
}

// WithEngine sets the engine that drives the agent.
func (b Builder) WithEngine(engine sim.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the agent.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithSpec sets the parameters of the agent.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// Build creates an agent.
func (b Builder) Build(name string) *MemAccessAgent {
	if err := b.spec.Validate(); err != nil {
		panic(err)
	}

	a := &MemAccessAgent{
		spec:          b.spec,
		rng:           rand.New(rand.NewSource(b.spec.Seed)),
		KnownMemValue: make(map[uint64]byte),
		pendingReads:  make(map[string]pendingRead),
		pendingWrites: make(map[string]*mem.MemReq),
	}
	a.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, a)

	port := func(local string) sim.Port {
		p := sim.NewPort(a, 4, sim.BuildName(name, local))
		a.AddPort(local, p)

		return p
	}

	a.ports = mem.RequesterPorts{
		ReqOut:       port("Req"),
		ReqCreditIn:  port("ReqCredit"),
		RspIn:        port("Rsp"),
		RspCreditOut: port("RspCredit"),
	}

	a.reqCredit = sim.NewCreditCounter(a.ports.ReqOut.Name())
	a.TickLater()

	return a
}
