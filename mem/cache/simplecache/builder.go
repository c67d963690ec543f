package simplecache

import (
	"log"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim"
)

// A Builder can build caches.
type Builder struct {
	engine      sim.EventScheduler
	freq        sim.Freq
	spec        Spec
	newPolicy   cache.ReplacementFactory
	debugLogger *log.Logger
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		spec:      Defaults(),
		newPolicy: cache.NewTreePLRUPolicy,
	}
}

// WithEngine sets the engine that drives the cache.
func (b Builder) WithEngine(engine sim.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the cache. It overrides Spec.Freq.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithSpec sets the parameters of the cache.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// WithReplacementFactory sets how the replacement state of each set is
// created.
func (b Builder) WithReplacementFactory(f cache.ReplacementFactory) Builder {
	b.newPolicy = f
	return b
}

// WithDebugLogger makes the cache log every message that arrives at its
// upper request port.
func (b Builder) WithDebugLogger(logger *log.Logger) Builder {
	b.debugLogger = logger
	return b
}

// Build creates a cache. It panics if the parameters are invalid.
func (b Builder) Build(name string) *Comp {
	c, err := b.BuildE(name)
	if err != nil {
		panic(err)
	}

	return c
}

// BuildE creates a cache or returns the *cache.ConfigError that prevents
// it.
func (b Builder) BuildE(name string) (*Comp, error) {
	spec := b.spec
	if b.freq != 0 {
		spec.Freq = b.freq
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if b.engine == nil {
		log.Panic("cache builder requires an engine")
	}

	g, _ := spec.Geometry()

	c := &Comp{
		engine:     b.engine,
		freq:       spec.Freq,
		spec:       spec,
		writebacks: make(map[string]*mem.MemReq),
	}
	c.ComponentBase = sim.NewComponentBase(name)
	c.agu = cache.NewDefaultAGU(g)
	c.block = cache.NewCacheBlock(g, c.agu, b.newPolicy)

	b.createPorts(c, name)
	b.createCreditCounters(c)

	if b.debugLogger != nil {
		c.upper.ReqIn.AcceptHook(
			sim.NewPortMsgLogger(b.debugLogger, b.engine))
	}

	b.engine.Schedule(&startupEvent{
		EventBase: sim.NewEventBase(
			spec.Freq.ThisTick(b.engine.CurrentTime()), c),
	})

	return c, nil
}

func (b Builder) createPorts(c *Comp, name string) {
	port := func(local string, bufCap int) sim.Port {
		p := sim.NewPort(c, bufCap, sim.BuildName(name, local))
		c.AddPort(local, p)

		return p
	}

	c.upper = mem.ResponderPorts{
		ReqIn:             port("UpperReq", 1),
		ReqCreditOut:      port("UpperReqCredit", 1),
		RspOut:            port("UpperRsp", 1),
		RspCreditIn:       port("UpperRspCredit", 4),
		SnoopReqOut:       port("UpperSnoopReq", 1),
		SnoopReqCreditIn:  port("UpperSnoopReqCredit", 4),
		SnoopRspIn:        port("UpperSnoopRsp", 1),
		SnoopRspCreditOut: port("UpperSnoopRspCredit", 1),
	}

	c.lower = mem.RequesterPorts{
		ReqOut:            port("LowerReq", 1),
		ReqCreditIn:       port("LowerReqCredit", 4),
		RspIn:             port("LowerRsp", 1),
		RspCreditOut:      port("LowerRspCredit", 1),
		SnoopReqIn:        port("LowerSnoopReq", 1),
		SnoopReqCreditOut: port("LowerSnoopReqCredit", 1),
		SnoopRspOut:       port("LowerSnoopRsp", 1),
		SnoopRspCreditIn:  port("LowerSnoopRspCredit", 4),
	}
}

func (b Builder) createCreditCounters(c *Comp) {
	counter := func(port sim.Port) *sim.CreditCounter {
		cc := sim.NewCreditCounter(port.Name())
		cc.OnViolation = func(reason string) interface{} {
			return &cache.ProtocolViolation{
				Unit:      c.Name(),
				Channel:   port.Name(),
				Timestamp: c.now(),
				Reason:    reason,
			}
		}

		return cc
	}

	c.upperRspCredit = counter(c.upper.RspOut)
	c.lowerReqCredit = counter(c.lower.ReqOut)
	c.upperSnoopReqCredit = counter(c.upper.SnoopReqOut)
	c.lowerSnoopRspCredit = counter(c.lower.SnoopRspOut)
}

func taskID(req *mem.MemReq, c *Comp) string {
	return req.ID + "@" + c.Name()
}
