package cmd

import (
	"fmt"
	"log"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/acceptancetests/memaccessagent"
	"github.com/sarchlab/cachesim/mem/cache/simplecache"
	"github.com/sarchlab/cachesim/mem/idealmemcontroller"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/tracing"
)

// runOptions are the parameters of one run.
type runOptions struct {
	levels            int
	lineSize          uint64
	l1Size, l1Ways    uint64
	l2Size, l2Ways    uint64
	latency           int
	l2Exclusive       bool
	writeThrough      bool
	noWriteAllocate   bool
	markFillsModified bool

	memLatency int
	memCredits uint32

	accesses    int
	readPercent int
	maxAddr     uint64
	seed        int64

	debug       bool
	logEvents   bool
	parallelIDs bool
}

func defaultRunOptions() runOptions {
	return runOptions{
		levels:      1,
		lineSize:    64,
		l1Size:      1024,
		l1Ways:      4,
		l2Size:      8192,
		l2Ways:      8,
		latency:     1,
		memLatency:  100,
		memCredits:  1,
		accesses:    10000,
		readPercent: 50,
		maxAddr:     1 << 16,
		seed:        1,
	}
}

func (o runOptions) cacheSpec(level int) simplecache.Spec {
	spec := simplecache.Defaults()
	spec.LineSize = o.lineSize
	spec.Latency = o.latency
	spec.MarkFillsModified = o.markFillsModified

	if level == 1 {
		spec.Size = o.l1Size
		spec.Ways = o.l1Ways
		spec.FirstLevel = true
		spec.WriteBack = !o.writeThrough
		spec.WriteAllocate = !o.noWriteAllocate
	} else {
		spec.Size = o.l2Size
		spec.Ways = o.l2Ways
		spec.Inclusive = !o.l2Exclusive
	}

	spec.LastLevel = level == o.levels

	return spec
}

// platform is a random tester on top of one or two caches and an ideal
// memory.
type platform struct {
	engine     *sim.SerialEngine
	simulation *sim.Simulation
	agent      *memaccessagent.MemAccessAgent
	caches     []*simplecache.Comp
	memCtl     *idealmemcontroller.Comp
	latency    *tracing.AverageTimeTracer
}

func buildPlatform(o runOptions) (*platform, error) {
	if o.levels < 1 || o.levels > 2 {
		return nil, fmt.Errorf("levels must be 1 or 2, got %d", o.levels)
	}

	p := &platform{engine: sim.NewSerialEngine()}
	p.simulation = sim.NewSimulation(p.engine)

	if o.logEvents {
		p.engine.AcceptHook(sim.NewEventLogger(log.Default()))
	}

	p.engine.RegisterSimulationEndHandler(
		sim.SimulationEndHandlerFunc(func(now sim.VTimeInSec) {
			log.Printf("simulation ended at %.10f", now)
		}))

	agentSpec := memaccessagent.Defaults()
	agentSpec.MaxAddress = o.maxAddr
	agentSpec.LineSize = o.lineSize
	agentSpec.NumAccesses = o.accesses
	agentSpec.ReadPercent = o.readPercent
	agentSpec.Seed = o.seed

	if err := agentSpec.Validate(); err != nil {
		return nil, err
	}

	p.agent = memaccessagent.MakeBuilder().
		WithEngine(p.engine).
		WithSpec(agentSpec).
		Build("Agent")
	p.simulation.RegisterComponent(p.agent)

	upper := p.agent.RequesterPorts()

	for level := 1; level <= o.levels; level++ {
		b := simplecache.MakeBuilder().
			WithEngine(p.engine).
			WithSpec(o.cacheSpec(level))

		if o.debug {
			b = b.WithDebugLogger(log.Default())
		}

		c, err := b.BuildE(fmt.Sprintf("L%d", level))
		if err != nil {
			return nil, err
		}

		mem.Connect(fmt.Sprintf("L%dLink", level), p.engine, c.Spec().Freq, 1,
			upper, c.UpperPorts())

		p.caches = append(p.caches, c)
		p.simulation.RegisterComponent(c)
		upper = c.LowerPorts()
	}

	memSpec := idealmemcontroller.Defaults()
	memSpec.Latency = o.memLatency
	memSpec.Capacity = o.maxAddr
	memSpec.ReqCredits = o.memCredits

	if err := memSpec.Validate(); err != nil {
		return nil, err
	}

	p.memCtl = idealmemcontroller.MakeBuilder().
		WithEngine(p.engine).
		WithSpec(memSpec).
		Build("Mem")
	p.simulation.RegisterComponent(p.memCtl)

	mem.Connect("MemLink", p.engine, memSpec.Freq, 1,
		upper, p.memCtl.ResponderPorts())

	p.latency = tracing.NewAverageTimeTracer(p.engine, tracing.KindIs("req_in"))
	tracing.CollectTrace(p.caches[0], p.latency)

	return p, nil
}

// traceInto records the tasks of every cache and the memory.
func (p *platform) traceInto(recorder datarecording.DataRecorder) *tracing.DBTracer {
	tracer := tracing.NewDBTracer(p.engine, recorder)

	for _, c := range p.caches {
		tracing.CollectTrace(c, tracer)
	}

	tracing.CollectTrace(p.memCtl, tracer)

	return tracer
}

type cacheReport struct {
	Name string `json:"name"`
	simplecache.Stats
}

type report struct {
	Issued     int            `json:"issued"`
	Completed  int            `json:"completed"`
	Mismatches int            `json:"mismatches"`
	EndTime    sim.VTimeInSec `json:"end_time"`
	AvgLatency sim.VTimeInSec `json:"avg_latency"`
	MaxLatency sim.VTimeInSec `json:"max_latency"`
	Caches     []cacheReport  `json:"caches"`
}

// run drives the platform until no event is left and checks that every
// access completed with the data last written.
func (p *platform) run() (report, error) {
	err := p.engine.Run()
	p.engine.Finished()

	r := p.report()
	if err != nil {
		return r, err
	}

	if !p.agent.Done() {
		return r, fmt.Errorf("only %d of %d accesses completed",
			r.Completed, r.Issued)
	}

	if r.Mismatches > 0 {
		return r, fmt.Errorf("%d reads returned unexpected data", r.Mismatches)
	}

	for _, c := range p.caches {
		for _, cc := range c.CreditCounters() {
			if !cc.Conserved() {
				return r, fmt.Errorf("credits of %s are not conserved",
					cc.Name())
			}
		}
	}

	return r, nil
}

func (p *platform) report() report {
	r := report{
		Issued:     p.agent.Issued(),
		Completed:  p.agent.Completed(),
		Mismatches: p.agent.NumMismatches(),
		EndTime:    p.engine.CurrentTime(),
		AvgLatency: p.latency.AverageTime(),
		MaxLatency: p.latency.MaxTime(),
	}

	for _, c := range p.caches {
		r.Caches = append(r.Caches, cacheReport{Name: c.Name(), Stats: c.Stats()})
	}

	return r
}

type statsEntry struct {
	Cache      string
	ReadHit    uint64
	ReadMiss   uint64
	WriteHit   uint64
	WriteMiss  uint64
	Evictions  uint64
	WriteBacks uint64
	Forwards   uint64
	HitRate    float64
}

// recordStats writes the counters of every cache into the recorder.
func (p *platform) recordStats(recorder datarecording.DataRecorder) {
	recorder.CreateTable("cache_stats", statsEntry{})

	for _, c := range p.caches {
		s := c.Stats()
		recorder.InsertData("cache_stats", statsEntry{
			Cache:      c.Name(),
			ReadHit:    s.ReadHit,
			ReadMiss:   s.ReadMiss,
			WriteHit:   s.WriteHit,
			WriteMiss:  s.WriteMiss,
			Evictions:  s.Evictions,
			WriteBacks: s.WriteBacks,
			Forwards:   s.Forwards,
			HitRate:    s.HitRate(),
		})
	}

	recorder.Flush()
}
