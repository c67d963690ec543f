package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/browser"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/sim"
	"github.com/spf13/cobra"
)

var runOpts = defaultRunOptions()

// useParallelIDs must run before anything generates an ID.
var useParallelIDs = sim.UseParallelIDGenerator

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive a cache hierarchy with random reads and writes.",
	Long: "`run` builds one or two caches on top of an ideal memory, " +
		"issues random accesses, and checks every read against the " +
		"data last written.",
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	o := &runOpts

	f.IntVar(&o.levels, "levels", o.levels, "Number of cache levels, 1 or 2.")
	f.Uint64Var(&o.lineSize, "line-size", o.lineSize, "Line size in bytes.")
	f.Uint64Var(&o.l1Size, "l1-size", o.l1Size, "L1 size in bytes.")
	f.Uint64Var(&o.l1Ways, "l1-ways", o.l1Ways, "L1 ways.")
	f.Uint64Var(&o.l2Size, "l2-size", o.l2Size, "L2 size in bytes.")
	f.Uint64Var(&o.l2Ways, "l2-ways", o.l2Ways, "L2 ways.")
	f.IntVar(&o.latency, "latency", o.latency, "Lookup latency in cycles.")
	f.BoolVar(&o.l2Exclusive, "l2-exclusive", o.l2Exclusive,
		"Do not keep the lines the L2 fetches for the L1.")
	f.BoolVar(&o.writeThrough, "write-through", o.writeThrough,
		"Pass L1 writes to the next level.")
	f.BoolVar(&o.noWriteAllocate, "no-write-allocate", o.noWriteAllocate,
		"Do not allocate L1 lines on write misses.")
	f.BoolVar(&o.markFillsModified, "fills-modified", o.markFillsModified,
		"Install fetched lines as Modified.")
	f.IntVar(&o.memLatency, "mem-latency", o.memLatency,
		"Memory latency in cycles.")
	f.Uint32Var(&o.memCredits, "mem-credits", o.memCredits,
		"Requests the memory accepts at once.")
	f.IntVar(&o.accesses, "accesses", o.accesses, "Number of accesses.")
	f.IntVar(&o.readPercent, "read-percent", o.readPercent,
		"Percentage of accesses that are reads.")
	f.Uint64Var(&o.maxAddr, "max-addr", o.maxAddr,
		"Accesses fall below this address.")
	f.Int64Var(&o.seed, "seed", o.seed, "Seed of the random accesses.")
	f.BoolVar(&o.debug, "debug", o.debug,
		"Log every request that arrives at a cache.")
	f.BoolVar(&o.logEvents, "log-events", o.logEvents,
		"Log every event the engine handles.")
	f.BoolVar(&o.parallelIDs, "parallel-ids", o.parallelIDs,
		"Generate globally unique IDs instead of sequential ones.")

	f.String("log-file", "", "Write logs into this file.")
	f.String("db", "", "Record statistics into this SQLite file.")
	f.Bool("trace", false, "Also record every task into the --db file.")
	f.Bool("json", false, "Print the report as JSON.")
	f.Bool("monitor", false, "Serve the monitor while running.")
	f.Int("monitor-port", 0, "Port of the monitor. Zero picks a free one.")
	f.Bool("open-monitor", false, "Open the monitor in a browser.")
}

func runRun(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	logFile, _ := flags.GetString("log-file")
	dbPath, _ := flags.GetString("db")
	trace, _ := flags.GetBool("trace")
	asJSON, _ := flags.GetBool("json")
	monitor, _ := flags.GetBool("monitor")
	monitorPort, _ := flags.GetInt("monitor-port")
	openMonitor, _ := flags.GetBool("open-monitor")

	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return err
		}
		defer f.Close()

		log.SetOutput(f)
	}

	if runOpts.parallelIDs {
		useParallelIDs()
	}

	p, err := buildPlatform(runOpts)
	if err != nil {
		return err
	}

	var recorder datarecording.DataRecorder
	if dbPath != "" {
		recorder = datarecording.NewDataRecorder(dbPath)
		defer recorder.Close()

		if trace {
			defer p.traceInto(recorder).Terminate()
		}
	}

	if monitor || openMonitor {
		startMonitor(p, monitorPort, openMonitor)
	}

	r, runErr := p.run()

	if recorder != nil {
		p.recordStats(recorder)
	}

	if err := printReport(cmd.OutOrStdout(), r, asJSON); err != nil {
		return err
	}

	return runErr
}

func startMonitor(p *platform, port int, open bool) {
	m := monitoring.NewMonitor().WithPortNumber(port)
	m.RegisterSimulation(p.simulation)

	bar := m.CreateProgressBar("Accesses", uint64(runOpts.accesses))
	p.engine.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
		if ctx.Pos != sim.HookPosAfterEvent {
			return
		}

		issued := p.agent.Issued()
		completed := p.agent.Completed()
		bar.Update(uint64(completed), uint64(issued-completed))
	}))

	addr := m.StartServer()

	if open {
		if err := browser.OpenURL(addr + "/api/list_components"); err != nil {
			log.Printf("cannot open the monitor: %v", err)
		}
	}
}

func printReport(w io.Writer, r report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(r)
	}

	fmt.Fprintf(w, "accesses: %d issued, %d completed, %d mismatches\n",
		r.Issued, r.Completed, r.Mismatches)
	fmt.Fprintf(w, "simulated time: %.10f s, L1 latency: "+
		"%.10f s average, %.10f s max\n",
		r.EndTime, r.AvgLatency, r.MaxLatency)

	for _, c := range r.Caches {
		fmt.Fprintf(w,
			"%s: read %d/%d, write %d/%d, hit rate %.4f, "+
				"evictions %d, write-backs %d, forwards %d\n",
			c.Name,
			c.ReadHit, c.ReadHit+c.ReadMiss,
			c.WriteHit, c.WriteHit+c.WriteMiss,
			c.HitRate(),
			c.Evictions, c.WriteBacks, c.Forwards)
	}

	return nil
}
