package sim

// TimeTeller tells the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler accepts events to be handled in the future.
type EventScheduler interface {
	TimeTeller

	Schedule(e Event)
}

// A SimulationEndHandler runs once the simulation is declared finished.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// SimulationEndHandlerFunc turns a function into a SimulationEndHandler.
type SimulationEndHandlerFunc func(now VTimeInSec)

// Handle calls f.
func (f SimulationEndHandlerFunc) Handle(now VTimeInSec) {
	f(now)
}

// An Engine drives a discrete event simulation.
type Engine interface {
	Hookable
	EventScheduler

	// Run handles events until none is left. It can be called again after
	// more events are scheduled.
	Run() error

	// Pause blocks the engine before the next event until Continue is
	// called.
	Pause()
	Continue()

	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished calls every SimulationEndHandler.
	Finished()
}
