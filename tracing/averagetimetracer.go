package tracing

import (
	"sync"

	"github.com/sarchlab/cachesim/sim"
)

// AverageTimeTracer measures how long the tasks accepted by its filter take
// from start to end.
type AverageTimeTracer struct {
	timeTeller sim.TimeTeller
	filter     TaskFilter

	lock      sync.Mutex
	startedAt map[string]sim.VTimeInSec
	total     sim.VTimeInSec
	max       sim.VTimeInSec
	count     uint64
}

// NewAverageTimeTracer creates a new AverageTimeTracer.
func NewAverageTimeTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *AverageTimeTracer {
	return &AverageTimeTracer{
		timeTeller: timeTeller,
		filter:     filter,
		startedAt:  make(map[string]sim.VTimeInSec),
	}
}

// AverageTime returns the mean duration of the tasks that have ended, or 0
// if none has.
func (t *AverageTimeTracer) AverageTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.count == 0 {
		return 0
	}

	return t.total / sim.VTimeInSec(t.count)
}

// MaxTime returns the longest duration of the tasks that have ended.
func (t *AverageTimeTracer) MaxTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.max
}

// TotalCount returns the number of tasks that have ended.
func (t *AverageTimeTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count
}

// StartTask remembers when an accepted task starts.
func (t *AverageTimeTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	t.startedAt[task.ID] = now
	t.lock.Unlock()
}

// StepTask is ignored.
func (t *AverageTimeTracer) StepTask(_ Task) {}

// EndTask adds the duration of a task that was started.
func (t *AverageTimeTracer) EndTask(task Task) {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.startedAt[task.ID]
	if !ok {
		return
	}

	delete(t.startedAt, task.ID)

	d := now - start
	t.total += d
	t.count++

	if d > t.max {
		t.max = d
	}
}
