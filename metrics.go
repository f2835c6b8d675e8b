package ticksched

import "sync"

// Metrics is a snapshot of runtime statistics for a scheduler. Collection
// is opt-in via WithMetrics; all counters are zero otherwise.
//
// Thread Safety: Scheduler.Metrics returns a copy, safe for concurrent
// reads while a run is in progress.
type Metrics struct {
	// Executed task counts per kind.
	PriorityExecuted  uint64
	MicrotaskExecuted uint64
	TimerExecuted     uint64
	PollExecuted      uint64
	CheckExecuted     uint64

	// Failures counts payloads that panicked.
	Failures uint64

	// Cancellations counts successful Cancel calls.
	Cancellations uint64

	// Iterations counts macrotask loop iterations (Timers/Poll/Check
	// sweeps).
	Iterations uint64

	// MaxDrainDepth is the largest number of callbacks executed by a
	// single priority/microtask drain pass.
	MaxDrainDepth int
}

// TotalExecuted returns the number of task payloads that began executing.
func (m Metrics) TotalExecuted() uint64 {
	return m.PriorityExecuted + m.MicrotaskExecuted + m.TimerExecuted +
		m.PollExecuted + m.CheckExecuted
}

// metricsState is the mutable collector behind Metrics. All methods are
// safe on a nil receiver, so the scheduler can record unconditionally.
type metricsState struct {
	mu sync.Mutex
	m  Metrics
}

func (x *metricsState) taskExecuted(kind Kind) {
	if x == nil {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	switch kind {
	case KindPriority:
		x.m.PriorityExecuted++
	case KindMicrotask:
		x.m.MicrotaskExecuted++
	case KindTimer:
		x.m.TimerExecuted++
	case KindPoll:
		x.m.PollExecuted++
	case KindCheck:
		x.m.CheckExecuted++
	}
}

func (x *metricsState) taskFailed() {
	if x == nil {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.m.Failures++
}

func (x *metricsState) taskCancelled() {
	if x == nil {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.m.Cancellations++
}

func (x *metricsState) iteration() {
	if x == nil {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.m.Iterations++
}

func (x *metricsState) drainDepth(n int) {
	if x == nil {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if n > x.m.MaxDrainDepth {
		x.m.MaxDrainDepth = n
	}
}

func (x *metricsState) snapshot() Metrics {
	if x == nil {
		return Metrics{}
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.m
}
