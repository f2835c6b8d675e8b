package ticksched

import "sync/atomic"

// Phase represents the current position of the scheduler's state machine.
//
// State Machine:
//
//	PhaseIdle → PhaseRunningSync                  [Run()]
//	PhaseRunningSync → PhaseDrainingPriority      [sync block returned]
//	PhaseDrainingPriority → PhaseDrainingMicrotask
//	PhaseDrainingMicrotask → PhaseTimers          [iteration loop entry]
//	PhaseTimers → PhasePoll → PhaseCheck          [fixed order per iteration]
//	{macrotask phases} → PhaseDrainingPriority    [per-callback drain]
//	any → PhaseClosed                             [all stores empty]
//	PhaseClosed → (terminal)
//
// Transition Rules:
//   - Run entry uses tryTransition (CAS) so concurrent Run calls lose
//     cleanly.
//   - PhaseClosed is irreversible and uses store.
type Phase uint32

const (
	// PhaseIdle indicates the scheduler has been created but Run has not
	// been called.
	PhaseIdle Phase = iota
	// PhaseRunningSync indicates the caller's synchronous block is
	// executing.
	PhaseRunningSync
	// PhaseDrainingPriority indicates the priority FIFO is being drained
	// to exhaustion.
	PhaseDrainingPriority
	// PhaseDrainingMicrotask indicates the microtask FIFO is being drained
	// to exhaustion.
	PhaseDrainingMicrotask
	// PhaseTimers indicates expired timers are executing.
	PhaseTimers
	// PhasePoll indicates the poll (I/O completion) snapshot is executing.
	PhasePoll
	// PhaseCheck indicates the check snapshot is executing.
	PhaseCheck
	// PhaseClosed indicates the run has completed. Terminal.
	PhaseClosed
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseRunningSync:
		return "RunningSync"
	case PhaseDrainingPriority:
		return "DrainingPriority"
	case PhaseDrainingMicrotask:
		return "DrainingMicrotask"
	case PhaseTimers:
		return "TimersPhase"
	case PhasePoll:
		return "PollPhase"
	case PhaseCheck:
		return "CheckPhase"
	case PhaseClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// phaseCell is an atomic phase holder. Only the run goroutine writes it,
// but any goroutine may observe it, so loads and stores are atomic.
type phaseCell struct {
	v atomic.Uint32
}

// load returns the current phase atomically.
func (c *phaseCell) load() Phase {
	return Phase(c.v.Load())
}

// store atomically stores a new phase. No transition validation.
func (c *phaseCell) store(p Phase) {
	c.v.Store(uint32(p))
}

// tryTransition attempts to atomically transition from one phase to
// another. Returns true if the transition was performed.
func (c *phaseCell) tryTransition(from, to Phase) bool {
	return c.v.CompareAndSwap(uint32(from), uint32(to))
}
