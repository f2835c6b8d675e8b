package ticksched

// Kind identifies which store a task was scheduled into, and therefore which
// ordering rules govern it.
type Kind uint8

const (
	// KindPriority tasks live in the highest-precedence FIFO, drained to
	// exhaustion before microtasks.
	KindPriority Kind = iota
	// KindMicrotask tasks are drained to exhaustion between macrotasks.
	KindMicrotask
	// KindTimer tasks live in the deadline-ordered heap.
	KindTimer
	// KindPoll tasks model I/O completion callbacks.
	KindPoll
	// KindCheck tasks model check/immediate callbacks.
	KindCheck
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindPriority:
		return "priority"
	case KindMicrotask:
		return "microtask"
	case KindTimer:
		return "timer"
	case KindPoll:
		return "poll"
	case KindCheck:
		return "check"
	default:
		return "unknown"
	}
}

// Handle is an opaque reference to a scheduled task, unique per Scheduler
// instance. The zero Handle is never issued and is safe to use as a "no
// task" sentinel.
type Handle uint64

// ExecutionLog is the ordered record of executed task handles for one run.
// A handle appears in the log once its payload has begun executing, so a
// payload that panics is still recorded.
type ExecutionLog []Handle

// task is one schedulable unit of work.
//
// A task lives in exactly one store. The seq counter is assigned at
// scheduling time and strictly increases across all kinds combined; it is
// the universal tie-break. Cancellation tombstones the task in place for
// FIFO stores (drains skip it) and removes it eagerly from the timer heap.
type task struct {
	payload   func()
	handle    Handle
	seq       uint64
	deadline  int64 // logical tick; meaningful only for KindTimer
	heapIndex int   // index in timerHeap, -1 when not in the heap
	kind      Kind
	cancelled bool // set at most once, never unset
}
