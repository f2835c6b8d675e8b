package ticksched

import (
	"container/heap"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// Scheduler is a deterministic cooperative task scheduler. It owns the five
// task stores exclusively; collaborators interact only through the
// scheduling operations, Cancel, and Run.
//
// A Scheduler supports exactly one run. Construct a new instance per run to
// keep independent runs isolated (no shared mutable state).
type Scheduler struct { // betteralign:ignore
	// Prevent copying
	_ [0]func()

	// Phase cell (atomic, observable from any goroutine)
	phase phaseCell

	// Logical time; advances only on entering a non-empty Timers phase
	tick atomic.Int64

	// mu guards the stores, the handle registry, and the counters below.
	// Task payloads always execute with mu released.
	mu       sync.Mutex
	priority taskQueue
	micro    taskQueue
	poll     taskQueue
	check    taskQueue
	timers   timerHeap
	handles  map[Handle]*task

	// lastHandle/lastSeq are monotonic across all kinds combined; never
	// reused, never reset.
	lastHandle uint64
	lastSeq    uint64

	// execLog is appended to only by the run goroutine.
	execLog ExecutionLog

	logger   *logiface.Logger[logiface.Event]
	sink     ErrorSink
	metrics  *metricsState
	drainCap int
}

// New creates a scheduler in the Idle phase.
func New(opts ...SchedulerOption) (*Scheduler, error) {
	cfg, err := resolveSchedulerOptions(opts)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		handles:  make(map[Handle]*task),
		logger:   cfg.logger,
		sink:     cfg.sink,
		drainCap: cfg.drainCap,
	}
	if cfg.metricsEnabled {
		s.metrics = &metricsState{}
	}
	return s, nil
}

// SchedulePriority enqueues payload into the highest-precedence FIFO. It
// executes before any microtask, including when scheduled from a task that
// is itself being drained from the priority queue.
func (s *Scheduler) SchedulePriority(payload func()) (Handle, error) {
	return s.schedule(KindPriority, payload, 0)
}

// ScheduleMicrotask enqueues payload into the microtask FIFO, drained to
// exhaustion after the priority queue and after every macrotask callback.
func (s *Scheduler) ScheduleMicrotask(payload func()) (Handle, error) {
	return s.schedule(KindMicrotask, payload, 0)
}

// ScheduleTimer enqueues payload into the timer heap with
// deadline = CurrentTick() + delay, computed at schedule time. The delay is
// in logical ticks and must be non-negative; zero fires in the next Timers
// phase.
func (s *Scheduler) ScheduleTimer(payload func(), delay int64) (Handle, error) {
	return s.schedule(KindTimer, payload, delay)
}

// ScheduleIO enqueues payload into the poll FIFO. It is intended to be
// called by an external I/O collaborator; tasks enqueued while a Poll phase
// is executing are deferred to the next iteration's Poll phase.
func (s *Scheduler) ScheduleIO(payload func()) (Handle, error) {
	return s.schedule(KindPoll, payload, 0)
}

// ScheduleCheck enqueues payload into the check FIFO, visited after the
// Poll phase in each iteration.
func (s *Scheduler) ScheduleCheck(payload func()) (Handle, error) {
	return s.schedule(KindCheck, payload, 0)
}

func (s *Scheduler) schedule(kind Kind, payload func(), delay int64) (Handle, error) {
	if payload == nil {
		return 0, ErrNilPayload
	}
	if delay < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeDelay, delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase.load() == PhaseClosed {
		return 0, ErrSchedulerClosed
	}

	s.lastHandle++
	s.lastSeq++
	t := &task{
		payload:   payload,
		handle:    Handle(s.lastHandle),
		seq:       s.lastSeq,
		heapIndex: -1,
		kind:      kind,
	}

	switch kind {
	case KindPriority:
		s.priority.push(t)
	case KindMicrotask:
		s.micro.push(t)
	case KindTimer:
		t.deadline = s.tick.Load() + delay
		heap.Push(&s.timers, t)
	case KindPoll:
		s.poll.push(t)
	case KindCheck:
		s.check.push(t)
	}

	s.handles[t.handle] = t
	return t.handle, nil
}

// Cancel revokes the task identified by handle. It returns true only if
// the task had not yet begun executing; false otherwise, including for
// unknown, already-executed, or already-cancelled handles. Cancel never
// errors and is safe to call from any goroutine.
func (s *Scheduler) Cancel(handle Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.handles[handle]
	if !ok {
		return false
	}

	t.cancelled = true
	delete(s.handles, handle)

	switch t.kind {
	case KindTimer:
		// Eager removal keeps the heap free of tombstones.
		if t.heapIndex >= 0 {
			heap.Remove(&s.timers, t.heapIndex)
		}
	case KindPriority:
		s.priority.noteCancelled()
	case KindMicrotask:
		s.micro.noteCancelled()
	case KindPoll:
		s.poll.noteCancelled()
	case KindCheck:
		s.check.noteCancelled()
	}

	s.metrics.taskCancelled()
	return true
}

// Run executes the full scheduler lifecycle: the synchronous block, the
// initial priority and microtask drains, then Timers/Poll/Check iterations
// until every store is empty. It returns the ordered log of executed task
// handles.
//
// Run may be called once. Subsequent calls return ErrRunCompleted; calls
// while a run is executing (including from a task payload) return
// ErrRunInProgress. On ErrDrainCapExceeded the partial log is returned
// alongside the error.
func (s *Scheduler) Run(syncBlock func()) (ExecutionLog, error) {
	if !s.phase.tryTransition(PhaseIdle, PhaseRunningSync) {
		if s.phase.load() == PhaseClosed {
			return nil, ErrRunCompleted
		}
		return nil, ErrRunInProgress
	}

	s.logger.Debug().Log("ticksched: run started")

	// Scheduling calls made here enqueue but do not execute.
	if syncBlock != nil {
		syncBlock()
	}

	err := s.runLoop()

	s.phase.store(PhaseClosed)
	s.logger.Debug().
		Int("executed", len(s.execLog)).
		Int64("tick", s.tick.Load()).
		Log("ticksched: run closed")

	return s.execLog, err
}

// runLoop sequences the drains and macrotask phases until no store holds a
// live task.
func (s *Scheduler) runLoop() error {
	for {
		if err := s.drainScheduled(); err != nil {
			return err
		}

		s.mu.Lock()
		idle := len(s.timers) == 0 && s.poll.empty() && s.check.empty() &&
			s.priority.empty() && s.micro.empty()
		if idle {
			// Closing under the mutex makes the idle check atomic with
			// respect to schedule: a concurrent enqueue either lands before
			// the check and executes, or observes Closed and errors. A
			// successful scheduling call is never silently dropped.
			s.phase.store(PhaseClosed)
			s.mu.Unlock()
			return nil
		}
		s.mu.Unlock()

		s.metrics.iteration()
		if err := s.timersPhase(); err != nil {
			return err
		}
		if err := s.snapshotPhase(&s.poll, PhasePoll); err != nil {
			return err
		}
		if err := s.snapshotPhase(&s.check, PhaseCheck); err != nil {
			return err
		}
	}
}

// drainScheduled drains the priority queue to exhaustion, then the
// microtask queue to exhaustion, repeating until both are empty. The
// priority queue is rechecked before every microtask so priority tasks
// scheduled by a microtask still precede the remaining microtasks.
//
// Draining is deliberately unbounded: recursive self-scheduling into either
// queue monopolizes the loop by contract. WithDrainCap bounds it for
// diagnostics only.
func (s *Scheduler) drainScheduled() error {
	executed := 0
	for {
		s.phase.store(PhaseDrainingPriority)
		for {
			t := s.takeLive(&s.priority)
			if t == nil {
				break
			}
			s.execute(t)
			executed++
			if s.drainCap > 0 && executed > s.drainCap {
				return fmt.Errorf("%w after %d callbacks", ErrDrainCapExceeded, executed)
			}
		}

		s.phase.store(PhaseDrainingMicrotask)
		t := s.takeLive(&s.micro)
		if t == nil {
			s.mu.Lock()
			done := s.priority.empty()
			s.mu.Unlock()
			if done {
				break
			}
			continue
		}
		s.execute(t)
		executed++
		if s.drainCap > 0 && executed > s.drainCap {
			return fmt.Errorf("%w after %d callbacks", ErrDrainCapExceeded, executed)
		}
	}
	s.metrics.drainDepth(executed)
	return nil
}

// timersPhase advances the logical tick to the smallest pending deadline
// and executes every now-ready timer in (deadline, sequence) order. The
// ready check is live: a timer callback that schedules another zero-delay
// timer extends the same phase.
func (s *Scheduler) timersPhase() error {
	s.mu.Lock()
	next := s.timers.peek()
	if next == nil {
		s.mu.Unlock()
		return nil
	}
	if next.deadline > s.tick.Load() {
		s.tick.Store(next.deadline)
	}
	tick := s.tick.Load()
	s.mu.Unlock()

	s.logger.Debug().Int64("tick", tick).Log("ticksched: timers phase")

	for {
		s.phase.store(PhaseTimers)
		t := s.takeReadyTimer()
		if t == nil {
			return nil
		}
		s.execute(t)
		if err := s.drainScheduled(); err != nil {
			return err
		}
	}
}

// snapshotPhase executes the tasks queued in q at phase entry. Exactly that
// many entries are popped, so tasks enqueued during the phase are deferred
// to the next iteration; this prevents a phase that keeps re-scheduling
// into itself from running forever.
func (s *Scheduler) snapshotPhase(q *taskQueue, phase Phase) error {
	s.mu.Lock()
	n := q.len()
	s.mu.Unlock()

	for i := 0; i < n; i++ {
		s.phase.store(phase)

		s.mu.Lock()
		t := q.pop()
		if t != nil && !t.cancelled {
			delete(s.handles, t.handle)
		}
		s.mu.Unlock()

		if t == nil {
			return nil
		}
		if t.cancelled {
			continue
		}

		s.execute(t)
		if err := s.drainScheduled(); err != nil {
			return err
		}
	}
	return nil
}

// takeLive pops the oldest live entry from q, discarding tombstones.
// Removing the handle from the registry here marks the task as "begun
// executing": Cancel returns false from this point on.
func (s *Scheduler) takeLive(q *taskQueue) *task {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		t := q.pop()
		if t == nil {
			return nil
		}
		if t.cancelled {
			continue
		}
		delete(s.handles, t.handle)
		return t
	}
}

// takeReadyTimer pops the earliest timer whose deadline has been reached,
// or returns nil. Cancelled timers never appear here; Cancel removes them
// from the heap eagerly.
func (s *Scheduler) takeReadyTimer() *task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.timers.peek()
	if t == nil || t.deadline > s.tick.Load() {
		return nil
	}
	heap.Pop(&s.timers)
	delete(s.handles, t.handle)
	return t
}

// execute records the handle in the log and invokes the payload with panic
// isolation. Failures are reported to the error sink and never abort the
// run.
func (s *Scheduler) execute(t *task) {
	s.execLog = append(s.execLog, t.handle)
	s.metrics.taskExecuted(t.kind)

	defer func() {
		if r := recover(); r != nil {
			s.metrics.taskFailed()
			s.reportFailure(&TaskError{
				Cause:  PanicError{Value: r},
				Handle: t.handle,
				Kind:   t.kind,
			})
		}
	}()

	t.payload()
}

func (s *Scheduler) reportFailure(err *TaskError) {
	if s.sink != nil {
		s.sink.ReportTaskFailure(err)
		return
	}
	s.logger.Err().
		Err(err.Cause).
		Uint64("task", uint64(err.Handle)).
		Stringer("kind", err.Kind).
		Log("ticksched: task payload failed")
}

// CurrentTick returns the scheduler's logical time. It is a read-only
// accessor, primarily for tests and collaborators.
func (s *Scheduler) CurrentTick() int64 {
	return s.tick.Load()
}

// Phase returns the scheduler's current phase. Safe from any goroutine.
func (s *Scheduler) Phase() Phase {
	return s.phase.load()
}

// Metrics returns a snapshot of the collected statistics. All zero unless
// WithMetrics was enabled.
func (s *Scheduler) Metrics() Metrics {
	return s.metrics.snapshot()
}
