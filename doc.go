// Package ticksched provides a deterministic, single-goroutine cooperative
// task scheduler that reproduces the execution-ordering contract of an
// event-driven runtime: a synchronous entry block, a high-priority callback
// queue, a microtask queue, and staged macrotask phases (timers, I/O
// completion, check).
//
// # Architecture
//
// The scheduler is built around a [Scheduler] core that owns five task
// stores: a priority FIFO, a microtask FIFO, a timer min-heap keyed by
// (deadline, sequence), and poll/check FIFOs for the staged macrotask
// phases. [Scheduler.Run] executes the caller's synchronous block, then
// sequences the stores through a fixed phase order until every store is
// empty, producing an ordered [ExecutionLog] of executed task handles.
//
// Ordering within a run:
//  1. The synchronous block runs to completion; scheduling calls made
//     inside it only enqueue.
//  2. The priority queue is drained to exhaustion, then the microtask queue
//     is drained to exhaustion (transitively: a microtask that schedules a
//     microtask extends the same drain pass).
//  3. Each loop iteration visits Timers, Poll, and Check in that order.
//     After every macrotask callback the priority and microtask queues are
//     drained again.
//
// Poll and Check are snapshotted at phase entry: tasks enqueued into either
// while its phase is executing are deferred to the next iteration. Timers
// and the priority/microtask drains are intentionally live, so recursive
// self-scheduling can starve later phases; see [WithDrainCap] for an opt-in
// diagnostic bound.
//
// # Logical Time
//
// Timer deadlines are expressed in abstract ticks with no wall-clock
// binding. The tick advances only when a Timers phase begins with pending
// timers, jumping directly to the smallest pending deadline. Runs are
// therefore fully deterministic and replayable.
//
// # Thread Safety
//
// Exactly one task payload executes at a time, on the goroutine that called
// [Scheduler.Run]. Scheduling operations and [Scheduler.Cancel] are safe to
// call from any goroutine, which permits an external I/O simulator to feed
// the poll queue through [Scheduler.ScheduleIO]; determinism is then the
// collaborator's concern. A scheduling call that returns a handle is
// guaranteed a slot in the run: once the final drain finds every store
// empty the scheduler is Closed atomically, so a racing enqueue either
// executes or fails with [ErrSchedulerClosed].
//
// # Errors
//
// A panicking payload never aborts the run: the panic is recovered at the
// per-task boundary, wrapped in a [TaskError], and reported to the
// configured [ErrorSink] (by default, the logger installed via
// [WithLogger]). Cancel never fails; it reports false for unknown or
// already-consumed handles. Programmer misuse, such as a negative timer
// delay, is rejected at the scheduling call and no task is created.
//
// # Usage
//
//	sched, err := ticksched.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	log, err := sched.Run(func() {
//		sched.SchedulePriority(func() { fmt.Println("priority") })
//		sched.ScheduleMicrotask(func() { fmt.Println("microtask") })
//		sched.ScheduleTimer(func() { fmt.Println("timer") }, 5)
//	})
package ticksched
