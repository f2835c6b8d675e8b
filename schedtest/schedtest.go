// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package schedtest provides a scenario harness for exercising and
// verifying ticksched execution ordering. It is used by the package tests
// and by the demo CLI; it is deliberately free of testing framework
// dependencies so both can share it.
package schedtest

import (
	"sync"

	ticksched "github.com/joeycumines/go-ticksched"
)

// Recorder collects labeled execution events in order. It is safe for
// concurrent use, though a deterministic scenario only ever appends from
// the run goroutine.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Note appends a label to the recorded event stream.
func (r *Recorder) Note(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, label)
}

// Payload returns a task payload that records label when executed.
func (r *Recorder) Payload(label string) func() {
	return func() { r.Note(label) }
}

// Events returns a copy of the recorded labels, in execution order.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Scenario is a canned scheduling sequence with a known expected ordering.
type Scenario struct {
	// Name identifies the scenario, e.g. for CLI selection.
	Name string

	// Description is a one-line summary of the ordering rule exercised.
	Description string

	// Expected is the label sequence a conforming scheduler produces.
	Expected []string

	// Build wires the scenario onto sched and returns the synchronous
	// block to pass to Run.
	Build func(sched *ticksched.Scheduler, rec *Recorder) func()
}

// Play constructs a fresh scheduler with opts, runs the scenario, and
// returns the recorded labels alongside the scheduler's execution log.
func (sc Scenario) Play(opts ...ticksched.SchedulerOption) ([]string, ticksched.ExecutionLog, error) {
	sched, err := ticksched.New(opts...)
	if err != nil {
		return nil, nil, err
	}
	rec := &Recorder{}
	execLog, err := sched.Run(sc.Build(sched, rec))
	return rec.Events(), execLog, err
}

// Scenarios returns the canonical ordering scenarios, suitable for both
// conformance tests and demonstration.
func Scenarios() []Scenario {
	return []Scenario{
		SyncOrdering(),
		CheckBeforeNextTimers(),
		CancelledTimer(),
		MicrotaskChain(),
	}
}

// SyncOrdering schedules one task of each precedence tier from the
// synchronous block: priority before microtask before same-tick timers in
// insertion order.
func SyncOrdering() Scenario {
	return Scenario{
		Name:        "sync-ordering",
		Description: "priority, then microtask, then same-deadline timers in insertion order",
		Expected:    []string{"S", "A", "B", "C", "D"},
		Build: func(sched *ticksched.Scheduler, rec *Recorder) func() {
			return func() {
				rec.Note("S")
				sched.SchedulePriority(rec.Payload("A"))
				sched.ScheduleMicrotask(rec.Payload("B"))
				sched.ScheduleTimer(rec.Payload("C"), 0)
				sched.ScheduleTimer(rec.Payload("D"), 0)
			}
		},
	}
}

// CheckBeforeNextTimers schedules, from inside a poll callback, a check
// task and a zero-delay timer: the check task runs first because the Check
// phase precedes the next iteration's Timers phase.
func CheckBeforeNextTimers() Scenario {
	return Scenario{
		Name:        "check-before-next-timers",
		Description: "check tasks scheduled mid-poll run before the next timers phase",
		Expected:    []string{"io", "E", "F"},
		Build: func(sched *ticksched.Scheduler, rec *Recorder) func() {
			return func() {
				sched.ScheduleIO(func() {
					rec.Note("io")
					sched.ScheduleCheck(rec.Payload("E"))
					sched.ScheduleTimer(rec.Payload("F"), 0)
				})
			}
		},
	}
}

// CancelledTimer cancels a pending timer before its deadline tick is
// reached; its payload never executes.
func CancelledTimer() Scenario {
	return Scenario{
		Name:        "cancelled-timer",
		Description: "a timer cancelled before its deadline is absent from the log",
		Expected:    []string{"keep"},
		Build: func(sched *ticksched.Scheduler, rec *Recorder) func() {
			return func() {
				doomed, _ := sched.ScheduleTimer(rec.Payload("doomed"), 5)
				sched.ScheduleTimer(func() {
					rec.Note("keep")
					if !sched.Cancel(doomed) {
						rec.Note("cancel-failed")
					}
				}, 1)
			}
		},
	}
}

// MicrotaskChain verifies transitive microtask draining: a microtask
// scheduled by a microtask runs before the next macrotask.
func MicrotaskChain() Scenario {
	return Scenario{
		Name:        "microtask-chain",
		Description: "nested microtasks drain before the next macrotask phase",
		Expected:    []string{"m1", "m2", "t"},
		Build: func(sched *ticksched.Scheduler, rec *Recorder) func() {
			return func() {
				sched.ScheduleTimer(rec.Payload("t"), 0)
				sched.ScheduleMicrotask(func() {
					rec.Note("m1")
					sched.ScheduleMicrotask(rec.Payload("m2"))
				})
			}
		},
	}
}

// Starvation demonstrates unbounded recursive priority self-scheduling. It
// is not part of Scenarios() because it never terminates without a drain
// cap; run it with ticksched.WithDrainCap.
func Starvation() Scenario {
	return Scenario{
		Name:        "starvation",
		Description: "recursive priority self-scheduling starves later phases (requires a drain cap)",
		Build: func(sched *ticksched.Scheduler, rec *Recorder) func() {
			var spin func()
			spin = func() {
				sched.SchedulePriority(spin)
			}
			return func() {
				sched.ScheduleTimer(rec.Payload("never"), 0)
				sched.SchedulePriority(spin)
			}
		},
	}
}
