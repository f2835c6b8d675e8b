package ticksched

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrSchedulerClosed is returned when scheduling is attempted on a
	// scheduler that has reached the Closed phase.
	ErrSchedulerClosed = errors.New("ticksched: scheduler is closed")

	// ErrRunInProgress is returned when Run is called while a run is
	// already executing, including re-entrant calls from a task payload.
	ErrRunInProgress = errors.New("ticksched: run already in progress")

	// ErrRunCompleted is returned when Run is called on a scheduler that
	// has already completed a run. The Closed phase is permanent.
	ErrRunCompleted = errors.New("ticksched: run already completed")

	// ErrNegativeDelay is returned by ScheduleTimer for a negative delay.
	// No task is created.
	ErrNegativeDelay = errors.New("ticksched: negative timer delay")

	// ErrNilPayload is returned by scheduling operations for a nil payload.
	// No task is created.
	ErrNilPayload = errors.New("ticksched: nil task payload")

	// ErrDrainCapExceeded is returned by Run when a diagnostic drain cap
	// (WithDrainCap) is configured and a single priority/microtask drain
	// pass exceeds it, indicating runaway recursive self-scheduling.
	ErrDrainCapExceeded = errors.New("ticksched: drain cap exceeded")
)

// PanicError wraps a value recovered from a panicking task payload.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("ticksched: task panicked: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type.
// This enables use with [errors.Is] and [errors.As] for error matching
// through the cause chain.
//
// If the panic value is not an error (e.g. a string), returns nil.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// TaskError reports the failure of a single task payload. It carries the
// failing task's handle and kind, and wraps the recovered cause.
type TaskError struct {
	Cause  error
	Handle Handle
	Kind   Kind
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return fmt.Sprintf("ticksched: task %d (%s) failed: %v", e.Handle, e.Kind, e.Cause)
}

// Unwrap returns the underlying cause for use with [errors.Is] and
// [errors.As].
func (e *TaskError) Unwrap() error {
	return e.Cause
}

// ErrorSink receives per-task failure reports from the scheduler. Reports
// are delivered synchronously on the run goroutine, between task
// executions; a sink must not call back into Run.
type ErrorSink interface {
	ReportTaskFailure(err *TaskError)
}

// ErrorSinkFunc adapts a function to the ErrorSink interface.
type ErrorSinkFunc func(err *TaskError)

// ReportTaskFailure calls the underlying function.
func (f ErrorSinkFunc) ReportTaskFailure(err *TaskError) { f(err) }
