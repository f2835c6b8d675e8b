// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ticksched

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

// schedulerOptions holds configuration options for Scheduler creation.
type schedulerOptions struct {
	logger         *logiface.Logger[logiface.Event]
	sink           ErrorSink
	drainCap       int
	metricsEnabled bool
}

// --- Scheduler Options ---

// SchedulerOption configures a Scheduler instance.
type SchedulerOption interface {
	applyScheduler(*schedulerOptions) error
}

// schedulerOptionImpl implements SchedulerOption.
type schedulerOptionImpl struct {
	applySchedulerFunc func(*schedulerOptions) error
}

func (o *schedulerOptionImpl) applyScheduler(opts *schedulerOptions) error {
	return o.applySchedulerFunc(opts)
}

// WithLogger attaches a structured logger to the scheduler. The scheduler
// logs lifecycle transitions at debug level and task failures at error
// level. A nil logger disables logging (the default).
func WithLogger(logger *logiface.Logger[logiface.Event]) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithErrorSink routes per-task failure reports to sink instead of the
// default sink, which logs through the configured logger. A nil sink
// restores the default.
func WithErrorSink(sink ErrorSink) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.sink = sink
		return nil
	}}
}

// WithDrainCap bounds the number of callbacks a single priority/microtask
// drain pass may execute before Run aborts with ErrDrainCapExceeded. It is
// a diagnostic guard for test harnesses against runaway recursive
// self-scheduling; the default of 0 leaves draining unbounded, preserving
// the documented starvation semantics.
func WithDrainCap(n int) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		if n < 0 {
			return fmt.Errorf("ticksched: drain cap must be non-negative, got %d", n)
		}
		opts.drainCap = n
		return nil
	}}
}

// WithMetrics enables runtime statistics collection on the Scheduler.
// When enabled, counters can be read via Scheduler.Metrics().
func WithMetrics(enabled bool) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// resolveSchedulerOptions applies SchedulerOption instances to
// schedulerOptions.
func resolveSchedulerOptions(opts []SchedulerOption) (*schedulerOptions, error) {
	cfg := &schedulerOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue // skip nil options gracefully
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
