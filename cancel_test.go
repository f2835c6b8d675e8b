package ticksched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancel_UnknownHandle(t *testing.T) {
	s := newScheduler(t)
	assert.False(t, s.Cancel(0))
	assert.False(t, s.Cancel(12345))
}

func TestCancel_TimerBeforeDeadline(t *testing.T) {
	s := newScheduler(t)
	var rec record
	var doomed Handle
	var cancelled, again bool
	execLog, err := s.Run(func() {
		doomed, _ = s.ScheduleTimer(rec.note("doomed"), 5)
		s.ScheduleTimer(func() {
			rec.note("t1")()
			cancelled = s.Cancel(doomed)
			again = s.Cancel(doomed)
		}, 1)
	})
	require.NoError(t, err)

	assert.True(t, cancelled, "cancel before the deadline tick succeeds")
	assert.False(t, again, "cancel is idempotent; the handle is consumed")
	assert.Equal(t, []string{"t1"}, rec.order)
	assert.NotContains(t, execLog, doomed)
	assert.Equal(t, int64(1), s.CurrentTick(),
		"the cancelled deadline never advances the tick")
}

func TestCancel_FIFOTombstonesAreSkipped(t *testing.T) {
	s := newScheduler(t)
	var rec record
	_, err := s.Run(func() {
		s.ScheduleMicrotask(rec.note("m1"))
		doomed, _ := s.ScheduleMicrotask(rec.note("doomed"))
		s.ScheduleMicrotask(rec.note("m2"))
		require.True(t, s.Cancel(doomed))
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, rec.order)
}

func TestCancel_PollTaskBeforeItsPhase(t *testing.T) {
	s := newScheduler(t)
	var rec record
	_, err := s.Run(func() {
		doomed, _ := s.ScheduleIO(rec.note("doomed"))
		s.ScheduleIO(rec.note("kept"))
		s.ScheduleMicrotask(func() {
			require.True(t, s.Cancel(doomed))
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, rec.order)
}

func TestCancel_ExecutedTaskReturnsFalse(t *testing.T) {
	s := newScheduler(t)
	var h Handle
	var self, later bool
	_, err := s.Run(func() {
		h, _ = s.SchedulePriority(func() {
			// Execution has begun; the handle is already consumed.
			self = s.Cancel(h)
		})
		s.ScheduleMicrotask(func() {
			later = s.Cancel(h)
		})
	})
	require.NoError(t, err)
	assert.False(t, self)
	assert.False(t, later)
}

func TestCancel_CheckTaskThenQueueDrains(t *testing.T) {
	// A check queue holding only tombstones must not keep the loop alive.
	s := newScheduler(t)
	var rec record
	_, err := s.Run(func() {
		doomed, _ := s.ScheduleCheck(rec.note("doomed"))
		require.True(t, s.Cancel(doomed))
		s.SchedulePriority(rec.note("p"))
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p"}, rec.order)
	assert.Equal(t, PhaseClosed, s.Phase())
}

func TestCancel_BeforeRun(t *testing.T) {
	s := newScheduler(t)
	var rec record
	h, err := s.ScheduleTimer(rec.note("doomed"), 3)
	require.NoError(t, err)
	assert.True(t, s.Cancel(h))

	execLog, err := s.Run(func() { rec.note("S")() })
	require.NoError(t, err)
	assert.Equal(t, []string{"S"}, rec.order)
	assert.Empty(t, execLog)
}

func TestCancel_MiddleTimerKeepsHeapOrder(t *testing.T) {
	s := newScheduler(t)
	var rec record
	_, err := s.Run(func() {
		s.ScheduleTimer(rec.note("d1"), 1)
		doomed, _ := s.ScheduleTimer(rec.note("d2"), 2)
		s.ScheduleTimer(rec.note("d3"), 3)
		s.ScheduleTimer(rec.note("d4"), 4)
		require.True(t, s.Cancel(doomed))
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d3", "d4"}, rec.order)
}
