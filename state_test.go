package ticksched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhase_String(t *testing.T) {
	for phase, want := range map[Phase]string{
		PhaseIdle:              "Idle",
		PhaseRunningSync:       "RunningSync",
		PhaseDrainingPriority:  "DrainingPriority",
		PhaseDrainingMicrotask: "DrainingMicrotask",
		PhaseTimers:            "TimersPhase",
		PhasePoll:              "PollPhase",
		PhaseCheck:             "CheckPhase",
		PhaseClosed:            "Closed",
		Phase(99):              "Unknown",
	} {
		assert.Equal(t, want, phase.String())
	}
}

func TestPhaseCell_Transitions(t *testing.T) {
	var c phaseCell
	assert.Equal(t, PhaseIdle, c.load())

	assert.True(t, c.tryTransition(PhaseIdle, PhaseRunningSync))
	assert.False(t, c.tryTransition(PhaseIdle, PhaseRunningSync),
		"CAS from a stale phase fails")
	assert.Equal(t, PhaseRunningSync, c.load())

	c.store(PhaseClosed)
	assert.Equal(t, PhaseClosed, c.load())
	assert.False(t, c.tryTransition(PhaseIdle, PhaseRunningSync))
}

func TestKind_String(t *testing.T) {
	for kind, want := range map[Kind]string{
		KindPriority:  "priority",
		KindMicrotask: "microtask",
		KindTimer:     "timer",
		KindPoll:      "poll",
		KindCheck:     "check",
		Kind(200):     "unknown",
	} {
		assert.Equal(t, want, kind.String())
	}
}
