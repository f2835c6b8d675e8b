package schedtest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	ticksched "github.com/joeycumines/go-ticksched"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_ObservedMatchesExpected(t *testing.T) {
	// Expected labels minus sync-block notes; the "S" in sync-ordering is
	// recorded by the synchronous block itself, not by a task.
	executed := map[string]int{
		"sync-ordering":            4,
		"check-before-next-timers": 3,
		"cancelled-timer":          1,
		"microtask-chain":          3,
	}
	for _, sc := range Scenarios() {
		t.Run(sc.Name, func(t *testing.T) {
			events, execLog, err := sc.Play()
			require.NoError(t, err)
			if diff := cmp.Diff(sc.Expected, events); diff != "" {
				t.Errorf("execution order mismatch (-want +got):\n%s", diff)
			}
			want, ok := executed[sc.Name]
			require.True(t, ok, "scenario %s missing an executed-count expectation", sc.Name)
			assert.Len(t, execLog, want)
		})
	}
}

func TestScenario_PlayAppliesOptions(t *testing.T) {
	sc := SyncOrdering()
	events, _, err := sc.Play(ticksched.WithMetrics(true))
	require.NoError(t, err)
	if diff := cmp.Diff(sc.Expected, events); diff != "" {
		t.Errorf("execution order mismatch (-want +got):\n%s", diff)
	}
}

func TestStarvation_RequiresDrainCap(t *testing.T) {
	sc := Starvation()
	events, execLog, err := sc.Play(ticksched.WithDrainCap(100))
	assert.ErrorIs(t, err, ticksched.ErrDrainCapExceeded)
	assert.Empty(t, events, "the starved timer never executes")
	assert.NotEmpty(t, execLog)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Note("a")
	r.Payload("b")()
	got := r.Events()
	assert.Equal(t, []string{"a", "b"}, got)

	got[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, r.Events(), "Events returns a copy")
}
