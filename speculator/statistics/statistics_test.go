package statistics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/twitter/speculator/speculator/domain"
)

func attempt(i int) domain.AttemptID {
	return domain.AttemptID{Task: domain.TaskID{Job: "job", Type: domain.MapTask, Index: i}}
}

func Test_RunningMean(t *testing.T) {
	m := RunningMean{}
	assert.Equal(t, 0.0, m.Mean())
	for _, v := range []float64{10, 60, 80} {
		m.Add(v)
	}
	assert.Equal(t, int64(3), m.Count())
	assert.InDelta(t, 50.0, m.Mean(), 1e-9)
}

func Test_KeyedMean_LatestValueWins(t *testing.T) {
	m := NewKeyedMean()
	m.Put(attempt(1), 10)
	m.Put(attempt(2), 60)
	m.Put(attempt(3), 20)
	m.Put(attempt(3), 80)
	assert.Equal(t, 3, m.Len())
	assert.InDelta(t, 50.0, m.Mean(), 1e-9)

	m.Remove(attempt(2))
	m.Remove(attempt(9))
	assert.InDelta(t, 45.0, m.Mean(), 1e-9)

	empty := NewKeyedMean()
	assert.False(t, math.IsNaN(empty.Mean()))
	assert.Equal(t, 0.0, empty.Mean())
}

func Test_HeartbeatTracker_StaleAfterWindow(t *testing.T) {
	h, err := NewHeartbeatTracker(10)
	assert.Nil(t, err)

	start := time.Unix(1000, 0)
	a := attempt(1)
	assert.False(t, h.Observe(a, time.Minute, 0.5, start), "first observation only records")
	assert.False(t, h.Observe(a, time.Minute, 0.5, start.Add(HeartbeatStaleness)), "window is inclusive")
	assert.True(t, h.Observe(a, time.Minute, 0.5, start.Add(HeartbeatStaleness+time.Second)))
	// the window restarted at the synthesized heartbeat
	assert.False(t, h.Observe(a, time.Minute, 0.5, start.Add(HeartbeatStaleness+2*time.Second)))
}

func Test_HeartbeatTracker_ChangeResetsWindow(t *testing.T) {
	h, _ := NewHeartbeatTracker(10)
	start := time.Unix(1000, 0)
	a := attempt(1)
	h.Observe(a, time.Minute, 0.5, start)
	assert.False(t, h.Observe(a, time.Minute, 0.6, start.Add(20*time.Second)))
	assert.False(t, h.Observe(a, time.Minute, 0.6, start.Add(25*time.Second)))
	assert.True(t, h.Observe(a, time.Minute, 0.6, start.Add(30*time.Second)))

	h.Forget(a)
	assert.Equal(t, 0, h.Len())
	assert.False(t, h.Observe(a, time.Minute, 0.6, start.Add(time.Hour)))
}

func Test_HeartbeatTracker_Bounded(t *testing.T) {
	h, _ := NewHeartbeatTracker(2)
	now := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		h.Observe(attempt(i), time.Second, 0, now)
	}
	assert.Equal(t, 2, h.Len())
}
