package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/twitter/speculator/common/stats"
	"github.com/twitter/speculator/speculator/domain"
)

func scans(reg stats.StatsRegistry) int64 {
	return reg.GetOrRegister(stats.SpeculatorScanCounter, stats.NewCounter).(stats.Counter).Count()
}

// waitFor polls cond until it holds or d elapses.
func waitFor(d time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func Test_Start_DebugModeRunsNothing(t *testing.T) {
	f := newFixture(t, onlyDefault())
	f.e.Start()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(0), scans(f.reg))
	f.e.Stop()
}

func Test_Loop_ScanNowAndStop(t *testing.T) {
	f := newFixture(t, onlyDefault())
	f.e.config.DebugMode = false

	f.e.Start()
	f.e.Start()
	if !assert.True(t, waitFor(time.Second, func() bool { return scans(f.reg) >= 1 })) {
		f.e.Stop()
		return
	}

	// The manual clock never moves, so only the wake request can trigger the next scan in time.
	f.e.ScanNow()
	f.e.ScanNow()
	assert.True(t, waitFor(800*time.Millisecond, func() bool { return scans(f.reg) >= 2 }))

	f.e.Stop()
	after := scans(f.reg)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, scans(f.reg))

	f.e.Stop()
	f.e.ScanNow()
}

func Test_Step_Schedule(t *testing.T) {
	config := onlyDefault()
	config.RetryAfterSpeculate = 10 * time.Second
	config.RetryAfterNoSpeculate = 2 * time.Second
	f := newFixture(t, config)
	f.addJob("j", 2, 0)
	a := f.start(mapTask("j", 1), "w", "s")
	f.est.SetRuntime(a, time.Hour)

	// Speculated: next default run in 10s, but the loop never sleeps longer than 2s.
	assert.Equal(t, 2*time.Second, f.step(0))
	assert.Len(t, f.sink.Commands(), 1)
	start := f.clock.Now()
	assert.Equal(t, start.Add(10*time.Second), f.e.nextRun[defaultHeuristic])

	// Not due yet.
	f.step(5 * time.Second)
	assert.Equal(t, start.Add(10*time.Second), f.e.nextRun[defaultHeuristic])

	// Due, nothing left to speculate.
	f.step(5 * time.Second)
	assert.Equal(t, start.Add(12*time.Second), f.e.nextRun[defaultHeuristic])
	assert.Len(t, f.sink.Commands(), 1)
}

func Test_Step_HeuristicsScheduledIndependently(t *testing.T) {
	config := slowFetchConfig()
	config.PathEnabled = true
	config.SlowWriteEnabled = true
	f := newFixture(t, config)
	f.addJob("j", 1, 1)

	m := domain.AttemptID{Task: mapTask("j", 1), Index: 1}
	for i := 1; i <= 3; i++ {
		fetchReport(f, domain.AttemptID{Task: reduceTask("j", i), Index: 1}, "m1", m, 1)
	}
	f.step(0)
	start := f.clock.Now()
	assert.Len(t, f.sink.Commands(), 1)
	assert.Equal(t, start.Add(DefaultRetryAfterSpeculate), f.e.nextRun[fetchHeuristic])
	assert.Equal(t, start.Add(DefaultRetryAfterNoSpeculate), f.e.nextRun[pathHeuristic])
	assert.Equal(t, start.Add(DefaultRetryAfterNoSpeculate), f.e.nextRun[writeHeuristic])
	_, ok := f.e.nextRun[defaultHeuristic]
	assert.False(t, ok)

	f.step(2 * time.Second)
	assert.Equal(t, start.Add(DefaultRetryAfterSpeculate), f.e.nextRun[fetchHeuristic])
	assert.Equal(t, start.Add(2*time.Second+DefaultRetryAfterNoSpeculate), f.e.nextRun[pathHeuristic])
	stats.VerifyStats("independent", f.reg, t, map[string]stats.Rule{
		stats.SpeculatorHeuristicRunCounter + "/fetch": {Checker: stats.Int64EqTest, Value: 1},
		stats.SpeculatorHeuristicRunCounter + "/path":  {Checker: stats.Int64EqTest, Value: 2},
		stats.SpeculatorHeuristicRunCounter + "/write": {Checker: stats.Int64EqTest, Value: 2},
		stats.SpeculatorScanCounter:                    {Checker: stats.Int64EqTest, Value: 2},
	})
}

func Test_Step_SkipsJobMissingFromDirectory(t *testing.T) {
	config := onlyDefault()
	config.PathEnabled = true
	f := newFixture(t, config)
	// created but already torn down in the directory
	f.e.Handle(domain.NewJobCreateEvent("gone", f.clock.Now()))
	f.addJob("j", 1, 0)
	a := f.start(mapTask("j", 1), "w", "s")
	f.est.SetRuntime(a, time.Hour)

	f.step(0)
	start := f.clock.Now()
	assert.Len(t, f.sink.Commands(), 1)
	assert.Equal(t, start.Add(DefaultRetryAfterSpeculate), f.e.nextRun[defaultHeuristic])
	stats.VerifyStats("missing job", f.reg, t, map[string]stats.Rule{
		stats.SpeculatorHeuristicRunCounter + "/path":        {Checker: stats.Int64EqTest, Value: 1},
		stats.SpeculatorHeuristicFailureCounter + "/path":    {Checker: stats.DoesNotExistTest},
		stats.SpeculatorHeuristicFailureCounter + "/default": {Checker: stats.DoesNotExistTest},
	})
}
