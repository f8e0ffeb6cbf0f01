package engine

import (
	"os"
	"testing"
	"time"

	"github.com/luci/go-render/render"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/twitter/speculator/common/stats"
	"github.com/twitter/speculator/speculator/domain"
	"github.com/twitter/speculator/speculator/simulator"
)

func init() {
	level := log.ErrorLevel
	if text := os.Getenv("SPECULATOR_LOGLEVEL"); text != "" {
		if parsed, err := log.ParseLevel(text); err == nil {
			level = parsed
		}
	}
	log.SetLevel(level)
}

type fixture struct {
	dir   *simulator.MemoryDirectory
	est   *simulator.ReplayEstimator
	sink  *simulator.RecordingSink
	clock *simulator.ManualClock
	reg   stats.StatsRegistry
	e     *Engine
}

func newFixture(t *testing.T, config Config) *fixture {
	config.DebugMode = true
	f := &fixture{
		dir:   simulator.NewMemoryDirectory(),
		est:   simulator.NewReplayEstimator(),
		sink:  simulator.NewRecordingSink(),
		clock: simulator.NewManualClock(time.Unix(1000, 0)),
		reg:   stats.NewFinagleStatsRegistry(),
	}
	stat := stats.NewCustomStatsReceiver(func() stats.StatsRegistry { return f.reg })
	e, err := NewEngine(config, f.dir, f.est, f.sink, f.clock, stat)
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}
	f.e = e
	return f
}

// addJob creates the job in the directory and announces it to the engine.
func (f *fixture) addJob(job domain.JobID, maps, reduces int) {
	f.dir.AddJob(job, maps, reduces)
	f.e.Handle(domain.NewJobCreateEvent(job, f.clock.Now()))
}

// start launches attempt index 1 of task as running on worker, reading from storage.
func (f *fixture) start(task domain.TaskID, worker, storage string) domain.AttemptID {
	return f.startAttempt(domain.AttemptID{Task: task, Index: 1}, worker, storage)
}

func (f *fixture) startAttempt(id domain.AttemptID, worker, storage string) domain.AttemptID {
	status := domain.AttemptStatus{Attempt: id, State: domain.Running, WorkerHost: worker, StorageHost: storage}
	f.dir.Apply(status)
	f.e.Handle(domain.NewAttemptStartEvent(status, f.clock.Now()))
	return id
}

func (f *fixture) update(status domain.AttemptStatus) {
	f.dir.Apply(status)
	f.e.Handle(domain.NewStatusUpdateEvent(status, f.clock.Now()))
}

func (f *fixture) task(id domain.TaskID) domain.Task {
	job, _ := f.dir.Job(id.Job)
	task, _ := job.Task(id)
	return task
}

func (f *fixture) score(id domain.TaskID) Score {
	return f.e.score(f.task(id), f.clock.Now(), false)
}

// step advances the clock by d and runs a scan.
func (f *fixture) step(d time.Duration) time.Duration {
	f.clock.Advance(d)
	return f.e.Step()
}

func mapTask(job domain.JobID, i int) domain.TaskID {
	return domain.TaskID{Job: job, Type: domain.MapTask, Index: i}
}

func reduceTask(job domain.JobID, i int) domain.TaskID {
	return domain.TaskID{Job: job, Type: domain.ReduceTask, Index: i}
}

func onlyDefault() Config {
	return DefaultConfig()
}

func Test_NewEngine_RequiresCollaborators(t *testing.T) {
	_, err := NewEngine(DefaultConfig(), nil, simulator.NewReplayEstimator(), simulator.NewRecordingSink(), nil, nil)
	assert.Error(t, err)
	_, err = NewEngine(DefaultConfig(), simulator.NewMemoryDirectory(), nil, simulator.NewRecordingSink(), nil, nil)
	assert.Error(t, err)
	_, err = NewEngine(DefaultConfig(), simulator.NewMemoryDirectory(), simulator.NewReplayEstimator(), nil, nil, nil)
	assert.Error(t, err)

	e, err := NewEngine(Config{}, simulator.NewMemoryDirectory(), simulator.NewReplayEstimator(), simulator.NewRecordingSink(), nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, DefaultRetryAfterNoSpeculate, e.config.RetryAfterNoSpeculate)
	assert.Equal(t, PathStrategyAggressive, e.config.PathStrategy)
}

func Test_Config_DelayBudget(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, int64(0), c.delayBudget())
	c.MapDelayInterval = 5 * time.Second
	c.RetryAfterNoSpeculate = 500 * time.Millisecond
	assert.Equal(t, int64(10), c.delayBudget())
}

func Test_Handle_UnknownTaskIgnored(t *testing.T) {
	f := newFixture(t, onlyDefault())
	id := domain.AttemptID{Task: mapTask("missing", 1), Index: 1}
	f.e.Handle(domain.NewStatusUpdateEvent(domain.AttemptStatus{Attempt: id, State: domain.Running}, f.clock.Now()))

	assert.Equal(t, 0, f.est.Updates(id))
	assert.Equal(t, 0, f.e.statuses.Len())
	stats.VerifyStats("unknown task", f.reg, t, map[string]stats.Rule{
		stats.SpeculatorEventCounter + "/ATTEMPT_STATUS_UPDATE": {Checker: stats.Int64EqTest, Value: 1},
	})
}

func Test_Handle_StatusUpdates(t *testing.T) {
	config := onlyDefault()
	config.FetchRateEnabled = true
	f := newFixture(t, config)
	f.addJob("j", 1, 2)

	m := f.start(mapTask("j", 1), "w1", "s1")
	f.update(domain.AttemptStatus{Attempt: m, State: domain.Running, Progress: 1.0, WorkerHost: "w1"})
	stored, ok := f.e.statuses.Latest(m)
	assert.True(t, ok)
	assert.Equal(t, domain.Succeeded, stored.State)
	assert.Equal(t, 1, f.e.fetches.Len(), render.Render(f.e.fetches))
	assert.Equal(t, []domain.AttemptID{m}, f.e.fetches.Candidates("w1", false, 0))

	r := f.start(reduceTask("j", 1), "w2", "")
	assert.False(t, f.e.pipelines.IsFinished(r.Task))
	f.update(domain.AttemptStatus{Attempt: r, State: domain.Succeeded, Progress: 1.0})
	assert.True(t, f.e.pipelines.IsFinished(r.Task))
	assert.Equal(t, 2, f.est.Updates(r)+f.est.Updates(m))
}

func Test_Handle_FetchHostForgottenAfterConsumersFinish(t *testing.T) {
	config := onlyDefault()
	config.FetchRateEnabled = true
	f := newFixture(t, config)
	f.addJob("j", 2, 1)

	m1 := f.start(mapTask("j", 1), "m1", "s1")
	m2 := f.start(mapTask("j", 2), "m1", "s1")
	r := f.start(reduceTask("j", 1), "r1", "s2")
	fetchReport(f, r, "m1", m1, 10)
	f.e.fetches.Drain()
	assert.Equal(t, 1, f.e.fetches.Len())

	f.update(domain.AttemptStatus{Attempt: m1, State: domain.Succeeded, Progress: 1.0})
	f.update(domain.AttemptStatus{Attempt: r, State: domain.Succeeded, Progress: 1.0})
	// m2 still runs on m1
	assert.Equal(t, 1, f.e.fetches.Len(), render.Render(f.e.fetches))

	f.update(domain.AttemptStatus{Attempt: m2, State: domain.Killed})
	assert.Equal(t, 0, f.e.fetches.Len(), render.Render(f.e.fetches))

	// the only map and its only consumer both finish
	g := newFixture(t, config)
	g.addJob("k", 1, 1)
	m := g.start(mapTask("k", 1), "m1", "s1")
	r = g.start(reduceTask("k", 1), "r1", "s2")
	fetchReport(g, r, "m1", m, 10)
	g.e.fetches.Drain()
	g.update(domain.AttemptStatus{Attempt: m, State: domain.Succeeded, Progress: 1.0})
	g.update(domain.AttemptStatus{Attempt: r, State: domain.Succeeded, Progress: 1.0})
	assert.Equal(t, 0, g.e.fetches.Len(), "host m1 still tracked after its only consumer finished")
}

func Test_Handle_MalformedReports(t *testing.T) {
	f := newFixture(t, onlyDefault())
	now := f.clock.Now()
	f.e.Handle(domain.Event{Type: domain.AttemptFetchRateUpdate, Time: now})
	f.e.Handle(domain.Event{Type: domain.AttemptPipeRateUpdate, Time: now})
	f.e.Handle(domain.NewPipeRateEvent(domain.PipelineRateReport{
		ReduceAttempt: domain.AttemptID{Task: reduceTask("j", 1), Index: 1},
		ReduceHost:    "r1",
	}, now))
	f.e.Handle(domain.NewFetchRateEvent(domain.FetchRateReport{
		ReduceAttempt: domain.AttemptID{Task: reduceTask("j", 1), Index: 1},
		ReduceHost:    "r1",
		Entries:       []domain.FetchRateEntry{{Rate: 1}},
	}, now))
	f.e.Handle(domain.Event{Type: domain.EventType(42), Time: now})

	stats.VerifyStats("malformed", f.reg, t, map[string]stats.Rule{
		stats.SpeculatorMalformedReportCounter: {Checker: stats.Int64EqTest, Value: 5},
	})
	assert.Equal(t, 0, f.e.pipelines.Len())
}

func Test_Handle_ContainerNeeds(t *testing.T) {
	f := newFixture(t, onlyDefault())
	f.addJob("j", 1, 1)
	f.e.Handle(domain.NewContainerNeedEvent(mapTask("j", 1), 2, f.clock.Now()))
	f.e.Handle(domain.NewContainerNeedEvent(mapTask("j", 1), -1, f.clock.Now()))

	assert.Equal(t, int64(1), needOf(f.e.needs[domain.MapTask], "j"))
	assert.Equal(t, int64(0), needOf(f.e.needs[domain.ReduceTask], "j"))
}

func Test_Score_Better(t *testing.T) {
	tests := []struct {
		a, b Score
		want bool
	}{
		{eligible(2 * time.Second), eligible(time.Second), true},
		{eligible(time.Second), eligible(2 * time.Second), false},
		{eligible(time.Second), eligible(time.Second), false},
		{eligible(0), sentinel(NotRunning), true},
		{sentinel(OnSchedule), eligible(0), false},
		{sentinel(TooNew), sentinel(NotRunning), false},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, test.a.Better(test.b), "%s better than %s", test.a, test.b)
	}
	assert.Equal(t, "ELIGIBLE(1s)", eligible(time.Second).String())
	assert.Equal(t, "TOO_LATE_TO_SPECULATE", sentinel(TooLateToSpeculate).String())
}

func Test_Score_Outcomes(t *testing.T) {
	f := newFixture(t, onlyDefault())
	f.addJob("j", 6, 0)
	now := f.clock.Now()

	// Nothing started.
	assert.Equal(t, NotRunning, f.score(mapTask("j", 1)).Outcome)

	// Unbounded threshold.
	f.start(mapTask("j", 2), "w", "s")
	f.est.SetUnbounded(mapTask("j", 2))
	assert.Equal(t, OnSchedule, f.score(mapTask("j", 2)).Outcome)

	// Two active attempts, even with an unbounded threshold.
	f.startAttempt(domain.AttemptID{Task: mapTask("j", 2), Index: 2}, "w2", "s")
	assert.Equal(t, AlreadySpeculating, f.score(mapTask("j", 2)).Outcome)

	// Started in the future.
	a3 := f.start(mapTask("j", 3), "w", "s")
	f.est.SetEnrolled(a3, now.Add(time.Minute))
	assert.Equal(t, TooNew, f.score(mapTask("j", 3)).Outcome)

	// Estimated end already passed.
	a4 := f.start(mapTask("j", 4), "w", "s")
	f.est.SetEnrolled(a4, now.Add(-10*time.Minute))
	f.est.SetRuntime(a4, 5*time.Minute)
	assert.Equal(t, ProgressIsGood, f.score(mapTask("j", 4)).Outcome)

	// A replacement would finish no earlier than the running attempt.
	f.start(mapTask("j", 5), "w", "s")
	assert.Equal(t, TooLateToSpeculate, f.score(mapTask("j", 5)).Outcome)

	// A replacement saves the difference between the two end times.
	a6 := f.start(mapTask("j", 6), "w", "s")
	f.est.SetEnrolled(a6, now.Add(-time.Minute))
	f.est.SetRuntime(a6, 10*time.Minute)
	f.est.SetNewAttemptRuntime(mapTask("j", 6), 2*time.Minute)
	assert.Equal(t, eligible(7*time.Minute), f.score(mapTask("j", 6)))

	// The fast path only decides eligibility.
	assert.Equal(t, eligible(0), f.e.score(f.task(mapTask("j", 5)), now, true))
}

func Test_Score_FetchBannedIsOnSchedule(t *testing.T) {
	f := newFixture(t, onlyDefault())
	f.addJob("j", 1, 0)
	a := f.start(mapTask("j", 1), "w", "s")
	f.est.SetRuntime(a, time.Hour)
	assert.Equal(t, Eligible, f.score(a.Task).Outcome)

	f.e.fetches.Ban(a)
	assert.Equal(t, OnSchedule, f.score(a.Task).Outcome)
}

func Test_Score_MapDelayBudget(t *testing.T) {
	config := onlyDefault()
	config.MapDelayInterval = 2 * time.Second
	f := newFixture(t, config)
	f.addJob("j", 2, 1)
	a := f.start(mapTask("j", 1), "w", domain.NullHost)
	f.est.SetRuntime(a, time.Hour)
	b := f.start(mapTask("j", 2), "w", domain.NullHost)
	f.est.SetRuntime(b, time.Hour)
	r := f.start(reduceTask("j", 1), "w", domain.NullHost)
	f.est.SetRuntime(r, time.Hour)

	// One scan spends at most one unit of budget, however many attempts wait.
	assert.Equal(t, TooNew, f.score(a.Task).Outcome)
	assert.Equal(t, TooNew, f.score(b.Task).Outcome)
	assert.Equal(t, int64(1), f.e.delayBudget)
	// Reduce attempts never wait for a storage host.
	assert.Equal(t, Eligible, f.score(r.Task).Outcome)

	f.e.delayedThisScan = false
	assert.Equal(t, TooNew, f.score(a.Task).Outcome)
	assert.Equal(t, int64(0), f.e.delayBudget)

	f.e.delayedThisScan = false
	assert.Equal(t, Eligible, f.score(a.Task).Outcome)
}

func Test_Score_SwitchingStorage(t *testing.T) {
	f := newFixture(t, onlyDefault())
	f.addJob("j", 1, 0)
	a := f.start(mapTask("j", 1), "w", "s1")
	f.est.SetRuntime(a, time.Hour)

	f.e.Handle(domain.NewSwitchStorageEvent(a, f.clock.Now()))
	assert.Equal(t, TooNew, f.score(a.Task).Outcome)

	f.update(domain.AttemptStatus{Attempt: a, State: domain.Running, Progress: 0.1, WorkerHost: "w", StorageHost: "s2"})
	assert.Equal(t, Eligible, f.score(a.Task).Outcome)
}

func Test_Score_SynthesizesHeartbeatForSilentAttempt(t *testing.T) {
	f := newFixture(t, onlyDefault())
	f.addJob("j", 1, 0)
	a := f.start(mapTask("j", 1), "w", "s")
	f.est.SetRuntime(a, time.Hour)
	f.update(domain.AttemptStatus{Attempt: a, State: domain.Running, Progress: 0.2, WorkerHost: "w", StorageHost: "s"})
	updates := f.est.Updates(a)

	f.score(a.Task)
	f.clock.Advance(5 * time.Second)
	f.score(a.Task)
	assert.Equal(t, updates, f.est.Updates(a))

	f.clock.Advance(10 * time.Second)
	f.score(a.Task)
	assert.Equal(t, updates+1, f.est.Updates(a))
	latest, _ := f.e.statuses.Latest(a)
	assert.Equal(t, 0.2, latest.Progress)
	stats.VerifyStats("heartbeat", f.reg, t, map[string]stats.Rule{
		stats.SpeculatorSynthesizedHeartbeatCounter: {Checker: stats.Int64EqTest, Value: 1},
	})
}

func Test_Handle_HeartbeatsGaugeFollowsRunningAttempts(t *testing.T) {
	f := newFixture(t, onlyDefault())
	f.addJob("j", 1, 0)
	a := f.start(mapTask("j", 1), "w", "s")
	f.est.SetRuntime(a, time.Hour)
	f.update(domain.AttemptStatus{Attempt: a, State: domain.Running, Progress: 0.2, WorkerHost: "w", StorageHost: "s"})
	f.score(a.Task)

	f.e.updateGauges()
	stats.VerifyStats("watched", f.reg, t, map[string]stats.Rule{
		stats.SpeculatorHeartbeatsGauge: {Checker: stats.Int64EqTest, Value: 1},
	})

	f.update(domain.AttemptStatus{Attempt: a, State: domain.Succeeded, Progress: 1.0})
	f.e.updateGauges()
	stats.VerifyStats("forgotten", f.reg, t, map[string]stats.Rule{
		stats.SpeculatorHeartbeatsGauge: {Checker: stats.Int64EqTest, Value: 0},
	})
}

func Test_Engine_String(t *testing.T) {
	f := newFixture(t, onlyDefault())
	f.e.ledger.Add(mapTask("j", 1), domain.SlowMapPath)
	assert.Contains(t, f.e.String(), "slow_map_path")
	assert.Len(t, f.e.Ledger(), 1)
}
