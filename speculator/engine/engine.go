// Package engine decides which running tasks get a speculative attempt. Telemetry and
// lifecycle events arrive through Handle; a background loop runs the straggler heuristics
// against the accumulated tables and submits commands to a CommandSink.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/twitter/speculator/common/stats"
	"github.com/twitter/speculator/speculator/domain"
	"github.com/twitter/speculator/speculator/statistics"
	"github.com/twitter/speculator/speculator/telemetry"
)

// At most one malformed-report warning per this interval reaches the log; the rest are only counted.
const malformedWarnInterval = 10 * time.Second

// Engine is the speculative execution decision engine of one master.
type Engine struct {
	config    Config
	directory domain.Directory
	estimator domain.Estimator
	sink      domain.CommandSink
	clock     domain.Clock
	stat      stats.StatsReceiver

	// Serializes event dispatch.
	mu sync.Mutex

	needs      map[domain.TaskType]*containerNeeds
	ledger     *Ledger
	statuses   *telemetry.StatusTable
	fetches    *telemetry.FetchRateTable
	pipelines  *telemetry.PipelineTable
	heartbeats *statistics.HeartbeatTracker

	// Owned by the scan, guarded by scanMu.
	scanMu          sync.Mutex
	delayBudget     int64
	delayedThisScan bool
	nextRun         map[heuristic]time.Time

	warnLimiter *rate.Limiter
	loop        *loopControl
}

// NewEngine creates an Engine. The background loop is not running until Start is called.
func NewEngine(
	config Config,
	directory domain.Directory,
	estimator domain.Estimator,
	sink domain.CommandSink,
	clock domain.Clock,
	stat stats.StatsReceiver) (*Engine, error) {
	if directory == nil || estimator == nil || sink == nil {
		return nil, errors.New("engine needs a directory, an estimator and a command sink")
	}
	if clock == nil {
		clock = domain.WallClock{}
	}
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}
	config.fill()

	heartbeats, err := statistics.NewHeartbeatTracker(config.MaxTrackedAttempts)
	if err != nil {
		return nil, errors.Wrap(err, "creating heartbeat tracker")
	}

	e := &Engine{
		config:    config,
		directory: directory,
		estimator: estimator,
		sink:      sink,
		clock:     clock,
		stat:      stat,
		needs: map[domain.TaskType]*containerNeeds{
			domain.MapTask:    newContainerNeeds(),
			domain.ReduceTask: newContainerNeeds(),
		},
		ledger:      newLedger(),
		statuses:    telemetry.NewStatusTable(),
		fetches:     telemetry.NewFetchRateTable(),
		pipelines:   telemetry.NewPipelineTable(),
		heartbeats:  heartbeats,
		delayBudget: config.delayBudget(),
		nextRun:     make(map[heuristic]time.Time),
		warnLimiter: rate.NewLimiter(rate.Every(malformedWarnInterval), 1),
		loop:        newLoopControl(),
	}
	log.Info(e.config.String())
	return e, nil
}

// Handle folds one event into the engine's tables. Safe for concurrent use; events are
// processed one at a time in arrival order.
func (e *Engine) Handle(event domain.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stat.Counter(stats.SpeculatorEventCounter, event.Type.String()).Inc(1)

	switch event.Type {
	case domain.AttemptStatusUpdate:
		if event.Status != nil {
			e.statusUpdate(*event.Status, event.Time)
		}
	case domain.AttemptStart:
		if event.Status != nil {
			e.attemptStart(*event.Status, event.Time)
		}
	case domain.JobCreate:
		for _, n := range e.needs {
			n.register(event.Job)
		}
	case domain.TaskContainerNeedUpdate:
		if n, ok := e.needs[event.Task.Type]; ok {
			n.add(event.Task.Job, int64(event.ContainerNeedDelta))
		}
	case domain.AttemptFetchRateUpdate:
		if event.FetchRate == nil {
			e.malformed(event, errors.New("fetch rate event without a report"))
			return
		}
		skipped, err := e.fetches.Enqueue(*event.FetchRate)
		if err != nil {
			e.malformed(event, err)
		} else if skipped > 0 {
			e.malformed(event, errors.Errorf("%d fetch entries without a map host or attempt", skipped))
		}
	case domain.AttemptPipeRateUpdate:
		if event.PipeRate == nil {
			e.malformed(event, errors.New("pipeline rate event without a report"))
			return
		}
		if err := e.pipelines.Enqueue(*event.PipeRate); err != nil {
			e.malformed(event, err)
		}
	case domain.AttemptSwitchStorage:
		if event.Status != nil {
			log.WithFields(
				log.Fields{
					"attempt": event.Status.Attempt,
				}).Info("attempt is switching storage node")
			e.statuses.MarkSwitching(event.Status.Attempt)
		}
	default:
		e.malformed(event, errors.Errorf("unknown event type %d", event.Type))
	}
}

func (e *Engine) statusUpdate(status domain.AttemptStatus, t time.Time) {
	if !e.known(status.Attempt.Task) {
		return
	}
	e.estimator.UpdateAttempt(status, t)
	if !status.State.Active() {
		e.heartbeats.Forget(status.Attempt)
	}

	stored := e.statuses.Record(status)
	if !stored.State.Terminal() {
		return
	}
	switch stored.Attempt.Task.Type {
	case domain.MapTask:
		if e.config.FetchRateEnabled {
			e.fetches.ReportEnded(stored.WorkerHost, stored.Attempt, stored.State == domain.Succeeded)
		}
	case domain.ReduceTask:
		if stored.State == domain.Succeeded {
			e.pipelines.MarkFinished(stored.Attempt.Task)
			e.fetches.ConsumerFinished(stored.Attempt)
		}
	}
}

func (e *Engine) attemptStart(status domain.AttemptStatus, t time.Time) {
	e.estimator.EnrollAttempt(status, t)

	switch status.Attempt.Task.Type {
	case domain.MapTask:
		if e.config.FetchRateEnabled {
			e.fetches.ReportStarted(status.WorkerHost, status.Attempt)
		}
	case domain.ReduceTask:
		if !e.config.SingleReducerEnabled {
			return
		}
		job, ok := e.directory.Job(status.Attempt.Task.Job)
		if !ok || job.TotalReduces() != 1 {
			return
		}
		if e.pipelines.DetectSingleReducer(status.Attempt, status.WorkerHost) {
			log.WithFields(
				log.Fields{
					"job":     job.ID(),
					"attempt": status.Attempt,
					"host":    status.WorkerHost,
				}).Info("single reducer job detected")
		}
	}
}

// known is true when both the job and task can be found in the directory.
func (e *Engine) known(task domain.TaskID) bool {
	job, ok := e.directory.Job(task.Job)
	if !ok {
		return false
	}
	_, ok = job.Task(task)
	return ok
}

func (e *Engine) malformed(event domain.Event, err error) {
	e.stat.Counter(stats.SpeculatorMalformedReportCounter).Inc(1)
	if e.warnLimiter.Allow() {
		log.WithFields(
			log.Fields{
				"type": event.Type,
				"task": event.Task,
				"err":  err,
			}).Warn("dropping malformed telemetry")
	}
}

// Ledger returns every task speculated so far.
func (e *Engine) Ledger() []LedgerEntry {
	return e.ledger.Snapshot()
}

func (e *Engine) String() string {
	return fmt.Sprintf("Engine{statuses:%s fetches:%s pipelines:%s ledger:%s}",
		e.statuses, e.fetches, e.pipelines, spew.Sdump(e.ledger.Snapshot()))
}
