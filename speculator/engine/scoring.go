package engine

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/speculator/common/stats"
	"github.com/twitter/speculator/speculator/domain"
)

// Outcome classifies a task for speculation. Only Eligible carries a meaningful value.
type Outcome int

const (
	Eligible Outcome = iota
	// The estimator considers the task's runtime unbounded, or the fetch detector already relaunched it.
	OnSchedule
	// A second attempt is already running.
	AlreadySpeculating
	// Started after now, still waiting for its storage host, or switching storage nodes.
	TooNew
	// Estimated end has already passed.
	ProgressIsGood
	// No running attempt.
	NotRunning
	// A replacement started now would not finish first.
	TooLateToSpeculate
)

var outcomeNames = []string{"ELIGIBLE", "ON_SCHEDULE", "ALREADY_SPECULATING", "TOO_NEW", "PROGRESS_IS_GOOD", "NOT_RUNNING", "TOO_LATE_TO_SPECULATE"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// Score is the result of scoring one task. Value is the time a replacement attempt started now
// would save, and is only set for Eligible scores.
type Score struct {
	Outcome Outcome
	Value   time.Duration
}

func eligible(v time.Duration) Score { return Score{Outcome: Eligible, Value: v} }

func sentinel(o Outcome) Score { return Score{Outcome: o} }

// Better reports whether s should be speculated ahead of o. Every ineligible score ranks below every eligible one.
func (s Score) Better(o Score) bool {
	if s.Outcome != Eligible {
		return false
	}
	return o.Outcome != Eligible || s.Value > o.Value
}

func (s Score) String() string {
	if s.Outcome == Eligible {
		return fmt.Sprintf("ELIGIBLE(%s)", s.Value)
	}
	return s.Outcome.String()
}

// score judges whether task's running attempt is worth speculating at now.
// With fastPath set only eligibility is decided: a running, evaluable attempt scores Eligible(0)
// and no runtime estimates are compared.
// Must be called from a scan.
func (e *Engine) score(task domain.Task, now time.Time, fastPath bool) Score {
	var running domain.Attempt
	for _, a := range task.Attempts() {
		if a.State().Active() {
			if running != nil {
				return sentinel(AlreadySpeculating)
			}
			running = a
		}
	}

	if _, bounded := e.estimator.ThresholdRuntime(task.ID()); !bounded {
		return sentinel(OnSchedule)
	}
	if e.fetches.IsTaskBanned(task.ID()) {
		return sentinel(OnSchedule)
	}
	if running == nil {
		return sentinel(NotRunning)
	}

	id := running.ID()
	enrolled := e.estimator.AttemptEnrolledTime(id)
	if enrolled.After(now) {
		return sentinel(TooNew)
	}

	if id.Task.Type == domain.MapTask {
		if e.delayBudget > 0 && running.StorageHost() == domain.NullHost {
			if !e.delayedThisScan {
				e.delayBudget--
				e.delayedThisScan = true
			}
			log.WithFields(
				log.Fields{
					"attempt":     id,
					"delayBudget": e.delayBudget,
				}).Debug("attempt has not reported its storage host, waiting")
			return sentinel(TooNew)
		}
		if e.statuses.IsSwitching(id) {
			return sentinel(TooNew)
		}
	}

	if fastPath {
		return eligible(0)
	}

	runtime := e.estimator.EstimatedRuntime(id)
	if e.heartbeats.Observe(id, runtime, running.Progress(), now) {
		e.synthesizeHeartbeat(running, now)
	}

	end := enrolled.Add(runtime)
	replacementEnd := now.Add(e.estimator.EstimatedNewAttemptRuntime(task.ID()))
	if end.Before(now) {
		return sentinel(ProgressIsGood)
	}
	if !replacementEnd.Before(end) {
		return sentinel(TooLateToSpeculate)
	}
	return eligible(end.Sub(replacementEnd))
}

// synthesizeHeartbeat feeds the attempt's unchanged progress back through Handle so the
// estimator keeps extrapolating for an attempt that stopped reporting.
func (e *Engine) synthesizeHeartbeat(attempt domain.Attempt, now time.Time) {
	status, ok := e.statuses.Latest(attempt.ID())
	if !ok {
		status = domain.AttemptStatus{Attempt: attempt.ID(), StorageHost: attempt.StorageHost()}
	}
	status.State = attempt.State()
	status.Progress = attempt.Progress()

	e.stat.Counter(stats.SpeculatorSynthesizedHeartbeatCounter).Inc(1)
	log.WithFields(
		log.Fields{
			"attempt":  status.Attempt,
			"progress": status.Progress,
		}).Debug("synthesizing heartbeat for silent attempt")
	e.Handle(domain.NewStatusUpdateEvent(status, now))
}
