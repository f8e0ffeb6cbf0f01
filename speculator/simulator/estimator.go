package simulator

import (
	"sync"
	"time"

	"github.com/twitter/speculator/speculator/domain"
	"github.com/twitter/speculator/speculator/estimator"
)

// ReplayName is the estimator name ReplayEstimator is registered under.
const ReplayName = "replay"

func init() {
	estimator.Register(ReplayName, func(domain.Directory) (domain.Estimator, error) {
		return NewReplayEstimator(), nil
	})
}

const (
	DefaultReplayThreshold         = 10 * time.Minute
	DefaultReplayRuntime           = time.Minute
	DefaultReplayNewAttemptRuntime = time.Minute
)

// ReplayEstimator answers with values scripted by a test or a trace instead of a model.
// Anything not scripted falls back to the defaults. Safe for concurrent use.
type ReplayEstimator struct {
	mu                sync.Mutex
	thresholds        map[domain.TaskID]time.Duration
	unbounded         map[domain.TaskID]bool
	runtimes          map[domain.AttemptID]time.Duration
	enrolled          map[domain.AttemptID]time.Time
	newRuntimes       map[domain.TaskID]time.Duration
	updates           map[domain.AttemptID]int
	defaultThreshold  time.Duration
	defaultRuntime    time.Duration
	defaultNewRuntime time.Duration
}

func NewReplayEstimator() *ReplayEstimator {
	return &ReplayEstimator{
		thresholds:        make(map[domain.TaskID]time.Duration),
		unbounded:         make(map[domain.TaskID]bool),
		runtimes:          make(map[domain.AttemptID]time.Duration),
		enrolled:          make(map[domain.AttemptID]time.Time),
		newRuntimes:       make(map[domain.TaskID]time.Duration),
		updates:           make(map[domain.AttemptID]int),
		defaultThreshold:  DefaultReplayThreshold,
		defaultRuntime:    DefaultReplayRuntime,
		defaultNewRuntime: DefaultReplayNewAttemptRuntime,
	}
}

// EnrollAttempt records t as the attempt's start unless a start was already scripted.
func (r *ReplayEstimator) EnrollAttempt(status domain.AttemptStatus, t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enrolled[status.Attempt]; !ok {
		r.enrolled[status.Attempt] = t
	}
}

func (r *ReplayEstimator) UpdateAttempt(status domain.AttemptStatus, t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates[status.Attempt]++
}

func (r *ReplayEstimator) ThresholdRuntime(task domain.TaskID) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unbounded[task] {
		return 0, false
	}
	if d, ok := r.thresholds[task]; ok {
		return d, true
	}
	return r.defaultThreshold, true
}

func (r *ReplayEstimator) EstimatedRuntime(attempt domain.AttemptID) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.runtimes[attempt]; ok {
		return d
	}
	return r.defaultRuntime
}

func (r *ReplayEstimator) AttemptEnrolledTime(attempt domain.AttemptID) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enrolled[attempt]
}

func (r *ReplayEstimator) EstimatedNewAttemptRuntime(task domain.TaskID) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.newRuntimes[task]; ok {
		return d
	}
	return r.defaultNewRuntime
}

func (r *ReplayEstimator) SetThreshold(task domain.TaskID, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.thresholds[task] = d
	delete(r.unbounded, task)
}

// SetUnbounded makes the task's runtime threshold unbounded, so it is never worth speculating.
func (r *ReplayEstimator) SetUnbounded(task domain.TaskID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unbounded[task] = true
}

func (r *ReplayEstimator) SetRuntime(attempt domain.AttemptID, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runtimes[attempt] = d
}

func (r *ReplayEstimator) SetEnrolled(attempt domain.AttemptID, t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrolled[attempt] = t
}

func (r *ReplayEstimator) SetNewAttemptRuntime(task domain.TaskID, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.newRuntimes[task] = d
}

// Updates is the number of UpdateAttempt calls seen for attempt.
func (r *ReplayEstimator) Updates(attempt domain.AttemptID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[attempt]
}
