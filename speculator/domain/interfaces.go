package domain

//go:generate mockgen -source=interfaces.go -package=mocks -destination=mocks/interfaces_mock.go

import (
	"time"
)

// Directory is the master's view of the jobs it is running. Lookups may miss
// while a job is being created or torn down; callers skip what they can't find.
type Directory interface {
	Job(id JobID) (Job, bool)
}

type Job interface {
	ID() JobID
	Task(id TaskID) (Task, bool)
	Tasks(t TaskType) map[TaskID]Task
	// Number of reduce tasks the job was configured with, not the number started so far.
	TotalReduces() int
}

type Task interface {
	ID() TaskID
	Attempts() map[AttemptID]Attempt
	Finished() bool
}

type Attempt interface {
	ID() AttemptID
	State() AttemptState
	Progress() float64
	// Storage node the attempt reads from, NullHost until the first report names one.
	StorageHost() string
}

// Estimator predicts attempt runtimes. Durations are measured from AttemptEnrolledTime.
type Estimator interface {
	EnrollAttempt(status AttemptStatus, t time.Time)
	UpdateAttempt(status AttemptStatus, t time.Time)
	// Runtime past which a task is worth speculating. False means unbounded: never speculate.
	ThresholdRuntime(task TaskID) (time.Duration, bool)
	EstimatedRuntime(attempt AttemptID) time.Duration
	AttemptEnrolledTime(attempt AttemptID) time.Time
	EstimatedNewAttemptRuntime(task TaskID) time.Duration
}

// CommandSink turns speculation decisions into scheduled work.
type CommandSink interface {
	Submit(cmd Command) error
}

type Clock interface {
	Now() time.Time
}

// WallClock reads time.Now.
type WallClock struct{}

func (WallClock) Now() time.Time { return time.Now() }
