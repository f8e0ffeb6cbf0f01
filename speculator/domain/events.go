package domain

import (
	"fmt"
	"time"
)

type EventType int

const (
	AttemptStatusUpdate EventType = iota
	TaskContainerNeedUpdate
	AttemptStart
	JobCreate
	AttemptFetchRateUpdate
	AttemptPipeRateUpdate
	AttemptSwitchStorage
)

var eventTypeNames = []string{
	"ATTEMPT_STATUS_UPDATE",
	"TASK_CONTAINER_NEED_UPDATE",
	"ATTEMPT_START",
	"JOB_CREATE",
	"ATTEMPT_FETCH_RATE_UPDATE",
	"ATTEMPT_PIPE_RATE_UPDATE",
	"ATTEMPT_SWITCH_STORAGE",
}

func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventTypeNames) {
		return fmt.Sprintf("EventType(%d)", int(t))
	}
	return eventTypeNames[t]
}

func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *EventType) UnmarshalText(text []byte) error {
	for i, n := range eventTypeNames {
		if n == string(text) {
			*t = EventType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event type %q", string(text))
}

// Event is one notification from the master. Which fields are set depends on Type:
//
//	AttemptStatusUpdate, AttemptStart, AttemptSwitchStorage: Status
//	TaskContainerNeedUpdate: Task, ContainerNeedDelta
//	JobCreate: Job
//	AttemptFetchRateUpdate: FetchRate
//	AttemptPipeRateUpdate: PipeRate
type Event struct {
	Type               EventType           `json:"type"`
	Time               time.Time           `json:"time"`
	Job                JobID               `json:"job,omitempty"`
	Task               TaskID              `json:"task"`
	Status             *AttemptStatus      `json:"status,omitempty"`
	ContainerNeedDelta int                 `json:"container_need_delta,omitempty"`
	FetchRate          *FetchRateReport    `json:"fetch_rate,omitempty"`
	PipeRate           *PipelineRateReport `json:"pipe_rate,omitempty"`
}

func NewStatusUpdateEvent(status AttemptStatus, t time.Time) Event {
	return Event{Type: AttemptStatusUpdate, Time: t, Job: status.Attempt.Task.Job, Task: status.Attempt.Task, Status: &status}
}

func NewAttemptStartEvent(status AttemptStatus, t time.Time) Event {
	return Event{Type: AttemptStart, Time: t, Job: status.Attempt.Task.Job, Task: status.Attempt.Task, Status: &status}
}

func NewContainerNeedEvent(task TaskID, delta int, t time.Time) Event {
	return Event{Type: TaskContainerNeedUpdate, Time: t, Job: task.Job, Task: task, ContainerNeedDelta: delta}
}

func NewJobCreateEvent(job JobID, t time.Time) Event {
	return Event{Type: JobCreate, Time: t, Job: job}
}

func NewFetchRateEvent(report FetchRateReport, t time.Time) Event {
	return Event{Type: AttemptFetchRateUpdate, Time: t, Job: report.ReduceAttempt.Task.Job, Task: report.ReduceAttempt.Task, FetchRate: &report}
}

func NewPipeRateEvent(report PipelineRateReport, t time.Time) Event {
	return Event{Type: AttemptPipeRateUpdate, Time: t, Job: report.ReduceAttempt.Task.Job, Task: report.ReduceAttempt.Task, PipeRate: &report}
}

func NewSwitchStorageEvent(attempt AttemptID, t time.Time) Event {
	return Event{Type: AttemptSwitchStorage, Time: t, Job: attempt.Task.Job, Task: attempt.Task, Status: &AttemptStatus{Attempt: attempt}}
}
