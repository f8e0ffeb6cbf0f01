package domain

import (
	"fmt"
	"strings"
)

type JobID string

// TaskType partitions a job's tasks into the source stage (map) and the aggregation stage (reduce).
type TaskType int

const (
	MapTask TaskType = iota
	ReduceTask
)

// Every task type, in the order the selection loop visits them.
var TaskTypes = []TaskType{MapTask, ReduceTask}

func (t TaskType) String() string {
	switch t {
	case MapTask:
		return "map"
	case ReduceTask:
		return "reduce"
	default:
		return fmt.Sprintf("TaskType(%d)", int(t))
	}
}

func (t TaskType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TaskType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "map", "m":
		*t = MapTask
	case "reduce", "r":
		*t = ReduceTask
	default:
		return fmt.Errorf("unknown task type %q", string(text))
	}
	return nil
}

type TaskID struct {
	Job   JobID    `json:"job"`
	Type  TaskType `json:"type"`
	Index int      `json:"index"`
}

func (t TaskID) String() string {
	return fmt.Sprintf("task_%s_%s_%06d", t.Job, t.Type.String()[:1], t.Index)
}

// Less orders tasks by job, then type, then index.
func (t TaskID) Less(o TaskID) bool {
	if t.Job != o.Job {
		return t.Job < o.Job
	}
	if t.Type != o.Type {
		return t.Type < o.Type
	}
	return t.Index < o.Index
}

type AttemptID struct {
	Task  TaskID `json:"task"`
	Index int    `json:"index"`
}

func (a AttemptID) String() string {
	return fmt.Sprintf("attempt_%s_%s_%06d_%d", a.Task.Job, a.Task.Type.String()[:1], a.Task.Index, a.Index)
}

// Less orders attempts by task, then attempt index. A later attempt of the same task compares greater.
func (a AttemptID) Less(o AttemptID) bool {
	if a.Task != o.Task {
		return a.Task.Less(o.Task)
	}
	return a.Index < o.Index
}

func (a AttemptID) IsZero() bool {
	return a == AttemptID{}
}
