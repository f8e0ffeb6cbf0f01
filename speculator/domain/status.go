package domain

import (
	"fmt"
	"strings"
)

type AttemptState int

const (
	New AttemptState = iota
	Starting
	Running
	Succeeded
	Failed
	Killed
)

var attemptStateNames = []string{"NEW", "STARTING", "RUNNING", "SUCCEEDED", "FAILED", "KILLED"}

func (s AttemptState) String() string {
	if s < 0 || int(s) >= len(attemptStateNames) {
		return fmt.Sprintf("AttemptState(%d)", int(s))
	}
	return attemptStateNames[s]
}

func (s AttemptState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *AttemptState) UnmarshalText(text []byte) error {
	name := strings.ToUpper(string(text))
	for i, n := range attemptStateNames {
		if n == name {
			*s = AttemptState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown attempt state %q", string(text))
}

// Active attempts are the ones occupying a container: starting or running.
func (s AttemptState) Active() bool {
	return s == Starting || s == Running
}

func (s AttemptState) Terminal() bool {
	return s == Succeeded || s == Failed || s == Killed
}

// NullHost marks a storage or worker location that has not been reported yet.
const NullHost = ""

// AttemptStatus is the telemetry snapshot an attempt reports with every heartbeat.
type AttemptStatus struct {
	Attempt  AttemptID    `json:"attempt"`
	State    AttemptState `json:"state"`
	Progress float64      `json:"progress"`
	// Transfer rate of the attempt's input, in Mbps.
	Rate        float64  `json:"rate"`
	WorkerHost  string   `json:"worker_host,omitempty"`
	StorageHost string   `json:"storage_host,omitempty"`
	Pipeline    []string `json:"pipeline,omitempty"`
}

// Copy returns a status that shares no slices with s.
func (s AttemptStatus) Copy() AttemptStatus {
	c := s
	if s.Pipeline != nil {
		c.Pipeline = append([]string(nil), s.Pipeline...)
	}
	return c
}

// NonLocal is true when the attempt reads its input from a storage node other than the worker it runs on.
func (s AttemptStatus) NonLocal() bool {
	return s.StorageHost != NullHost && s.WorkerHost != NullHost && !strings.EqualFold(s.StorageHost, s.WorkerHost)
}

func (s AttemptStatus) String() string {
	return fmt.Sprintf("%s{state:%s progress:%.3f rate:%.2f worker:%q storage:%q pipeline:%v}",
		s.Attempt, s.State, s.Progress, s.Rate, s.WorkerHost, s.StorageHost, s.Pipeline)
}
