package simulator

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/twitter/speculator/speculator/domain"
)

// Duration is a time.Duration written as a Go duration string ("1m30s") in traces.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Trace is a scripted run of the master: the jobs it starts with and a sequence of steps.
type Trace struct {
	Start time.Time   `json:"start"`
	Jobs  []TraceJob  `json:"jobs"`
	Steps []TraceStep `json:"steps"`
}

type TraceJob struct {
	ID      domain.JobID `json:"id"`
	Maps    int          `json:"maps"`
	Reduces int          `json:"reduces"`
}

// TraceStep advances the clock, scripts estimates, delivers events and optionally scans, in that order.
// Events without a time get the clock's time after the advance.
type TraceStep struct {
	Advance   Duration        `json:"advance,omitempty"`
	Estimates []TraceEstimate `json:"estimates,omitempty"`
	Events    []domain.Event  `json:"events,omitempty"`
	Finished  []domain.TaskID `json:"finished,omitempty"`
	Scan      bool            `json:"scan,omitempty"`
}

// TraceEstimate scripts the ReplayEstimator. Task estimates apply when Task is set,
// attempt estimates when Attempt is set.
type TraceEstimate struct {
	Task              *domain.TaskID    `json:"task,omitempty"`
	Threshold         *Duration         `json:"threshold,omitempty"`
	Unbounded         bool              `json:"unbounded,omitempty"`
	NewAttemptRuntime *Duration         `json:"new_attempt_runtime,omitempty"`
	Attempt           *domain.AttemptID `json:"attempt,omitempty"`
	Runtime           *Duration         `json:"runtime,omitempty"`
	// Attempt start relative to the clock's current time, usually negative.
	EnrolledOffset *Duration `json:"enrolled_offset,omitempty"`
}

// ReadTrace decodes a JSON trace.
func ReadTrace(r io.Reader) (*Trace, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading trace")
	}
	t := &Trace{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, errors.Wrap(err, "parsing trace")
	}
	if t.Start.IsZero() {
		t.Start = time.Unix(0, 0).UTC()
	}
	return t, nil
}

// LoadTrace reads a JSON trace from path.
func LoadTrace(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening trace %s", path)
	}
	defer f.Close()
	return ReadTrace(f)
}
