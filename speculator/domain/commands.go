package domain

import (
	"fmt"
	"strings"
)

type CommandKind int

const (
	// Launch one more attempt of the task next to the running one.
	AddSpeculativeAttempt CommandKind = iota
	// Kill the given attempt and start the task over.
	RelaunchAttempt
)

func (k CommandKind) String() string {
	switch k {
	case AddSpeculativeAttempt:
		return "ADD_SPECULATIVE_ATTEMPT"
	case RelaunchAttempt:
		return "RELAUNCH_ATTEMPT"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

func (k CommandKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Reason names the heuristic that produced a command.
type Reason int

const (
	DefaultHeuristic Reason = iota
	SlowFetchRate
	SlowWrite
	WriteDiversity
	SingleReducer
	SlowMapPath
)

var reasonNames = []string{"default", "slow_fetch_rate", "slow_write", "write_diversity", "single_reducer", "slow_map_path"}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return fmt.Sprintf("Reason(%d)", int(r))
	}
	return reasonNames[r]
}

func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Command is a decision handed to the CommandSink. Placement hints are advisory:
// the sink chooses where the new attempt actually runs.
type Command struct {
	ID     string      `json:"id"`
	Kind   CommandKind `json:"kind"`
	Task   TaskID      `json:"task"`
	Reason Reason      `json:"reason"`
	// Storage nodes the new attempt should not write through.
	ExcludedNodes []string `json:"excluded_nodes,omitempty"`
	// Worker host the new attempt should not run on.
	ExcludedHost string `json:"excluded_host,omitempty"`
	// Ask for a pipeline that shares no node with the ones in use.
	Diversity bool `json:"diversity,omitempty"`
	// Attempt being replaced by a relaunch.
	SourceAttempt *AttemptID `json:"source_attempt,omitempty"`
}

func (c Command) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s reason=%s", c.Kind, c.Task, c.Reason)
	if len(c.ExcludedNodes) > 0 {
		fmt.Fprintf(&b, " excludedNodes=%v", c.ExcludedNodes)
	}
	if c.ExcludedHost != NullHost {
		fmt.Fprintf(&b, " excludedHost=%s", c.ExcludedHost)
	}
	if c.Diversity {
		b.WriteString(" diversity")
	}
	if c.SourceAttempt != nil {
		fmt.Fprintf(&b, " source=%s", c.SourceAttempt)
	}
	return b.String()
}
