package telemetry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/twitter/speculator/speculator/domain"
	"github.com/twitter/speculator/speculator/statistics"
)

// StatusTable keeps the latest reported status of every attempt, the attempts known
// per task, the global transfer rate mean and the attempts switching storage nodes.
type StatusTable struct {
	mu        sync.Mutex
	latest    map[domain.AttemptID]domain.AttemptStatus
	known     map[domain.TaskID]map[domain.AttemptID]bool
	global    *statistics.KeyedMean
	switching map[domain.AttemptID]bool
}

func NewStatusTable() *StatusTable {
	return &StatusTable{
		latest:    make(map[domain.AttemptID]domain.AttemptStatus),
		known:     make(map[domain.TaskID]map[domain.AttemptID]bool),
		global:    statistics.NewKeyedMean(),
		switching: make(map[domain.AttemptID]bool),
	}
}

// Record stores status as the attempt's latest. A status at full progress is stored as succeeded.
// Recording clears the attempt's switching flag. Returns the status as stored.
func (s *StatusTable) Record(status domain.AttemptStatus) domain.AttemptStatus {
	status = status.Copy()
	if status.Progress >= 1.0 {
		status.State = domain.Succeeded
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := status.Attempt
	s.latest[id] = status
	if status.Rate > 0 {
		s.global.Put(id, status.Rate)
	}
	attempts, ok := s.known[id.Task]
	if !ok {
		attempts = make(map[domain.AttemptID]bool)
		s.known[id.Task] = attempts
	}
	attempts[id] = true
	delete(s.switching, id)
	return status
}

func (s *StatusTable) Latest(attempt domain.AttemptID) (domain.AttemptStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.latest[attempt]
	if !ok {
		return domain.AttemptStatus{}, false
	}
	return status.Copy(), true
}

// Known is true once any attempt of task has reported a status.
func (s *StatusTable) Known(task domain.TaskID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.known[task]) > 0
}

// Transferring returns the statuses of task's attempts with a positive transfer rate,
// ordered by attempt so the last one is the latest attempt.
func (s *StatusTable) Transferring(task domain.TaskID) []domain.AttemptStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	statuses := []domain.AttemptStatus{}
	for id := range s.known[task] {
		status, ok := s.latest[id]
		if ok && status.Rate > 0 {
			statuses = append(statuses, status.Copy())
		}
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Attempt.Less(statuses[j].Attempt) })
	return statuses
}

// GlobalRate is the mean of the latest positive transfer rate of every attempt.
func (s *StatusTable) GlobalRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.global.Mean()
}

// MarkSwitching flags an attempt that is moving to another storage node and drops its
// latest status and its share of the global rate; the flag clears on the attempt's next Record.
func (s *StatusTable) MarkSwitching(attempt domain.AttemptID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.switching[attempt] = true
	delete(s.latest, attempt)
	s.global.Remove(attempt)
}

func (s *StatusTable) IsSwitching(attempt domain.AttemptID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.switching[attempt]
}

// Len is the number of attempts with a recorded status.
func (s *StatusTable) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.latest)
}

func (s *StatusTable) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("StatusTable{attempts:%d tasks:%d switching:%d global:%s}",
		len(s.latest), len(s.known), len(s.switching), s.global)
}
