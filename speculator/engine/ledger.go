package engine

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/twitter/speculator/speculator/domain"
)

// Ledger is the append-only set of tasks that ever had a speculative action taken.
type Ledger struct {
	mu    sync.RWMutex
	tasks map[domain.TaskID]domain.Reason
}

func newLedger() *Ledger {
	return &Ledger{tasks: make(map[domain.TaskID]domain.Reason)}
}

// Add records task. The first reason recorded for a task is kept.
func (l *Ledger) Add(task domain.TaskID, reason domain.Reason) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.tasks[task]; !ok {
		l.tasks[task] = reason
	}
}

func (l *Ledger) Contains(task domain.TaskID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.tasks[task]
	return ok
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tasks)
}

// LedgerEntry is one speculated task and the reason of its first speculation.
type LedgerEntry struct {
	Task   domain.TaskID `json:"task"`
	Reason domain.Reason `json:"reason"`
}

// Snapshot returns every entry sorted by task.
func (l *Ledger) Snapshot() []LedgerEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := make([]LedgerEntry, 0, len(l.tasks))
	for t, r := range l.tasks {
		entries = append(entries, LedgerEntry{Task: t, Reason: r})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Task.Less(entries[j].Task) })
	return entries
}

// containerNeeds counts, per job, the attempts of one task type still waiting for a container.
// Reads are racy against ingestion; a stale read only delays a decision by one scan.
type containerNeeds struct {
	mu    sync.Mutex
	needs map[domain.JobID]*int64
}

func newContainerNeeds() *containerNeeds {
	return &containerNeeds{needs: make(map[domain.JobID]*int64)}
}

func (c *containerNeeds) counter(job domain.JobID) *int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.needs[job]
	if !ok {
		n = new(int64)
		c.needs[job] = n
	}
	return n
}

// register makes job visible to the selection loop without changing its need.
func (c *containerNeeds) register(job domain.JobID) {
	c.counter(job)
}

func (c *containerNeeds) add(job domain.JobID, delta int64) {
	atomic.AddInt64(c.counter(job), delta)
}

// snapshot returns the current need of every registered job, sorted by job.
func (c *containerNeeds) snapshot() []jobNeed {
	c.mu.Lock()
	defer c.mu.Unlock()
	needs := make([]jobNeed, 0, len(c.needs))
	for job, n := range c.needs {
		needs = append(needs, jobNeed{job: job, need: atomic.LoadInt64(n)})
	}
	sort.Slice(needs, func(i, j int) bool { return needs[i].job < needs[j].job })
	return needs
}

type jobNeed struct {
	job  domain.JobID
	need int64
}
