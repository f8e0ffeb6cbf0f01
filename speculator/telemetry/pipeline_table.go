package telemetry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/twitter/speculator/speculator/domain"
)

// PipelineKey identifies a write pipeline by the reduce attempt writing through it and the host it reports from.
type PipelineKey struct {
	Attempt domain.AttemptID
	Host    string
}

func (k PipelineKey) Less(o PipelineKey) bool {
	if k.Attempt != o.Attempt {
		return k.Attempt.Less(o.Attempt)
	}
	return k.Host < o.Host
}

// PipelineEntry is a point-in-time copy of one row of the PipelineTable.
type PipelineEntry struct {
	Key    PipelineKey
	Report domain.PipelineRateReport
	// Number of reports received for this key, including the latest.
	Count int
}

type singleReducer struct {
	attempt    domain.AttemptID
	host       string
	speculated bool
}

// PipelineTable tracks the write pipelines of running reduce attempts together with the
// per-task finished/speculated flags and the per-job write diversity state.
type PipelineTable struct {
	mu             sync.Mutex
	pending        []domain.PipelineRateReport
	entries        map[PipelineKey]*PipelineEntry
	finished       map[domain.TaskID]bool
	speculated     map[domain.TaskID]bool
	diversityFired map[domain.JobID]bool
	singleReducers map[domain.JobID]*singleReducer
}

func NewPipelineTable() *PipelineTable {
	return &PipelineTable{
		entries:        make(map[PipelineKey]*PipelineEntry),
		finished:       make(map[domain.TaskID]bool),
		speculated:     make(map[domain.TaskID]bool),
		diversityFired: make(map[domain.JobID]bool),
		singleReducers: make(map[domain.JobID]*singleReducer),
	}
}

// Enqueue queues a report for the next Drain. Reports missing the attempt, host or pipeline are rejected.
func (p *PipelineTable) Enqueue(report domain.PipelineRateReport) error {
	if report.ReduceAttempt.IsZero() || ParseHost(report.ReduceHost) == domain.NullHost {
		return errors.Errorf("pipeline report is missing its reduce attempt or host: %+v", report)
	}
	if len(report.Pipeline) == 0 {
		return errors.Errorf("pipeline report from %s has an empty pipeline", report.ReduceAttempt)
	}
	report.ReduceHost = ParseHost(report.ReduceHost)
	report.Pipeline = append([]string(nil), report.Pipeline...)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, report)
	return nil
}

// Drain folds every queued report into the table in arrival order and returns how many there were.
func (p *PipelineTable) Drain() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.pending)
	for _, r := range p.pending {
		key := PipelineKey{Attempt: r.ReduceAttempt, Host: r.ReduceHost}
		e, ok := p.entries[key]
		if !ok {
			e = &PipelineEntry{Key: key}
			p.entries[key] = e
		}
		e.Report = r
		e.Count++
	}
	p.pending = nil
	return n
}

// Entries returns a copy of every row, sorted by key.
func (p *PipelineTable) Entries() []PipelineEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	entries := make([]PipelineEntry, 0, len(p.entries))
	for _, e := range p.entries {
		c := *e
		c.Report.Pipeline = append([]string(nil), e.Report.Pipeline...)
		entries = append(entries, c)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key.Less(entries[j].Key) })
	return entries
}

func (p *PipelineTable) MarkFinished(task domain.TaskID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished[task] = true
}

func (p *PipelineTable) IsFinished(task domain.TaskID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished[task]
}

func (p *PipelineTable) MarkSpeculated(task domain.TaskID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speculated[task] = true
}

func (p *PipelineTable) WasSpeculated(task domain.TaskID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speculated[task]
}

// Remove drops the given rows; speculated flags survive.
func (p *PipelineTable) Remove(keys ...PipelineKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range keys {
		delete(p.entries, k)
	}
}

// Prune drops the rows of finished tasks and returns how many went.
func (p *PipelineTable) Prune() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for k := range p.entries {
		if p.finished[k.Attempt.Task] {
			delete(p.entries, k)
			n++
		}
	}
	return n
}

func (p *PipelineTable) DiversityFired(job domain.JobID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.diversityFired[job]
}

func (p *PipelineTable) SetDiversityFired(job domain.JobID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.diversityFired[job] = true
}

// DetectSingleReducer records the first reduce attempt started for a job with one reduce task.
// Later calls for the same job are ignored. Returns true when the attempt was recorded.
func (p *PipelineTable) DetectSingleReducer(attempt domain.AttemptID, host string) bool {
	host = ParseHost(host)
	if host == domain.NullHost || attempt.IsZero() {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	job := attempt.Task.Job
	if _, ok := p.singleReducers[job]; ok {
		return false
	}
	p.singleReducers[job] = &singleReducer{attempt: attempt, host: host}
	return true
}

// PendingSingleReducer returns the detected single reducer of job if it has not been speculated yet.
func (p *PipelineTable) PendingSingleReducer(job domain.JobID) (domain.AttemptID, string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.singleReducers[job]
	if !ok || s.speculated {
		return domain.AttemptID{}, domain.NullHost, false
	}
	return s.attempt, s.host, true
}

func (p *PipelineTable) MarkSingleReducerSpeculated(job domain.JobID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.singleReducers[job]; ok {
		s.speculated = true
	}
}

// Jobs returns every job with a row or a pending single reducer, sorted.
func (p *PipelineTable) Jobs() []domain.JobID {
	p.mu.Lock()
	defer p.mu.Unlock()
	seen := make(map[domain.JobID]bool)
	for k := range p.entries {
		seen[k.Attempt.Task.Job] = true
	}
	for job, s := range p.singleReducers {
		if !s.speculated {
			seen[job] = true
		}
	}
	jobs := make([]domain.JobID, 0, len(seen))
	for job := range seen {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i] < jobs[j] })
	return jobs
}

// Len is the number of rows.
func (p *PipelineTable) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *PipelineTable) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("PipelineTable{pending:%d finished:%d speculated:%d diversity:%v entries:%s}",
		len(p.pending), len(p.finished), len(p.speculated), p.diversityFired, spew.Sdump(p.entries))
}
