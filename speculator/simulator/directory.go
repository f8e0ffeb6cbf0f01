// Package simulator provides in-memory stand-ins for the master the engine runs inside:
// a job directory, a scripted estimator, a recording command sink and a manual clock,
// plus a trace format and a runner that replays traces against an engine.
package simulator

import (
	"sync"

	"github.com/twitter/speculator/speculator/domain"
)

// MemoryDirectory is a domain.Directory over jobs kept in memory. Safe for concurrent use.
type MemoryDirectory struct {
	mu   sync.RWMutex
	jobs map[domain.JobID]*MemoryJob
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{jobs: make(map[domain.JobID]*MemoryJob)}
}

// AddJob creates a job with maps map tasks and reduces reduce tasks, indexed from 1.
func (d *MemoryDirectory) AddJob(id domain.JobID, maps, reduces int) *MemoryJob {
	j := &MemoryJob{
		id:           id,
		totalReduces: reduces,
		tasks:        make(map[domain.TaskID]*MemoryTask),
	}
	for i := 1; i <= maps; i++ {
		j.AddTask(domain.MapTask, i)
	}
	for i := 1; i <= reduces; i++ {
		j.AddTask(domain.ReduceTask, i)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs[id] = j
	return j
}

func (d *MemoryDirectory) RemoveJob(id domain.JobID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.jobs, id)
}

func (d *MemoryDirectory) Job(id domain.JobID) (domain.Job, bool) {
	j, ok := d.MemoryJob(id)
	if !ok {
		return nil, false
	}
	return j, true
}

func (d *MemoryDirectory) MemoryJob(id domain.JobID) (*MemoryJob, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	j, ok := d.jobs[id]
	return j, ok
}

// Attempt returns the attempt, creating it in state New when it does not exist yet.
// Returns false when the attempt's job or task is unknown.
func (d *MemoryDirectory) Attempt(id domain.AttemptID) (*MemoryAttempt, bool) {
	j, ok := d.MemoryJob(id.Task.Job)
	if !ok {
		return nil, false
	}
	t, ok := j.MemoryTask(id.Task)
	if !ok {
		return nil, false
	}
	return t.AddAttempt(id.Index), true
}

// Apply mirrors what the master would record for an attempt status.
func (d *MemoryDirectory) Apply(status domain.AttemptStatus) {
	a, ok := d.Attempt(status.Attempt)
	if !ok {
		return
	}
	a.Update(status)
	if status.State == domain.Succeeded || status.Progress >= 1.0 {
		if t, ok := d.task(status.Attempt.Task); ok {
			t.SetFinished(true)
		}
	}
}

func (d *MemoryDirectory) task(id domain.TaskID) (*MemoryTask, bool) {
	j, ok := d.MemoryJob(id.Job)
	if !ok {
		return nil, false
	}
	return j.MemoryTask(id)
}

type MemoryJob struct {
	id           domain.JobID
	mu           sync.RWMutex
	totalReduces int
	tasks        map[domain.TaskID]*MemoryTask
}

func (j *MemoryJob) ID() domain.JobID { return j.id }

func (j *MemoryJob) AddTask(t domain.TaskType, index int) *MemoryTask {
	id := domain.TaskID{Job: j.id, Type: t, Index: index}
	j.mu.Lock()
	defer j.mu.Unlock()
	if task, ok := j.tasks[id]; ok {
		return task
	}
	task := &MemoryTask{id: id, attempts: make(map[domain.AttemptID]*MemoryAttempt)}
	j.tasks[id] = task
	return task
}

func (j *MemoryJob) Task(id domain.TaskID) (domain.Task, bool) {
	t, ok := j.MemoryTask(id)
	if !ok {
		return nil, false
	}
	return t, true
}

func (j *MemoryJob) MemoryTask(id domain.TaskID) (*MemoryTask, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	t, ok := j.tasks[id]
	return t, ok
}

func (j *MemoryJob) Tasks(t domain.TaskType) map[domain.TaskID]domain.Task {
	j.mu.RLock()
	defer j.mu.RUnlock()
	tasks := make(map[domain.TaskID]domain.Task)
	for id, task := range j.tasks {
		if id.Type == t {
			tasks[id] = task
		}
	}
	return tasks
}

func (j *MemoryJob) TotalReduces() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.totalReduces
}

func (j *MemoryJob) SetTotalReduces(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.totalReduces = n
}

type MemoryTask struct {
	id       domain.TaskID
	mu       sync.RWMutex
	finished bool
	attempts map[domain.AttemptID]*MemoryAttempt
}

func (t *MemoryTask) ID() domain.TaskID { return t.id }

// AddAttempt returns attempt index of the task, creating it in state New if needed.
func (t *MemoryTask) AddAttempt(index int) *MemoryAttempt {
	id := domain.AttemptID{Task: t.id, Index: index}
	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.attempts[id]; ok {
		return a
	}
	a := &MemoryAttempt{id: id, state: domain.New}
	t.attempts[id] = a
	return a
}

func (t *MemoryTask) Attempts() map[domain.AttemptID]domain.Attempt {
	t.mu.RLock()
	defer t.mu.RUnlock()
	attempts := make(map[domain.AttemptID]domain.Attempt, len(t.attempts))
	for id, a := range t.attempts {
		attempts[id] = a
	}
	return attempts
}

func (t *MemoryTask) Finished() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.finished
}

func (t *MemoryTask) SetFinished(finished bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finished = finished
}

type MemoryAttempt struct {
	id          domain.AttemptID
	mu          sync.RWMutex
	state       domain.AttemptState
	progress    float64
	storageHost string
}

func (a *MemoryAttempt) ID() domain.AttemptID { return a.id }

func (a *MemoryAttempt) State() domain.AttemptState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *MemoryAttempt) Progress() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.progress
}

func (a *MemoryAttempt) StorageHost() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.storageHost
}

func (a *MemoryAttempt) SetState(s domain.AttemptState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = s
}

func (a *MemoryAttempt) SetProgress(p float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.progress = p
}

func (a *MemoryAttempt) SetStorageHost(host string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.storageHost = host
}

// Update copies state and progress from status. A known storage host is never reset to NullHost.
func (a *MemoryAttempt) Update(status domain.AttemptStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = status.State
	a.progress = status.Progress
	if status.Progress >= 1.0 {
		a.state = domain.Succeeded
	}
	if status.StorageHost != domain.NullHost {
		a.storageHost = status.StorageHost
	}
}
