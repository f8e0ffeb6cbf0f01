package engine

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/speculator/speculator/domain"
	"github.com/twitter/speculator/speculator/telemetry"
)

// detectSlowWrites runs the write side heuristics over the reduce write pipelines: write
// diversity (once per job) and then slow pipelines. Finished entries are pruned every call.
// Returns the number of commands submitted.
func (e *Engine) detectSlowWrites() int {
	e.pipelines.Drain()
	defer e.pipelines.Prune()

	entries := e.pipelines.Entries()
	byJob := make(map[domain.JobID][]telemetry.PipelineEntry)
	for _, entry := range entries {
		job := entry.Key.Attempt.Task.Job
		byJob[job] = append(byJob[job], entry)
	}

	speculated := 0
	diversified := make(map[domain.JobID]bool)
	if e.config.WriteDiversityEnabled || e.config.SingleReducerEnabled {
		for _, job := range e.pipelines.Jobs() {
			if e.pipelines.DiversityFired(job) {
				continue
			}
			if e.checkWriteDiversity(job, byJob[job]) {
				diversified[job] = true
				speculated++
			}
		}
	}

	if !e.config.SlowWriteEnabled {
		return speculated
	}
	estimator := telemetry.SlowWriteEstimator{Threshold: e.config.WriteSlowThreshold}
	for _, entry := range entries {
		task := entry.Key.Attempt.Task
		if diversified[task.Job] || e.pipelines.IsFinished(task) {
			continue
		}
		if entry.Count < e.config.PipelineMinReports || !estimator.IsSlow(entry.Report) {
			continue
		}
		if e.pipelines.WasSpeculated(task) || e.ledger.Contains(task) {
			continue
		}

		log.WithFields(
			log.Fields{
				"attempt":  entry.Key.Attempt,
				"host":     entry.Key.Host,
				"pipeline": entry.Report.Pipeline,
				"rate":     entry.Report.Rate,
				"reports":  entry.Count,
			}).Info("slow write pipeline detected")
		cmd := newCommand(domain.AddSpeculativeAttempt, task, domain.SlowWrite)
		cmd.ExcludedNodes = entry.Report.Pipeline
		cmd.ExcludedHost = entry.Key.Host
		if !e.submit(cmd) {
			continue
		}
		e.pipelines.MarkSpeculated(task)
		e.pipelines.Remove(entry.Key)
		speculated++
	}
	return speculated
}

// checkWriteDiversity speculates one reducer of job when every running reducer writes through
// the same first node, or when the job's only reducer was detected. Returns true if it fired.
func (e *Engine) checkWriteDiversity(job domain.JobID, entries []telemetry.PipelineEntry) bool {
	if e.config.SingleReducerEnabled {
		if attempt, host, ok := e.pipelines.PendingSingleReducer(job); ok {
			return e.speculateSingleReducer(job, attempt, host, entries)
		}
	}
	if !e.config.WriteDiversityEnabled {
		return false
	}

	running := []telemetry.PipelineEntry{}
	for _, entry := range entries {
		if !e.pipelines.IsFinished(entry.Key.Attempt.Task) {
			running = append(running, entry)
		}
	}
	if len(running) < 2 {
		return false
	}
	first := running[0].Report.FirstNode()
	for _, entry := range running[1:] {
		if !strings.EqualFold(entry.Report.FirstNode(), first) {
			return false
		}
	}

	for _, entry := range running {
		task := entry.Key.Attempt.Task
		if e.pipelines.WasSpeculated(task) {
			continue
		}
		log.WithFields(
			log.Fields{
				"job":       job,
				"firstNode": first,
				"reducers":  len(running),
				"attempt":   entry.Key.Attempt,
			}).Info("all running reducers share their first pipeline node")
		cmd := newCommand(domain.AddSpeculativeAttempt, task, domain.WriteDiversity)
		cmd.ExcludedNodes = []string{first}
		cmd.ExcludedHost = entry.Key.Host
		cmd.Diversity = true
		if !e.submit(cmd) {
			return false
		}
		e.pipelines.MarkSpeculated(task)
		e.pipelines.SetDiversityFired(job)
		return true
	}
	return false
}

func (e *Engine) speculateSingleReducer(job domain.JobID, attempt domain.AttemptID, host string, entries []telemetry.PipelineEntry) bool {
	j, ok := e.directory.Job(job)
	if !ok || j.TotalReduces() != 1 {
		return false
	}
	task := attempt.Task
	if e.pipelines.IsFinished(task) {
		e.pipelines.MarkSingleReducerSpeculated(job)
		return false
	}

	// Without a pipeline report the last pipeline carried by a status is avoided, then the host.
	excluded := []string{host}
	if status, ok := e.statuses.Latest(attempt); ok && len(status.Pipeline) > 0 {
		excluded = status.Pipeline
	}
	for _, entry := range entries {
		if entry.Key.Attempt.Task == task {
			excluded = entry.Report.Pipeline
			host = entry.Key.Host
			break
		}
	}
	log.WithFields(
		log.Fields{
			"job":      job,
			"attempt":  attempt,
			"host":     host,
			"excluded": excluded,
		}).Info("speculating the only reducer of the job")
	cmd := newCommand(domain.AddSpeculativeAttempt, task, domain.SingleReducer)
	cmd.ExcludedNodes = excluded
	cmd.ExcludedHost = host
	cmd.Diversity = true
	if !e.submit(cmd) {
		return false
	}
	e.pipelines.MarkSingleReducerSpeculated(job)
	e.pipelines.MarkSpeculated(task)
	e.pipelines.SetDiversityFired(job)
	return true
}
