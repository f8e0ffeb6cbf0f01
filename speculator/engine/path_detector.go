package engine

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/speculator/speculator/domain"
	"github.com/twitter/speculator/speculator/telemetry"
)

type pathCounters struct {
	unknown     int
	finished    int
	speculating int
}

// pathCandidate is an eligible map task and the status of its latest transferring attempt.
type pathCandidate struct {
	task   domain.TaskID
	latest domain.AttemptStatus
}

// detectSlowPaths speculates map tasks reading their input over a slow non-local path.
// Returns the number of commands submitted.
func (e *Engine) detectSlowPaths() int {
	now := e.clock.Now()
	threshold := math.Max(e.config.SlowTransferRateThreshold, e.statuses.GlobalRate()*e.config.SlowTransferRateRatio)

	successes := 0
	for _, jn := range e.needs[domain.MapTask].snapshot() {
		if jn.need > 0 {
			continue
		}
		job, ok := e.directory.Job(jn.job)
		if !ok {
			continue
		}

		var counters pathCounters
		paths := telemetry.NewPathStatistics()
		candidates := []pathCandidate{}
		for _, task := range sortedTasks(job.Tasks(domain.MapTask)) {
			id := task.ID()
			s := e.score(task, now, true)
			if s.Outcome == TooNew || !e.statuses.Known(id) {
				counters.unknown++
				continue
			}
			if task.Finished() {
				counters.finished++
				continue
			}
			if s.Outcome == AlreadySpeculating {
				counters.speculating++
				continue
			}
			if s.Outcome != Eligible || e.ledger.Contains(id) {
				continue
			}

			transferring := e.statuses.Transferring(id)
			if len(transferring) == 0 {
				continue
			}
			for _, status := range transferring {
				paths.AddRate(status)
			}
			latest := transferring[len(transferring)-1]
			if latest.NonLocal() {
				paths.Group(id, latest)
			}
			candidates = append(candidates, pathCandidate{task: id, latest: latest})
		}

		var n int
		if e.config.PathStrategy == PathStrategyGrouped {
			n = e.speculateGroupedPaths(job.ID(), paths, candidates, threshold)
		} else {
			n = e.speculateSlowPaths(candidates, threshold)
		}
		if n == 0 {
			log.WithFields(
				log.Fields{
					"job":         job.ID(),
					"strategy":    e.config.PathStrategy,
					"globalRate":  e.statuses.GlobalRate(),
					"threshold":   threshold,
					"groups":      paths.Groups(),
					"speculating": counters.speculating,
					"finished":    counters.finished,
					"unknown":     counters.unknown,
				}).Debug("nothing to speculate on map paths")
		}
		successes += n
	}
	return successes
}

// speculateSlowPaths speculates every non-local candidate whose latest rate is below threshold.
func (e *Engine) speculateSlowPaths(candidates []pathCandidate, threshold float64) int {
	successes := 0
	for _, c := range candidates {
		if !c.latest.NonLocal() || c.latest.Rate >= threshold {
			continue
		}
		if e.speculatePath(c, threshold) {
			successes++
		}
	}
	return successes
}

// speculateGroupedPaths speculates every task behind the slowest host whose mean rate is below
// threshold. With no such host the slowest single candidate is speculated if it is below threshold.
func (e *Engine) speculateGroupedPaths(job domain.JobID, paths *telemetry.PathStatistics, candidates []pathCandidate, threshold float64) int {
	byTask := make(map[domain.TaskID]pathCandidate, len(candidates))
	var slowest *pathCandidate
	for i, c := range candidates {
		byTask[c.task] = c
		if slowest == nil || c.latest.Rate < slowest.latest.Rate {
			slowest = &candidates[i]
		}
	}

	if host, mean, ok := paths.SlowestGroup(threshold); ok {
		tasks := paths.GroupTasks(host)
		log.WithFields(
			log.Fields{
				"job":       job,
				"host":      host,
				"mean":      mean,
				"threshold": threshold,
				"tasks":     len(tasks),
			}).Info("speculating path group")
		successes := 0
		for _, t := range tasks {
			if e.speculatePath(byTask[t], threshold) {
				successes++
			}
		}
		return successes
	}

	if slowest != nil && slowest.latest.Rate < threshold {
		if e.speculatePath(*slowest, threshold) {
			return 1
		}
	}
	return 0
}

func (e *Engine) speculatePath(c pathCandidate, threshold float64) bool {
	if e.ledger.Contains(c.task) || e.fetches.IsTaskBanned(c.task) {
		return false
	}
	log.WithFields(
		log.Fields{
			"task":      c.task,
			"attempt":   c.latest.Attempt,
			"worker":    c.latest.WorkerHost,
			"storage":   c.latest.StorageHost,
			"rate":      c.latest.Rate,
			"threshold": threshold,
		}).Info("slow map path detected")
	cmd := newCommand(domain.AddSpeculativeAttempt, c.task, domain.SlowMapPath)
	if c.latest.StorageHost != domain.NullHost {
		cmd.ExcludedNodes = []string{c.latest.StorageHost}
	}
	cmd.ExcludedHost = c.latest.WorkerHost
	return e.submit(cmd)
}
