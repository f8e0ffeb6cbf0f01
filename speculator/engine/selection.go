package engine

import (
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/speculator/speculator/domain"
)

// selectAndSpeculate runs the default heuristic for one task type: in every job with no
// outstanding container need, the eligible task with the highest score gets one speculative
// attempt, provided the job's quota of in-flight speculations is not used up.
// Returns the number of commands submitted.
func (e *Engine) selectAndSpeculate(taskType domain.TaskType) int {
	now := e.clock.Now()
	successes := 0

	for _, jn := range e.needs[taskType].snapshot() {
		if jn.need > 0 {
			continue
		}
		job, ok := e.directory.Job(jn.job)
		if !ok {
			continue
		}
		tasks := sortedTasks(job.Tasks(taskType))

		allowed := math.Max(float64(e.config.MinimumAllowed), e.config.ProportionTotal*float64(len(tasks)))
		speculating, running := 0, 0
		var best domain.Task
		bestScore := sentinel(NotRunning)

		for _, task := range tasks {
			s := e.score(task, now, false)
			if s.Outcome == AlreadySpeculating {
				speculating++
			}
			if s.Outcome != NotRunning {
				running++
			}
			if e.ledger.Contains(task.ID()) {
				continue
			}
			if s.Better(bestScore) {
				best, bestScore = task, s
			}
		}

		allowed = math.Max(allowed, e.config.ProportionRunning*float64(running))
		if best == nil || allowed <= float64(speculating) {
			continue
		}

		log.WithFields(
			log.Fields{
				"job":         jn.job,
				"task":        best.ID(),
				"score":       bestScore,
				"allowed":     allowed,
				"speculating": speculating,
				"running":     running,
			}).Info("default heuristic picked a task")
		if e.submit(newCommand(domain.AddSpeculativeAttempt, best.ID(), domain.DefaultHeuristic)) {
			successes++
		}
	}
	return successes
}

func sortedTasks(tasks map[domain.TaskID]domain.Task) []domain.Task {
	sorted := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID().Less(sorted[j].ID()) })
	return sorted
}
