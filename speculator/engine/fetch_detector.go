package engine

import (
	log "github.com/sirupsen/logrus"

	"github.com/twitter/speculator/speculator/domain"
	"github.com/twitter/speculator/speculator/telemetry"
)

// detectSlowFetches relaunches the map attempts whose output reducers are pulling too slowly
// from their host. Each slow host is judged once and then has to collect fresh samples.
// Returns the number of relaunches submitted.
func (e *Engine) detectSlowFetches() int {
	drained := e.fetches.Drain()
	estimator := telemetry.HarmonicSlowShuffleEstimator{
		NodeThreshold:     e.config.FetchSlowNodeThreshold,
		ProgressThreshold: e.config.FetchSlowProgressThreshold,
	}

	relaunched := 0
	for _, host := range e.fetches.Hosts() {
		if !e.fetches.CanSpeculate(host, e.config.FetchMinSamples) {
			continue
		}
		samples := e.fetches.Samples(host)
		slow, harmonic, progress := estimator.IsSlow(samples)
		if !slow {
			continue
		}

		candidates := e.fetches.Candidates(host, e.config.SmartFetchRateEnabled, e.config.SmartFetchRateFactor)
		log.WithFields(
			log.Fields{
				"host":       host,
				"samples":    len(samples),
				"harmonic":   harmonic,
				"progress":   progress,
				"candidates": candidates,
				"smart":      e.config.SmartFetchRateEnabled,
			}).Info("slow fetch host detected")

		for _, attempt := range candidates {
			if e.fetches.IsAttemptBanned(attempt) || e.fetches.IsTaskBanned(attempt.Task) || e.ledger.Contains(attempt.Task) {
				continue
			}
			source := attempt
			cmd := newCommand(domain.RelaunchAttempt, attempt.Task, domain.SlowFetchRate)
			cmd.ExcludedHost = host
			cmd.SourceAttempt = &source
			if !e.submit(cmd) {
				continue
			}
			e.fetches.Ban(attempt)
			e.fetches.Unsucceed(host, attempt.Task)
			relaunched++
		}
		e.fetches.CleanHost(host)
	}

	if drained > 0 || relaunched > 0 {
		log.WithFields(
			log.Fields{
				"drained":    drained,
				"relaunched": relaunched,
				"hosts":      e.fetches.Len(),
			}).Debug("fetch rate scan done")
	}
	return relaunched
}
