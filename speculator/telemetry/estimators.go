package telemetry

import (
	"github.com/twitter/speculator/speculator/domain"
)

// HarmonicSlowShuffleEstimator judges a map host slow when the harmonic mean of the fetch
// rates observed from it is below NodeThreshold while the mean transfer progress of those
// fetches is still below ProgressThreshold.
type HarmonicSlowShuffleEstimator struct {
	NodeThreshold     float64
	ProgressThreshold float64
}

// IsSlow also returns the harmonic mean and mean progress it computed. Non-positive rates are
// ignored; a host with no positive rate is never judged slow.
func (e HarmonicSlowShuffleEstimator) IsSlow(samples []FetchSample) (slow bool, harmonic, progress float64) {
	if len(samples) == 0 {
		return false, 0, 0
	}
	inverseSum := 0.0
	positive := 0
	progressSum := 0.0
	for _, s := range samples {
		progressSum += s.Progress
		if s.Rate > 0 {
			inverseSum += 1 / s.Rate
			positive++
		}
	}
	progress = progressSum / float64(len(samples))
	if positive == 0 {
		return false, 0, progress
	}
	harmonic = float64(positive) / inverseSum
	return harmonic < e.NodeThreshold && progress < e.ProgressThreshold, harmonic, progress
}

// SlowWriteEstimator judges a write pipeline slow when its reported rate is below Threshold.
type SlowWriteEstimator struct {
	Threshold float64
}

func (e SlowWriteEstimator) IsSlow(report domain.PipelineRateReport) bool {
	return report.Rate < e.Threshold
}
