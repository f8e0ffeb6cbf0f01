//go:build property_test
// +build property_test

package engine

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/twitter/speculator/speculator/domain"
)

func Test_ScoreMatchesEstimates(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("running attempt is scored from its estimated end", prop.ForAll(
		func(elapsedSec, runtimeSec, newRuntimeSec int64) bool {
			f := newFixture(t, DefaultConfig())
			f.addJob("j", 1, 0)
			a := f.start(mapTask("j", 1), "w", "s")
			now := f.clock.Now()
			f.est.SetEnrolled(a, now.Add(-time.Duration(elapsedSec)*time.Second))
			f.est.SetRuntime(a, time.Duration(runtimeSec)*time.Second)
			f.est.SetNewAttemptRuntime(a.Task, time.Duration(newRuntimeSec)*time.Second)

			s := f.score(a.Task)
			remaining := time.Duration(runtimeSec-elapsedSec) * time.Second
			replacement := time.Duration(newRuntimeSec) * time.Second
			switch {
			case remaining < 0:
				return s.Outcome == ProgressIsGood
			case replacement >= remaining:
				return s.Outcome == TooLateToSpeculate
			default:
				return s == eligible(remaining-replacement)
			}
		},
		gen.Int64Range(0, 3600),
		gen.Int64Range(1, 3600),
		gen.Int64Range(1, 3600),
	))

	properties.TestingRun(t)
}

func Test_BetterIsAsymmetric(t *testing.T) {
	toScore := func(outcome int, value int64) Score {
		return Score{Outcome: Outcome(outcome), Value: time.Duration(value)}
	}
	genOutcome := gen.IntRange(int(Eligible), int(TooLateToSpeculate))
	genValue := gen.Int64Range(0, 1000)

	properties := gopter.NewProperties(nil)
	properties.Property("two scores are never better than each other", prop.ForAll(
		func(oa int, va int64, ob int, vb int64) bool {
			a, b := toScore(oa, va), toScore(ob, vb)
			return !(a.Better(b) && b.Better(a))
		},
		genOutcome, genValue, genOutcome, genValue,
	))
	properties.Property("ineligible scores are never better", prop.ForAll(
		func(oa int, va int64, ob int, vb int64) bool {
			a, b := toScore(oa, va), toScore(ob, vb)
			return a.Outcome == Eligible || !a.Better(b)
		},
		genOutcome, genValue, genOutcome, genValue,
	))

	properties.TestingRun(t)
}

func Test_LedgerIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("ledger holds each task once with its first reason", prop.ForAll(
		func(indexes []int) bool {
			l := newLedger()
			first := map[domain.TaskID]domain.Reason{}
			for i, idx := range indexes {
				task := mapTask("j", idx)
				reason := domain.Reason(i % 6)
				if _, ok := first[task]; !ok {
					first[task] = reason
				}
				l.Add(task, reason)
			}
			if l.Len() != len(first) {
				return false
			}
			snapshot := l.Snapshot()
			for i, entry := range snapshot {
				if first[entry.Task] != entry.Reason {
					return false
				}
				if i > 0 && !snapshot[i-1].Task.Less(entry.Task) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 20)),
	))

	properties.TestingRun(t)
}
