package simulator

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/speculator/speculator/domain"
)

// Engine is the part of the speculation engine a Runner drives.
type Engine interface {
	Handle(event domain.Event)
	Step() time.Duration
	ScanNow()
}

// Runner replays a Trace against an engine, keeping its in-memory master in sync with the
// events it delivers. The engine has to be built over the Runner's Directory, Estimator and Sink.
type Runner struct {
	Directory *MemoryDirectory
	Estimator *ReplayEstimator
	Sink      *RecordingSink
	Clock     *ManualClock

	trace *Trace
}

func NewRunner(trace *Trace) *Runner {
	r := &Runner{
		Directory: NewMemoryDirectory(),
		Estimator: NewReplayEstimator(),
		Sink:      NewRecordingSink(),
		Clock:     NewManualClock(trace.Start),
		trace:     trace,
	}
	for _, j := range trace.Jobs {
		r.Directory.AddJob(j.ID, j.Maps, j.Reduces)
	}
	return r
}

// Run replays every step on the Runner's manual clock, running a scan wherever a step asks
// for one. The engine should be in debug mode. Returns the commands the sink accepted.
func (r *Runner) Run(e Engine) []domain.Command {
	r.createJobs(e, r.Clock.Now())
	for i, step := range r.trace.Steps {
		now := r.Clock.Advance(time.Duration(step.Advance))
		r.apply(step, now, e)
		if step.Scan {
			wait := e.Step()
			log.WithFields(
				log.Fields{
					"step":     i,
					"now":      now,
					"commands": len(r.Sink.Commands()),
					"nextScan": wait,
				}).Debug("trace step scanned")
		}
	}
	return r.Sink.Commands()
}

// Replay delivers the steps in real time against an engine running its own loop. A step's
// advance is slept, and scan requests wake the engine's loop. Stops early when ctx is done.
func (r *Runner) Replay(ctx context.Context, e Engine, clock domain.Clock) error {
	r.createJobs(e, clock.Now())
	for _, step := range r.trace.Steps {
		if step.Advance > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(step.Advance)):
			}
		}
		r.apply(step, clock.Now(), e)
		if step.Scan {
			e.ScanNow()
		}
	}
	return nil
}

func (r *Runner) createJobs(e Engine, now time.Time) {
	for _, j := range r.trace.Jobs {
		e.Handle(domain.NewJobCreateEvent(j.ID, now))
	}
}

func (r *Runner) apply(step TraceStep, now time.Time, e Engine) {
	for _, est := range step.Estimates {
		r.script(est, now)
	}
	for _, ev := range step.Events {
		if ev.Time.IsZero() {
			ev.Time = now
		}
		r.mirror(ev)
		e.Handle(ev)
	}
	for _, task := range step.Finished {
		if t, ok := r.Directory.task(task); ok {
			t.SetFinished(true)
		}
	}
}

func (r *Runner) script(est TraceEstimate, now time.Time) {
	if est.Task != nil {
		switch {
		case est.Unbounded:
			r.Estimator.SetUnbounded(*est.Task)
		case est.Threshold != nil:
			r.Estimator.SetThreshold(*est.Task, time.Duration(*est.Threshold))
		}
		if est.NewAttemptRuntime != nil {
			r.Estimator.SetNewAttemptRuntime(*est.Task, time.Duration(*est.NewAttemptRuntime))
		}
	}
	if est.Attempt != nil {
		if est.Runtime != nil {
			r.Estimator.SetRuntime(*est.Attempt, time.Duration(*est.Runtime))
		}
		if est.EnrolledOffset != nil {
			r.Estimator.SetEnrolled(*est.Attempt, now.Add(time.Duration(*est.EnrolledOffset)))
		}
	}
}

// mirror records in the Directory what the master would know after ev.
func (r *Runner) mirror(ev domain.Event) {
	switch ev.Type {
	case domain.JobCreate:
		if _, ok := r.Directory.MemoryJob(ev.Job); !ok {
			r.Directory.AddJob(ev.Job, 0, 0)
		}
	case domain.AttemptStart, domain.AttemptStatusUpdate:
		if ev.Status != nil {
			r.Directory.Apply(*ev.Status)
		}
	}
}
