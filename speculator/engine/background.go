package engine

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/speculator/common/stats"
	"github.com/twitter/speculator/speculator/domain"
)

type heuristic string

const (
	writeHeuristic   heuristic = "write"
	fetchHeuristic   heuristic = "fetch"
	pathHeuristic    heuristic = "path"
	defaultHeuristic heuristic = "default"
)

// heuristicResult is the outcome of one heuristic run: the number of commands it submitted,
// or the panic that ended it. A failed run counts as zero commands.
type heuristicResult struct {
	count int
	err   error
}

// loopControl holds the background loop's wake, stop and exit signals.
type loopControl struct {
	scanCh   chan struct{}
	stopCh   chan struct{}
	stopped  int32
	started  int32
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newLoopControl() *loopControl {
	return &loopControl{
		scanCh: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
}

func (l *loopControl) isStopped() bool {
	return atomic.LoadInt32(&l.stopped) == 1
}

// Start launches the background loop. In DebugMode nothing is launched and scans have to be
// driven with Step.
func (e *Engine) Start() {
	if e.config.DebugMode {
		log.Info("debug mode, background loop not started")
		return
	}
	if !atomic.CompareAndSwapInt32(&e.loop.started, 0, 1) {
		return
	}
	log.Info("Starting speculator loop")
	e.loop.wg.Add(1)
	go func() {
		defer e.loop.wg.Done()
		e.runLoop()
	}()
}

// Stop ends the background loop and waits for it to exit. Commands produced after Stop are dropped.
func (e *Engine) Stop() {
	e.loop.stopOnce.Do(func() {
		atomic.StoreInt32(&e.loop.stopped, 1)
		close(e.loop.stopCh)
	})
	e.loop.wg.Wait()
}

// ScanNow wakes the background loop for an immediate scan. Never blocks.
func (e *Engine) ScanNow() {
	select {
	case e.loop.scanCh <- struct{}{}:
	default:
	}
}

func (e *Engine) runLoop() {
	for !e.loop.isStopped() {
		wait := e.Step()
		select {
		case <-e.loop.stopCh:
		case <-e.loop.scanCh:
			// Next scan runs every heuristic regardless of its next eligible time.
			e.scanMu.Lock()
			e.nextRun = make(map[heuristic]time.Time)
			e.scanMu.Unlock()
		case <-time.After(wait):
		}
	}
	log.Info("speculator loop stopped")
}

// Step runs every heuristic that is due and returns how long to wait before the next scan.
func (e *Engine) Step() time.Duration {
	e.scanMu.Lock()
	defer e.scanMu.Unlock()
	defer e.stat.Latency(stats.SpeculatorScanLatency_ms).Time().Stop()
	e.stat.Counter(stats.SpeculatorScanCounter).Inc(1)

	start := e.clock.Now()
	e.delayedThisScan = false

	specialized := map[domain.TaskType]int{}
	if e.config.SlowWriteEnabled || e.config.WriteDiversityEnabled || e.config.SingleReducerEnabled {
		if n, ran := e.runIfDue(writeHeuristic, start, e.detectSlowWrites); ran {
			specialized[domain.ReduceTask] += n
		}
	}
	if e.config.FetchRateEnabled {
		if n, ran := e.runIfDue(fetchHeuristic, start, e.detectSlowFetches); ran {
			specialized[domain.MapTask] += n
		}
	}
	if e.config.PathEnabled {
		if n, ran := e.runIfDue(pathHeuristic, start, e.detectSlowPaths); ran {
			specialized[domain.MapTask] += n
		}
	}
	if e.config.DefaultEnabled && e.due(defaultHeuristic, start) {
		total := 0
		for _, t := range domain.TaskTypes {
			if specialized[t] > 0 {
				continue
			}
			taskType := t
			res := e.runHeuristic(defaultHeuristic, func() int { return e.selectAndSpeculate(taskType) })
			total += res.count
		}
		e.reschedule(defaultHeuristic, start, total)
	}

	e.updateGauges()
	wait := e.nextWait(start)
	e.stat.Gauge(stats.SpeculatorNextScanDelayGauge_ms).Update(int64(wait / time.Millisecond))
	return wait
}

func (e *Engine) due(h heuristic, now time.Time) bool {
	next, ok := e.nextRun[h]
	return !ok || !now.Before(next)
}

func (e *Engine) reschedule(h heuristic, now time.Time, count int) {
	if count > 0 {
		e.nextRun[h] = now.Add(e.config.RetryAfterSpeculate)
	} else {
		e.nextRun[h] = now.Add(e.config.RetryAfterNoSpeculate)
	}
}

// runIfDue runs h if its next eligible time has passed and reschedules it.
func (e *Engine) runIfDue(h heuristic, now time.Time, fn func() int) (int, bool) {
	if !e.due(h, now) {
		return 0, false
	}
	res := e.runHeuristic(h, fn)
	e.reschedule(h, now, res.count)
	return res.count, true
}

// runHeuristic runs fn, turning a panic into a logged failure with zero commands.
func (e *Engine) runHeuristic(h heuristic, fn func() int) (res heuristicResult) {
	e.stat.Counter(stats.SpeculatorHeuristicRunCounter, string(h)).Inc(1)
	defer func() {
		if r := recover(); r != nil {
			res = heuristicResult{err: fmt.Errorf("panic: %v", r)}
			e.stat.Counter(stats.SpeculatorHeuristicFailureCounter, string(h)).Inc(1)
			log.WithFields(
				log.Fields{
					"heuristic": h,
					"panic":     r,
					"stack":     string(debug.Stack()),
				}).Error("heuristic panicked")
		}
	}()

	return heuristicResult{count: fn()}
}

// nextWait is the time from now until the earliest next eligible heuristic, never more than
// RetryAfterNoSpeculate and never negative.
func (e *Engine) nextWait(start time.Time) time.Duration {
	wait := e.config.RetryAfterNoSpeculate
	for _, next := range e.nextRun {
		if d := next.Sub(start); d < wait {
			wait = d
		}
	}
	wait -= e.clock.Now().Sub(start)
	if wait < 0 {
		wait = 0
	}
	return wait
}

func (e *Engine) updateGauges() {
	e.stat.Gauge(stats.SpeculatorLedgerSizeGauge).Update(int64(e.ledger.Len()))
	e.stat.Gauge(stats.SpeculatorFetchHostsGauge).Update(int64(e.fetches.Len()))
	e.stat.Gauge(stats.SpeculatorPipelineEntriesGauge).Update(int64(e.pipelines.Len()))
	e.stat.Gauge(stats.SpeculatorTrackedAttemptsGauge).Update(int64(e.statuses.Len()))
	e.stat.Gauge(stats.SpeculatorHeartbeatsGauge).Update(int64(e.heartbeats.Len()))
	e.stat.GaugeFloat(stats.SpeculatorGlobalRateGauge).Update(e.statuses.GlobalRate())
}
