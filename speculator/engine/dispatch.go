package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/cenkalti/backoff"
	uuid "github.com/nu7hatch/gouuid"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/speculator/common/stats"
	"github.com/twitter/speculator/speculator/domain"
)

const commandIDAttempts = 3

var (
	newUUID         = uuid.NewV4
	fallbackCommand uint64
)

// Generates a command id. When no uuid can be generated a process-local sequence id is used.
func generateCommandID() string {
	for i := 0; i < commandIDAttempts; i++ {
		if id, err := newUUID(); err == nil {
			return id.String()
		}
	}
	n := atomic.AddUint64(&fallbackCommand, 1)
	log.WithFields(
		log.Fields{
			"sequence": n,
		}).Warn("could not generate a uuid, using a sequence command id")
	return fmt.Sprintf("cmd-%d", n)
}

func newCommand(kind domain.CommandKind, task domain.TaskID, reason domain.Reason) domain.Command {
	return domain.Command{
		ID:     generateCommandID(),
		Kind:   kind,
		Task:   task,
		Reason: reason,
	}
}

// submit hands cmd to the sink, retrying a bounded number of times, and records the task in
// the Ledger once the sink accepted it. Returns true if the command was accepted.
// Commands are dropped once the engine is stopping.
func (e *Engine) submit(cmd domain.Command) bool {
	if e.loop.isStopped() {
		e.stat.Counter(stats.SpeculatorCommandDroppedCounter).Inc(1)
		log.WithFields(
			log.Fields{
				"command": cmd,
			}).Info("engine is stopping, dropping command")
		return false
	}

	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(e.config.SubmitRetryInterval), uint64(e.config.SubmitRetries))
	err := backoff.Retry(func() error { return e.sink.Submit(cmd) }, b)
	if err != nil {
		e.stat.Counter(stats.SpeculatorCommandErrCounter).Inc(1)
		log.WithFields(
			log.Fields{
				"command": cmd,
				"id":      cmd.ID,
				"err":     err,
			}).Error("command sink rejected command")
		return false
	}

	e.ledger.Add(cmd.Task, cmd.Reason)
	e.stat.Counter(stats.SpeculatorCommandCounter, cmd.Reason.String()).Inc(1)
	e.stat.Gauge(stats.SpeculatorLedgerSizeGauge).Update(int64(e.ledger.Len()))
	log.WithFields(
		log.Fields{
			"id":            cmd.ID,
			"kind":          cmd.Kind,
			"task":          cmd.Task,
			"reason":        cmd.Reason,
			"excludedNodes": cmd.ExcludedNodes,
			"excludedHost":  cmd.ExcludedHost,
			"diversity":     cmd.Diversity,
		}).Info("speculation command submitted")
	return true
}
