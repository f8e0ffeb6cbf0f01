package statistics

import (
	"reflect"
	"time"

	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/speculator/speculator/domain"
)

// How long an attempt's estimate and progress may stay unchanged before a heartbeat is synthesized.
const HeartbeatStaleness = 9 * time.Second

// Upper bound on attempts tracked at once; the least recently observed ones are evicted first.
const DefaultMaxTrackedAttempts = 100000

type heartbeatRecord struct {
	runtime  time.Duration
	progress float64
	last     time.Time
}

// HeartbeatTracker remembers the last estimated runtime and progress seen for each running attempt.
// Safe for concurrent use.
type HeartbeatTracker struct {
	window  time.Duration
	records *lru.Cache
}

func NewHeartbeatTracker(maxAttempts int) (*HeartbeatTracker, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxTrackedAttempts
	}
	records, err := lru.New(maxAttempts)
	if err != nil {
		return nil, err
	}
	return &HeartbeatTracker{window: HeartbeatStaleness, records: records}, nil
}

// Observe records the attempt's current runtime estimate and progress. It returns true when
// neither has changed for longer than the staleness window, and restarts the window in that case.
func (h *HeartbeatTracker) Observe(attempt domain.AttemptID, runtime time.Duration, progress float64, now time.Time) bool {
	iface, ok := h.records.Get(attempt)
	if !ok {
		h.records.Add(attempt, &heartbeatRecord{runtime: runtime, progress: progress, last: now})
		return false
	}
	rec, ok := iface.(*heartbeatRecord)
	if !ok {
		log.Errorf("heartbeat record was not *heartbeatRecord type! (it is %s)", reflect.TypeOf(iface))
		h.records.Add(attempt, &heartbeatRecord{runtime: runtime, progress: progress, last: now})
		return false
	}

	if rec.runtime != runtime || rec.progress != progress {
		rec.runtime = runtime
		rec.progress = progress
		rec.last = now
		return false
	}
	if now.Sub(rec.last) <= h.window {
		return false
	}
	rec.last = now
	return true
}

func (h *HeartbeatTracker) Forget(attempt domain.AttemptID) {
	h.records.Remove(attempt)
}

func (h *HeartbeatTracker) Len() int {
	return h.records.Len()
}
