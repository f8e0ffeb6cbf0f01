package statistics

import (
	"fmt"

	"github.com/twitter/speculator/speculator/domain"
)

// RunningMean keeps a count and mean with no history.
type RunningMean struct {
	count int64
	mean  float64
}

func (m *RunningMean) Add(v float64) {
	m.count++
	m.mean = m.mean + (v-m.mean)/float64(m.count)
}

func (m *RunningMean) Mean() float64 { return m.mean }
func (m *RunningMean) Count() int64  { return m.count }

func (m *RunningMean) String() string {
	return fmt.Sprintf("mean=%.3f count=%d", m.mean, m.count)
}

// KeyedMean is the mean of the latest value reported for each attempt.
// Replacing an attempt's value is O(1). Not safe for concurrent use.
type KeyedMean struct {
	values map[domain.AttemptID]float64
	sum    float64
}

func NewKeyedMean() *KeyedMean {
	return &KeyedMean{values: make(map[domain.AttemptID]float64)}
}

func (m *KeyedMean) Put(key domain.AttemptID, v float64) {
	if old, ok := m.values[key]; ok {
		m.sum -= old
	}
	m.values[key] = v
	m.sum += v
}

func (m *KeyedMean) Remove(key domain.AttemptID) {
	if old, ok := m.values[key]; ok {
		m.sum -= old
		delete(m.values, key)
	}
}

// Mean is zero when nothing has been reported.
func (m *KeyedMean) Mean() float64 {
	if len(m.values) == 0 {
		return 0
	}
	return m.sum / float64(len(m.values))
}

func (m *KeyedMean) Len() int { return len(m.values) }

func (m *KeyedMean) String() string {
	return fmt.Sprintf("mean=%.3f keys=%d", m.Mean(), len(m.values))
}
