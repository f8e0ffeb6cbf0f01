package simulator

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/twitter/speculator/speculator/domain"
)

// RecordingSink accepts every command and keeps it, unless told to fail.
type RecordingSink struct {
	mu       sync.Mutex
	commands []domain.Command
	failures int
	attempts int
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Submit(cmd domain.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.failures > 0 {
		s.failures--
		return errors.Errorf("sink rejected %s", cmd)
	}
	s.commands = append(s.commands, cmd)
	return nil
}

// FailNext makes the next n submissions fail.
func (s *RecordingSink) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
}

// Commands returns a copy of the commands accepted so far, in submission order.
func (s *RecordingSink) Commands() []domain.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Command(nil), s.commands...)
}

// Submissions counts every Submit call, rejected ones included.
func (s *RecordingSink) Submissions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = nil
}

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
