// Package estimator resolves runtime estimators by name. The engine only sees domain.Estimator;
// which implementation backs it is a configuration choice made once at startup.
package estimator

import (
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/twitter/speculator/speculator/domain"
)

// Constructor builds an estimator reading job state from dir.
type Constructor func(dir domain.Directory) (domain.Estimator, error)

// Registry maps estimator names to their constructors. Safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a constructor under name, replacing any earlier one.
func (r *Registry) Register(name string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[name] = c
}

// New builds the estimator registered under name. An unknown name or a failing constructor is an error.
func (r *Registry) New(name string, dir domain.Directory) (domain.Estimator, error) {
	r.mu.RLock()
	c, ok := r.constructors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown estimator %q, registered estimators are %v", name, r.Names())
	}
	est, err := c(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "constructing estimator %q", name)
	}
	if est == nil {
		return nil, errors.Errorf("estimator %q constructor returned nothing", name)
	}
	return est, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for n := range r.constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

func init() {
	defaultRegistry.Register(NullName, func(domain.Directory) (domain.Estimator, error) { return Null{}, nil })
}

// Register adds c to the default registry.
func Register(name string, c Constructor) {
	defaultRegistry.Register(name, c)
}

// New builds an estimator from the default registry.
func New(name string, dir domain.Directory) (domain.Estimator, error) {
	return defaultRegistry.New(name, dir)
}

// Names lists the estimators in the default registry.
func Names() []string {
	return defaultRegistry.Names()
}

// NullName is the name Null is registered under.
const NullName = "null"

// Null never bounds a task's runtime, so nothing is ever speculated by the default heuristic.
type Null struct{}

func (Null) EnrollAttempt(domain.AttemptStatus, time.Time)          {}
func (Null) UpdateAttempt(domain.AttemptStatus, time.Time)          {}
func (Null) ThresholdRuntime(domain.TaskID) (time.Duration, bool)   { return 0, false }
func (Null) EstimatedRuntime(domain.AttemptID) time.Duration        { return 0 }
func (Null) AttemptEnrolledTime(domain.AttemptID) time.Time         { return time.Time{} }
func (Null) EstimatedNewAttemptRuntime(domain.TaskID) time.Duration { return 0 }
