package estimator

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/twitter/speculator/speculator/domain"
)

func Test_Registry_UnknownName(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func(domain.Directory) (domain.Estimator, error) { return Null{}, nil })

	est, err := r.New("b", nil)
	assert.Nil(t, est)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), `unknown estimator "b"`)
		assert.Contains(t, err.Error(), "[a]")
	}
}

func Test_Registry_ConstructorFailure(t *testing.T) {
	r := NewRegistry()
	r.Register("broken", func(domain.Directory) (domain.Estimator, error) { return nil, fmt.Errorf("no model") })
	r.Register("empty", func(domain.Directory) (domain.Estimator, error) { return nil, nil })

	_, err := r.New("broken", nil)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "no model")
	}
	_, err = r.New("empty", nil)
	assert.Error(t, err)
}

func Test_Registry_Default(t *testing.T) {
	assert.Contains(t, Names(), NullName)
	est, err := New(NullName, nil)
	assert.NoError(t, err)

	_, bounded := est.ThresholdRuntime(domain.TaskID{Job: "j", Type: domain.MapTask, Index: 1})
	assert.False(t, bounded)
	assert.Equal(t, time.Duration(0), est.EstimatedNewAttemptRuntime(domain.TaskID{}))
}

func Test_Registry_ReplacesConstructor(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register("x", func(domain.Directory) (domain.Estimator, error) { calls++; return nil, fmt.Errorf("old") })
	r.Register("x", func(domain.Directory) (domain.Estimator, error) { calls += 10; return Null{}, nil })

	_, err := r.New("x", nil)
	assert.NoError(t, err)
	assert.Equal(t, 10, calls)
	assert.Equal(t, []string{"x"}, r.Names())
}
