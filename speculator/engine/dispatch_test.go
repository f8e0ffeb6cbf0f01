package engine

import (
	"errors"
	"testing"

	uuid "github.com/nu7hatch/gouuid"
	"github.com/stretchr/testify/assert"
)

func Test_GenerateCommandID_FallsBackToSequence(t *testing.T) {
	defer func(orig func() (*uuid.UUID, error)) { newUUID = orig }(newUUID)

	calls := 0
	newUUID = func() (*uuid.UUID, error) {
		calls++
		return nil, errors.New("entropy unavailable")
	}
	first := generateCommandID()
	second := generateCommandID()
	assert.Equal(t, 2*commandIDAttempts, calls)
	assert.Regexp(t, `^cmd-\d+$`, first)
	assert.Regexp(t, `^cmd-\d+$`, second)
	assert.NotEqual(t, first, second)

	// a transient failure still yields a uuid
	calls = 0
	newUUID = func() (*uuid.UUID, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("entropy unavailable")
		}
		return uuid.NewV4()
	}
	id := generateCommandID()
	assert.Equal(t, 2, calls)
	_, err := uuid.ParseHex(id)
	assert.NoError(t, err)
}
