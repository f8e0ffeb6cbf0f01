package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodes(t *testing.T) {
	assert.Nil(t, NewError(nil, ConfigFailureExitCode))
	assert.Equal(t, ExitCode(0), GetExitCode(nil))

	var nilErr *ExitCodeError
	assert.Equal(t, ExitCode(0), nilErr.GetExitCode())

	plain := fmt.Errorf("boom")
	assert.Equal(t, GenericFailureExitCode, GetExitCode(plain))

	wrapped := NewError(plain, TraceFailureExitCode)
	assert.Equal(t, TraceFailureExitCode, GetExitCode(wrapped))
	assert.Equal(t, "boom", wrapped.Error())
	assert.Equal(t, plain, wrapped.Cause())
}
