package errors

// ExitCodeError is an error the binary exits with a specific code for.
type ExitCodeError struct {
	code ExitCode
	error
}

func NewError(err error, exitCode ExitCode) *ExitCodeError {
	if err == nil {
		return nil
	}
	return &ExitCodeError{exitCode, err}
}

func (e *ExitCodeError) GetExitCode() ExitCode {
	if e == nil {
		return 0
	}
	return e.code
}

func (e *ExitCodeError) Cause() error {
	return e.error
}

// GetExitCode returns err's exit code, GenericFailureExitCode for errors without one and 0 for nil.
func GetExitCode(err error) ExitCode {
	if err == nil {
		return 0
	}
	if e, ok := err.(*ExitCodeError); ok {
		return e.GetExitCode()
	}
	return GenericFailureExitCode
}
