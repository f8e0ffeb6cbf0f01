package errors

type ExitCode int

const (
	GenericFailureExitCode ExitCode = 1

	// Startup
	ConfigFailureExitCode    ExitCode = 70
	EstimatorFailureExitCode ExitCode = 71
	EngineFailureExitCode    ExitCode = 72

	// Replay
	TraceFailureExitCode  ExitCode = 80
	ReplayFailureExitCode ExitCode = 81

	AdminServerFailureExitCode ExitCode = 90
)
