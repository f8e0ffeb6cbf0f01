package config

// SpeculatorConfigs the map of available configurations
var SpeculatorConfigs = map[string]string{
	"default":       defaultConfig,
	"local.pbse":    localPBSE,
	"local.vanilla": localVanilla,
}

// defaultConfig the configuration values that are used for untyped sections of a specific
// configuration. Only the default heuristic runs.
const defaultConfig = `{
	"Speculator": {
		"Type": "vanilla",
		"RetryAfterSpeculate": "15s",
		"RetryAfterNoSpeculate": "1s",
		"ProportionRunning": 0.1,
		"ProportionTotal": 0.01,
		"MinimumAllowed": 10,
		"DefaultEnabled": true,
		"SubmitRetries": 2,
		"SubmitRetryInterval": "50ms"
	},
	"Estimator": {
		"Type": "replay"
	},
	"Admin": {
		"Type": "http",
		"Addr": "localhost:9091"
	}
}`

// localPBSE every path-aware heuristic enabled - !!! make sure this constant is added to SpeculatorConfigs map above !!!
const localPBSE = `{
	"Speculator": {
		"Type": "pbse",
		"RetryAfterSpeculate": "15s",
		"RetryAfterNoSpeculate": "1s",
		"ProportionRunning": 0.1,
		"ProportionTotal": 0.01,
		"MinimumAllowed": 10,
		"DefaultEnabled": true,
		"FetchRateEnabled": true,
		"SmartFetchRateEnabled": true,
		"SmartFetchRateFactor": 3.0,
		"FetchSlowNodeThreshold": 1048576,
		"FetchSlowProgressThreshold": 0.5,
		"FetchMinSamples": 3,
		"SlowWriteEnabled": true,
		"WriteSlowThreshold": 1048576,
		"PipelineMinReports": 3,
		"WriteDiversityEnabled": true,
		"SingleReducerEnabled": true,
		"PathEnabled": true,
		"PathStrategy": "aggressive",
		"SlowTransferRateThreshold": 1048576,
		"SlowTransferRateRatio": 0.5,
		"MapDelayInterval": "5s",
		"MaxTrackedAttempts": 10000
	}
}`

// localVanilla the default heuristic with a tighter quota - !!! make sure this constant is added to SpeculatorConfigs map above !!!
const localVanilla = `{
	"Speculator": {
		"Type": "vanilla",
		"RetryAfterSpeculate": "5s",
		"RetryAfterNoSpeculate": "500ms",
		"ProportionRunning": 0.05,
		"MinimumAllowed": 1,
		"DefaultEnabled": true
	},
	"Admin": {
		"Type": "none"
	}
}`
