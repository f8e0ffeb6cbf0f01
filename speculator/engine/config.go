package engine

import (
	"fmt"
	"time"
)

const (
	// Wait before the next run of a heuristic that just speculated something.
	DefaultRetryAfterSpeculate = 15 * time.Second

	// Wait before the next run of a heuristic that found nothing to do. Also the longest the loop sleeps.
	DefaultRetryAfterNoSpeculate = 1 * time.Second

	// Quota of in-flight speculations for the default heuristic, see selectAndSpeculate.
	DefaultProportionRunning = 0.1
	DefaultProportionTotal   = 0.01
	DefaultMinimumAllowed    = 10

	// A fetch host is only judged once this many rate samples were collected for it.
	DefaultFetchMinSamples = 3

	// A consumer is an outlier when the mean rate of its peers is more than this many times its own.
	DefaultSmartFetchRateFactor = 3.0

	// A write pipeline is only judged once this many reports were received for it.
	DefaultPipelineMinReports = 3

	// The path threshold is at least this fraction of the global mean transfer rate.
	DefaultSlowTransferRateRatio = 0.5

	// Attempts submitted to the sink are retried this many times, this far apart.
	DefaultSubmitRetries       = 2
	DefaultSubmitRetryInterval = 50 * time.Millisecond
)

const (
	PathStrategyAggressive = "aggressive"
	PathStrategyGrouped    = "grouped"
)

// Config variables read at initialization
// RetryAfterSpeculate / RetryAfterNoSpeculate -
//
//	per heuristic interval to the next run, depending on whether the last run speculated.
//
// ProportionRunning, ProportionTotal, MinimumAllowed -
//
//	default heuristic quota: max(MinimumAllowed, ProportionTotal*tasks, ProportionRunning*running).
//
// MapDelayInterval -
//
//	how long map attempts with no known storage host are left alone, converted into
//	a number of scans by dividing by RetryAfterNoSpeculate.
//
// DebugMode -
//
//	if true, Start() does not launch the background loop. Instead scans
//	must be run manually by calling Step(), intended for tests.
type Config struct {
	RetryAfterSpeculate   time.Duration
	RetryAfterNoSpeculate time.Duration
	ProportionRunning     float64
	ProportionTotal       float64
	MinimumAllowed        int

	DefaultEnabled bool

	FetchRateEnabled           bool
	SmartFetchRateEnabled      bool
	SmartFetchRateFactor       float64
	FetchSlowNodeThreshold     float64
	FetchSlowProgressThreshold float64
	FetchMinSamples            int

	SlowWriteEnabled      bool
	WriteSlowThreshold    float64
	PipelineMinReports    int
	WriteDiversityEnabled bool
	SingleReducerEnabled  bool

	PathEnabled               bool
	PathStrategy              string
	SlowTransferRateThreshold float64
	SlowTransferRateRatio     float64

	MapDelayInterval time.Duration

	MaxTrackedAttempts  int
	SubmitRetries       int
	SubmitRetryInterval time.Duration

	DebugMode bool
}

// DefaultConfig enables the default heuristic only. The fetch thresholds are left at zero,
// which makes the fetch detector never judge a host slow until they are configured.
func DefaultConfig() Config {
	return Config{
		RetryAfterSpeculate:   DefaultRetryAfterSpeculate,
		RetryAfterNoSpeculate: DefaultRetryAfterNoSpeculate,
		ProportionRunning:     DefaultProportionRunning,
		ProportionTotal:       DefaultProportionTotal,
		MinimumAllowed:        DefaultMinimumAllowed,
		DefaultEnabled:        true,
		SmartFetchRateFactor:  DefaultSmartFetchRateFactor,
		FetchMinSamples:       DefaultFetchMinSamples,
		PipelineMinReports:    DefaultPipelineMinReports,
		PathStrategy:          PathStrategyAggressive,
		SlowTransferRateRatio: DefaultSlowTransferRateRatio,
		SubmitRetries:         DefaultSubmitRetries,
		SubmitRetryInterval:   DefaultSubmitRetryInterval,
	}
}

// fill replaces zero values that must never be zero with their defaults.
func (c *Config) fill() {
	if c.RetryAfterSpeculate <= 0 {
		c.RetryAfterSpeculate = DefaultRetryAfterSpeculate
	}
	if c.RetryAfterNoSpeculate <= 0 {
		c.RetryAfterNoSpeculate = DefaultRetryAfterNoSpeculate
	}
	if c.MinimumAllowed < 0 {
		c.MinimumAllowed = 0
	}
	if c.FetchMinSamples <= 0 {
		c.FetchMinSamples = DefaultFetchMinSamples
	}
	if c.PipelineMinReports <= 0 {
		c.PipelineMinReports = DefaultPipelineMinReports
	}
	if c.SmartFetchRateFactor <= 0 {
		c.SmartFetchRateFactor = DefaultSmartFetchRateFactor
	}
	if c.PathStrategy == "" {
		c.PathStrategy = PathStrategyAggressive
	}
	if c.SubmitRetries < 0 {
		c.SubmitRetries = 0
	}
}

// delayBudget is the number of scans map attempts may wait for their storage host.
func (c *Config) delayBudget() int64 {
	if c.MapDelayInterval <= 0 {
		return 0
	}
	return int64(c.MapDelayInterval / c.RetryAfterNoSpeculate)
}

func (c *Config) String() string {
	return fmt.Sprintf("engine.Config: RetryAfterSpeculate: %s, RetryAfterNoSpeculate: %s, ProportionRunning: %g, "+
		"ProportionTotal: %g, MinimumAllowed: %d, DefaultEnabled: %t, FetchRateEnabled: %t, SmartFetchRateEnabled: %t, "+
		"SmartFetchRateFactor: %g, FetchSlowNodeThreshold: %g, FetchSlowProgressThreshold: %g, FetchMinSamples: %d, "+
		"SlowWriteEnabled: %t, WriteSlowThreshold: %g, PipelineMinReports: %d, WriteDiversityEnabled: %t, "+
		"SingleReducerEnabled: %t, PathEnabled: %t, PathStrategy: %s, SlowTransferRateThreshold: %g, "+
		"SlowTransferRateRatio: %g, MapDelayInterval: %s, DebugMode: %t",
		c.RetryAfterSpeculate, c.RetryAfterNoSpeculate, c.ProportionRunning, c.ProportionTotal, c.MinimumAllowed,
		c.DefaultEnabled, c.FetchRateEnabled, c.SmartFetchRateEnabled, c.SmartFetchRateFactor,
		c.FetchSlowNodeThreshold, c.FetchSlowProgressThreshold, c.FetchMinSamples, c.SlowWriteEnabled,
		c.WriteSlowThreshold, c.PipelineMinReports, c.WriteDiversityEnabled, c.SingleReducerEnabled, c.PathEnabled,
		c.PathStrategy, c.SlowTransferRateThreshold, c.SlowTransferRateRatio, c.MapDelayInterval, c.DebugMode)
}
