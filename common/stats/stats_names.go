package stats

/*
This file defines all the metrics being collected.   As new metrics are added please follow this pattern.
*/

const (
	/************************* Speculator engine metrics **************************/
	/*
		the number of background scans run (one per loop iteration or explicit Step)
	*/
	SpeculatorScanCounter = "scanCounter"

	/*
		time spent running all due heuristics in one scan
	*/
	SpeculatorScanLatency_ms = "scanLatency_ms"

	/*
		how long the background loop decided to wait before the next scan
	*/
	SpeculatorNextScanDelayGauge_ms = "nextScanDelayGauge_ms"

	/*
		number of times a heuristic was run, scoped by heuristic name
	*/
	SpeculatorHeuristicRunCounter = "heuristicRunCounter"

	/*
		number of heuristic invocations that panicked or returned an error, scoped by heuristic name
	*/
	SpeculatorHeuristicFailureCounter = "heuristicFailureCounter"

	/*
		number of commands accepted by the command sink, scoped by reason
	*/
	SpeculatorCommandCounter = "commandCounter"

	/*
		number of commands the command sink rejected after retrying
	*/
	SpeculatorCommandErrCounter = "commandErrCounter"

	/*
		number of commands dropped because the engine was stopping
	*/
	SpeculatorCommandDroppedCounter = "commandDroppedCounter"

	/*
		number of tasks in the speculation ledger
	*/
	SpeculatorLedgerSizeGauge = "ledgerSizeGauge"

	/*
		number of events handled, scoped by event type
	*/
	SpeculatorEventCounter = "eventCounter"

	/*
		number of telemetry reports dropped because they were missing required fields
	*/
	SpeculatorMalformedReportCounter = "malformedReportCounter"

	/*
		number of status updates synthesized for attempts whose telemetry went stale
	*/
	SpeculatorSynthesizedHeartbeatCounter = "synthesizedHeartbeatCounter"

	/************************* Telemetry table metrics **************************/
	/*
		number of source hosts currently tracked by the fetch-rate table
	*/
	SpeculatorFetchHostsGauge = "fetchHostsGauge"

	/*
		number of (attempt, host) entries currently tracked by the write-pipeline table
	*/
	SpeculatorPipelineEntriesGauge = "pipelineEntriesGauge"

	/*
		number of attempts with a known status
	*/
	SpeculatorTrackedAttemptsGauge = "trackedAttemptsGauge"

	/*
		number of running attempts whose estimate and progress are watched for heartbeats
	*/
	SpeculatorHeartbeatsGauge = "heartbeatsGauge"

	/*
		mean of the latest positive transfer rate of every attempt (Mbps)
	*/
	SpeculatorGlobalRateGauge = "globalRateGauge"

	/************************* Admin endpoint metrics **************************/
	/*
		number of explicit scan requests received over http
	*/
	SpeculatorAdminScanCounter = "adminScanCounter"
)
