package domain

// FetchRateEntry is what one consuming attempt observed while pulling a single map attempt's output.
type FetchRateEntry struct {
	MapHost       string    `json:"map_host"`
	MapAttempt    AttemptID `json:"map_attempt"`
	Rate          float64   `json:"rate"`
	ShuffledBytes int64     `json:"shuffled_bytes"`
	TotalBytes    int64     `json:"total_bytes"`
	Unit          string    `json:"unit,omitempty"`
}

// Fraction of the map output transferred so far. A zero total counts as one byte.
func (e FetchRateEntry) Progress() float64 {
	total := float64(e.TotalBytes)
	if total == 0 {
		total = 1
	}
	return float64(e.ShuffledBytes) / total
}

// FetchRateReport batches every fetch a reduce attempt performed since its last report.
type FetchRateReport struct {
	ReduceAttempt AttemptID        `json:"reduce_attempt"`
	ReduceHost    string           `json:"reduce_host"`
	Entries       []FetchRateEntry `json:"entries"`
}

// PipelineRateReport describes the replication pipeline a reduce attempt is writing its output through.
type PipelineRateReport struct {
	ReduceAttempt AttemptID `json:"reduce_attempt"`
	ReduceHost    string    `json:"reduce_host"`
	Pipeline      []string  `json:"pipeline"`
	Rate          float64   `json:"rate"`
}

// FirstNode returns the head of the pipeline or NullHost.
func (r PipelineRateReport) FirstNode() string {
	if len(r.Pipeline) == 0 {
		return NullHost
	}
	return r.Pipeline[0]
}
