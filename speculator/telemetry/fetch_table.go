package telemetry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/twitter/speculator/speculator/domain"
)

// FetchSample is the latest rate one reduce attempt observed while fetching one map attempt's output.
type FetchSample struct {
	MapHost       string
	MapAttempt    domain.AttemptID
	ReduceHost    string
	ReduceAttempt domain.AttemptID
	Rate          float64
	Progress      float64
	ShuffledBytes int64
	TotalBytes    int64
	Unit          string
}

type fetchKey struct {
	mapAttempt    domain.AttemptID
	reduceAttempt domain.AttemptID
}

type fetchHost struct {
	samples   map[fetchKey]FetchSample
	running   map[domain.AttemptID]bool
	succeeded map[domain.AttemptID]bool
	// set once any consumer's samples were drained into the host
	consumed bool
}

func newFetchHost() *fetchHost {
	return &fetchHost{
		samples:   make(map[fetchKey]FetchSample),
		running:   make(map[domain.AttemptID]bool),
		succeeded: make(map[domain.AttemptID]bool),
	}
}

// A host with no samples left and no map attempt running is forgotten, succeeded attempts included.
func (h *fetchHost) empty() bool {
	return len(h.samples) == 0 && len(h.running) == 0
}

type rateSum struct {
	sum   float64
	count int
}

func (r *rateSum) mean() float64 { return r.sum / float64(r.count) }

// FetchRateTable tracks, per map host, how fast reducers pull map output off it.
// Reports are queued by Enqueue and only become visible to queries after Drain.
type FetchRateTable struct {
	mu             sync.Mutex
	pending        []FetchSample
	hosts          map[string]*fetchHost
	runningOn      map[domain.AttemptID]string
	bannedTasks    map[domain.TaskID]bool
	bannedAttempts map[domain.AttemptID]bool
}

func NewFetchRateTable() *FetchRateTable {
	return &FetchRateTable{
		hosts:          make(map[string]*fetchHost),
		runningOn:      make(map[domain.AttemptID]string),
		bannedTasks:    make(map[domain.TaskID]bool),
		bannedAttempts: make(map[domain.AttemptID]bool),
	}
}

// Enqueue normalizes and queues every entry of the report. Entries without a map host
// are skipped; the number skipped is returned. A report without a reduce host is rejected whole.
func (f *FetchRateTable) Enqueue(report domain.FetchRateReport) (skipped int, err error) {
	reduceHost := ParseHost(report.ReduceHost)
	if reduceHost == domain.NullHost {
		return len(report.Entries), errors.Errorf("fetch rate report from %s has no reduce host", report.ReduceAttempt)
	}
	samples := make([]FetchSample, 0, len(report.Entries))
	for _, e := range report.Entries {
		mapHost := ParseHost(e.MapHost)
		if mapHost == domain.NullHost || e.MapAttempt.IsZero() {
			skipped++
			continue
		}
		samples = append(samples, FetchSample{
			MapHost:       mapHost,
			MapAttempt:    e.MapAttempt,
			ReduceHost:    reduceHost,
			ReduceAttempt: report.ReduceAttempt,
			Rate:          e.Rate,
			Progress:      e.Progress(),
			ShuffledBytes: e.ShuffledBytes,
			TotalBytes:    e.TotalBytes,
			Unit:          e.Unit,
		})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, samples...)
	return skipped, nil
}

// Drain moves every queued sample into the table, newest sample per (map, reduce) pair wins.
func (f *FetchRateTable) Drain() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.pending)
	for _, s := range f.pending {
		h := f.host(s.MapHost)
		h.samples[fetchKey{s.MapAttempt, s.ReduceAttempt}] = s
		h.consumed = true
	}
	f.pending = nil
	return n
}

func (f *FetchRateTable) host(name string) *fetchHost {
	h, ok := f.hosts[name]
	if !ok {
		h = newFetchHost()
		f.hosts[name] = h
	}
	return h
}

// ReportStarted notes that a map attempt is running on host.
func (f *FetchRateTable) ReportStarted(host string, attempt domain.AttemptID) {
	host = ParseHost(host)
	if host == domain.NullHost {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.host(host).running[attempt] = true
	f.runningOn[attempt] = host
}

// ReportEnded notes that a map attempt stopped running. A succeeded attempt's output now lives
// on host. An empty host falls back to the host the attempt was started on.
// A host whose consumers all finished is forgotten once its last map attempt ends.
func (f *FetchRateTable) ReportEnded(host string, attempt domain.AttemptID, succeeded bool) {
	host = ParseHost(host)
	f.mu.Lock()
	defer f.mu.Unlock()
	if started, ok := f.runningOn[attempt]; ok {
		delete(f.runningOn, attempt)
		if h, ok := f.hosts[started]; ok {
			delete(h.running, attempt)
			if h.consumed && h.empty() {
				delete(f.hosts, started)
			}
		}
		if host == domain.NullHost {
			host = started
		}
	}
	if succeeded && host != domain.NullHost {
		f.host(host).succeeded[attempt] = true
	}
}

// Unsucceed forgets every succeeded attempt of task on host.
func (f *FetchRateTable) Unsucceed(host string, task domain.TaskID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, ok := f.hosts[host]; ok {
		for a := range h.succeeded {
			if a.Task == task {
				delete(h.succeeded, a)
			}
		}
	}
}

// Hosts returns the map hosts with at least one sample, sorted.
func (f *FetchRateTable) Hosts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	hosts := make([]string, 0, len(f.hosts))
	for name, h := range f.hosts {
		if len(h.samples) > 0 {
			hosts = append(hosts, name)
		}
	}
	sort.Strings(hosts)
	return hosts
}

// CanSpeculate is true once host has collected at least minSamples samples.
func (f *FetchRateTable) CanSpeculate(host string, minSamples int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hosts[host]
	return ok && len(h.samples) >= minSamples
}

// Samples returns a copy of host's samples ordered by map attempt then reduce attempt.
func (f *FetchRateTable) Samples(host string) []FetchSample {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hosts[host]
	if !ok {
		return nil
	}
	samples := make([]FetchSample, 0, len(h.samples))
	for _, s := range h.samples {
		samples = append(samples, s)
	}
	sort.Slice(samples, func(i, j int) bool {
		if samples[i].MapAttempt != samples[j].MapAttempt {
			return samples[i].MapAttempt.Less(samples[j].MapAttempt)
		}
		return samples[i].ReduceAttempt.Less(samples[j].ReduceAttempt)
	})
	return samples
}

// Candidates returns the map attempts on host that a relaunch would target: every attempt that
// succeeded there or had its output fetched from there. With smart set, only attempts whose mean
// fetch rate is more than factor times slower than the mean of their peers are kept.
// An attempt without peers is kept.
func (f *FetchRateTable) Candidates(host string, smart bool, factor float64) []domain.AttemptID {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hosts[host]
	if !ok {
		return nil
	}

	rates := make(map[domain.AttemptID]*rateSum)
	for _, s := range h.samples {
		r, ok := rates[s.MapAttempt]
		if !ok {
			r = &rateSum{}
			rates[s.MapAttempt] = r
		}
		r.sum += s.Rate
		r.count++
	}
	all := make(map[domain.AttemptID]bool)
	for a := range h.succeeded {
		all[a] = true
	}
	for a := range rates {
		all[a] = true
	}

	candidates := []domain.AttemptID{}
	for a := range all {
		if !smart {
			candidates = append(candidates, a)
			continue
		}
		mine, ok := rates[a]
		if !ok {
			continue
		}
		rate := mine.mean()
		peerSum, peers := 0.0, 0
		for other, r := range rates {
			if other != a {
				peerSum += r.mean()
				peers++
			}
		}
		if peers == 0 || peerSum/float64(peers) > factor*rate {
			candidates = append(candidates, a)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Less(candidates[j]) })
	return candidates
}

// Ban keeps attempt and its task from being relaunched again.
func (f *FetchRateTable) Ban(attempt domain.AttemptID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bannedTasks[attempt.Task] = true
	f.bannedAttempts[attempt] = true
}

func (f *FetchRateTable) IsTaskBanned(task domain.TaskID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bannedTasks[task]
}

func (f *FetchRateTable) IsAttemptBanned(attempt domain.AttemptID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bannedAttempts[attempt]
}

// CleanHost drops host's samples so it has to collect fresh ones before it is judged again.
func (f *FetchRateTable) CleanHost(host string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, ok := f.hosts[host]; ok {
		h.samples = make(map[fetchKey]FetchSample)
		if h.empty() {
			delete(f.hosts, host)
		}
	}
}

// ConsumerFinished drops every sample contributed by a reduce attempt that completed,
// and any host left with nothing to track.
func (f *FetchRateTable) ConsumerFinished(reduceAttempt domain.AttemptID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, h := range f.hosts {
		for k := range h.samples {
			if k.reduceAttempt == reduceAttempt {
				delete(h.samples, k)
			}
		}
		if h.empty() {
			delete(f.hosts, name)
		}
	}
}

// Len is the number of hosts tracked.
func (f *FetchRateTable) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hosts)
}

func (f *FetchRateTable) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("FetchRateTable{pending:%d bannedTasks:%d hosts:%s}", len(f.pending), len(f.bannedTasks), spew.Sdump(f.hosts))
}
