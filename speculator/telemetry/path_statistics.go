package telemetry

import (
	"sort"

	"github.com/twitter/speculator/speculator/domain"
	"github.com/twitter/speculator/speculator/statistics"
)

// PathStatistics is built fresh every scan: the mean transfer rate seen through each host
// (worker or storage node) and the non-local tasks whose current path crosses that host.
type PathStatistics struct {
	rates  map[string]*statistics.RunningMean
	groups map[string]map[domain.TaskID]bool
}

func NewPathStatistics() *PathStatistics {
	return &PathStatistics{
		rates:  make(map[string]*statistics.RunningMean),
		groups: make(map[string]map[domain.TaskID]bool),
	}
}

// AddRate counts status's rate toward both ends of its path.
func (p *PathStatistics) AddRate(status domain.AttemptStatus) {
	for _, host := range []string{status.StorageHost, status.WorkerHost} {
		if host == domain.NullHost {
			continue
		}
		m, ok := p.rates[host]
		if !ok {
			m = &statistics.RunningMean{}
			p.rates[host] = m
		}
		m.Add(status.Rate)
	}
}

// Group puts task in the groups of both ends of status's path.
func (p *PathStatistics) Group(task domain.TaskID, status domain.AttemptStatus) {
	for _, host := range []string{status.StorageHost, status.WorkerHost} {
		if host == domain.NullHost {
			continue
		}
		g, ok := p.groups[host]
		if !ok {
			g = make(map[domain.TaskID]bool)
			p.groups[host] = g
		}
		g[task] = true
	}
}

// SlowestGroup returns the grouped host with the lowest mean rate that is strictly below threshold.
// Ties go to the host that sorts last.
func (p *PathStatistics) SlowestGroup(threshold float64) (host string, mean float64, ok bool) {
	hosts := make([]string, 0, len(p.rates))
	for h := range p.rates {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)

	mean = threshold
	for _, h := range hosts {
		if _, grouped := p.groups[h]; !grouped {
			continue
		}
		if m := p.rates[h].Mean(); m <= mean {
			host, mean = h, m
		}
	}
	return host, mean, host != "" && mean < threshold
}

// GroupTasks returns the tasks grouped under host, sorted.
func (p *PathStatistics) GroupTasks(host string) []domain.TaskID {
	tasks := make([]domain.TaskID, 0, len(p.groups[host]))
	for t := range p.groups[host] {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Less(tasks[j]) })
	return tasks
}

func (p *PathStatistics) Groups() int { return len(p.groups) }
