// Package telemetry holds the tables the speculator builds from attempt reports:
// fetch rates per source host, write pipelines per reduce attempt, the latest
// status of every attempt, and the per-scan path statistics.
//
// Every table guards itself with its own mutex so event ingestion never waits
// on a scan for longer than a drain or a snapshot copy.
package telemetry

import (
	"net"
	"net/url"
	"strings"
)

// ParseHost reduces a reported location such as "http://node7:13562/mapOutput?job=1"
// or "node7:50010" to the bare host name. Unparseable input comes back trimmed.
func ParseHost(reported string) string {
	s := strings.TrimSpace(reported)
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}
	if i := strings.IndexAny(s, "/?"); i >= 0 {
		s = s[:i]
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		return host
	}
	return s
}
