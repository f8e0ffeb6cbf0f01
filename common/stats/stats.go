// This package provides a set of minimal interfaces which both build on and
// are by default backed by go-metrics. We wrap go-metrics so the engine can
// pass a scoped StatsReceiver down its call tree without leaking the metrics
// dependency to anyone embedding the speculator as a library.
//
// Specifically, we provide the following:
// - A StatsReceiver object that can be passed down a call tree and scoped to each level.
// - The ability to specify a time.Duration precision when rendering instruments.
// - A Latency instrument to more easily record callsite latency.
// - Pretty printing of instrument output.
//
// Original license: github.com/rcrowley/go-metrics/blob/master/LICENSE
package stats

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
)

// For testing.
var Time StatsTime = DefaultStatsTime()

// Overridable instrument creation.
var NewCounter func() Counter = newMetricCounter
var NewGauge func() Gauge = newMetricGauge
var NewGaugeFloat func() GaugeFloat = newMetricGaugeFloat
var NewLatency func() Latency = newLatency

// To check if pretty printing is supported.
type MarshalerPretty interface {
	MarshalJSONPretty() ([]byte, error)
}

// Similar to the go-metrics registry but with most methods removed.
type StatsRegistry interface {
	// Gets an existing metric or registers the given one.
	// The interface can be the metric to register if not found in registry,
	// or a function returning the metric for lazy instantiation.
	GetOrRegister(string, interface{}) interface{}

	// Unregister the metric with the given name.
	Unregister(string)

	// Call the given function for each registered metric.
	Each(func(string, interface{}))
}

// A registry wrapper for metrics collected about the speculator.
//
// Hierarchical names are stored using a '/' path separator. Variadic name
// elements have '/' replaced by "_SLASH_" before they are used internally,
// since some names are generated from host names or heuristic names.
type StatsReceiver interface {
	// Return a stats receiver that will automatically namespace elements with
	// the given scope args.
	//
	//   statsReceiver.Scope("foo", "bar").Counter("baz")  // is equivalent to
	//   statsReceiver.Counter("foo", "bar", "baz")
	//
	Scope(scope ...string) StatsReceiver

	// Returns a copy whose Latency instruments render with the given precision.
	// If the given duration is <= 1ns, we will default to ns.
	Precision(time.Duration) StatsReceiver

	// Provides an event counter
	Counter(name ...string) Counter

	// Provides a histogram of sampled durations.
	Latency(name ...string) Latency

	// Add a gauge, which holds an int64 value that can be set arbitrarily.
	Gauge(name ...string) Gauge

	// Add a gauge, which holds a float64 value that can be set arbitrarily.
	GaugeFloat(name ...string) GaugeFloat

	// Construct a JSON string by marshaling the registry.
	Render(pretty bool) []byte
}

// DefaultStatsReceiver is a small wrapper around a finagle style registry.
func DefaultStatsReceiver() StatsReceiver {
	return NewCustomStatsReceiver(NewFinagleStatsRegistry)
}

// Like DefaultStatsReceiver() but the registry is made explicit.
func NewCustomStatsReceiver(makeRegistry func() StatsRegistry) StatsReceiver {
	if makeRegistry == nil {
		makeRegistry = func() StatsRegistry { return metrics.NewRegistry() }
	}
	return &defaultStatsReceiver{
		registry:  makeRegistry(),
		precision: time.Nanosecond,
	}
}

type defaultStatsReceiver struct {
	registry  StatsRegistry
	precision time.Duration
	scope     []string
}

func (s *defaultStatsReceiver) Scope(scope ...string) StatsReceiver {
	return &defaultStatsReceiver{s.registry, s.precision, s.scoped(scope...)}
}

func (s *defaultStatsReceiver) Precision(precision time.Duration) StatsReceiver {
	if precision < 1 {
		precision = 1
	}
	return &defaultStatsReceiver{s.registry, precision, s.scope}
}

func (s *defaultStatsReceiver) Counter(name ...string) Counter {
	return s.registry.GetOrRegister(s.scopedName(name...), NewCounter).(Counter)
}

func (s *defaultStatsReceiver) Gauge(name ...string) Gauge {
	return s.registry.GetOrRegister(s.scopedName(name...), NewGauge).(Gauge)
}

func (s *defaultStatsReceiver) GaugeFloat(name ...string) GaugeFloat {
	return s.registry.GetOrRegister(s.scopedName(name...), NewGaugeFloat).(GaugeFloat)
}

func (s *defaultStatsReceiver) Latency(name ...string) Latency {
	// Can't do lazy instantiation since metrics.Registry can't cast the factory return value.
	return s.registry.GetOrRegister(s.scopedName(name...), NewLatency().Precision(s.precision)).(Latency)
}

func (s *defaultStatsReceiver) Render(pretty bool) []byte {
	var err error
	var bytes []byte
	if mp, ok := s.registry.(MarshalerPretty); ok && pretty {
		bytes, err = mp.MarshalJSONPretty()
	} else {
		bytes, err = json.Marshal(s.registry)
	}
	if err != nil {
		log.Errorf("stats registry cannot be marshaled: %v", err)
		return []byte{}
	}
	return bytes
}

// Append to existing scope and scrub slashes
func (s *defaultStatsReceiver) scoped(scope ...string) []string {
	scrubbed := make([]string, 0, len(s.scope)+len(scope))
	scrubbed = append(scrubbed, s.scope...)
	for _, e := range scope {
		scrubbed = append(scrubbed, strings.Replace(e, "/", "_SLASH_", -1))
	}
	return scrubbed
}

// Append to the existing scope and convert to slash-delimited string.
func (s *defaultStatsReceiver) scopedName(scope ...string) string {
	return strings.Join(s.scoped(scope...), "/")
}

// NilStats ignores all stats operations.
func NilStatsReceiver(scope ...string) StatsReceiver {
	return &nilStatsReceiver{}
}

type nilStatsReceiver struct{}

func (s *nilStatsReceiver) Scope(scope ...string) StatsReceiver             { return s }
func (s *nilStatsReceiver) Precision(precision time.Duration) StatsReceiver { return s }
func (s *nilStatsReceiver) Counter(name ...string) Counter {
	return &metricCounter{&metrics.NilCounter{}}
}
func (s *nilStatsReceiver) Gauge(name ...string) Gauge {
	return &metricGauge{&metrics.NilGauge{}}
}
func (s *nilStatsReceiver) GaugeFloat(name ...string) GaugeFloat {
	return &metricGaugeFloat{&metrics.NilGaugeFloat64{}}
}
func (s *nilStatsReceiver) Latency(name ...string) Latency { return &nilLatency{} }
func (s *nilStatsReceiver) Render(pretty bool) []byte      { return []byte{} }

//
// Minimally mirror go-metrics instruments.
//

// Counter
type Counter interface {
	Count() int64
	Inc(int64)
}
type metricCounter struct{ metrics.Counter }

func newMetricCounter() Counter { return &metricCounter{metrics.NewCounter()} }

// Gauge
type Gauge interface {
	Update(int64)
	Value() int64
}
type metricGauge struct{ metrics.Gauge }

func newMetricGauge() Gauge { return &metricGauge{metrics.NewGauge()} }

// GaugeFloat
type GaugeFloat interface {
	Update(float64)
	Value() float64
}
type metricGaugeFloat struct{ metrics.GaugeFloat64 }

func newMetricGaugeFloat() GaugeFloat { return &metricGaugeFloat{metrics.NewGaugeFloat64()} }

// Viewable histogram without updates.
type HistogramView interface {
	Mean() float64
	Count() int64
	Max() int64
	Min() int64
	Sum() int64
	Percentiles(ps []float64) []float64
}

// Latency. Default implementation uses a go-metrics Histogram as its base.
type Latency interface {
	Time() Latency //returns self.
	Stop()
	GetPrecision() time.Duration
	Precision(time.Duration) Latency //returns self.
	Snapshot() HistogramView
}
type metricLatency struct {
	metrics.Histogram
	start     time.Time
	precision time.Duration
}

// Time returns a copy carrying its own start time so concurrent timers on the
// same instrument don't race on a shared field.
func (l *metricLatency) Time() Latency {
	return &metricLatency{l.Histogram, Time.Now(), l.precision}
}
func (l *metricLatency) Stop()                       { l.Update(Time.Since(l.start).Nanoseconds()) }
func (l *metricLatency) GetPrecision() time.Duration { return l.precision }
func (l *metricLatency) Snapshot() HistogramView     { return l.Histogram.Snapshot() }
func (l *metricLatency) Precision(p time.Duration) Latency {
	if p < 1 {
		p = 1
	}
	l.precision = p
	return l
}
func newLatency() Latency {
	return &metricLatency{Histogram: metrics.NewHistogram(metrics.NewUniformSample(1000)), precision: time.Nanosecond}
}

type nilLatency struct{}

func (l *nilLatency) Time() Latency                   { return l }
func (l *nilLatency) Stop()                           {}
func (l *nilLatency) GetPrecision() time.Duration     { return 0 }
func (l *nilLatency) Precision(time.Duration) Latency { return l }
func (l *nilLatency) Snapshot() HistogramView         { return metrics.NilHistogram{} }

// Twitter/Finagle style metrics
type finagleStatsRegistry struct {
	metrics.Registry
}

func NewFinagleStatsRegistry() StatsRegistry {
	return &finagleStatsRegistry{metrics.NewRegistry()}
}

type jsonMap map[string]interface{}

// MarshalJSON returns a byte slice containing a JSON representation of all
// the metrics in the Registry.
func (r *finagleStatsRegistry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.MarshalAll())
}
func (r *finagleStatsRegistry) MarshalJSONPretty() ([]byte, error) {
	return json.MarshalIndent(r.MarshalAll(), "", "  ")
}
func (r *finagleStatsRegistry) MarshalAll() jsonMap {
	data := make(map[string]interface{})
	r.Each(func(name string, i interface{}) {
		switch stat := i.(type) {
		case Counter:
			data[name] = stat.Count()
		case Gauge:
			data[name] = stat.Value()
		case GaugeFloat:
			data[name] = stat.Value()
		case Latency:
			marshalHistogram(data, name, stat.Snapshot(), stat.GetPrecision())
		default:
			log.Info("Unrecognized marshal instrument: ", name, i)
		}
	})
	return data
}

func marshalHistogram(data jsonMap, name string, hist HistogramView, precision time.Duration) {
	f64p := float64(precision)
	i64p := int64(precision)
	data[name+".avg"] = hist.Mean() / f64p
	data[name+".count"] = hist.Count()
	data[name+".max"] = hist.Max() / i64p
	data[name+".min"] = hist.Min() / i64p
	data[name+".sum"] = hist.Sum() / i64p

	pctls := hist.Percentiles(defaultPercentiles)
	for i, pctl := range pctls {
		data[name+"."+defaultPercentileLabels[i]] = pctl / f64p
	}
}

var defaultPercentiles = []float64{0.5, 0.9, 0.95, 0.99}
var defaultPercentileLabels = []string{"p50", "p90", "p95", "p99"}
