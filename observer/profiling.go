package observer

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/nnrtlab/execfactory/graph"
)

// ExecTime is the profiling sink a ProfilingObserver records into: per
// backend, the accumulated and per-call execution time. It mirrors the
// onert ancestor's ExecTime, parameterized by the set of backends present
// in the graph at build time.
type ExecTime struct {
	mu       sync.Mutex
	backends map[string]time.Duration
	calls    map[string]int
}

// NewExecTime constructs an ExecTime pre-seeded with zero totals for each
// backend, so callers can enumerate the full backend set even before any
// op-sequence has run.
func NewExecTime(backends []string) *ExecTime {
	et := &ExecTime{
		backends: make(map[string]time.Duration, len(backends)),
		calls:    make(map[string]int, len(backends)),
	}
	for _, b := range backends {
		et.backends[b] = 0
		et.calls[b] = 0
	}
	return et
}

// Record adds one op-sequence execution's duration to backend's total.
func (et *ExecTime) Record(backend string, d time.Duration) {
	et.mu.Lock()
	defer et.mu.Unlock()
	et.backends[backend] += d
	et.calls[backend]++
}

// Total returns the accumulated duration for backend.
func (et *ExecTime) Total(backend string) time.Duration {
	et.mu.Lock()
	defer et.mu.Unlock()
	return et.backends[backend]
}

// Calls returns how many op-sequence executions were recorded for backend.
func (et *ExecTime) Calls(backend string) int {
	et.mu.Lock()
	defer et.mu.Unlock()
	return et.calls[backend]
}

// Backends returns the set of backends this ExecTime was parameterized
// with.
func (et *ExecTime) Backends() []string {
	et.mu.Lock()
	defer et.mu.Unlock()
	out := make([]string, 0, len(et.backends))
	for b := range et.backends {
		out = append(out, b)
	}
	return out
}

// ProfilingObserver records op-sequence wall time into an ExecTime and, if
// a meter was supplied, into an OpenTelemetry histogram instrument.
type ProfilingObserver struct {
	g         *graph.LoweredGraph
	et        *ExecTime
	backendOf func(graph.OpSequenceIndex) string
	histogram metric.Float64Histogram

	mu     sync.Mutex
	starts map[graph.OpSequenceIndex]time.Time
}

// NewProfilingObserver constructs a ProfilingObserver. meter may be nil to
// skip OTel metric emission and record only into the returned ExecTime.
// backendOf resolves an op-sequence to the backend name it ran on.
func NewProfilingObserver(
	g *graph.LoweredGraph,
	backends []string,
	backendOf func(graph.OpSequenceIndex) string,
	meter metric.Meter,
) (*ProfilingObserver, *ExecTime, error) {
	et := NewExecTime(backends)
	o := &ProfilingObserver{
		g:         g,
		et:        et,
		backendOf: backendOf,
		starts:    make(map[graph.OpSequenceIndex]time.Time),
	}
	if meter != nil {
		h, err := meter.Float64Histogram(
			"execfactory.op_sequence.duration_seconds",
			metric.WithDescription("wall time of one op-sequence's function sequence"),
			metric.WithUnit("s"),
		)
		if err != nil {
			return nil, nil, err
		}
		o.histogram = h
	}
	return o, et, nil
}

// HandleBegin implements graph.Observer.
func (o *ProfilingObserver) HandleBegin(opSeq graph.OpSequenceIndex) {
	o.mu.Lock()
	o.starts[opSeq] = time.Now()
	o.mu.Unlock()
}

// HandleEnd implements graph.Observer.
func (o *ProfilingObserver) HandleEnd(opSeq graph.OpSequenceIndex, _ error) {
	o.mu.Lock()
	start, ok := o.starts[opSeq]
	delete(o.starts, opSeq)
	o.mu.Unlock()
	if !ok {
		return
	}
	d := time.Since(start)
	backend := o.backendOf(opSeq)
	o.et.Record(backend, d)
	if o.histogram != nil {
		o.histogram.Record(context.Background(), d.Seconds(), metric.WithAttributes(
			attribute.String("backend", backend),
		))
	}
}

var _ graph.Observer = (*ProfilingObserver)(nil)
