// Package observer implements the two observers the factory can attach to
// a freshly built Executor: TracingObserver (per-op-sequence spans,
// exported via OpenTelemetry and optionally mirrored to a trace file) and
// ProfilingObserver (a per-backend wall-time histogram).
package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/log"
)

// TracingObserver records one span per op-sequence execution and,
// when constructed with a non-empty file path, also appends a Chrome
// Trace Event Format line per op-sequence — the same artifact the
// teacher's onert ancestor wrote, kept here as a fallback sink for
// environments with no OTel collector.
type TracingObserver struct {
	tracer   trace.Tracer
	g        *graph.LoweredGraph
	filepath string

	mu    sync.Mutex
	spans map[graph.OpSequenceIndex]tracingSpan
	file  *os.File
}

type tracingSpan struct {
	span  trace.Span
	start time.Time
}

// NewTracingObserver constructs a TracingObserver for g. filepath may be
// empty to disable the file sink.
func NewTracingObserver(g *graph.LoweredGraph, filepath string) (*TracingObserver, error) {
	o := &TracingObserver{
		tracer:   otel.Tracer("github.com/nnrtlab/execfactory/executor"),
		g:        g,
		filepath: filepath,
		spans:    make(map[graph.OpSequenceIndex]tracingSpan),
	}
	if filepath != "" {
		f, err := os.Create(filepath)
		if err != nil {
			return nil, fmt.Errorf("tracing observer: open trace file: %w", err)
		}
		if _, err := f.WriteString("[\n"); err != nil {
			f.Close()
			return nil, err
		}
		o.file = f
	}
	return o, nil
}

// HandleBegin implements graph.Observer.
func (o *TracingObserver) HandleBegin(opSeq graph.OpSequenceIndex) {
	_, span := o.tracer.Start(context.Background(), fmt.Sprintf("op-sequence-%d", opSeq),
		trace.WithAttributes(attribute.Int64("op_sequence", int64(opSeq))))
	o.mu.Lock()
	o.spans[opSeq] = tracingSpan{span: span, start: time.Now()}
	o.mu.Unlock()
}

// HandleEnd implements graph.Observer.
func (o *TracingObserver) HandleEnd(opSeq graph.OpSequenceIndex, runErr error) {
	o.mu.Lock()
	s, ok := o.spans[opSeq]
	delete(o.spans, opSeq)
	o.mu.Unlock()
	if !ok {
		log.Default.Warnf("tracing observer: HandleEnd for unopened op-sequence %d", opSeq)
		return
	}
	if runErr != nil {
		s.span.RecordError(runErr)
	}
	s.span.End()
	if o.file != nil {
		o.writeChromeEvent(opSeq, s.start, time.Since(s.start))
	}
}

func (o *TracingObserver) writeChromeEvent(opSeq graph.OpSequenceIndex, start time.Time, dur time.Duration) {
	type chromeEvent struct {
		Name string `json:"name"`
		Ph   string `json:"ph"`
		Ts   int64  `json:"ts"`
		Dur  int64  `json:"dur"`
		Pid  int    `json:"pid"`
	}
	ev := chromeEvent{
		Name: fmt.Sprintf("op-sequence-%d", opSeq),
		Ph:   "X",
		Ts:   start.UnixMicro(),
		Dur:  dur.Microseconds(),
		Pid:  1,
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	b, err := json.Marshal(ev)
	if err != nil {
		log.Default.Errorf("tracing observer: marshal event: %v", err)
		return
	}
	if _, err := o.file.Write(append(b, ",\n"...)); err != nil {
		log.Default.Errorf("tracing observer: write event: %v", err)
	}
}

// Close flushes and closes the trace file, if one was opened.
func (o *TracingObserver) Close() error {
	if o.file == nil {
		return nil
	}
	if _, err := o.file.WriteString("{}\n]\n"); err != nil {
		o.file.Close()
		return err
	}
	return o.file.Close()
}

var _ graph.Observer = (*TracingObserver)(nil)
