package executor

import (
	"sync"

	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/kernel"
)

// base is the state every executor flavor shares: the owned lowered graph,
// its IO tensor handles, the generated code map, and the attached
// observers. Runtime dispatch (Execute) is specified only at the
// graph.Executor boundary; each flavor embeds base and implements its
// own Execute.
type base struct {
	g       *graph.LoweredGraph
	inputs  []graph.Tensor
	outputs []graph.Tensor
	code    kernel.CodeMap

	mu        sync.Mutex
	observers []graph.Observer
}

// AddObserver implements graph.Executor.
func (b *base) AddObserver(o graph.Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

// Graph implements graph.Executor.
func (b *base) Graph() *graph.LoweredGraph { return b.g }

// Inputs returns the primary subgraph's input tensor handles, empty for a
// nested subgraph.
func (b *base) Inputs() []graph.Tensor { return b.inputs }

// Outputs returns the primary subgraph's output tensor handles.
func (b *base) Outputs() []graph.Tensor { return b.outputs }

// runOpSequence runs one op-sequence's generated function sequence,
// notifying every attached observer around the run. Observation
// granularity is the whole op-sequence, not its individual functions —
// TracingObserver and ProfilingObserver both key their bookkeeping by
// OpSequenceIndex.
func (b *base) runOpSequence(idx graph.OpSequenceIndex) error {
	b.mu.Lock()
	observers := append([]graph.Observer(nil), b.observers...)
	b.mu.Unlock()

	for _, o := range observers {
		o.HandleBegin(idx)
	}

	seq, ok := b.code[idx]
	var runErr error
	if !ok {
		runErr = nil // an op-sequence with no generated functions is a no-op.
	} else {
		runErr = seq.Iterate(func(f graph.Function) error { return f.Run() })
	}

	for _, o := range observers {
		o.HandleEnd(idx, runErr)
	}
	return runErr
}
