package executor

import (
	"context"

	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/kernel"
)

// DataflowExecutor maintains a ready-set keyed by dependency-satisfaction
// counts and dispatches ready op-sequences in arbitrary order on a single
// worker thread. No determinism guarantee across
// runs beyond respecting data dependencies.
type DataflowExecutor struct {
	base
	deps *dependencyGraph
}

// NewDataflowExecutor constructs a DataflowExecutor.
func NewDataflowExecutor(g *graph.LoweredGraph, inputs, outputs []graph.Tensor, code kernel.CodeMap) (*DataflowExecutor, error) {
	deps, err := buildDependencyGraph(g)
	if err != nil {
		return nil, err
	}
	return &DataflowExecutor{
		base: base{g: g, inputs: inputs, outputs: outputs, code: code},
		deps: deps,
	}, nil
}

// Execute implements graph.Executor.
func (e *DataflowExecutor) Execute(ctx context.Context) error {
	indegree := e.deps.cloneIndegree()
	ready := e.deps.readyIndices()
	done := 0

	for len(ready) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx := ready[0]
		ready = ready[1:]

		if err := e.runOpSequence(idx); err != nil {
			return err
		}
		done++

		for _, next := range e.deps.successors[idx] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}
	return nil
}

var _ graph.Executor = (*DataflowExecutor)(nil)
