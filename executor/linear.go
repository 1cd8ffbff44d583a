package executor

import (
	"context"

	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/kernel"
)

// LinearExecutor runs op-sequences in a pre-linearized topological order on
// a single thread.
type LinearExecutor struct {
	base
	order []graph.OpSequenceIndex
}

// NewLinearExecutor constructs a LinearExecutor. order must be the same
// linearization used to build code, registration and memory planning.
func NewLinearExecutor(
	g *graph.LoweredGraph,
	inputs, outputs []graph.Tensor,
	code kernel.CodeMap,
	order []graph.OpSequenceIndex,
) *LinearExecutor {
	return &LinearExecutor{
		base:  base{g: g, inputs: inputs, outputs: outputs, code: code},
		order: append([]graph.OpSequenceIndex(nil), order...),
	}
}

// Execute implements graph.Executor: op-sequences run strictly in
// linearized order, on the calling goroutine. Any function may block; this
// executor never reorders around a blocked call.
func (e *LinearExecutor) Execute(ctx context.Context) error {
	for _, idx := range e.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.runOpSequence(idx); err != nil {
			return err
		}
	}
	return nil
}

var _ graph.Executor = (*LinearExecutor)(nil)
