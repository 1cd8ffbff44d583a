package executor

import (
	"github.com/nnrtlab/execfactory/errs"
	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/tensor"
)

// InitializeModelIOTensors allocates the externally-visible model input or
// output tensors in the control-flow backend's builder. Nested
// (non-primary) subgraphs inherit their IO from the enclosing executor
// and never call this; callers simply skip it.
//
// frontendLayout is a parameter rather than a hard-coded NHWC literal, so
// callers that do have per-model layout information can supply it.
func InitializeModelIOTensors(
	g *graph.LoweredGraph,
	operands []graph.OperandIndex,
	controlFlowBackend string,
	builders *tensor.BuilderSet,
	frontendLayout graph.Layout,
) ([]graph.Tensor, error) {
	cfBuilder, ok := builders.ControlFlowBuilder(controlFlowBackend)
	if !ok {
		return nil, errs.New(errs.KindConfiguration, "InitializeModelIOTensors", errs.ErrTensorNotFound)
	}

	out := make([]graph.Tensor, 0, len(operands))
	for _, idx := range operands {
		operand, err := g.Operand(idx)
		if err != nil {
			return nil, err
		}
		ut := tensor.NewUserTensor(idx, frontendLayout, operand.Info())
		cfBuilder.SetUserTensor(idx, ut)
		out = append(out, ut)
	}
	return out, nil
}
