// Package tensor implements the per-backend TensorBuilder (registration,
// memory planning, allocation), the cross-backend BuilderSet used for
// external tensor wiring, and the concrete tensor objects (SimpleTensor,
// UserTensor) that satisfy graph.Tensor / graph.PortableTensor.
package tensor

import "github.com/nnrtlab/execfactory/graph"

// SimpleTensor is the concrete tensor object a Builder registers for each
// operand. It implements graph.PortableTensor: backends whose physical
// layout survives a zero-copy handoff construct it with portable=true.
type SimpleTensor struct {
	operand   graph.OperandIndex
	info      graph.OperandInfo
	layout    graph.Layout
	portable  bool
	allocated bool
	offset    int64
}

// Operand implements graph.Tensor.
func (t *SimpleTensor) Operand() graph.OperandIndex { return t.operand }

// Portable implements graph.PortableTensor.
func (t *SimpleTensor) Portable() bool { return t.portable }

// Layout returns the backend layout this tensor was registered under.
func (t *SimpleTensor) Layout() graph.Layout { return t.layout }

// Info returns the operand metadata the tensor was registered with.
func (t *SimpleTensor) Info() graph.OperandInfo { return t.info }

// Allocated reports whether Allocate has run for this tensor.
func (t *SimpleTensor) Allocated() bool { return t.allocated }

// Offset returns the tensor's planned memory offset, valid after Prepare.
func (t *SimpleTensor) Offset() int64 { return t.offset }

// UserTensor represents a model input/output owned by the control-flow
// backend's tensor registry and exposed to the host as the public IO
// handle.
type UserTensor struct {
	operand graph.OperandIndex
	layout  graph.Layout
	info    graph.OperandInfo
}

// NewUserTensor constructs a UserTensor for a model IO operand.
func NewUserTensor(idx graph.OperandIndex, layout graph.Layout, info graph.OperandInfo) *UserTensor {
	return &UserTensor{operand: idx, layout: layout, info: info}
}

// Operand implements graph.Tensor.
func (t *UserTensor) Operand() graph.OperandIndex { return t.operand }

// Layout returns the frontend layout the user tensor was created under.
func (t *UserTensor) Layout() graph.Layout { return t.layout }

// Info returns the operand metadata backing this handle.
func (t *UserTensor) Info() graph.OperandInfo { return t.info }

var _ graph.Tensor = (*UserTensor)(nil)
var _ graph.PortableTensor = (*SimpleTensor)(nil)

// elementSize is a coarse per-element byte size used only to size the
// memory plan; real element-type-to-size mapping lives with whichever
// backend actually allocates hardware memory.
func elementSize(graph.ElementType) int64 { return 4 }

// byteSize computes an operand's planned size from its shape.
func byteSize(info graph.OperandInfo) int64 {
	n := int64(1)
	for _, d := range info.Shape {
		if d <= 0 {
			d = 1
		}
		n *= d
	}
	return n * elementSize(info.DType)
}
