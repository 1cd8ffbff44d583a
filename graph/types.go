// Package graph holds the lowered-graph data model that the executor
// factory consumes, together with the collaborator interfaces every
// backend must satisfy. It is the foundation package: every other package
// in this module imports graph, and graph imports none of them.
package graph

// OperandIndex is a dense, stable handle into a LoweredGraph's operand
// table.
type OperandIndex int32

// UndefinedOperand marks an optional operation input slot that was not
// connected (e.g. an omitted optional argument).
const UndefinedOperand OperandIndex = -1

// IsDefined reports whether the index refers to a real operand.
func (i OperandIndex) IsDefined() bool { return i != UndefinedOperand }

// OperationIndex is a dense, stable handle into a LoweredGraph's operation
// table.
type OperationIndex int32

// OpSequenceIndex is a dense handle into the op-sequence table.
type OpSequenceIndex int32

// Layout identifies a tensor's physical dimension ordering.
type Layout string

// The two layouts this module's default registration path knows how to
// permute between. Backends may use other layouts; PermuteShape only
// needs to handle the combinations actually produced by lowering.
const (
	LayoutNHWC Layout = "NHWC"
	LayoutNCHW Layout = "NCHW"
)

// ElementType names an operand's scalar element type. The factory never
// interprets this beyond carrying it through registration; kernel
// generators are the ones that care.
type ElementType string

// AllocClass distinguishes operands that need a stable address for their
// whole lifetime (weights, persistent state) from those a memory planner
// may pack and reuse.
type AllocClass string

const (
	// AllocClassStatic operands get a fixed, non-overlapping allocation.
	AllocClassStatic AllocClass = "static"
	// AllocClassPooled operands may share memory with non-overlapping
	// lifetimes, subject to the executor's MemoryPolicy.
	AllocClassPooled AllocClass = "pooled"
)

// DefFactor identifies where, and in what layout, an operand is produced.
type DefFactor struct {
	Backend string
	Layout  Layout
}

// Operand carries an operand's shape/type metadata and, until released,
// its constant source data.
type Operand struct {
	Index    OperandIndex
	Shape    []int64
	DType    ElementType
	Alloc    AllocClass
	Constant bool

	data []byte
}

// NewOperand constructs an Operand. sourceData may be nil for non-constant
// operands.
func NewOperand(idx OperandIndex, shape []int64, dtype ElementType, alloc AllocClass, constant bool, sourceData []byte) *Operand {
	return &Operand{
		Index:    idx,
		Shape:    append([]int64(nil), shape...),
		DType:    dtype,
		Alloc:    alloc,
		Constant: constant,
		data:     sourceData,
	}
}

// HasSourceData reports whether the operand still carries its source-side
// constant buffer.
func (o *Operand) HasSourceData() bool { return o.data != nil }

// SourceData returns the operand's source-side buffer, or nil once
// released.
func (o *Operand) SourceData() []byte { return o.data }

// ReleaseData drops the source-side buffer. Called once, after constant
// initialization and before any kernel runs.
func (o *Operand) ReleaseData() { o.data = nil }

// Info returns the portable subset of Operand metadata a TensorBuilder
// needs to register a tensor: shape, element type, allocation class and
// constant-flag, independent of layout (the caller permutes Shape itself).
func (o *Operand) Info() OperandInfo {
	return OperandInfo{
		Shape:    append([]int64(nil), o.Shape...),
		DType:    o.DType,
		Alloc:    o.Alloc,
		Constant: o.Constant,
	}
}

// Operation is one node of the lowered graph: a set of input operand
// slots (some possibly UndefinedOperand) and output operand slots.
type Operation struct {
	Index   OperationIndex
	Inputs  []OperandIndex
	Outputs []OperandIndex
}

// DefinedInputs returns Inputs with UndefinedOperand slots filtered out.
func (op *Operation) DefinedInputs() []OperandIndex {
	out := make([]OperandIndex, 0, len(op.Inputs))
	for _, idx := range op.Inputs {
		if idx.IsDefined() {
			out = append(out, idx)
		}
	}
	return out
}

// OpSequence is a contiguous run of operations assigned to one backend.
// Inputs/Outputs are the op-sequence's own boundary operands — the deduped,
// undefined-filtered union across the whole sequence — distinct from any
// single member operation's inputs/outputs.
type OpSequence struct {
	Index      OpSequenceIndex
	Operations []OperationIndex
	Inputs     []OperandIndex
	Outputs    []OperandIndex
}
