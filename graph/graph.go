package graph

import (
	"fmt"

	"github.com/nnrtlab/execfactory/errs"
)

// LoweredGraph is a directed acyclic graph of Operations, bundled into
// OpSequences, paired with the LowerInfo records that assign each operand
// and op-sequence to a backend and layout. It is the exclusive-ownership
// input to the executor factory: ownership transfers in on Create and
// is released when the returned executor is destroyed.
type LoweredGraph struct {
	Operands    map[OperandIndex]*Operand
	Operations  map[OperationIndex]*Operation
	OpSequences map[OpSequenceIndex]*OpSequence

	OperandLowerInfo    map[OperandIndex]*OperandLowerInfo
	OpSequenceLowerInfo map[OpSequenceIndex]*OpSequenceLowerInfo

	// ModelInputs/ModelOutputs are the model's externally-visible IO,
	// ordered; each entry has exactly one def-factor.
	ModelInputs  []OperandIndex
	ModelOutputs []OperandIndex

	// Backends holds one BackendContext per backend present in the graph,
	// created during lowering and owned here for the life of the build.
	Backends map[string]*BackendContext
}

// New builds an empty LoweredGraph. Callers populate it (normally the
// lowering pass, external to this module; tests populate it directly)
// before handing it to the factory.
func New() *LoweredGraph {
	return &LoweredGraph{
		Operands:            make(map[OperandIndex]*Operand),
		Operations:          make(map[OperationIndex]*Operation),
		OpSequences:         make(map[OpSequenceIndex]*OpSequence),
		OperandLowerInfo:    make(map[OperandIndex]*OperandLowerInfo),
		OpSequenceLowerInfo: make(map[OpSequenceIndex]*OpSequenceLowerInfo),
		Backends:            make(map[string]*BackendContext),
	}
}

// Operand returns the operand at idx, failing fast if it doesn't exist.
func (g *LoweredGraph) Operand(idx OperandIndex) (*Operand, error) {
	o, ok := g.Operands[idx]
	if !ok {
		return nil, errs.New(errs.KindGraphInvariant, "Operand", fmt.Errorf("operand %d not found", idx))
	}
	return o, nil
}

// Operation returns the operation at idx, failing fast if it doesn't exist.
func (g *LoweredGraph) Operation(idx OperationIndex) (*Operation, error) {
	o, ok := g.Operations[idx]
	if !ok {
		return nil, errs.New(errs.KindGraphInvariant, "Operation", fmt.Errorf("operation %d not found", idx))
	}
	return o, nil
}

// OpSeq returns the op-sequence at idx, failing fast if it doesn't exist.
func (g *LoweredGraph) OpSeq(idx OpSequenceIndex) (*OpSequence, error) {
	s, ok := g.OpSequences[idx]
	if !ok {
		return nil, errs.New(errs.KindGraphInvariant, "OpSeq", fmt.Errorf("op-sequence %d not found", idx))
	}
	return s, nil
}

// OperandInfo returns the operand's lower-info, failing fast if absent —
// this is the GraphInvariant that every defined operand must carry
// def-factors.
func (g *LoweredGraph) OperandInfo(idx OperandIndex) (*OperandLowerInfo, error) {
	li, ok := g.OperandLowerInfo[idx]
	if !ok {
		return nil, errs.New(errs.KindGraphInvariant, "OperandInfo", fmt.Errorf("operand %d has no lower-info", idx))
	}
	return li, nil
}

// OpSeqInfo returns the op-sequence's lower-info, failing fast if absent.
func (g *LoweredGraph) OpSeqInfo(idx OpSequenceIndex) (*OpSequenceLowerInfo, error) {
	li, ok := g.OpSequenceLowerInfo[idx]
	if !ok {
		return nil, errs.New(errs.KindGraphInvariant, "OpSeqInfo", errs.ErrMissingOpSequenceLowerInfo)
	}
	return li, nil
}

// OrderedOpSequences returns op-sequence indices sorted ascending: a
// deterministic ordering that ignores data dependencies. The build
// pipelines do not use it; they use executor.Linearize.
func (g *LoweredGraph) OrderedOpSequences() []OpSequenceIndex {
	out := make([]OpSequenceIndex, 0, len(g.OpSequences))
	for idx := range g.OpSequences {
		out = append(out, idx)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// BackendContext is a backend's bundle of per-build collaborators: an
// optional Optimizer, a ConstantInitializer, a KernelGenerator, an optional
// TensorRegister, and a TensorBuilder. Lifetime: created during lowering,
// owned by the LoweredGraph, released when the executor is destroyed.
type BackendContext struct {
	Name string

	Config              IConfig // optional; required only when profiling mode wraps functions in a sync-barrier
	Optimizer           IOptimizer // optional
	ConstantInitializer IConstantInitializer // optional
	KernelGenerator     IKernelGenerator
	TensorRegister      ITensorRegister // optional
	TensorBuilder       TensorBuilder

	operations []OperationRef
	operands   []OperandIndex
}

// OperationRef pairs an operation index with the frontend layout its
// owning op-sequence was linearized under.
type OperationRef struct {
	Index  OperationIndex
	Layout Layout
}

// Initialize hands the backend its operation and operand lists. Called
// exactly once per backend per build.
func (bc *BackendContext) Initialize(operations []OperationRef, operands []OperandIndex) {
	bc.operations = operations
	bc.operands = operands
}

// Operations returns the operation list passed to Initialize.
func (bc *BackendContext) Operations() []OperationRef { return bc.operations }

// Operands returns the operand list passed to Initialize.
func (bc *BackendContext) Operands() []OperandIndex { return bc.operands }

// InitConsts runs the backend's constant initializer, if any.
func (bc *BackendContext) InitConsts(g *LoweredGraph) error {
	if bc.ConstantInitializer == nil {
		return nil
	}
	if err := bc.ConstantInitializer.InitConsts(g); err != nil {
		return errs.New(errs.KindBackendOperation, "InitConsts["+bc.Name+"]", err)
	}
	return nil
}
