package kernel

import "github.com/nnrtlab/execfactory/graph"

// CodeMap is the final artifact of kernel generation: one FunctionSequence
// per op-sequence, keyed by op-sequence index. As a Go map it keeps no
// generation order; executors supply their own order.
type CodeMap map[graph.OpSequenceIndex]graph.FunctionSequence

// ExecutionBuilder accumulates per-op-sequence FunctionSequences as the
// Kernel Generation Orchestrator walks op-sequences in topological
// order, then hands over the CodeMap and drops its own reference to it.
type ExecutionBuilder struct {
	code CodeMap
}

// NewExecutionBuilder constructs an empty ExecutionBuilder.
func NewExecutionBuilder() *ExecutionBuilder {
	return &ExecutionBuilder{code: make(CodeMap)}
}

// Append records the generated FunctionSequence for an op-sequence.
func (b *ExecutionBuilder) Append(idx graph.OpSequenceIndex, seq graph.FunctionSequence) {
	b.code[idx] = seq
}

// ReleaseCodeMap returns the accumulated CodeMap. Called once, after
// kernel generation for every op-sequence has completed.
func (b *ExecutionBuilder) ReleaseCodeMap() CodeMap {
	m := b.code
	b.code = nil
	return m
}
