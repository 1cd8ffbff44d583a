package executor

import "github.com/nnrtlab/execfactory/graph"

// PlanUseDefLifetimes computes first/last-use steps for every operand from
// the linearized op-sequence order and feeds them to each owning tensor
// builder. Step numbers are op-sequence positions in order, not
// individual operations — an operand's lifetime spans from the
// op-sequence that first touches it to the op-sequence that last touches
// it.
func PlanUseDefLifetimes(g *graph.LoweredGraph, order []graph.OpSequenceIndex) error {
	for step, seqIdx := range order {
		seq, err := g.OpSeq(seqIdx)
		if err != nil {
			return err
		}
		if _, err := g.OpSeqInfo(seqIdx); err != nil {
			return err
		}
		touched := append(append([]graph.OperandIndex(nil), seq.Inputs...), seq.Outputs...)
		for _, idx := range touched {
			if !idx.IsDefined() {
				continue
			}
			for _, bc := range g.Backends {
				if bc.TensorBuilder.IsRegistered(idx) {
					bc.TensorBuilder.NotifyFirstUse(idx, step)
					bc.TensorBuilder.NotifyLastUse(idx, step)
				}
			}
		}
	}
	return nil
}

// MarkFullLifetime implements the Dataflow/Parallel memory-policy
// workaround: every operand registered with a backend's tensor builder is
// marked first-used, and never marked last-used, so the planner in
// tensor.Builder.Prepare never frees it. It walks the whole graph's
// operand set rather than a backend's def-factor-derived operand list, so
// a custom ITensorRegister that registers tensors outside the def-factor
// set is still covered.
func MarkFullLifetime(g *graph.LoweredGraph) {
	for _, bc := range g.Backends {
		for idx := range g.Operands {
			if bc.TensorBuilder.IsRegistered(idx) {
				bc.TensorBuilder.NotifyFirstUse(idx, 0)
			}
		}
	}
}

// PrepareAllBuilders calls Prepare on every backend's tensor builder.
func PrepareAllBuilders(g *graph.LoweredGraph) error {
	for name, bc := range g.Backends {
		if err := bc.TensorBuilder.Prepare(); err != nil {
			return prepareErr(name, err)
		}
	}
	return nil
}

// AllocateAllBuilders calls Allocate on every backend's tensor builder.
func AllocateAllBuilders(g *graph.LoweredGraph) error {
	for name, bc := range g.Backends {
		if err := bc.TensorBuilder.Allocate(); err != nil {
			return allocateErr(name, err)
		}
	}
	return nil
}

// InitAllConsts initializes every backend's constants.
func InitAllConsts(g *graph.LoweredGraph) error {
	for _, bc := range g.Backends {
		if err := bc.InitConsts(g); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseAllSourceData drops every operand's source-side buffer once
// tensor memory has been allocated and constants copied in.
func ReleaseAllSourceData(g *graph.LoweredGraph) {
	for _, o := range g.Operands {
		o.ReleaseData()
	}
}

// PrepareFunctions walks every generated function sequence and calls
// Prepare on each inner function, then drives the owning backend's
// postFunctionPrepare.
func PrepareFunctions(g *graph.LoweredGraph, code map[graph.OpSequenceIndex]graph.FunctionSequence) error {
	for seqIdx, seq := range code {
		seqInfo, err := g.OpSeqInfo(seqIdx)
		if err != nil {
			return err
		}
		if err := seq.Iterate(func(f graph.Function) error { return f.Prepare() }); err != nil {
			return prepareErr(seqInfo.Backend, err)
		}
	}
	for name, bc := range g.Backends {
		if err := bc.TensorBuilder.PostFunctionPrepare(); err != nil {
			return prepareErr(name, err)
		}
	}
	return nil
}
