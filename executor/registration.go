package executor

import (
	"fmt"

	"github.com/nnrtlab/execfactory/errs"
	"github.com/nnrtlab/execfactory/graph"
)

// RegisterTensors walks op-sequences in the given order and registers each
// operand with its owning backend's tensor builder. A backend that
// supplies a custom TensorRegister receives the whole op-sequence instead
// of going through the default policy.
func RegisterTensors(g *graph.LoweredGraph, order []graph.OpSequenceIndex) error {
	for _, seqIdx := range order {
		seq, err := g.OpSeq(seqIdx)
		if err != nil {
			return err
		}
		seqInfo, err := g.OpSeqInfo(seqIdx)
		if err != nil {
			return err
		}
		bc, ok := g.Backends[seqInfo.Backend]
		if !ok {
			return errs.New(errs.KindGraphInvariant, "RegisterTensors", fmt.Errorf("op-sequence %d: unknown backend %q", seqIdx, seqInfo.Backend))
		}

		if bc.TensorRegister != nil {
			if err := bc.TensorRegister.RegisterTensors(seq, g); err != nil {
				return errs.New(errs.KindBackendOperation, "RegisterTensors["+seqInfo.Backend+"]", err)
			}
			continue
		}
		if err := registerDefault(g, seq, seqInfo, bc.TensorBuilder); err != nil {
			return err
		}
	}
	return nil
}

// registerDefault implements the default tensor registration policy
//: the union of every member operation's inputs and outputs,
// skipping operands already registered and operands whose def-factor
// belongs to a foreign backend (those arrive later as migrant tensors).
func registerDefault(g *graph.LoweredGraph, seq *graph.OpSequence, seqInfo *graph.OpSequenceLowerInfo, builder graph.TensorBuilder) error {
	seen := make(map[graph.OperandIndex]bool)
	for _, opIdx := range seq.Operations {
		op, err := g.Operation(opIdx)
		if err != nil {
			return err
		}
		operands := append(op.DefinedInputs(), op.Outputs...)
		for _, operandIdx := range operands {
			if !operandIdx.IsDefined() || seen[operandIdx] {
				continue
			}
			seen[operandIdx] = true
			if builder.IsRegistered(operandIdx) {
				continue
			}

			operand, err := g.Operand(operandIdx)
			if err != nil {
				return err
			}
			lowerInfo, err := g.OperandInfo(operandIdx)
			if err != nil {
				return err
			}
			defFactor, err := lowerInfo.OnlyDefFactor()
			if err != nil {
				return err
			}
			if defFactor.Backend != seqInfo.Backend {
				continue // produced elsewhere; arrives as a migrant tensor.
			}

			info := operand.Info()
			info.Shape = graph.PermuteShape(info.Shape, seqInfo.Layout, defFactor.Layout)
			if err := builder.RegisterTensorInfo(operandIdx, info, defFactor.Layout); err != nil {
				return errs.New(errs.KindBackendOperation, "RegisterTensorInfo["+seqInfo.Backend+"]", err)
			}
		}
	}
	return nil
}
