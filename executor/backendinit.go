package executor

import "github.com/nnrtlab/execfactory/graph"

// InitializeBackendContexts hands each backend its operation and operand
// lists. An operand is handed to every backend that carries a def-factor
// for it — a single operand may appear in more than one backend's
// operand list when ownership is ambiguous.
func InitializeBackendContexts(g *graph.LoweredGraph) error {
	operations := make(map[string][]graph.OperationRef, len(g.Backends))
	for seqIdx, seq := range g.OpSequences {
		info, err := g.OpSeqInfo(seqIdx)
		if err != nil {
			return err
		}
		for _, opIdx := range seq.Operations {
			operations[info.Backend] = append(operations[info.Backend], graph.OperationRef{
				Index:  opIdx,
				Layout: info.Layout,
			})
		}
	}

	operands := make(map[string][]graph.OperandIndex, len(g.Backends))
	for operandIdx, info := range g.OperandLowerInfo {
		for _, f := range info.DefFactors {
			operands[f.Backend] = append(operands[f.Backend], operandIdx)
		}
	}

	for name, bc := range g.Backends {
		bc.Initialize(operations[name], operands[name])
	}
	return nil
}

// RunOptimizers runs every backend's optimizer, if present.
func RunOptimizers(g *graph.LoweredGraph) error {
	for name, bc := range g.Backends {
		if bc.Optimizer == nil {
			continue
		}
		if err := bc.Optimizer.Optimize(); err != nil {
			return optimizeErr(name, err)
		}
	}
	return nil
}
