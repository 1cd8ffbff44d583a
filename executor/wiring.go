package executor

import (
	"fmt"

	"github.com/nnrtlab/execfactory/errs"
	"github.com/nnrtlab/execfactory/graph"
)

// WireExternalTensors installs migrant tensors for operands produced on a
// foreign backend. For each op-sequence, every defined operand in
// its boundary input+output union that the owning backend's builder has no
// tensor for is searched for across every builder; a found portable tensor
// is installed as a migrant, a found non-portable tensor is left for the
// consumer to copy at kernel-gen time (outside this spec), and a missing
// tensor is a BackendResource error (it must exist by this phase).
func WireExternalTensors(g *graph.LoweredGraph, order []graph.OpSequenceIndex, builders graph.TensorBuilderSet) error {
	for _, seqIdx := range order {
		seq, err := g.OpSeq(seqIdx)
		if err != nil {
			return err
		}
		seqInfo, err := g.OpSeqInfo(seqIdx)
		if err != nil {
			return err
		}
		ownBuilder, ok := builders.Get(seqInfo.Backend)
		if !ok {
			return errs.New(errs.KindGraphInvariant, "WireExternalTensors", fmt.Errorf("op-sequence %d: unknown backend %q", seqIdx, seqInfo.Backend))
		}

		seen := make(map[graph.OperandIndex]bool)
		boundary := append(append([]graph.OperandIndex(nil), seq.Inputs...), seq.Outputs...)
		for _, idx := range boundary {
			if !idx.IsDefined() || seen[idx] {
				continue
			}
			seen[idx] = true
			if _, ok := ownBuilder.TensorAt(idx); ok {
				continue
			}

			found, ok := builders.FindTensor(idx)
			if !ok {
				return errs.New(errs.KindBackendResource, "WireExternalTensors", fmt.Errorf("operand %d: %w", idx, errs.ErrTensorNotFound))
			}
			portable, ok := found.(graph.PortableTensor)
			if !ok || !portable.Portable() {
				continue // non-portable: consumer materializes its own copy at kernel-gen time.
			}
			if err := ownBuilder.SetMigrantTensor(idx, portable); err != nil {
				return errs.New(errs.KindBackendResource, "SetMigrantTensor["+seqInfo.Backend+"]", err)
			}
		}
	}
	return nil
}
