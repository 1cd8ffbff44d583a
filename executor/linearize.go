// Package executor implements the build pipelines shared by all three
// executor flavors: backend-context initialization,
// linearization, tensor registration, memory planning, external tensor
// wiring, kernel generation, and the LinearExecutor/DataflowExecutor/
// ParallelExecutor runtime objects themselves.
package executor

import (
	"fmt"
	"sort"

	"github.com/nnrtlab/execfactory/errs"
	"github.com/nnrtlab/execfactory/graph"
)

// Linearize produces a total order over g's op-sequences consistent with
// data dependencies: an op-sequence may not run before any
// op-sequence that produces one of its boundary inputs. Ties are broken by
// ascending op-sequence index, making the order deterministic across runs
// of the same graph.
func Linearize(g *graph.LoweredGraph) ([]graph.OpSequenceIndex, error) {
	producer, err := producerIndex(g)
	if err != nil {
		return nil, err
	}

	indegree := make(map[graph.OpSequenceIndex]int, len(g.OpSequences))
	successors := make(map[graph.OpSequenceIndex][]graph.OpSequenceIndex, len(g.OpSequences))
	for idx, seq := range g.OpSequences {
		indegree[idx] = 0
		for _, in := range seq.Inputs {
			prod, ok := producer[in]
			if !ok || prod == idx {
				continue
			}
			successors[prod] = append(successors[prod], idx)
			indegree[idx]++
		}
	}

	var ready []graph.OpSequenceIndex
	for idx, d := range indegree {
		if d == 0 {
			ready = append(ready, idx)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	order := make([]graph.OpSequenceIndex, 0, len(g.OpSequences))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		succs := append([]graph.OpSequenceIndex(nil), successors[next]...)
		sort.Slice(succs, func(i, j int) bool { return succs[i] < succs[j] })
		for _, s := range succs {
			indegree[s]--
			if indegree[s] == 0 {
				pos := sort.Search(len(ready), func(i int) bool { return ready[i] >= s })
				ready = append(ready, 0)
				copy(ready[pos+1:], ready[pos:])
				ready[pos] = s
			}
		}
	}

	if len(order) != len(g.OpSequences) {
		return nil, errs.New(errs.KindGraphInvariant, "Linearize", fmt.Errorf("cycle among op-sequences: ordered %d of %d", len(order), len(g.OpSequences)))
	}
	return order, nil
}

// producerIndex maps each operand to the op-sequence that produces it, by
// scanning every op-sequence's member operations' outputs. An operand with
// no producer (a model input, or a constant) is simply absent from the map.
func producerIndex(g *graph.LoweredGraph) (map[graph.OperandIndex]graph.OpSequenceIndex, error) {
	out := make(map[graph.OperandIndex]graph.OpSequenceIndex)
	for seqIdx, seq := range g.OpSequences {
		for _, opIdx := range seq.Operations {
			op, err := g.Operation(opIdx)
			if err != nil {
				return nil, err
			}
			for _, o := range op.Outputs {
				if o.IsDefined() {
					out[o] = seqIdx
				}
			}
		}
	}
	return out, nil
}
