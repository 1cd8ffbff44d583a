package executor

import (
	"sort"

	"github.com/nnrtlab/execfactory/graph"
)

// dependencyGraph is the op-sequence adjacency DataflowExecutor and
// ParallelExecutor dispatch against at runtime: successors[idx] are the
// op-sequences that become one step closer to ready once idx finishes, and
// indegree[idx] is how many producers idx is still waiting on.
type dependencyGraph struct {
	successors map[graph.OpSequenceIndex][]graph.OpSequenceIndex
	indegree   map[graph.OpSequenceIndex]int
}

// buildDependencyGraph derives the runtime dependency graph from g's
// op-sequence boundary inputs, the same producer relationship Linearize
// uses to build its topological order.
func buildDependencyGraph(g *graph.LoweredGraph) (*dependencyGraph, error) {
	producer, err := producerIndex(g)
	if err != nil {
		return nil, err
	}
	dg := &dependencyGraph{
		successors: make(map[graph.OpSequenceIndex][]graph.OpSequenceIndex, len(g.OpSequences)),
		indegree:   make(map[graph.OpSequenceIndex]int, len(g.OpSequences)),
	}
	for idx, seq := range g.OpSequences {
		if _, ok := dg.indegree[idx]; !ok {
			dg.indegree[idx] = 0
		}
		for _, in := range seq.Inputs {
			prod, ok := producer[in]
			if !ok || prod == idx {
				continue
			}
			dg.successors[prod] = append(dg.successors[prod], idx)
			dg.indegree[idx]++
		}
	}
	return dg, nil
}

// readyIndices returns the op-sequences with zero indegree, ascending.
func (dg *dependencyGraph) readyIndices() []graph.OpSequenceIndex {
	var ready []graph.OpSequenceIndex
	for idx, d := range dg.indegree {
		if d == 0 {
			ready = append(ready, idx)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
	return ready
}

// cloneIndegree returns an independent copy of the indegree map, since both
// executor flavors mutate their own working copy at runtime while the
// graph structure (successors) is read-only and safely shared.
func (dg *dependencyGraph) cloneIndegree() map[graph.OpSequenceIndex]int {
	out := make(map[graph.OpSequenceIndex]int, len(dg.indegree))
	for k, v := range dg.indegree {
		out[k] = v
	}
	return out
}
