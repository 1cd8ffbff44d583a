package executor

import (
	"context"
	"testing"

	"github.com/nnrtlab/execfactory/executormap"
	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerateKernelsInjectsControlFlowCollaborators verifies that a
// control-flow kernel generator receives the tensor-builder set and the
// executor map before Generate runs, so it can emit kernels invoking
// sibling subgraphs already present in the map.
func TestGenerateKernelsInjectsControlFlowCollaborators(t *testing.T) {
	g := graph.New()
	g.Operands[0] = graph.NewOperand(0, []int64{1}, "f32", graph.AllocClassPooled, false, nil)
	g.OperandLowerInfo[0] = &graph.OperandLowerInfo{DefFactors: []graph.DefFactor{{Backend: "cf", Layout: graph.LayoutNHWC}}}
	g.Operations[0] = &graph.Operation{Index: 0, Inputs: []graph.OperandIndex{}, Outputs: []graph.OperandIndex{0}}
	g.OpSequences[0] = &graph.OpSequence{Index: 0, Operations: []graph.OperationIndex{0}, Outputs: []graph.OperandIndex{0}}
	g.OpSequenceLowerInfo[0] = &graph.OpSequenceLowerInfo{Backend: "cf", Layout: graph.LayoutNHWC}

	cfGen := newFakeControlFlowKernelGenerator("cf")
	builder := tensor.NewBuilder("cf")
	g.Backends["cf"] = &graph.BackendContext{Name: "cf", KernelGenerator: cfGen, TensorBuilder: builder}

	builders := tensor.NewBuilderSet(map[string]graph.TensorBuilder{"cf": builder})
	execMap := executormap.New()
	execMap.Set("subgraph-1", &fakeNestedExecutor{})

	_, err := GenerateKernels(g, []graph.OpSequenceIndex{0}, KernelGenOptions{
		Builders:    builders,
		ExecutorMap: execMap,
	})
	require.NoError(t, err)

	assert.Equal(t, builders, cfGen.builders)
	assert.Equal(t, execMap, cfGen.execMap)
	resolved, ok := cfGen.execMap.Get("subgraph-1")
	require.True(t, ok)
	assert.NotNil(t, resolved)
}

type fakeNestedExecutor struct{}

func (f *fakeNestedExecutor) AddObserver(graph.Observer) {}
func (f *fakeNestedExecutor) Graph() *graph.LoweredGraph { return nil }
func (f *fakeNestedExecutor) Execute(context.Context) error { return nil }

var _ graph.Executor = (*fakeNestedExecutor)(nil)
