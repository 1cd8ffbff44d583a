package factory

import (
	"testing"

	"github.com/nnrtlab/execfactory/errs"
	"github.com/nnrtlab/execfactory/executor"
	"github.com/nnrtlab/execfactory/executormap"
	"github.com/nnrtlab/execfactory/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleBackendGraph() *graph.LoweredGraph {
	g := graph.New()
	g.Operands[0] = graph.NewOperand(0, []int64{2}, "f32", graph.AllocClassPooled, false, nil)
	g.Operands[1] = graph.NewOperand(1, []int64{2}, "f32", graph.AllocClassPooled, false, nil)
	g.OperandLowerInfo[0] = &graph.OperandLowerInfo{DefFactors: []graph.DefFactor{{Backend: "cpu", Layout: graph.LayoutNHWC}}}
	g.OperandLowerInfo[1] = &graph.OperandLowerInfo{DefFactors: []graph.DefFactor{{Backend: "cpu", Layout: graph.LayoutNHWC}}}
	g.Operations[0] = &graph.Operation{Index: 0, Inputs: []graph.OperandIndex{0}, Outputs: []graph.OperandIndex{1}}
	g.OpSequences[0] = &graph.OpSequence{Index: 0, Operations: []graph.OperationIndex{0}, Inputs: []graph.OperandIndex{0}, Outputs: []graph.OperandIndex{1}}
	g.OpSequenceLowerInfo[0] = &graph.OpSequenceLowerInfo{Backend: "cpu", Layout: graph.LayoutNHWC}
	g.Backends["cpu"] = stubBackendContext("cpu")
	return g
}

func TestCreateLinearDefault(t *testing.T) {
	f := New()
	g := singleBackendGraph()
	exec, err := f.Create(g, NewCompilerOptions(WithControlFlowBackend("cpu")), executormap.New())
	require.NoError(t, err)
	_, ok := exec.(*executor.LinearExecutor)
	assert.True(t, ok)
}

func TestCreateDataflow(t *testing.T) {
	f := New()
	g := singleBackendGraph()
	exec, err := f.Create(g, NewCompilerOptions(WithExecutor(StrategyDataflow), WithControlFlowBackend("cpu")), executormap.New())
	require.NoError(t, err)
	_, ok := exec.(*executor.DataflowExecutor)
	assert.True(t, ok)
}

func TestCreateParallel(t *testing.T) {
	f := New()
	g := singleBackendGraph()
	exec, err := f.Create(g, NewCompilerOptions(WithExecutor(StrategyParallel), WithControlFlowBackend("cpu")), executormap.New())
	require.NoError(t, err)
	pe, ok := exec.(*executor.ParallelExecutor)
	require.True(t, ok)
	pe.Close()
}

func TestCreateUnknownStrategyFails(t *testing.T) {
	f := New()
	g := singleBackendGraph()
	_, err := f.Create(g, NewCompilerOptions(WithExecutor("Quantum"), WithControlFlowBackend("cpu")), executormap.New())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConfiguration))
}

func TestCreateRespectsCustomRegisteredStrategy(t *testing.T) {
	f := New()
	called := false
	f.Register("Custom", func(g *graph.LoweredGraph, bo executor.BuildOptions) (graph.Executor, error) {
		called = true
		return executor.BuildLinear(g, bo)
	})
	g := singleBackendGraph()
	_, err := f.Create(g, NewCompilerOptions(WithExecutor("Custom"), WithControlFlowBackend("cpu")), executormap.New())
	require.NoError(t, err)
	assert.True(t, called)
}
