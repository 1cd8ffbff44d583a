package executor

import (
	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/kernel"
	"github.com/nnrtlab/execfactory/tensor"
)

// fakeFunction counts Prepare/Run calls; it implements graph.Function.
type fakeFunction struct {
	prepared int
	ran      int
	runErr   error
}

func (f *fakeFunction) Prepare() error { f.prepared++; return nil }
func (f *fakeFunction) Run() error { f.ran++; return f.runErr }

// fakeKernelGenerator produces one fakeFunction per op-sequence and records
// every op-sequence it was asked to generate, in call order.
type fakeKernelGenerator struct {
	backend   string
	generated []graph.OpSequenceIndex
	fns       map[graph.OpSequenceIndex]*fakeFunction
}

func newFakeKernelGenerator(backend string) *fakeKernelGenerator {
	return &fakeKernelGenerator{backend: backend, fns: make(map[graph.OpSequenceIndex]*fakeFunction)}
}

func (g *fakeKernelGenerator) Generate(opSeq *graph.OpSequence, _ *graph.LoweredGraph) (graph.FunctionSequence, error) {
	g.generated = append(g.generated, opSeq.Index)
	fn := &fakeFunction{}
	g.fns[opSeq.Index] = fn
	seq := kernel.NewSequence()
	seq.Append(fn)
	return seq, nil
}

// fakeControlFlowKernelGenerator additionally implements
// graph.ControlFlowKernelGenerator, recording whether the orchestrator
// injected its collaborators before calling Generate.
type fakeControlFlowKernelGenerator struct {
	fakeKernelGenerator
	builders    graph.TensorBuilderSet
	execMap     graph.ExecutorMap
	userTensors map[graph.OperandIndex]graph.Tensor
}

func newFakeControlFlowKernelGenerator(backend string) *fakeControlFlowKernelGenerator {
	return &fakeControlFlowKernelGenerator{
		fakeKernelGenerator: *newFakeKernelGenerator(backend),
		userTensors:         make(map[graph.OperandIndex]graph.Tensor),
	}
}

func (g *fakeControlFlowKernelGenerator) SetTensorBuilderSet(s graph.TensorBuilderSet) { g.builders = s }
func (g *fakeControlFlowKernelGenerator) SetExecutorMap(m graph.ExecutorMap) { g.execMap = m }
func (g *fakeControlFlowKernelGenerator) SetUserTensor(idx graph.OperandIndex, t graph.Tensor) {
	g.userTensors[idx] = t
}

var _ graph.ControlFlowKernelGenerator = (*fakeControlFlowKernelGenerator)(nil)

// fakeOptimizer records whether Optimize ran.
type fakeOptimizer struct{ ran int }

func (o *fakeOptimizer) Optimize() error { o.ran++; return nil }

// fakeConfig records Sync calls.
type fakeConfig struct{ synced int }

func (c *fakeConfig) Sync() error { c.synced++; return nil }

// newBackendContext builds a ready-to-use BackendContext backed by a real
// tensor.Builder, for tests that exercise the default registration and
// memory-planning paths rather than stubbing TensorBuilder entirely.
func newBackendContext(name string) (*graph.BackendContext, *tensor.Builder) {
	b := tensor.NewBuilder(name)
	return &graph.BackendContext{
		Name:            name,
		KernelGenerator: newFakeKernelGenerator(name),
		TensorBuilder:   b,
	}, b
}

// singleBackendGraph builds one op-sequence, one Add operation with
// inputs {0,1} and output {2}, all on backend "cpu", layout NHWC.
func singleBackendGraph() *graph.LoweredGraph {
	g := graph.New()
	g.Operands[0] = graph.NewOperand(0, []int64{2, 2}, "f32", graph.AllocClassPooled, false, nil)
	g.Operands[1] = graph.NewOperand(1, []int64{2, 2}, "f32", graph.AllocClassPooled, false, nil)
	g.Operands[2] = graph.NewOperand(2, []int64{2, 2}, "f32", graph.AllocClassPooled, false, nil)

	g.OperandLowerInfo[0] = &graph.OperandLowerInfo{DefFactors: []graph.DefFactor{{Backend: "cpu", Layout: graph.LayoutNHWC}}}
	g.OperandLowerInfo[1] = &graph.OperandLowerInfo{DefFactors: []graph.DefFactor{{Backend: "cpu", Layout: graph.LayoutNHWC}}}
	g.OperandLowerInfo[2] = &graph.OperandLowerInfo{DefFactors: []graph.DefFactor{{Backend: "cpu", Layout: graph.LayoutNHWC}}}

	g.Operations[0] = &graph.Operation{Index: 0, Inputs: []graph.OperandIndex{0, 1}, Outputs: []graph.OperandIndex{2}}
	g.OpSequences[0] = &graph.OpSequence{Index: 0, Operations: []graph.OperationIndex{0}, Inputs: []graph.OperandIndex{0, 1}, Outputs: []graph.OperandIndex{2}}
	g.OpSequenceLowerInfo[0] = &graph.OpSequenceLowerInfo{Backend: "cpu", Layout: graph.LayoutNHWC}

	bc, _ := newBackendContext("cpu")
	g.Backends["cpu"] = bc
	return g
}

// twoBackendMigrantGraph builds op-sequence A (cpu) producing tensor 5,
// consumed by op-sequence B (accel) as a migrant.
func twoBackendMigrantGraph() *graph.LoweredGraph {
	g := graph.New()
	g.Operands[4] = graph.NewOperand(4, []int64{1, 4, 4, 3}, "f32", graph.AllocClassPooled, false, nil)
	g.Operands[5] = graph.NewOperand(5, []int64{1, 4, 4, 3}, "f32", graph.AllocClassPooled, false, nil)
	g.Operands[6] = graph.NewOperand(6, []int64{1, 4, 4, 3}, "f32", graph.AllocClassPooled, false, nil)

	g.OperandLowerInfo[4] = &graph.OperandLowerInfo{DefFactors: []graph.DefFactor{{Backend: "cpu", Layout: graph.LayoutNHWC}}}
	g.OperandLowerInfo[5] = &graph.OperandLowerInfo{DefFactors: []graph.DefFactor{{Backend: "cpu", Layout: graph.LayoutNHWC}}}
	g.OperandLowerInfo[6] = &graph.OperandLowerInfo{DefFactors: []graph.DefFactor{{Backend: "accel", Layout: graph.LayoutNHWC}}}

	g.Operations[0] = &graph.Operation{Index: 0, Inputs: []graph.OperandIndex{4}, Outputs: []graph.OperandIndex{5}}
	g.Operations[1] = &graph.Operation{Index: 1, Inputs: []graph.OperandIndex{5}, Outputs: []graph.OperandIndex{6}}

	g.OpSequences[0] = &graph.OpSequence{Index: 0, Operations: []graph.OperationIndex{0}, Inputs: []graph.OperandIndex{4}, Outputs: []graph.OperandIndex{5}}
	g.OpSequences[1] = &graph.OpSequence{Index: 1, Operations: []graph.OperationIndex{1}, Inputs: []graph.OperandIndex{5}, Outputs: []graph.OperandIndex{6}}
	g.OpSequenceLowerInfo[0] = &graph.OpSequenceLowerInfo{Backend: "cpu", Layout: graph.LayoutNHWC}
	g.OpSequenceLowerInfo[1] = &graph.OpSequenceLowerInfo{Backend: "accel", Layout: graph.LayoutNHWC}

	cpuBC, _ := newBackendContext("cpu")
	accelBC, _ := newBackendContext("accel")
	g.Backends["cpu"] = cpuBC
	g.Backends["accel"] = accelBC
	return g
}
