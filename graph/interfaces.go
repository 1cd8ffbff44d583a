package graph

import "context"

// IConfig exposes a blocking barrier for asynchronous backends.
type IConfig interface {
	Sync() error
}

// IOptimizer runs backend-local rewrites. Optimizations are local to the
// backend's subgraph; the factory never reaches across backends on a
// caller's behalf.
type IOptimizer interface {
	Optimize() error
}

// ITensorRegister lets a backend take over tensor registration for its
// op-sequences instead of the default policy.
type ITensorRegister interface {
	RegisterTensors(opSeq *OpSequence, g *LoweredGraph) error
}

// IKernelGenerator produces a FunctionSequence for one op-sequence.
type IKernelGenerator interface {
	Generate(opSeq *OpSequence, g *LoweredGraph) (FunctionSequence, error)
}

// IConstantInitializer initializes a backend's constant tensors. It runs
// after every tensor builder has allocated and before any kernel runs.
type IConstantInitializer interface {
	InitConsts(g *LoweredGraph) error
}

// ControlFlowKernelGenerator is the capability a control-flow backend's
// kernel generator exposes so the orchestrator can inject the shared
// tensor-builder registry and executor map before generation runs,
// implemented as an interface capability query instead of a downcast.
type ControlFlowKernelGenerator interface {
	IKernelGenerator
	SetTensorBuilderSet(TensorBuilderSet)
	SetExecutorMap(ExecutorMap)
	SetUserTensor(OperandIndex, Tensor)
}

// AsControlFlowKernelGenerator performs the capability query described
// above. Returns ok=false for any ordinary (non-control-flow) generator.
func AsControlFlowKernelGenerator(g IKernelGenerator) (ControlFlowKernelGenerator, bool) {
	cf, ok := g.(ControlFlowKernelGenerator)
	return cf, ok
}

// OperandInfo is the portable subset of an operand's metadata a
// TensorBuilder needs to register a tensor: shape (already permuted to the
// backend's layout by the caller), element type, allocation class and
// constant-flag.
type OperandInfo struct {
	Shape    []int64
	DType    ElementType
	Alloc    AllocClass
	Constant bool
}

// Tensor is the minimal capability every concrete tensor object exposes to
// the core: which operand it backs.
type Tensor interface {
	Operand() OperandIndex
}

// PortableTensor is the capability marker for a tensor whose physical
// layout lets it be consumed directly by a foreign backend without copy.
// Only portable tensors may be installed as migrant tensors.
type PortableTensor interface {
	Tensor
	Portable() bool
}

// TensorBuilder is a per-backend tensor registry plus the memory-lifecycle
// operations the factory drives it through: register, plan (via
// NotifyFirstUse/NotifyLastUse), prepare, allocate, postFunctionPrepare.
// Invariant: no tensor may be allocated before registration; constants
// must be initialized after allocation and before any kernel runs.
type TensorBuilder interface {
	IsRegistered(OperandIndex) bool
	RegisterTensorInfo(idx OperandIndex, info OperandInfo, layout Layout) error
	TensorAt(OperandIndex) (Tensor, bool)
	SetMigrantTensor(idx OperandIndex, t PortableTensor) error
	NotifyFirstUse(idx OperandIndex, step int)
	NotifyLastUse(idx OperandIndex, step int)
	Prepare() error
	Allocate() error
	PostFunctionPrepare() error
}

// TensorBuilderSet aggregates every backend's TensorBuilder so external
// tensor wiring and the control-flow kernel generator can search across
// backends for a tensor by operand index.
type TensorBuilderSet interface {
	Get(backend string) (TensorBuilder, bool)
	All() map[string]TensorBuilder
	FindTensor(idx OperandIndex) (Tensor, bool)
}

// Function is one runnable step of a FunctionSequence.
type Function interface {
	Prepare() error
	Run() error
}

// FunctionSequence is the ordered, composable list of runnable functions
// associated with one op-sequence. Wrap decorates every element in
// place; the profiling sync-barrier is the canonical use.
type FunctionSequence interface {
	Len() int
	At(i int) Function
	Append(f Function)
	Iterate(fn func(Function) error) error
	Wrap(wrap func(Function) Function)
}

// MemoryPolicy names the two ways operand lifetimes are fed to a
// TensorBuilder before Prepare(). Prepare() takes no MemoryPolicy argument
// and nothing in this module consumes the type: the executor package
// applies a policy by calling PlanUseDefLifetimes (UseDefLifetime) or
// MarkFullLifetime (FullLifetime).
type MemoryPolicy int

const (
	// UseDefLifetime plans memory from first-use/last-use pairs computed
	// from a linearized execution order (Linear executor).
	UseDefLifetime MemoryPolicy = iota
	// FullLifetime retains every tensor for the executor's entire
	// lifetime — the conservative workaround Dataflow/Parallel require
	// because they offer no static lifetime guarantee.
	FullLifetime
)

// Observer is attached to an Executor to observe op-sequence function
// execution; TracingObserver and ProfilingObserver are the two concrete
// implementations this module ships.
type Observer interface {
	HandleBegin(opSeq OpSequenceIndex)
	HandleEnd(opSeq OpSequenceIndex, err error)
}

// Executor is the object the factory returns: a LinearExecutor,
// DataflowExecutor, or ParallelExecutor, all satisfying this interface.
// Runtime dispatch behavior (ordering, concurrency) varies only behind
// this boundary.
type Executor interface {
	AddObserver(o Observer)
	Graph() *LoweredGraph
	Execute(ctx context.Context) error
}

// ExecutorMap is the shared, concurrency-safe registry from subgraph
// identifier to constructed Executor. It is populated bottom-up by the
// caller across nested subgraphs and read by the control-flow kernel
// generator to resolve sibling subgraphs; the factory itself never writes
// to it.
type ExecutorMap interface {
	Get(id string) (Executor, bool)
	Set(id string, e Executor)
	Len() int
}
