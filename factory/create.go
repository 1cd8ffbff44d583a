package factory

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nnrtlab/execfactory/errs"
	"github.com/nnrtlab/execfactory/executor"
	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/log"
)

// buildFunc is one named strategy's build pipeline.
type buildFunc func(*graph.LoweredGraph, executor.BuildOptions) (graph.Executor, error)

// Factory is a registry of named strategy builders, threaded through
// explicitly rather than kept as process-wide global state.
type Factory struct {
	strategies map[string]buildFunc
}

// New builds a Factory pre-registered with the three strategies this
// module ships.
func New() *Factory {
	f := &Factory{strategies: make(map[string]buildFunc)}
	f.Register(StrategyLinear, func(g *graph.LoweredGraph, bo executor.BuildOptions) (graph.Executor, error) {
		return executor.BuildLinear(g, bo)
	})
	f.Register(StrategyDataflow, func(g *graph.LoweredGraph, bo executor.BuildOptions) (graph.Executor, error) {
		bo.Parallel = false
		return executor.BuildDataflowOrParallel(g, bo)
	})
	f.Register(StrategyParallel, func(g *graph.LoweredGraph, bo executor.BuildOptions) (graph.Executor, error) {
		bo.Parallel = true
		return executor.BuildDataflowOrParallel(g, bo)
	})
	return f
}

// Register adds or replaces a named strategy builder.
func (f *Factory) Register(name string, fn buildFunc) {
	f.strategies[name] = fn
}

// Create builds a ready-to-run Executor for the given LoweredGraph,
// selecting and invoking one of the registered strategies.
// loweredGraph ownership transfers in: callers must not reuse it after a
// successful Create.
func (f *Factory) Create(loweredGraph *graph.LoweredGraph, opts *CompilerOptions, executorMap graph.ExecutorMap) (graph.Executor, error) {
	build, ok := f.strategies[opts.executor]
	if !ok {
		return nil, errs.New(errs.KindConfiguration, "Create", fmt.Errorf("%w: %q", errs.ErrUnknownStrategy, opts.executor))
	}

	buildID := uuid.NewString()
	buildLog := log.Default.With("build_id", buildID)
	buildLog.Infof("factory: building %s executor (primary=%v profiling=%v)", opts.executor, opts.isPrimarySubgraph, opts.profilingMode)
	exec, err := build(loweredGraph, executor.BuildOptions{
		ControlFlowBackend: opts.controlFlowBackend,
		FrontendLayout:     opts.frontendLayout,
		ModelInputs:        opts.modelInputs,
		ModelOutputs:       opts.modelOutputs,
		IsPrimarySubgraph:  opts.isPrimarySubgraph,
		ProfilingMode:      opts.profilingMode,
		TraceFilepath:      opts.traceFilepath,
		ExecutorMap:        executorMap,
		Meter:              opts.meter,
	})
	if err != nil {
		buildLog.Errorf("factory: build failed: %v", err)
		return nil, err
	}
	buildLog.Debugf("factory: build complete")
	return exec, nil
}
