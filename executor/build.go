package executor

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/log"
	"github.com/nnrtlab/execfactory/observer"
	"github.com/nnrtlab/execfactory/tensor"
)

// BuildOptions carries every factory.CompilerOptions field the build
// pipelines need, decoupled from the factory package so
// executor has no dependency on it.
type BuildOptions struct {
	ControlFlowBackend string
	FrontendLayout     graph.Layout
	ModelInputs        []graph.OperandIndex
	ModelOutputs       []graph.OperandIndex
	IsPrimarySubgraph  bool
	ProfilingMode      bool
	Parallel           bool
	TraceFilepath      string
	ExecutorMap        graph.ExecutorMap
	Meter              metric.Meter // optional, used only by the Dataflow profiling observer
}

// buildResult is the shared product of the phases every strategy runs
// identically, before and after the memory-policy split.
type buildResult struct {
	order    []graph.OpSequenceIndex
	builders *tensor.BuilderSet
	inputs   []graph.Tensor
	outputs  []graph.Tensor
}

// buildUpToLinearize runs backend-context init, per-backend optimization,
// linearization, tensor registration, and (primary subgraphs only) model
// IO tensor allocation. It is common to Linear, Dataflow, and Parallel.
func buildUpToLinearize(g *graph.LoweredGraph, opts BuildOptions) (*buildResult, error) {
	if err := InitializeBackendContexts(g); err != nil {
		return nil, err
	}
	if err := RunOptimizers(g); err != nil {
		return nil, err
	}
	order, err := Linearize(g)
	if err != nil {
		return nil, err
	}
	if err := RegisterTensors(g, order); err != nil {
		return nil, err
	}

	tensorBuilders := make(map[string]graph.TensorBuilder, len(g.Backends))
	for name, bc := range g.Backends {
		tensorBuilders[name] = bc.TensorBuilder
	}
	builders := tensor.NewBuilderSet(tensorBuilders)

	var inputs, outputs []graph.Tensor
	if opts.IsPrimarySubgraph {
		inputs, err = InitializeModelIOTensors(g, opts.ModelInputs, opts.ControlFlowBackend, builders, opts.FrontendLayout)
		if err != nil {
			return nil, err
		}
		outputs, err = InitializeModelIOTensors(g, opts.ModelOutputs, opts.ControlFlowBackend, builders, opts.FrontendLayout)
		if err != nil {
			return nil, err
		}
	}

	return &buildResult{order: order, builders: builders, inputs: inputs, outputs: outputs}, nil
}

// finishBuild runs the two phases common to every strategy right after the
// memory policy has been applied: prepare builders, then wire external
// tensors. Kernel generation, allocation, constant init, source-data
// release and function preparation follow in each Build* function.
func finishBuild(g *graph.LoweredGraph, br *buildResult) error {
	if err := PrepareAllBuilders(g); err != nil {
		return err
	}
	return WireExternalTensors(g, br.order, br.builders)
}

// BuildLinear runs the full build pipeline and returns a LinearExecutor.
func BuildLinear(g *graph.LoweredGraph, opts BuildOptions) (*LinearExecutor, error) {
	br, err := buildUpToLinearize(g, opts)
	if err != nil {
		return nil, err
	}
	log.Default.Debugf("executor: linearized %d op-sequences", len(br.order))

	if err := PlanUseDefLifetimes(g, br.order); err != nil {
		return nil, err
	}
	if err := finishBuild(g, br); err != nil {
		return nil, err
	}

	code, err := GenerateKernels(g, br.order, KernelGenOptions{
		ProfilingMode: opts.ProfilingMode,
		Builders:      br.builders,
		ExecutorMap:   opts.ExecutorMap,
	})
	if err != nil {
		return nil, err
	}

	if err := AllocateAllBuilders(g); err != nil {
		return nil, err
	}
	if err := InitAllConsts(g); err != nil {
		return nil, err
	}
	ReleaseAllSourceData(g)
	if err := PrepareFunctions(g, code); err != nil {
		return nil, err
	}

	exec := NewLinearExecutor(g, br.inputs, br.outputs, code, br.order)
	if opts.TraceFilepath != "" {
		tracer, err := observer.NewTracingObserver(g, opts.TraceFilepath)
		if err != nil {
			return nil, err
		}
		exec.AddObserver(tracer)
	}
	return exec, nil
}

// BuildDataflowOrParallel runs a pipeline identical through tensor
// registration to BuildLinear, but with the FullLifetime memory-policy
// override, no linear dump, and a strategy choice between DataflowExecutor
// and ParallelExecutor. Profiling and parallel execution are mutually
// exclusive only in the sense that parallel never attaches the profile
// observer; the sync-barrier wrap in GenerateKernels still applies and the
// build never fails because both are requested together.
func BuildDataflowOrParallel(g *graph.LoweredGraph, opts BuildOptions) (graph.Executor, error) {
	br, err := buildUpToLinearize(g, opts)
	if err != nil {
		return nil, err
	}

	MarkFullLifetime(g)
	if err := finishBuild(g, br); err != nil {
		return nil, err
	}

	code, err := GenerateKernels(g, br.order, KernelGenOptions{
		ProfilingMode: opts.ProfilingMode,
		Builders:      br.builders,
		ExecutorMap:   opts.ExecutorMap,
	})
	if err != nil {
		return nil, err
	}

	if err := AllocateAllBuilders(g); err != nil {
		return nil, err
	}
	if err := InitAllConsts(g); err != nil {
		return nil, err
	}
	ReleaseAllSourceData(g)
	if err := PrepareFunctions(g, code); err != nil {
		return nil, err
	}

	var exec graph.Executor
	if opts.Parallel {
		exec, err = NewParallelExecutor(g, br.inputs, br.outputs, code)
		if err != nil {
			return nil, err
		}
	} else {
		dfExec, err := NewDataflowExecutor(g, br.inputs, br.outputs, code)
		if err != nil {
			return nil, err
		}
		if opts.ProfilingMode {
			backends := make([]string, 0, len(g.Backends))
			for name := range g.Backends {
				backends = append(backends, name)
			}
			backendOf := func(idx graph.OpSequenceIndex) string {
				info, err := g.OpSeqInfo(idx)
				if err != nil {
					return ""
				}
				return info.Backend
			}
			profiler, _, err := observer.NewProfilingObserver(g, backends, backendOf, opts.Meter)
			if err != nil {
				return nil, err
			}
			dfExec.AddObserver(profiler)
		}
		exec = dfExec
	}

	if opts.TraceFilepath != "" {
		tracer, err := observer.NewTracingObserver(g, opts.TraceFilepath)
		if err != nil {
			return nil, err
		}
		exec.AddObserver(tracer)
	}
	return exec, nil
}
