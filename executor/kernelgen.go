package executor

import (
	"fmt"

	"github.com/nnrtlab/execfactory/errs"
	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/kernel"
)

// KernelGenOptions parameterizes GenerateKernels: whether to wrap every
// generated function in the profiling sync-barrier, and the collaborators
// a control-flow kernel generator needs injected before Generate runs.
type KernelGenOptions struct {
	ProfilingMode bool
	Builders      graph.TensorBuilderSet
	ExecutorMap   graph.ExecutorMap
}

// GenerateKernels drives per-op-sequence kernel generation in topological
// order.
func GenerateKernels(g *graph.LoweredGraph, order []graph.OpSequenceIndex, opts KernelGenOptions) (kernel.CodeMap, error) {
	builder := kernel.NewExecutionBuilder()

	for _, seqIdx := range order {
		seq, err := g.OpSeq(seqIdx)
		if err != nil {
			return nil, err
		}
		seqInfo, err := g.OpSeqInfo(seqIdx)
		if err != nil {
			return nil, err
		}
		bc, ok := g.Backends[seqInfo.Backend]
		if !ok {
			return nil, errs.New(errs.KindGraphInvariant, "GenerateKernels", fmt.Errorf("op-sequence %d: unknown backend %q", seqIdx, seqInfo.Backend))
		}

		if cf, ok := graph.AsControlFlowKernelGenerator(bc.KernelGenerator); ok {
			cf.SetTensorBuilderSet(opts.Builders)
			cf.SetExecutorMap(opts.ExecutorMap)
		}

		seqFns, err := bc.KernelGenerator.Generate(seq, g)
		if err != nil {
			return nil, kernelGenErr(seqInfo.Backend, seqIdx, err)
		}

		if opts.ProfilingMode {
			if bc.Config == nil {
				return nil, errs.New(errs.KindConfiguration, "GenerateKernels", fmt.Errorf("backend %q: profiling mode requires an IConfig", seqInfo.Backend))
			}
			seqFns.Wrap(kernel.WrapWithSync(bc.Config))
		}

		builder.Append(seqIdx, seqFns)
	}

	return builder.ReleaseCodeMap(), nil
}
