package factory

import (
	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/kernel"
	"github.com/nnrtlab/execfactory/tensor"
)

type stubFunction struct{}

func (stubFunction) Prepare() error { return nil }
func (stubFunction) Run() error     { return nil }

type stubKernelGenerator struct{}

func (stubKernelGenerator) Generate(*graph.OpSequence, *graph.LoweredGraph) (graph.FunctionSequence, error) {
	seq := kernel.NewSequence()
	seq.Append(stubFunction{})
	return seq, nil
}

func stubBackendContext(name string) *graph.BackendContext {
	return &graph.BackendContext{
		Name:            name,
		KernelGenerator: stubKernelGenerator{},
		TensorBuilder:   tensor.NewBuilder(name),
	}
}
