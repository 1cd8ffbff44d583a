package executor

import (
	"testing"

	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireExternalTensorsInstallsMigrant(t *testing.T) {
	g := twoBackendMigrantGraph()
	order, err := Linearize(g)
	require.NoError(t, err)
	require.NoError(t, RegisterTensors(g, order))

	tensorBuilders := map[string]graph.TensorBuilder{
		"cpu":   g.Backends["cpu"].TensorBuilder,
		"accel": g.Backends["accel"].TensorBuilder,
	}
	builders := tensor.NewBuilderSet(tensorBuilders)

	require.NoError(t, WireExternalTensors(g, order, builders))

	accelTensor, ok := g.Backends["accel"].TensorBuilder.TensorAt(5)
	require.True(t, ok, "accel builder should hold operand 5 as a migrant tensor")
	assert.Equal(t, graph.OperandIndex(5), accelTensor.Operand())

	_, ok = g.Backends["cpu"].TensorBuilder.TensorAt(5)
	assert.True(t, ok, "cpu builder still owns operand 5")
}

func TestWireExternalTensorsMissingTensorFails(t *testing.T) {
	g := twoBackendMigrantGraph()
	order, err := Linearize(g)
	require.NoError(t, err)
	// Skip registration entirely: operand 5 was never registered anywhere.
	tensorBuilders := map[string]graph.TensorBuilder{
		"cpu":   g.Backends["cpu"].TensorBuilder,
		"accel": g.Backends["accel"].TensorBuilder,
	}
	builders := tensor.NewBuilderSet(tensorBuilders)
	err = WireExternalTensors(g, order, builders)
	assert.Error(t, err)
}
