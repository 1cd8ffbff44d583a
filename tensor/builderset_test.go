package tensor

import (
	"testing"

	"github.com/nnrtlab/execfactory/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderSetFindTensor(t *testing.T) {
	cpu := NewBuilder("cpu")
	require.NoError(t, cpu.RegisterTensorInfo(1, info(1), graph.LayoutNHWC))
	accel := NewBuilder("accel")

	set := NewBuilderSet(map[string]graph.TensorBuilder{"cpu": cpu, "accel": accel})

	tn, ok := set.FindTensor(1)
	require.True(t, ok)
	assert.Equal(t, graph.OperandIndex(1), tn.Operand())

	_, ok = set.FindTensor(99)
	assert.False(t, ok)

	got, ok := set.Get("accel")
	require.True(t, ok)
	assert.Same(t, graph.TensorBuilder(accel), got)

	assert.Len(t, set.All(), 2)
}

func TestBuilderSetControlFlowBuilder(t *testing.T) {
	cf := NewBuilder("controlflow")
	set := NewBuilderSet(map[string]graph.TensorBuilder{"controlflow": cf})
	got, ok := set.ControlFlowBuilder("controlflow")
	require.True(t, ok)
	assert.Same(t, cf, got)

	_, ok = set.ControlFlowBuilder("missing")
	assert.False(t, ok)
}
