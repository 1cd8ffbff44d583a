package graph

import (
	"testing"

	"github.com/nnrtlab/execfactory/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnlyDefFactor(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		li := &OperandLowerInfo{}
		_, err := li.OnlyDefFactor()
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrMissingDefFactor)
	})
	t.Run("single", func(t *testing.T) {
		li := &OperandLowerInfo{DefFactors: []DefFactor{{Backend: "cpu", Layout: LayoutNHWC}}}
		f, err := li.OnlyDefFactor()
		require.NoError(t, err)
		assert.Equal(t, "cpu", f.Backend)
	})
	t.Run("ambiguous", func(t *testing.T) {
		li := &OperandLowerInfo{DefFactors: []DefFactor{
			{Backend: "cpu", Layout: LayoutNHWC},
			{Backend: "accel", Layout: LayoutNCHW},
		}}
		_, err := li.OnlyDefFactor()
		require.Error(t, err)
	})
}

func TestLoweredGraphAccessorsFailFast(t *testing.T) {
	g := New()
	_, err := g.Operand(OperandIndex(0))
	assert.Error(t, err)
	_, err = g.Operation(OperationIndex(0))
	assert.Error(t, err)
	_, err = g.OpSeq(OpSequenceIndex(0))
	assert.Error(t, err)
	_, err = g.OperandInfo(OperandIndex(0))
	assert.Error(t, err)
	_, err = g.OpSeqInfo(OpSequenceIndex(0))
	assert.Error(t, err)
}

func TestOperandReleaseData(t *testing.T) {
	o := NewOperand(0, []int64{1, 2}, ElementType("f32"), AllocClassStatic, true, []byte{1, 2, 3})
	assert.True(t, o.HasSourceData())
	o.ReleaseData()
	assert.False(t, o.HasSourceData())
	assert.Nil(t, o.SourceData())
}

func TestOrderedOpSequences(t *testing.T) {
	g := New()
	g.OpSequences[2] = &OpSequence{Index: 2}
	g.OpSequences[0] = &OpSequence{Index: 0}
	g.OpSequences[1] = &OpSequence{Index: 1}
	assert.Equal(t, []OpSequenceIndex{0, 1, 2}, g.OrderedOpSequences())
}
