package kernel

import (
	"errors"
	"testing"

	"github.com/nnrtlab/execfactory/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFunc struct {
	prepared bool
	ran      bool
	runErr   error
}

func (f *fakeFunc) Prepare() error { f.prepared = true; return nil }
func (f *fakeFunc) Run() error     { f.ran = true; return f.runErr }

type fakeConfig struct{ syncs int }

func (c *fakeConfig) Sync() error { c.syncs++; return nil }

func TestSequenceIterateStopsOnError(t *testing.T) {
	s := NewSequence()
	f1 := &fakeFunc{}
	f2 := &fakeFunc{runErr: errors.New("boom")}
	f3 := &fakeFunc{}
	s.Append(f1)
	s.Append(f2)
	s.Append(f3)

	err := s.Iterate(func(f graph.Function) error { return f.Run() })
	require.Error(t, err)
	assert.True(t, f1.ran)
	assert.True(t, f2.ran)
	assert.False(t, f3.ran)
}

func TestSequenceWrapAppliesToEveryElement(t *testing.T) {
	s := NewSequence()
	s.Append(&fakeFunc{})
	s.Append(&fakeFunc{})
	cfg := &fakeConfig{}
	s.Wrap(WrapWithSync(cfg))

	require.NoError(t, s.Iterate(func(f graph.Function) error { return f.Run() }))
	assert.Equal(t, 2, cfg.syncs)
}

func TestNewSyncFunctionRejectsNil(t *testing.T) {
	_, err := NewSyncFunction(nil, &fakeConfig{})
	assert.Error(t, err)
	_, err = NewSyncFunction(&fakeFunc{}, nil)
	assert.Error(t, err)
}

func TestSyncFunctionRunsThenSyncs(t *testing.T) {
	inner := &fakeFunc{}
	cfg := &fakeConfig{}
	sf, err := NewSyncFunction(inner, cfg)
	require.NoError(t, err)
	require.NoError(t, sf.Prepare())
	require.NoError(t, sf.Run())
	assert.True(t, inner.ran)
	assert.Equal(t, 1, cfg.syncs)
}

func TestExecutionBuilderReleaseCodeMap(t *testing.T) {
	b := NewExecutionBuilder()
	b.Append(0, NewSequence())
	b.Append(1, NewSequence())
	cm := b.ReleaseCodeMap()
	assert.Len(t, cm, 2)
}
