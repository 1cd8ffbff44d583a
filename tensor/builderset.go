package tensor

import (
	"sync"

	"github.com/nnrtlab/execfactory/graph"
)

// BuilderSet aggregates every backend's TensorBuilder so external tensor
// wiring and the control-flow kernel generator can resolve a tensor by
// operand index without knowing which backend owns it.
type BuilderSet struct {
	mu       sync.RWMutex
	builders map[string]graph.TensorBuilder
}

// NewBuilderSet constructs a BuilderSet from a backend-name -> TensorBuilder
// map, typically one entry per graph.BackendContext.
func NewBuilderSet(builders map[string]graph.TensorBuilder) *BuilderSet {
	copied := make(map[string]graph.TensorBuilder, len(builders))
	for k, v := range builders {
		copied[k] = v
	}
	return &BuilderSet{builders: copied}
}

// Get implements graph.TensorBuilderSet.
func (s *BuilderSet) Get(backend string) (graph.TensorBuilder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.builders[backend]
	return b, ok
}

// All implements graph.TensorBuilderSet.
func (s *BuilderSet) All() map[string]graph.TensorBuilder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]graph.TensorBuilder, len(s.builders))
	for k, v := range s.builders {
		out[k] = v
	}
	return out
}

// FindTensor implements graph.TensorBuilderSet: it searches every backend's
// builder for a tensor registered against idx. Iteration order over
// backends is unspecified but deterministic per call is not required —
// callers only rely on there being at most one real owner.
func (s *BuilderSet) FindTensor(idx graph.OperandIndex) (graph.Tensor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.builders {
		if t, ok := b.TensorAt(idx); ok {
			return t, true
		}
	}
	return nil, false
}

// ControlFlowBuilder returns the control-flow backend's Builder, if one
// was registered under the given name. Callers that need the concrete type
// (e.g. to install UserTensors) use this instead of Get + type assertion.
func (s *BuilderSet) ControlFlowBuilder(controlFlowBackend string) (*Builder, bool) {
	tb, ok := s.Get(controlFlowBackend)
	if !ok {
		return nil, false
	}
	b, ok := tb.(*Builder)
	return b, ok
}

var _ graph.TensorBuilderSet = (*BuilderSet)(nil)
