// Package executormap implements the shared registry from subgraph
// identifier to constructed Executor. Nested subgraphs form a DAG of
// executor references, so ownership is effectively shared — here that's a
// plain mutex-guarded map passed around by reference rather than anything
// resembling a C++ shared_ptr.
package executormap

import (
	"sync"

	"github.com/nnrtlab/execfactory/graph"
)

// Map is the concurrency-safe graph.ExecutorMap implementation. The
// factory never writes to it; callers populate it bottom-up as they build
// nested subgraphs, and the control-flow kernel generator reads it to
// resolve sibling subgraphs at kernel-generation time.
type Map struct {
	mu    sync.RWMutex
	execs map[string]graph.Executor
}

// New constructs an empty Map.
func New() *Map {
	return &Map{execs: make(map[string]graph.Executor)}
}

// Get implements graph.ExecutorMap.
func (m *Map) Get(id string) (graph.Executor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.execs[id]
	return e, ok
}

// Set implements graph.ExecutorMap.
func (m *Map) Set(id string, e graph.Executor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execs[id] = e
}

// Len implements graph.ExecutorMap.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.execs)
}

var _ graph.ExecutorMap = (*Map)(nil)
