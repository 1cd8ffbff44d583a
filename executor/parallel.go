package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/kernel"
)

// ParallelExecutor fans out ready op-sequences onto a worker pool, one
// readiness wave at a time: every op-sequence in a wave has had all its
// producers finish, so they may run concurrently.
// Memory safety across the wave relies entirely on the FullLifetime memory
// policy — nothing here tracks overlapping writes itself.
type ParallelExecutor struct {
	base
	deps *dependencyGraph
	pool *ants.Pool
}

// NewParallelExecutor constructs a ParallelExecutor with a worker pool
// sized to the number of distinct backends present in g.
func NewParallelExecutor(g *graph.LoweredGraph, inputs, outputs []graph.Tensor, code kernel.CodeMap) (*ParallelExecutor, error) {
	deps, err := buildDependencyGraph(g)
	if err != nil {
		return nil, err
	}
	size := len(g.Backends)
	if size < 1 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("parallel executor: create worker pool: %w", err)
	}
	return &ParallelExecutor{
		base: base{g: g, inputs: inputs, outputs: outputs, code: code},
		deps: deps,
		pool: pool,
	}, nil
}

// Execute implements graph.Executor.
func (e *ParallelExecutor) Execute(ctx context.Context) error {
	indegree := e.deps.cloneIndegree()
	ready := e.deps.readyIndices()

	for len(ready) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		var nextReady []graph.OpSequenceIndex
		errCh := make(chan error, len(ready))

		for _, idx := range ready {
			idx := idx
			wg.Add(1)
			task := func() {
				defer wg.Done()
				if err := e.runOpSequence(idx); err != nil {
					errCh <- err
					return
				}
				mu.Lock()
				for _, next := range e.deps.successors[idx] {
					indegree[next]--
					if indegree[next] == 0 {
						nextReady = append(nextReady, next)
					}
				}
				mu.Unlock()
			}
			if err := e.pool.Submit(task); err != nil {
				wg.Done()
				errCh <- fmt.Errorf("parallel executor: submit op-sequence %d: %w", idx, err)
			}
		}

		wg.Wait()
		close(errCh)
		if err := <-errCh; err != nil {
			return err
		}
		ready = nextReady
	}
	return nil
}

// Close releases the worker pool. Callers that built a ParallelExecutor
// and are discarding it without calling Execute (e.g. a failed build)
// should still call Close to avoid leaking pool goroutines.
func (e *ParallelExecutor) Close() {
	e.pool.Release()
}

var _ graph.Executor = (*ParallelExecutor)(nil)
