package tensor

import (
	"sort"
	"sync"

	"github.com/nnrtlab/execfactory/errs"
	"github.com/nnrtlab/execfactory/graph"
	"github.com/nnrtlab/execfactory/log"
)

// entry is a Builder's bookkeeping for one registered or migrant operand.
type entry struct {
	tensor   *SimpleTensor
	migrant  graph.PortableTensor
	hasFirst bool
	firstUse int
	hasLast  bool
	lastUse  int
}

// Builder is the default, in-process TensorBuilder implementation: a
// mutex-guarded registry plus a linear-scan memory planner.
//
// Invariant: no tensor may be allocated before registration; constants
// must be initialized after allocation and before any kernel runs.
type Builder struct {
	backend string

	mu          sync.RWMutex
	entries     map[graph.OperandIndex]*entry
	userTensors map[graph.OperandIndex]*UserTensor
	prepared    bool

	totalBytes       int64
	postPrepareCalls int
}

// NewBuilder constructs an empty Builder for the named backend.
func NewBuilder(backend string) *Builder {
	return &Builder{
		backend: backend,
		entries: make(map[graph.OperandIndex]*entry),
	}
}

// Backend returns the backend name this builder belongs to.
func (b *Builder) Backend() string { return b.backend }

// IsRegistered implements graph.TensorBuilder.
func (b *Builder) IsRegistered(idx graph.OperandIndex) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.entries[idx]
	return ok
}

// RegisterTensorInfo implements graph.TensorBuilder.
func (b *Builder) RegisterTensorInfo(idx graph.OperandIndex, info graph.OperandInfo, layout graph.Layout) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.entries[idx]; ok {
		return nil
	}
	b.entries[idx] = &entry{tensor: &SimpleTensor{operand: idx, info: info, layout: layout, portable: true}}
	log.Default.Debugf("tensor: registered operand %d on backend %s layout %s", idx, b.backend, layout)
	return nil
}

// TensorAt implements graph.TensorBuilder.
func (b *Builder) TensorAt(idx graph.OperandIndex) (graph.Tensor, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if e, ok := b.entries[idx]; ok {
		if e.migrant != nil {
			return e.migrant, true
		}
		return e.tensor, true
	}
	if t, ok := b.userTensors[idx]; ok {
		return t, true
	}
	return nil, false
}

// SetUserTensor installs a model-IO UserTensor into the control-flow
// backend's registry. UserTensors
// live outside the memory-planned entries map: this Builder's linear-scan
// planner neither plans nor allocates them.
func (b *Builder) SetUserTensor(idx graph.OperandIndex, t *UserTensor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.userTensors == nil {
		b.userTensors = make(map[graph.OperandIndex]*UserTensor)
	}
	b.userTensors[idx] = t
}

// SetMigrantTensor implements graph.TensorBuilder. It installs a
// foreign-backend tensor as a read-only migrant entry.
func (b *Builder) SetMigrantTensor(idx graph.OperandIndex, t graph.PortableTensor) error {
	if t == nil {
		return errs.New(errs.KindBackendResource, "SetMigrantTensor", errs.ErrTensorNotFound)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[idx] = &entry{migrant: t}
	log.Default.Debugf("tensor: installed migrant tensor for operand %d on backend %s", idx, b.backend)
	return nil
}

// NotifyFirstUse implements graph.TensorBuilder.
func (b *Builder) NotifyFirstUse(idx graph.OperandIndex, step int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[idx]
	if !ok {
		return
	}
	if !e.hasFirst || step < e.firstUse {
		e.hasFirst = true
		e.firstUse = step
	}
}

// NotifyLastUse implements graph.TensorBuilder.
func (b *Builder) NotifyLastUse(idx graph.OperandIndex, step int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[idx]
	if !ok {
		return
	}
	if !e.hasLast || step > e.lastUse {
		e.hasLast = true
		e.lastUse = step
	}
}

// planSlot is one entry in the linear-scan memory plan.
type planSlot struct {
	idx      graph.OperandIndex
	size     int64
	offset   int64
	hasFirst bool
	firstUse int
	hasLast  bool
	lastUse  int
	static   bool
}

// Prepare implements graph.TensorBuilder: it materializes a memory plan
// from each owned tensor's first/last-use window. Tensors with no
// recorded last-use (the Dataflow/Parallel FullLifetime workaround) never
// share their memory range with anything else. AllocClassStatic tensors
// always get a fresh range that is never released for reuse.
func (b *Builder) Prepare() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	slots := make([]*planSlot, 0, len(b.entries))
	for idx, e := range b.entries {
		if e.migrant != nil {
			continue // migrant tensors are allocated by their owning backend.
		}
		slots = append(slots, &planSlot{
			idx:      idx,
			size:     byteSize(e.tensor.info),
			hasFirst: e.hasFirst,
			firstUse: e.firstUse,
			hasLast:  e.hasLast,
			lastUse:  e.lastUse,
			static:   e.tensor.info.Alloc == graph.AllocClassStatic,
		})
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].hasFirst != slots[j].hasFirst {
			return slots[i].hasFirst // defined-first-use slots plan before undated ones
		}
		return slots[i].firstUse < slots[j].firstUse
	})

	type freeBlock struct {
		offset, size int64
		freedAt    int
		hasFreedAt bool
	}
	var free []freeBlock
	var top int64

	for _, s := range slots {
		placed := false
		if s.hasFirst && !s.static {
			for i, fb := range free {
				if fb.size >= s.size && (!fb.hasFreedAt || fb.freedAt < s.firstUse) {
					s.offset = fb.offset
					free = append(free[:i], free[i+1:]...)
					placed = true
					break
				}
			}
		}
		if !placed {
			s.offset = top
			top += s.size
		}
		if s.hasLast && !s.static {
			free = append(free, freeBlock{offset: s.offset, size: s.size, freedAt: s.lastUse, hasFreedAt: true})
		}
	}

	for _, s := range slots {
		b.entries[s.idx].tensor.offset = s.offset
	}
	b.totalBytes = top
	b.prepared = true
	return nil
}

// Allocate implements graph.TensorBuilder.
func (b *Builder) Allocate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.prepared {
		return errs.New(errs.KindGraphInvariant, "Allocate", errs.ErrAllocateBeforePrepare)
	}
	for _, e := range b.entries {
		if e.migrant != nil {
			continue
		}
		e.tensor.allocated = true
	}
	return nil
}

// TotalBytes returns the planned backing-buffer size, valid after Prepare.
func (b *Builder) TotalBytes() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totalBytes
}

// PostFunctionPrepare implements graph.TensorBuilder.
func (b *Builder) PostFunctionPrepare() error {
	b.mu.Lock()
	b.postPrepareCalls++
	b.mu.Unlock()
	return nil
}

// PostFunctionPrepareCalls reports how many times PostFunctionPrepare ran;
// tests use it to assert that the prepare-functions phase drove every
// tensor builder at least once.
func (b *Builder) PostFunctionPrepareCalls() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.postPrepareCalls
}

var _ graph.TensorBuilder = (*Builder)(nil)
