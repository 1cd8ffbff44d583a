// Package kernel implements FunctionSequence (a composable, wrappable list
// of runnable functions, one per op-sequence) and the sync-barrier
// decorator used when the factory runs in profiling mode.
package kernel

import "github.com/nnrtlab/execfactory/graph"

// Sequence is the default graph.FunctionSequence implementation: an
// ordered slice of Functions that supports in-place decoration via Wrap
// rather than a fixed-shape list.
type Sequence struct {
	fns []graph.Function
}

// NewSequence builds an empty Sequence.
func NewSequence() *Sequence { return &Sequence{} }

// Len implements graph.FunctionSequence.
func (s *Sequence) Len() int { return len(s.fns) }

// At implements graph.FunctionSequence.
func (s *Sequence) At(i int) graph.Function { return s.fns[i] }

// Append implements graph.FunctionSequence.
func (s *Sequence) Append(f graph.Function) { s.fns = append(s.fns, f) }

// Iterate implements graph.FunctionSequence: it runs fn over every
// function in order, stopping at the first error.
func (s *Sequence) Iterate(fn func(graph.Function) error) error {
	for _, f := range s.fns {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// Wrap implements graph.FunctionSequence: it replaces every element with
// wrap(element), in place.
func (s *Sequence) Wrap(wrap func(graph.Function) graph.Function) {
	for i, f := range s.fns {
		s.fns[i] = wrap(f)
	}
}

var _ graph.FunctionSequence = (*Sequence)(nil)
