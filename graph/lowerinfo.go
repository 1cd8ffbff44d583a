package graph

import "github.com/nnrtlab/execfactory/errs"

// OperandLowerInfo records the backends an operand may be produced on.
// Invariant: every operand that is an output of some operation has at
// least one def-factor; model inputs and outputs have exactly one.
type OperandLowerInfo struct {
	DefFactors []DefFactor
}

// OnlyDefFactor returns the operand's single def-factor. It fails fast
// rather than silently picking one when ownership is ambiguous.
func (li *OperandLowerInfo) OnlyDefFactor() (DefFactor, error) {
	switch len(li.DefFactors) {
	case 0:
		return DefFactor{}, errs.New(errs.KindGraphInvariant, "OnlyDefFactor", errs.ErrMissingDefFactor)
	case 1:
		return li.DefFactors[0], nil
	default:
		return DefFactor{}, errs.New(errs.KindGraphInvariant, "OnlyDefFactor", errs.ErrAmbiguousDefFactor)
	}
}

// HasBackend reports whether the operand has a def-factor on the given
// backend.
func (li *OperandLowerInfo) HasBackend(backend string) bool {
	for _, f := range li.DefFactors {
		if f.Backend == backend {
			return true
		}
	}
	return false
}

// OpSequenceLowerInfo records an op-sequence's assigned backend and the
// frontend layout operations within it were lowered under.
type OpSequenceLowerInfo struct {
	Backend string
	Layout  Layout
}
