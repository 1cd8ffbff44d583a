package graph

// nhwcToNCHW and its inverse are the only permutations the default tensor
// registration path needs: a 4-D shape's channel dimension moves
// between the last and second positions. Shapes of any other rank, or an
// identity from==to, pass through unchanged.
var nhwcToNCHW = [4]int{0, 3, 1, 2}
var nchwToNHWC = [4]int{0, 2, 3, 1}

// PermuteShape permutes shape from one layout to another. Unknown layout
// pairs or non-4D shapes are returned unchanged — backends that need richer
// permutation supply their own TensorRegister.
func PermuteShape(shape []int64, from, to Layout) []int64 {
	if from == to || len(shape) != 4 {
		return append([]int64(nil), shape...)
	}
	var perm [4]int
	switch {
	case from == LayoutNHWC && to == LayoutNCHW:
		perm = nhwcToNCHW
	case from == LayoutNCHW && to == LayoutNHWC:
		perm = nchwToNHWC
	default:
		return append([]int64(nil), shape...)
	}
	out := make([]int64, 4)
	for i, p := range perm {
		out[i] = shape[p]
	}
	return out
}
