package shapeinference

import (
	"github.com/gomlx/chlo/types"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/pkg/errors"
)

// InferBroadcastShape returns the shape resulting from broadcasting the operands together.
//
// If broadcastDimensions is nil, it uses implicit "NumPy style" broadcasting: shapes are aligned to the right,
// left-padded with 1s, and in each axis the extents must either match or one of them be 1. More than two
// operands are reduced pairwise from left to right.
//
// If broadcastDimensions is not nil, exactly two operands must be given, and broadcastDimensions[i] is the axis
// of the result that axis i of the lower-rank operand (the rhs if ranks are equal) maps to. It must have
// one entry per axis of the lower-rank operand, be strictly increasing and within the result rank.
// Axes of the result not mapped come from the higher-rank operand.
//
// Dynamic extents are combined according to the policy, see types.BroadcastPolicy.
// If any of the operands is unranked, the result is unranked.
//
// All operands must have the same dtype, which is the dtype of the result.
//
// Errors wrap ErrIncompatibleShapes or ErrInvalidBroadcastMapping.
func InferBroadcastShape(operands []shapes.Shape, broadcastDimensions []int, policy types.BroadcastPolicy) (output shapes.Shape, err error) {
	if len(operands) == 0 {
		err = errors.Wrapf(ErrIncompatibleShapes, "no operands given to broadcast")
		return
	}
	for ii, operand := range operands {
		if !operand.Ok() {
			err = errors.Wrapf(ErrIncompatibleShapes, "invalid shape %s for operand #%d of broadcast", operand, ii)
			return
		}
		if operand.DType != operands[0].DType {
			err = errors.Wrapf(ErrIncompatibleShapes, "data types (DType) for broadcast must match, got %s and %s",
				operands[0], operand)
			return
		}
	}
	if broadcastDimensions != nil {
		if len(operands) != 2 {
			err = errors.Wrapf(ErrInvalidBroadcastMapping,
				"explicit broadcast dimensions %v require exactly 2 operands, got %d", broadcastDimensions, len(operands))
			return
		}
		return broadcastWithMapping(operands[0], operands[1], broadcastDimensions, policy)
	}
	// Static extents are checked with the optimistic policy, which keeps them in the running result: a
	// conservative reduction would let [?] x [3] x [4] through.
	output, err = reduceBroadcast(operands, types.BroadcastOptimistic)
	if err != nil || policy == types.BroadcastOptimistic {
		return
	}
	return reduceBroadcast(operands, policy)
}

// reduceBroadcast reduces the implicit broadcast of the operands pairwise, from left to right.
func reduceBroadcast(operands []shapes.Shape, policy types.BroadcastPolicy) (output shapes.Shape, err error) {
	output = operands[0].Clone()
	for _, operand := range operands[1:] {
		output, err = broadcastPair(output, operand, policy)
		if err != nil {
			return shapes.Invalid(), err
		}
	}
	return
}

// broadcastPair applies implicit (right-aligned) broadcasting to two shapes.
func broadcastPair(lhs, rhs shapes.Shape, policy types.BroadcastPolicy) (output shapes.Shape, err error) {
	if lhs.IsUnranked() || rhs.IsUnranked() {
		return shapes.MakeUnranked(lhs.DType), nil
	}
	rank := max(lhs.Rank(), rhs.Rank())
	output = shapes.Shape{DType: lhs.DType, Dimensions: make([]int, rank)}
	lhsOffset, rhsOffset := rank-lhs.Rank(), rank-rhs.Rank()
	for axis := range rank {
		lhsDim, rhsDim := 1, 1
		if axis >= lhsOffset {
			lhsDim = lhs.Dimensions[axis-lhsOffset]
		}
		if axis >= rhsOffset {
			rhsDim = rhs.Dimensions[axis-rhsOffset]
		}
		dim, ok := CombineExtents(lhsDim, rhsDim, policy)
		if !ok {
			err = errors.Wrapf(ErrIncompatibleShapes,
				"dimension of axis #%d doesn't match and cannot be broadcast, got shapes %s and %s", axis, lhs, rhs)
			return shapes.Invalid(), err
		}
		output.Dimensions[axis] = dim
	}
	return output, nil
}

// broadcastWithMapping applies explicit broadcasting: the lower-rank operand (rhs if ranks are equal) has its axes
// mapped to the result by broadcastDimensions.
func broadcastWithMapping(lhs, rhs shapes.Shape, broadcastDimensions []int, policy types.BroadcastPolicy) (output shapes.Shape, err error) {
	for ii, axis := range broadcastDimensions {
		if axis < 0 {
			err = errors.Wrapf(ErrInvalidBroadcastMapping, "broadcast dimension #%d is negative (%d) in %v",
				ii, axis, broadcastDimensions)
			return
		}
		if ii > 0 && axis <= broadcastDimensions[ii-1] {
			err = errors.Wrapf(ErrInvalidBroadcastMapping, "broadcast dimensions %v must be strictly increasing",
				broadcastDimensions)
			return
		}
	}
	if lhs.IsUnranked() || rhs.IsUnranked() {
		return shapes.MakeUnranked(lhs.DType), nil
	}

	higher, lower := lhs, rhs
	if lhs.Rank() < rhs.Rank() {
		higher, lower = rhs, lhs
	}
	if len(broadcastDimensions) != lower.Rank() {
		err = errors.Wrapf(ErrInvalidBroadcastMapping,
			"broadcast dimensions %v must have one entry per axis of the lower-rank operand %s",
			broadcastDimensions, lower)
		return
	}
	output = higher.Clone()
	for lowerAxis, axis := range broadcastDimensions {
		if axis >= output.Rank() {
			err = errors.Wrapf(ErrInvalidBroadcastMapping,
				"broadcast dimension %d (for axis %d of %s) is out of bounds for result rank %d",
				axis, lowerAxis, lower, output.Rank())
			return shapes.Invalid(), err
		}
		dim, ok := CombineExtents(higher.Dimensions[axis], lower.Dimensions[lowerAxis], policy)
		if !ok {
			err = errors.Wrapf(ErrIncompatibleShapes,
				"axis %d of %s cannot be broadcast to axis %d of %s", lowerAxis, lower, axis, higher)
			return shapes.Invalid(), err
		}
		output.Dimensions[axis] = dim
	}
	return output, nil
}

// CombineExtents returns the broadcast of two extents, and whether they are compatible.
//
// Static extents are compatible if they are equal or one of them is 1.
// A shapes.DynamicDim is always compatible, and the result depends on the policy: see types.BroadcastPolicy.
func CombineExtents(a, b int, policy types.BroadcastPolicy) (int, bool) {
	if a == b {
		return a, true
	}
	aDynamic, bDynamic := shapes.IsDynamicDim(a), shapes.IsDynamicDim(b)
	if aDynamic || bDynamic {
		if policy == types.BroadcastConservative {
			return shapes.DynamicDim, true
		}
		static := a
		if aDynamic {
			static = b
		}
		if static == 1 {
			return shapes.DynamicDim, true
		}
		return static, true
	}
	if a == 1 {
		return b, true
	}
	if b == 1 {
		return a, true
	}
	return 0, false
}
