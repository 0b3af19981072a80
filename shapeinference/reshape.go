package shapeinference

import (
	"github.com/gomlx/chlo/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// WildcardDim is the entry of a reshape target that is inferred from the element count of the source.
const WildcardDim = -1

// product of the values, 1 if empty.
func product[T constraints.Integer](values []T) T {
	var p T = 1
	for _, v := range values {
		p *= v
	}
	return p
}

// ResolveReshape returns the target dimensions of a reshape of a tensor with sourceElementCount elements,
// with the wildcard entry (WildcardDim), if present, resolved.
//
// At most one entry can be the wildcard (ErrMultipleWildcards), all the others must be non-negative
// (ErrNegativeExtent). The wildcard is resolved to sourceElementCount divided by the product of the other entries,
// and the division must be exact (ErrNonDivisibleReshape). Without a wildcard, the product of the entries must be
// sourceElementCount (ErrElementCountMismatch).
//
// Example:
//
//	ResolveReshape(24, []int{2, -1, 3}) // -> [2 4 3]
func ResolveReshape(sourceElementCount int, target []int) ([]int, error) {
	if sourceElementCount < 0 {
		return nil, errors.Wrapf(ErrNegativeExtent, "source element count %d for reshape is negative", sourceElementCount)
	}
	wildcardAxis, err := checkReshapeTarget(target)
	if err != nil {
		return nil, err
	}
	resolved := make([]int, len(target))
	copy(resolved, target)
	if wildcardAxis < 0 {
		if count := product(target); count != sourceElementCount {
			return nil, errors.Wrapf(ErrElementCountMismatch,
				"reshape target %v has %d elements, but the source has %d", target, count, sourceElementCount)
		}
		return resolved, nil
	}

	resolved[wildcardAxis] = 1
	known := product(resolved)
	if known == 0 {
		return nil, errors.Wrapf(ErrNonDivisibleReshape,
			"cannot infer the wildcard of reshape target %v with a zero extent", target)
	}
	if sourceElementCount%known != 0 {
		return nil, errors.Wrapf(ErrNonDivisibleReshape,
			"source element count %d is not divisible by %d, the product of the known extents of reshape target %v",
			sourceElementCount, known, target)
	}
	resolved[wildcardAxis] = sourceElementCount / known
	return resolved, nil
}

// checkReshapeTarget returns the axis of the wildcard, or -1 if there is none.
func checkReshapeTarget(target []int) (wildcardAxis int, err error) {
	wildcardAxis = -1
	for axis, dim := range target {
		switch {
		case dim == WildcardDim:
			if wildcardAxis >= 0 {
				return -1, errors.Wrapf(ErrMultipleWildcards,
					"reshape target %v has wildcards (%d) in axes %d and %d", target, WildcardDim, wildcardAxis, axis)
			}
			wildcardAxis = axis
		case dim < 0:
			return -1, errors.Wrapf(ErrNegativeExtent, "reshape target %v has a negative extent %d in axis %d",
				target, dim, axis)
		}
	}
	return
}

// Reshape returns the shape of a static reshape of the operand to the target dimensions, which may contain
// one wildcard (see ResolveReshape). The operand must be static.
func Reshape(operand shapes.Shape, target []int) (output shapes.Shape, err error) {
	if !operand.Ok() {
		err = errors.Errorf("invalid operand shape %s for Reshape", operand)
		return
	}
	if !operand.IsStatic() {
		err = errors.Errorf("Reshape requires a static operand, got %s -- use DynamicReshape instead", operand)
		return
	}
	dims, err := ResolveReshape(operand.Size(), target)
	if err != nil {
		return shapes.Invalid(), errors.WithMessagef(err, "Reshape(%s, %v)", operand, target)
	}
	return shapes.Make(operand.DType, dims...), nil
}

// DynamicReshape returns the shape resulting from reshaping the operand to the runtime shape given by outputShape,
// which must be a rank-1 integer tensor. The rank of the result is the length of outputShape, and it is unranked
// if that length is not known.
//
// If the values of outputShape are known (e.g. it is a constant), they can be given in target: it may contain
// one wildcard, which is resolved against the operand element count if the operand is static. Otherwise, the
// wildcard becomes a dynamic extent. With target == nil all extents of the result are dynamic.
func DynamicReshape(operand, outputShape shapes.Shape, target []int) (output shapes.Shape, err error) {
	if !operand.Ok() {
		err = errors.Errorf("invalid operand shape %s for DynamicReshape", operand)
		return
	}
	if !outputShape.DType.IsInt() || outputShape.Rank() != 1 {
		err = errors.Errorf("DynamicReshape output shape must be a rank-1 integer tensor, got %s", outputShape)
		return
	}
	length := outputShape.Dimensions[0]
	if shapes.IsDynamicDim(length) {
		return shapes.MakeUnranked(operand.DType), nil
	}
	if target == nil {
		dims := make([]int, length)
		for axis := range dims {
			dims[axis] = shapes.DynamicDim
		}
		return shapes.Make(operand.DType, dims...), nil
	}
	if len(target) != length {
		err = errors.Errorf("DynamicReshape target %v doesn't match the length of the output shape %s", target, outputShape)
		return
	}
	if operand.IsStatic() {
		var dims []int
		dims, err = ResolveReshape(operand.Size(), target)
		if err != nil {
			return shapes.Invalid(), errors.WithMessagef(err, "DynamicReshape(%s, %v)", operand, target)
		}
		return shapes.Make(operand.DType, dims...), nil
	}
	wildcardAxis, err := checkReshapeTarget(target)
	if err != nil {
		return shapes.Invalid(), errors.WithMessagef(err, "DynamicReshape(%s, %v)", operand, target)
	}
	dims := make([]int, len(target))
	copy(dims, target)
	if wildcardAxis >= 0 {
		dims[wildcardAxis] = shapes.DynamicDim
	}
	return shapes.Make(operand.DType, dims...), nil
}

// ShapeOf returns the shape of the shape.shape_of operation: a rank-1 Int64 tensor with one element per
// axis of the operand. Its length is dynamic if the operand is unranked.
func ShapeOf(operand shapes.Shape) (output shapes.Shape, err error) {
	if !operand.Ok() {
		err = errors.Errorf("invalid operand shape %s for ShapeOf", operand)
		return
	}
	if operand.IsUnranked() {
		return shapes.Make(dtypes.Int64, shapes.DynamicDim), nil
	}
	return shapes.Make(dtypes.Int64, operand.Rank()), nil
}

// checkShapeOperands checks that all operands are rank-1 Int64 tensors (shape values).
func checkShapeOperands(opName string, operands []shapes.Shape) error {
	if len(operands) == 0 {
		return errors.Errorf("%s requires at least one shape operand", opName)
	}
	for ii, operand := range operands {
		if operand.DType != dtypes.Int64 || operand.Rank() != 1 {
			return errors.Errorf("%s operand #%d must be a rank-1 Int64 shape tensor, got %s", opName, ii, operand)
		}
	}
	return nil
}

// ShapeBroadcast returns the shape of the shape.broadcast operation: the broadcast of the shape values given.
// Its length is the maximum of the lengths of the operands, or dynamic if any of them is dynamic.
func ShapeBroadcast(operands ...shapes.Shape) (output shapes.Shape, err error) {
	if err = checkShapeOperands("ShapeBroadcast", operands); err != nil {
		return
	}
	length := 0
	for _, operand := range operands {
		dim := operand.Dimensions[0]
		if shapes.IsDynamicDim(dim) {
			return shapes.Make(dtypes.Int64, shapes.DynamicDim), nil
		}
		length = max(length, dim)
	}
	return shapes.Make(dtypes.Int64, length), nil
}

// MinimumBroadcastShapes returns the shapes of the chlo.minimum_broadcast_shapes operation: one rank-1 Int64
// tensor of dynamic length per shape value given, since the rank of the minimized shapes is only known at runtime.
func MinimumBroadcastShapes(operands ...shapes.Shape) (outputs []shapes.Shape, err error) {
	if err = checkShapeOperands("MinimumBroadcastShapes", operands); err != nil {
		return
	}
	outputs = make([]shapes.Shape, len(operands))
	for ii := range outputs {
		outputs[ii] = shapes.Make(dtypes.Int64, shapes.DynamicDim)
	}
	return
}
