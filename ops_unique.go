package chlo

import (
	"github.com/gomlx/chlo/types"
	"github.com/gomlx/chlo/types/optypes"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/pkg/errors"
)

// BroadcastCompare compares lhs and rhs element-wise, after broadcasting them to a common shape, and
// returns a boolean value.
//
// For boolean data types (dtypes.Bool) use the types.CompareUnsigned type, and types.DefaultComparisonType
// returns the usual comparison type for a dtype.
//
// broadcastDimensions is optional, and if given, it maps the axes of the lower-rank operand to the axes of
// the result, see shapeinference.InferBroadcastShape.
func BroadcastCompare(lhs, rhs *Value, direction types.ComparisonDirection, compareType types.ComparisonType,
	broadcastDimensions ...int) (*Value, error) {
	op := optypes.BroadcastCompare
	fn, err := functionOf(op, lhs, rhs)
	if err != nil {
		return nil, err
	}
	attributes := map[string]any{
		"comparison_direction": direction,
		"compare_type":         compareType,
	}
	if len(broadcastDimensions) > 0 {
		attributes["broadcast_dimensions"] = types.BroadcastDimensions(broadcastDimensions)
	}
	stmt, err := fn.addStatement(op, attributes, []*Value{lhs, rhs})
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// BroadcastSelect takes element-wise values from onTrue or onFalse depending on the value of the pred
// (must be boolean).
//
// The three operands are broadcast together to a common shape, and onTrue and onFalse must have the same dtype.
func BroadcastSelect(pred, onTrue, onFalse *Value) (*Value, error) {
	op := optypes.BroadcastSelect
	fn, err := functionOf(op, pred, onTrue, onFalse)
	if err != nil {
		return nil, err
	}
	stmt, err := fn.addStatement(op, nil, []*Value{pred, onTrue, onFalse})
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// ConstantLike returns a value with the shape of the operand filled with the given scalar, which must be of
// the same dtype as the operand.
//
// The shape of the operand may be dynamic: the value is splatted at runtime.
func ConstantLike(operand *Value, value any) (*Value, error) {
	op := optypes.ConstantLike
	fn, err := functionOf(op, operand)
	if err != nil {
		return nil, err
	}
	t, err := newTensorLiteralFromValue(value)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s value", op)
	}
	stmt, err := fn.addStatement(op, map[string]any{"value": t}, []*Value{operand})
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// TopK returns the k largest values of the last axis of the operand, and their indices (Int32).
func TopK(operand *Value, k int) (values, indices *Value, err error) {
	op := optypes.TopK
	fn, err := functionOf(op, operand)
	if err != nil {
		return nil, nil, err
	}
	stmt, err := fn.addStatement(op, map[string]any{"k": int64(k)}, []*Value{operand})
	if err != nil {
		return nil, nil, err
	}
	return stmt.Outputs[0], stmt.Outputs[1], nil
}

// DynamicReshape reshapes the operand to the shape given by the values of outputShape, a rank-1 integer tensor.
//
// If outputShape is a constant (or the shape of a static value), its values are used to refine the shape of the
// result: it may contain one -1 wildcard entry, which is inferred from the number of elements of the operand
// if it is static.
func DynamicReshape(operand, outputShape *Value) (*Value, error) {
	op := optypes.DynamicReshape
	fn, err := functionOf(op, operand, outputShape)
	if err != nil {
		return nil, err
	}
	stmt, err := fn.addStatement(op, nil, []*Value{operand, outputShape})
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// Reshape the static operand to the given dimensions, which can contain one -1 wildcard entry: it is inferred
// from the number of elements of the operand.
// The total size of the new shape must match the original shape.
//
// This has no effect on the data, no transposition is performed.
func Reshape(operand *Value, dimensions ...int) (*Value, error) {
	op := optypes.Reshape
	fn, err := functionOf(op, operand)
	if err != nil {
		return nil, err
	}
	if dimensions == nil {
		dimensions = []int{}
	}
	// The wildcard is resolved by the shape inference, the hint only carries the target dimensions.
	target := shapes.Shape{DType: operand.shape.DType, Dimensions: dimensions}
	stmt, err := fn.addStatement(op, nil, []*Value{operand}, target)
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// ShapeOf returns the shape of the operand as a rank-1 Int64 tensor, computed at runtime.
func ShapeOf(operand *Value) (*Value, error) {
	op := optypes.ShapeOf
	fn, err := functionOf(op, operand)
	if err != nil {
		return nil, err
	}
	stmt, err := fn.addStatement(op, nil, []*Value{operand})
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// ShapeBroadcast returns the broadcast of the given shape values (rank-1 Int64 tensors, see ShapeOf), computed
// at runtime.
func ShapeBroadcast(shapeValues ...*Value) (*Value, error) {
	op := optypes.ShapeBroadcast
	fn, err := functionOf(op, shapeValues...)
	if err != nil {
		return nil, err
	}
	stmt, err := fn.addStatement(op, nil, shapeValues)
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// MinimumBroadcastShapes returns, for each of the given shape values (rank-1 Int64 tensors, see ShapeOf), the
// shape of minimum rank that broadcasts the same way, computed at runtime.
//
// See shapeinference.MinimizeBroadcastShapes for the compile time version and the guarantees given.
func MinimumBroadcastShapes(shapeValues ...*Value) ([]*Value, error) {
	op := optypes.MinimumBroadcastShapes
	fn, err := functionOf(op, shapeValues...)
	if err != nil {
		return nil, err
	}
	stmt, err := fn.addStatement(op, nil, shapeValues)
	if err != nil {
		return nil, err
	}
	return stmt.Outputs, nil
}
