// Package shapeinference calculates the shape resulting from chlo operations and validates its inputs.
//
// It implements the broadcast rule engine (InferBroadcastShape), used by all the broadcasting operations
// (BroadcastOp, Compare, Select, Complex), the minimum broadcast shape reducer (MinimizeBroadcastShapes) and
// the resolution of reshape targets (ResolveReshape).
//
// The element type constraints of the operands and the rule for the element type of the result come from
// the optypes metadata table (see optypes.Info).
//
// All functions are pure: they don't log or keep any state.
package shapeinference

import (
	"github.com/gomlx/chlo/types"
	"github.com/gomlx/chlo/types/optypes"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// checkElementTypes checks that all operands are valid, have the same dtype, and that it is accepted by the
// operation.
func checkElementTypes(opType optypes.OpType, operands ...shapes.Shape) error {
	info := opType.Info()
	for ii, operand := range operands {
		if !operand.Ok() {
			return errors.Errorf("invalid shape %s for operand #%d of %s", operand, ii, opType)
		}
		if operand.DType != operands[0].DType {
			return errors.Errorf("data types (DType) for %s must match, got %s and %s", opType, operands[0], operand)
		}
	}
	if len(operands) > 0 && !info.Operands.Accepts(operands[0].DType) {
		return errors.Errorf("%s requires operands of %s data type, got %s", opType, info.Operands, operands[0])
	}
	return nil
}

// resultDType applies the result rule of the operation to the operands dtype.
func resultDType(opType optypes.OpType, dtype dtypes.DType) dtypes.DType {
	switch opType.Info().Result {
	case optypes.ResultBool:
		return dtypes.Bool
	case optypes.ResultComplex:
		if dtype == dtypes.Float64 {
			return dtypes.Complex128
		}
		return dtypes.Complex64
	default:
		return dtype
	}
}

// BroadcastOp returns the expected output shape for binary broadcasting operations (those with the
// optypes.Broadcasting capability and two operands): e.g. optypes.BroadcastAdd, optypes.BroadcastShiftLeft.
//
// broadcastDimensions is optional (nil) and defines an explicit mapping of the lower-rank operand, see
// InferBroadcastShape. The result dtype follows the operation's optypes.ResultRule.
//
// It returns an error if the data type (shape.DType) is invalid for the operation -- e.g.: non-matching
// dtypes, or BroadcastAnd not having booleans or integers as input.
func BroadcastOp(opType optypes.OpType, lhs, rhs shapes.Shape, broadcastDimensions []int, policy types.BroadcastPolicy) (output shapes.Shape, err error) {
	info := opType.Info()
	if !opType.Has(optypes.Broadcasting) || info.NumOperands != 2 {
		err = errors.Errorf("operation %s is not a binary broadcasting operation, cannot process it with BroadcastOp", opType)
		return
	}
	if err = checkElementTypes(opType, lhs, rhs); err != nil {
		return
	}
	if opType == optypes.BroadcastComplex && lhs.DType != dtypes.Float32 && lhs.DType != dtypes.Float64 {
		err = errors.Errorf("real and imaginary parts for %s must be Float32 or Float64, got %s", opType, lhs)
		return
	}
	output, err = InferBroadcastShape([]shapes.Shape{lhs, rhs}, broadcastDimensions, policy)
	if err != nil {
		return shapes.Invalid(), errors.WithMessagef(err, "%s(%s, %s)", opType, lhs, rhs)
	}
	output.DType = resultDType(opType, lhs.DType)
	return
}

// Compare returns the broadcast shape with dtype set to Bool, for the BroadcastCompare operation.
// It checks that the comparison type is valid for the operands dtype.
func Compare(lhs, rhs shapes.Shape, broadcastDimensions []int, direction types.ComparisonDirection,
	compareType types.ComparisonType, policy types.BroadcastPolicy) (output shapes.Shape, err error) {
	if err = checkElementTypes(optypes.BroadcastCompare, lhs, rhs); err != nil {
		return
	}
	dtype := lhs.DType
	switch compareType {
	case types.CompareFloat:
		if !dtype.IsFloat() && !dtype.IsComplex() {
			err = errors.Errorf("data type %s is not a float or complex, cannot process it with Compare(direction=%s, type=FLOAT)", dtype, direction)
			return
		}
	case types.CompareTotalOrder:
		if !dtype.IsFloat() {
			err = errors.Errorf("data type %s is not a float, cannot process it with Compare(direction=%s, type=TOTALORDER)", dtype, direction)
			return
		}
	case types.CompareSigned:
		if !dtype.IsInt() || dtype.IsUnsigned() {
			err = errors.Errorf("data type %s is not a signed integer, cannot process it with Compare(direction=%s, type=SIGNED)", dtype, direction)
			return
		}
	case types.CompareUnsigned:
		if !dtype.IsUnsigned() && dtype != dtypes.Bool {
			err = errors.Errorf("data type %s is not an unsigned integer, cannot process it with Compare(direction=%s, type=UNSIGNED)", dtype, direction)
			return
		}
	default:
		err = errors.Errorf("invalid comparison type %d for Compare", compareType)
		return
	}
	if !direction.IsAComparisonDirection() {
		err = errors.Errorf("invalid comparison direction %d for Compare", direction)
		return
	}
	return BroadcastOp(optypes.BroadcastCompare, lhs, rhs, broadcastDimensions, policy)
}

// Complex returns the shape resulting from the BroadcastComplex operation: real and imag must be both
// Float32 or Float64, and the result is the corresponding complex type.
func Complex(real, imag shapes.Shape, broadcastDimensions []int, policy types.BroadcastPolicy) (output shapes.Shape, err error) {
	return BroadcastOp(optypes.BroadcastComplex, real, imag, broadcastDimensions, policy)
}

// Select returns the shape resulting from the BroadcastSelect operation.
//
// The pred must be boolean, onTrue and onFalse must have the same dtype, and the three are broadcast
// together (implicitly, pairwise from left to right).
func Select(pred, onTrue, onFalse shapes.Shape, policy types.BroadcastPolicy) (output shapes.Shape, err error) {
	if !pred.Ok() || pred.DType != dtypes.Bool {
		err = errors.Errorf("pred for %s must be a boolean, got %s instead", optypes.BroadcastSelect, pred)
		return
	}
	if err = checkElementTypes(optypes.BroadcastSelect, onTrue, onFalse); err != nil {
		return
	}
	predAsValue := pred.Clone()
	predAsValue.DType = onTrue.DType
	output, err = InferBroadcastShape([]shapes.Shape{predAsValue, onTrue, onFalse}, nil, policy)
	if err != nil {
		return shapes.Invalid(), errors.WithMessagef(err, "%s(%s, %s, %s)",
			optypes.BroadcastSelect, pred, onTrue, onFalse)
	}
	return
}

// UnaryOp checks the validity of the data type for unary element-wise operations and returns either an error or
// the output shape, which has the same extents as the operand, and the dtype given by the operation's
// optypes.ResultRule (e.g. Bool for IsInf).
func UnaryOp(opType optypes.OpType, operand shapes.Shape) (output shapes.Shape, err error) {
	info := opType.Info()
	if !opType.Has(optypes.Elementwise) || info.NumOperands != 1 || opType == optypes.ConstantLike {
		err = errors.Errorf("operation %s is not a unary element-wise operation, cannot process it with UnaryOp", opType)
		return
	}
	if err = checkElementTypes(opType, operand); err != nil {
		return
	}
	output = operand.Clone()
	output.DType = resultDType(opType, operand.DType)
	return
}

// BinaryOp returns the output shape of binary element-wise operations that don't broadcast (NextAfter,
// Polygamma, Zeta): the operands must have compatible shapes -- same rank and equal extents, where a dynamic
// extent is compatible with any other.
//
// The result takes the static extent whenever one of the operands has it.
func BinaryOp(opType optypes.OpType, lhs, rhs shapes.Shape) (output shapes.Shape, err error) {
	info := opType.Info()
	if !opType.Has(optypes.Elementwise) || opType.Has(optypes.Broadcasting) || info.NumOperands != 2 {
		err = errors.Errorf("operation %s is not a non-broadcasting binary operation, cannot process it with BinaryOp", opType)
		return
	}
	if err = checkElementTypes(opType, lhs, rhs); err != nil {
		return
	}
	output, err = CompatibleShapes(lhs, rhs)
	if err != nil {
		return shapes.Invalid(), errors.WithMessagef(err, "%s requires compatible shapes", opType)
	}
	output.DType = resultDType(opType, lhs.DType)
	return
}

// CompatibleShapes returns the most refined shape of two compatible shapes, that is, with the same rank and
// matching extents, where a dynamic extent matches any. If either is unranked, the other is returned.
//
// Errors wrap ErrIncompatibleShapes.
func CompatibleShapes(a, b shapes.Shape) (output shapes.Shape, err error) {
	if a.IsUnranked() {
		return b.Clone(), nil
	}
	if b.IsUnranked() {
		return a.Clone(), nil
	}
	if a.Rank() != b.Rank() {
		err = errors.Wrapf(ErrIncompatibleShapes, "ranks of %s and %s don't match", a, b)
		return
	}
	output = a.Clone()
	for axis, dim := range b.Dimensions {
		switch {
		case shapes.IsDynamicDim(dim):
		case shapes.IsDynamicDim(output.Dimensions[axis]):
			output.Dimensions[axis] = dim
		case output.Dimensions[axis] != dim:
			err = errors.Wrapf(ErrIncompatibleShapes, "axis %d of %s and %s don't match", axis, a, b)
			return shapes.Invalid(), err
		}
	}
	return
}

// ConstantLike returns the shape of a constant_like operation: a scalar value of valueDType splatted to the
// shape of the operand. The dtype of the value must match the operand's.
func ConstantLike(operand shapes.Shape, valueDType dtypes.DType) (output shapes.Shape, err error) {
	if !operand.Ok() {
		err = errors.Errorf("invalid operand shape %s for %s", operand, optypes.ConstantLike)
		return
	}
	if operand.DType != valueDType {
		err = errors.Errorf("value for %s must have the operand data type %s, got %s",
			optypes.ConstantLike, operand.DType, valueDType)
		return
	}
	return operand.Clone(), nil
}

// TopK returns the shapes of the values and indices resulting from the TopK operation: the last axis of the
// operand is replaced by k. Indices are Int32.
func TopK(operand shapes.Shape, k int) (values, indices shapes.Shape, err error) {
	if !operand.Ok() {
		err = errors.Errorf("invalid operand shape %s for TopK", operand)
		return
	}
	if operand.IsUnranked() || operand.Rank() < 1 {
		err = errors.Errorf("TopK requires an operand of rank >= 1, got %s", operand)
		return
	}
	if k < 0 {
		err = errors.Errorf("TopK requires a non-negative k, got %d", k)
		return
	}
	lastDim := operand.Dim(-1)
	if !shapes.IsDynamicDim(lastDim) && k > lastDim {
		err = errors.Errorf("TopK k=%d is larger than the last axis of the operand %s", k, operand)
		return
	}
	values = operand.Clone()
	values.Dimensions[len(values.Dimensions)-1] = k
	indices = values.Clone()
	indices.DType = dtypes.Int32
	return
}
