/***** File generated by ./internal/cmd/ops_generator, based on the optypes metadata. Don't edit it directly. *****/

package chlo

import (
	"github.com/gomlx/chlo/types/optypes"
)

// BroadcastAdd returns the element-wise sum of lhs and rhs.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastAdd(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastAdd, lhs, rhs, broadcastDimensions)
}

// BroadcastAnd returns the element-wise logical (for booleans) or bitwise (for integers) "and" of lhs and rhs.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastAnd(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastAnd, lhs, rhs, broadcastDimensions)
}

// BroadcastAtan2 returns the element-wise arc tangent of lhs/rhs, using the signs of both to determine the quadrant.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastAtan2(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastAtan2, lhs, rhs, broadcastDimensions)
}

// BroadcastComplex returns the complex value with lhs as the real part and rhs as the imaginary part.
// They must be Float32 or Float64, and the result is Complex64 or Complex128 respectively.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastComplex(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastComplex, lhs, rhs, broadcastDimensions)
}

// BroadcastDivide returns the element-wise division of lhs by rhs.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastDivide(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastDivide, lhs, rhs, broadcastDimensions)
}

// BroadcastMaximum returns the element-wise maximum of lhs and rhs.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastMaximum(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastMaximum, lhs, rhs, broadcastDimensions)
}

// BroadcastMinimum returns the element-wise minimum of lhs and rhs.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastMinimum(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastMinimum, lhs, rhs, broadcastDimensions)
}

// BroadcastMultiply returns the element-wise product of lhs and rhs.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastMultiply(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastMultiply, lhs, rhs, broadcastDimensions)
}

// BroadcastNextAfter returns the next representable value of lhs in the direction of rhs, element-wise.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastNextAfter(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastNextAfter, lhs, rhs, broadcastDimensions)
}

// BroadcastOr returns the element-wise logical (for booleans) or bitwise (for integers) "or" of lhs and rhs.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastOr(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastOr, lhs, rhs, broadcastDimensions)
}

// BroadcastPolygamma returns the element-wise polygamma function of order lhs, evaluated at rhs.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastPolygamma(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastPolygamma, lhs, rhs, broadcastDimensions)
}

// BroadcastPower returns lhs raised to the power of rhs, element-wise.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastPower(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastPower, lhs, rhs, broadcastDimensions)
}

// BroadcastRemainder returns the element-wise remainder of the division of lhs by rhs.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastRemainder(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastRemainder, lhs, rhs, broadcastDimensions)
}

// BroadcastShiftLeft returns lhs shifted left by rhs bits, element-wise.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastShiftLeft(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastShiftLeft, lhs, rhs, broadcastDimensions)
}

// BroadcastShiftRightArithmetic returns lhs shifted right by rhs bits, element-wise, preserving the sign.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastShiftRightArithmetic(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastShiftRightArithmetic, lhs, rhs, broadcastDimensions)
}

// BroadcastShiftRightLogical returns lhs shifted right by rhs bits, element-wise, filling with zeros.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastShiftRightLogical(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastShiftRightLogical, lhs, rhs, broadcastDimensions)
}

// BroadcastSubtract returns the element-wise difference of lhs and rhs.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastSubtract(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastSubtract, lhs, rhs, broadcastDimensions)
}

// BroadcastXor returns the element-wise logical (for booleans) or bitwise (for integers) "xor" of lhs and rhs.
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastXor(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastXor, lhs, rhs, broadcastDimensions)
}

// BroadcastZeta returns the element-wise Hurwitz zeta function of lhs (the exponent) and rhs (the offset).
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func BroadcastZeta(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.BroadcastZeta, lhs, rhs, broadcastDimensions)
}

// Acos returns the element-wise arc cosine of the operand.
func Acos(operand *Value) (*Value, error) {
	return unaryOp(optypes.Acos, operand)
}

// Acosh returns the element-wise inverse hyperbolic cosine of the operand.
func Acosh(operand *Value) (*Value, error) {
	return unaryOp(optypes.Acosh, operand)
}

// Asin returns the element-wise arc sine of the operand.
func Asin(operand *Value) (*Value, error) {
	return unaryOp(optypes.Asin, operand)
}

// Asinh returns the element-wise inverse hyperbolic sine of the operand.
func Asinh(operand *Value) (*Value, error) {
	return unaryOp(optypes.Asinh, operand)
}

// Atan returns the element-wise arc tangent of the operand.
func Atan(operand *Value) (*Value, error) {
	return unaryOp(optypes.Atan, operand)
}

// Atanh returns the element-wise inverse hyperbolic tangent of the operand.
func Atanh(operand *Value) (*Value, error) {
	return unaryOp(optypes.Atanh, operand)
}

// BesselI1e returns the element-wise exponentially scaled modified Bessel function of the first kind of order 1.
func BesselI1e(operand *Value) (*Value, error) {
	return unaryOp(optypes.BesselI1e, operand)
}

// Conj returns the element-wise complex conjugate of the operand.
func Conj(operand *Value) (*Value, error) {
	return unaryOp(optypes.Conj, operand)
}

// Cosh returns the element-wise hyperbolic cosine of the operand.
func Cosh(operand *Value) (*Value, error) {
	return unaryOp(optypes.Cosh, operand)
}

// Digamma returns the element-wise logarithmic derivative of the gamma function of the operand.
func Digamma(operand *Value) (*Value, error) {
	return unaryOp(optypes.Digamma, operand)
}

// Erf returns the element-wise error function of the operand.
func Erf(operand *Value) (*Value, error) {
	return unaryOp(optypes.Erf, operand)
}

// ErfInv returns the element-wise inverse error function of the operand.
func ErfInv(operand *Value) (*Value, error) {
	return unaryOp(optypes.ErfInv, operand)
}

// Erfc returns the element-wise complementary error function of the operand.
func Erfc(operand *Value) (*Value, error) {
	return unaryOp(optypes.Erfc, operand)
}

// IsInf returns whether each element of the operand is infinite (positive or negative).
func IsInf(operand *Value) (*Value, error) {
	return unaryOp(optypes.IsInf, operand)
}

// IsNegInf returns whether each element of the operand is the negative infinity.
func IsNegInf(operand *Value) (*Value, error) {
	return unaryOp(optypes.IsNegInf, operand)
}

// IsPosInf returns whether each element of the operand is the positive infinity.
func IsPosInf(operand *Value) (*Value, error) {
	return unaryOp(optypes.IsPosInf, operand)
}

// Lgamma returns the element-wise logarithm of the absolute value of the gamma function of the operand.
func Lgamma(operand *Value) (*Value, error) {
	return unaryOp(optypes.Lgamma, operand)
}

// Sinh returns the element-wise hyperbolic sine of the operand.
func Sinh(operand *Value) (*Value, error) {
	return unaryOp(optypes.Sinh, operand)
}

// Square returns the element-wise square of the operand.
func Square(operand *Value) (*Value, error) {
	return unaryOp(optypes.Square, operand)
}

// Tan returns the element-wise tangent of the operand.
func Tan(operand *Value) (*Value, error) {
	return unaryOp(optypes.Tan, operand)
}

// NextAfter returns the next representable value of lhs in the direction of rhs, element-wise.
//
// The operands must have compatible shapes, they are not broadcast.
func NextAfter(lhs, rhs *Value) (*Value, error) {
	return binaryOp(optypes.NextAfter, lhs, rhs)
}

// Polygamma returns the element-wise polygamma function of order lhs, evaluated at rhs.
//
// The operands must have compatible shapes, they are not broadcast.
func Polygamma(lhs, rhs *Value) (*Value, error) {
	return binaryOp(optypes.Polygamma, lhs, rhs)
}

// Zeta returns the element-wise Hurwitz zeta function of lhs (the exponent) and rhs (the offset).
//
// The operands must have compatible shapes, they are not broadcast.
func Zeta(lhs, rhs *Value) (*Value, error) {
	return binaryOp(optypes.Zeta, lhs, rhs)
}
