// Package optypes defines OpType and lists the supported operations, along with their metadata
// (arity, element type constraints, result element type rule and capabilities).
package optypes

import (
	"fmt"

	"github.com/gomlx/chlo/internal/utils"
	"github.com/gomlx/gopjrt/dtypes"
)

// OpType is an enum of all operations that can be added to a chlo program.
type OpType int

//go:generate go tool enumer -type=OpType -output=gen_optype_enumer.go optypes.go

const (
	Invalid OpType = iota
	FuncReturn
	Constant
	ConstantLike

	// Broadcasting operations (binary, except BroadcastSelect):

	BroadcastAdd
	BroadcastAnd
	BroadcastAtan2
	BroadcastCompare
	BroadcastComplex
	BroadcastDivide
	BroadcastMaximum
	BroadcastMinimum
	BroadcastMultiply
	BroadcastNextAfter
	BroadcastOr
	BroadcastPolygamma
	BroadcastPower
	BroadcastRemainder
	BroadcastSelect
	BroadcastShiftLeft
	BroadcastShiftRightArithmetic
	BroadcastShiftRightLogical
	BroadcastSubtract
	BroadcastXor
	BroadcastZeta

	// Unary element-wise operations:

	Acos
	Acosh
	Asin
	Asinh
	Atan
	Atanh
	BesselI1e
	Conj
	Cosh
	Digamma
	Erf
	ErfInv
	Erfc
	IsInf
	IsNegInf
	IsPosInf
	Lgamma
	Sinh
	Square
	Tan

	// Binary element-wise operations that don't broadcast:

	NextAfter
	Polygamma
	Zeta

	// Shape manipulation:

	TopK
	DynamicReshape
	Reshape
	MinimumBroadcastShapes
	ShapeOf
	ShapeBroadcast

	// Structural:

	RankSpecializationCluster
	RankSpecializationClusterYield

	// Last should always be kept the last, it is used as a counter/marker for the number of OpType values.
	Last
)

var (
	// stableHLOMappings maps OpType to the corresponding textual name, when the default
	// "chlo." + snake case doesn't work.
	stableHLOMappings = map[OpType]string{
		FuncReturn:     "func.return",
		Reshape:        "stablehlo.reshape",
		ShapeOf:        "shape.shape_of",
		ShapeBroadcast: "shape.broadcast",
	}

	// fromStableHLO is the reverse mapping of ToStableHLO.
	fromStableHLO map[string]OpType
)

func init() {
	fromStableHLO = make(map[string]OpType, int(Last))
	for op := Invalid + 1; op < Last; op++ {
		fromStableHLO[op.ToStableHLO()] = op
	}
}

// ToStableHLO returns the textual name of the operation, e.g.: "chlo.broadcast_add".
func (op OpType) ToStableHLO() string {
	name, ok := stableHLOMappings[op]
	if !ok {
		name = fmt.Sprintf("chlo.%s", utils.ToSnakeCase(op.String()))
	}
	return name
}

// FromStableHLO returns the OpType for the given textual name, or Invalid if it is not known.
func FromStableHLO(name string) OpType {
	op, found := fromStableHLO[name]
	if !found {
		return Invalid
	}
	return op
}

// Capability flags of an operation, used by shape inference and clustering instead of
// a per-operation type hierarchy.
type Capability uint32

const (
	// Elementwise operations compute each output element from the corresponding input elements only.
	Elementwise Capability = 1 << iota

	// Broadcasting operations accept operands of different (compatible) shapes.
	Broadcasting

	// Commutative binary operations.
	Commutative

	// Pure operations have no side effects: they can be reordered or grouped freely.
	Pure

	// RankSpecializable operations can be moved into a rank specialization cluster.
	// It implies Pure, Elementwise and either Broadcasting or having a same-shape operand structure.
	RankSpecializable

	// Terminator operations end a function or a cluster body.
	Terminator
)

// OperandTypes is the element type constraint of the operands of an operation.
type OperandTypes int

const (
	TypeAny OperandTypes = iota
	TypeNumber
	TypeInteger
	TypeBoolOrInteger
	TypeFloat
	TypeFloatOrComplex
	TypeComplex
)

// Accepts returns whether the dtype satisfies the constraint.
func (t OperandTypes) Accepts(dtype dtypes.DType) bool {
	switch t {
	case TypeAny:
		return dtype != dtypes.InvalidDType
	case TypeNumber:
		return dtype != dtypes.InvalidDType && dtype != dtypes.Bool
	case TypeInteger:
		return dtype.IsInt()
	case TypeBoolOrInteger:
		return dtype == dtypes.Bool || dtype.IsInt()
	case TypeFloat:
		return dtype.IsFloat()
	case TypeFloatOrComplex:
		return dtype.IsFloat() || dtype.IsComplex()
	case TypeComplex:
		return dtype.IsComplex()
	}
	return false
}

// String implements fmt.Stringer.
func (t OperandTypes) String() string {
	switch t {
	case TypeAny:
		return "any"
	case TypeNumber:
		return "number"
	case TypeInteger:
		return "integer"
	case TypeBoolOrInteger:
		return "bool or integer"
	case TypeFloat:
		return "float"
	case TypeFloatOrComplex:
		return "float or complex"
	case TypeComplex:
		return "complex"
	}
	return fmt.Sprintf("OperandTypes(%d)", int(t))
}

// ResultRule defines the element type of the results of an operation given the element type of its operands.
type ResultRule int

const (
	// ResultSame keeps the operand element type.
	ResultSame ResultRule = iota

	// ResultBool always yields dtypes.Bool.
	ResultBool

	// ResultComplex yields the complex type with the real operands' precision.
	ResultComplex

	// ResultCustom is computed by the operation specific shape inference.
	ResultCustom
)

// Variadic is used in Info.NumOperands or Info.NumResults for operations with a variable number
// of operands or results.
const Variadic = -1

// Info holds the metadata of an operation type.
type Info struct {
	NumOperands, NumResults int
	Operands                OperandTypes
	Result                  ResultRule
	Capabilities            Capability
}

const (
	elementwiseCaps  = Elementwise | Pure | RankSpecializable
	broadcastingCaps = elementwiseCaps | Broadcasting
)

var infos = [Last]Info{
	FuncReturn:   {NumOperands: Variadic, NumResults: 0, Result: ResultCustom, Capabilities: Terminator},
	Constant:     {NumOperands: 0, NumResults: 1, Result: ResultCustom, Capabilities: Pure},
	ConstantLike: {NumOperands: 1, NumResults: 1, Result: ResultCustom, Capabilities: Pure | Elementwise},

	BroadcastAdd:                  {2, 1, TypeNumber, ResultSame, broadcastingCaps | Commutative},
	BroadcastAnd:                  {2, 1, TypeBoolOrInteger, ResultSame, broadcastingCaps | Commutative},
	BroadcastAtan2:                {2, 1, TypeFloatOrComplex, ResultSame, broadcastingCaps},
	BroadcastCompare:              {2, 1, TypeAny, ResultBool, broadcastingCaps},
	BroadcastComplex:              {2, 1, TypeFloat, ResultComplex, broadcastingCaps},
	BroadcastDivide:               {2, 1, TypeNumber, ResultSame, broadcastingCaps},
	BroadcastMaximum:              {2, 1, TypeNumber, ResultSame, broadcastingCaps | Commutative},
	BroadcastMinimum:              {2, 1, TypeNumber, ResultSame, broadcastingCaps | Commutative},
	BroadcastMultiply:             {2, 1, TypeNumber, ResultSame, broadcastingCaps | Commutative},
	BroadcastNextAfter:            {2, 1, TypeFloat, ResultSame, broadcastingCaps},
	BroadcastOr:                   {2, 1, TypeBoolOrInteger, ResultSame, broadcastingCaps | Commutative},
	BroadcastPolygamma:            {2, 1, TypeFloat, ResultSame, broadcastingCaps},
	BroadcastPower:                {2, 1, TypeNumber, ResultSame, broadcastingCaps},
	BroadcastRemainder:            {2, 1, TypeNumber, ResultSame, broadcastingCaps},
	BroadcastSelect:               {3, 1, TypeAny, ResultCustom, broadcastingCaps},
	BroadcastShiftLeft:            {2, 1, TypeInteger, ResultSame, broadcastingCaps},
	BroadcastShiftRightArithmetic: {2, 1, TypeInteger, ResultSame, broadcastingCaps},
	BroadcastShiftRightLogical:    {2, 1, TypeInteger, ResultSame, broadcastingCaps},
	BroadcastSubtract:             {2, 1, TypeNumber, ResultSame, broadcastingCaps},
	BroadcastXor:                  {2, 1, TypeBoolOrInteger, ResultSame, broadcastingCaps | Commutative},
	BroadcastZeta:                 {2, 1, TypeFloat, ResultSame, broadcastingCaps},

	Acos:      {1, 1, TypeFloatOrComplex, ResultSame, elementwiseCaps},
	Acosh:     {1, 1, TypeFloatOrComplex, ResultSame, elementwiseCaps},
	Asin:      {1, 1, TypeFloatOrComplex, ResultSame, elementwiseCaps},
	Asinh:     {1, 1, TypeFloatOrComplex, ResultSame, elementwiseCaps},
	Atan:      {1, 1, TypeFloatOrComplex, ResultSame, elementwiseCaps},
	Atanh:     {1, 1, TypeFloatOrComplex, ResultSame, elementwiseCaps},
	BesselI1e: {1, 1, TypeFloat, ResultSame, elementwiseCaps},
	Conj:      {1, 1, TypeComplex, ResultSame, elementwiseCaps},
	Cosh:      {1, 1, TypeFloatOrComplex, ResultSame, elementwiseCaps},
	Digamma:   {1, 1, TypeFloat, ResultSame, elementwiseCaps},
	Erf:       {1, 1, TypeFloat, ResultSame, elementwiseCaps},
	ErfInv:    {1, 1, TypeFloat, ResultSame, elementwiseCaps},
	Erfc:      {1, 1, TypeFloat, ResultSame, elementwiseCaps},
	IsInf:     {1, 1, TypeFloat, ResultBool, elementwiseCaps},
	IsNegInf:  {1, 1, TypeFloat, ResultBool, elementwiseCaps},
	IsPosInf:  {1, 1, TypeFloat, ResultBool, elementwiseCaps},
	Lgamma:    {1, 1, TypeFloat, ResultSame, elementwiseCaps},
	Sinh:      {1, 1, TypeFloatOrComplex, ResultSame, elementwiseCaps},
	Square:    {1, 1, TypeNumber, ResultSame, elementwiseCaps},
	Tan:       {1, 1, TypeFloatOrComplex, ResultSame, elementwiseCaps},

	NextAfter: {2, 1, TypeFloat, ResultSame, elementwiseCaps},
	Polygamma: {2, 1, TypeFloat, ResultSame, elementwiseCaps},
	Zeta:      {2, 1, TypeFloat, ResultSame, elementwiseCaps},

	TopK:                   {NumOperands: 1, NumResults: 2, Result: ResultCustom, Capabilities: Pure},
	DynamicReshape:         {NumOperands: 2, NumResults: 1, Result: ResultCustom, Capabilities: Pure},
	Reshape:                {NumOperands: 1, NumResults: 1, Result: ResultSame, Capabilities: Pure},
	MinimumBroadcastShapes: {NumOperands: Variadic, NumResults: Variadic, Operands: TypeInteger, Result: ResultCustom, Capabilities: Pure},
	ShapeOf:                {NumOperands: 1, NumResults: 1, Result: ResultCustom, Capabilities: Pure},
	ShapeBroadcast:         {NumOperands: Variadic, NumResults: 1, Operands: TypeInteger, Result: ResultSame, Capabilities: Pure},

	RankSpecializationCluster:      {NumOperands: Variadic, NumResults: Variadic, Result: ResultCustom, Capabilities: Pure},
	RankSpecializationClusterYield: {NumOperands: Variadic, NumResults: 0, Result: ResultCustom, Capabilities: Terminator},
}

// Info returns the metadata of the operation. It returns the zero Info for Invalid or unknown operations.
func (op OpType) Info() Info {
	if op <= Invalid || op >= Last {
		return Info{}
	}
	return infos[op]
}

// Has returns whether the operation has all the given capabilities.
func (op OpType) Has(c Capability) bool {
	return op.Info().Capabilities&c == c
}
