package chlo

import (
	"github.com/gomlx/chlo/shapeinference"
	"github.com/gomlx/chlo/types"
	"github.com/gomlx/chlo/types/optypes"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/pkg/errors"
)

// appendStatement appends a new statement with outputs of the given shapes to the function, without any checking.
func (fn *Function) appendStatement(opType optypes.OpType, attributes map[string]any, inputs []*Value, outputShapes []shapes.Shape) *Statement {
	stmt := &Statement{
		Builder:    fn.Builder,
		Function:   fn,
		OpType:     opType,
		Inputs:     inputs,
		Attributes: attributes,
	}
	if len(outputShapes) > 0 {
		stmt.Outputs = make([]*Value, len(outputShapes))
		for i, shape := range outputShapes {
			stmt.Outputs[i] = fn.newValue(shape)
			stmt.Outputs[i].producer = stmt
		}
	}
	fn.Statements = append(fn.Statements, stmt)
	return stmt
}

// addStatement infers the shape of the outputs of the operation and, if successful, appends the new statement
// to the function. Nothing is changed if it fails.
func (fn *Function) addStatement(opType optypes.OpType, attributes map[string]any, inputs []*Value, hints ...shapes.Shape) (*Statement, error) {
	if fn.Returned {
		return nil, errors.Errorf("cannot add operation %s after returning, in function %q",
			opType, fn.Name)
	}
	for i, input := range inputs {
		if input == nil {
			return nil, errors.Errorf("cannot add operation %s to function %q, because input #%d is nil",
				opType, fn.Name, i)
		}
		if input.fn != fn {
			return nil, errors.Errorf("cannot add operation %s to function %q, because input #%d is from a different function (%q)",
				opType, fn.Name, i, input.fn.Name)
		}
	}
	outputShapes, err := inferShapes(fn.Builder.policy, opType, inputs, attributes, hints)
	if err != nil {
		return nil, err
	}
	return fn.appendStatement(opType, attributes, inputs, outputShapes), nil
}

// AddOp adds an operation of the given type, attributes and inputs, and returns its outputs.
//
// This is the generic construction interface: the shapes of the outputs are inferred from the inputs and
// attributes, and if that fails, an error is returned and nothing is added to the function.
// The typed constructors (e.g. BroadcastAdd, BroadcastCompare) are usually more convenient.
//
// Attributes are:
//
//   - "broadcast_dimensions" (types.BroadcastDimensions): for the binary broadcasting operations.
//   - "comparison_direction" (types.ComparisonDirection) and "compare_type" (types.ComparisonType, optional):
//     for optypes.BroadcastCompare.
//   - "value": a scalar for optypes.ConstantLike, or a scalar or (multi-level) slice for optypes.Constant.
//   - "k" (int): for optypes.TopK.
//
// Operations that take their result type from elsewhere (optypes.Reshape, the structural operations) can't be
// added with AddOp: use Reshape, Function.Return and FormRankSpecializationClusters instead.
func (fn *Function) AddOp(opType optypes.OpType, attributes map[string]any, inputs ...*Value) ([]*Value, error) {
	switch opType {
	case optypes.Reshape:
		return nil, errors.Errorf("AddOp(%s): use Reshape instead", opType)
	case optypes.FuncReturn:
		return nil, errors.Errorf("AddOp(%s): use Function.Return instead", opType)
	case optypes.RankSpecializationCluster, optypes.RankSpecializationClusterYield:
		return nil, errors.Errorf("AddOp(%s): clusters are created with FormRankSpecializationClusters", opType)
	case optypes.Constant, optypes.ConstantLike:
		if value, found := attributes["value"]; found {
			if _, isLiteral := value.(tensorLiteral); !isLiteral {
				t, err := newTensorLiteralFromValue(value)
				if err != nil {
					return nil, errors.WithMessagef(err, "AddOp(%s) attribute \"value\"", opType)
				}
				attributes = cloneAttributes(attributes)
				attributes["value"] = t
			}
		}
	case optypes.TopK:
		if k, found := attributes["k"]; found {
			if kInt, ok := k.(int); ok {
				attributes = cloneAttributes(attributes)
				attributes["k"] = int64(kInt)
			}
		}
	}
	stmt, err := fn.addStatement(opType, attributes, inputs)
	if err != nil {
		return nil, err
	}
	return stmt.Outputs, nil
}

func cloneAttributes(attributes map[string]any) map[string]any {
	cloned := make(map[string]any, len(attributes))
	for key, value := range attributes {
		cloned[key] = value
	}
	return cloned
}

func valuesToShapes(values []*Value) []shapes.Shape {
	s := make([]shapes.Shape, len(values))
	for i, v := range values {
		s[i] = v.shape
	}
	return s
}

// allowedAttributes lists the attributes each operation accepts. Operations not listed take no attributes.
var allowedAttributes = map[optypes.OpType][]string{
	optypes.BroadcastCompare: {"broadcast_dimensions", "comparison_direction", "compare_type"},
	optypes.Constant:         {"value"},
	optypes.ConstantLike:     {"value"},
	optypes.TopK:             {"k"},
}

func checkAttributes(opType optypes.OpType, attributes map[string]any) error {
	allowed := allowedAttributes[opType]
	if opType.Has(optypes.Broadcasting) && opType != optypes.BroadcastSelect && allowed == nil {
		allowed = []string{"broadcast_dimensions"}
	}
	for name := range attributes {
		found := false
		for _, allowedName := range allowed {
			if name == allowedName {
				found = true
				break
			}
		}
		if !found {
			return errors.Errorf("attribute %q not supported by %s", name, opType)
		}
	}
	return nil
}

// broadcastDimensionsAttribute returns the explicit broadcast dimensions, or nil for implicit broadcasting.
func broadcastDimensionsAttribute(attributes map[string]any) ([]int, error) {
	attr, found := attributes["broadcast_dimensions"]
	if !found {
		return nil, nil
	}
	var dims []int
	switch v := attr.(type) {
	case types.BroadcastDimensions:
		dims = v
	case []int:
		dims = v
	default:
		return nil, errors.Errorf("attribute \"broadcast_dimensions\" must be types.BroadcastDimensions, got %T", attr)
	}
	if dims == nil {
		// Present but empty is an explicit mapping of a scalar.
		dims = []int{}
	}
	return dims, nil
}

func intAttribute(opType optypes.OpType, attributes map[string]any, name string) (int, error) {
	attr, found := attributes[name]
	if !found {
		return 0, errors.Errorf("%s requires the attribute %q", opType, name)
	}
	switch v := attr.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	}
	return 0, errors.Errorf("attribute %q of %s must be an integer, got %T", name, opType, attr)
}

func literalAttribute(opType optypes.OpType, attributes map[string]any, name string) (tensorLiteral, error) {
	attr, found := attributes[name]
	if !found {
		return tensorLiteral{}, errors.Errorf("%s requires the attribute %q", opType, name)
	}
	t, ok := attr.(tensorLiteral)
	if !ok {
		return tensorLiteral{}, errors.Errorf("attribute %q of %s must be a dense literal, got %T", name, opType, attr)
	}
	return t, nil
}

// knownShapeValues returns the values of a rank-1 integer tensor used as a shape, if they are known at
// compile time: if it is a constant, or the shape of a value with a static shape.
func knownShapeValues(v *Value) []int {
	stmt := v.producer
	if stmt == nil {
		return nil
	}
	switch stmt.OpType {
	case optypes.Constant:
		t, err := literalAttribute(stmt.OpType, stmt.Attributes, "value")
		if err != nil || t.shape.Rank() != 1 {
			return nil
		}
		values, ok := t.ints()
		if !ok {
			return nil
		}
		return values
	case optypes.ShapeOf:
		operand := stmt.Inputs[0].shape
		if operand.IsStatic() {
			return operand.Dimensions
		}
	}
	return nil
}

// inferShapes returns the shapes of the outputs of an operation.
//
// hints are the declared output shapes, only used by operations whose result type is not a function of
// the inputs and attributes (optypes.Reshape).
func inferShapes(policy types.BroadcastPolicy, opType optypes.OpType, inputs []*Value, attributes map[string]any,
	hints []shapes.Shape) ([]shapes.Shape, error) {
	info := opType.Info()
	if opType <= optypes.Invalid || opType >= optypes.Last {
		return nil, errors.Errorf("invalid operation type %d", int(opType))
	}
	if info.NumOperands != optypes.Variadic && len(inputs) != info.NumOperands {
		return nil, errors.Errorf("%s requires %d operands, got %d", opType, info.NumOperands, len(inputs))
	}
	if err := checkAttributes(opType, attributes); err != nil {
		return nil, err
	}
	operands := valuesToShapes(inputs)
	single := func(output shapes.Shape, err error) ([]shapes.Shape, error) {
		if err != nil {
			return nil, err
		}
		return []shapes.Shape{output}, nil
	}

	switch opType {
	case optypes.FuncReturn, optypes.RankSpecializationClusterYield:
		return nil, nil

	case optypes.RankSpecializationCluster:
		return nil, errors.Errorf("shapes of %s are given by its body", opType)

	case optypes.Constant:
		t, err := literalAttribute(opType, attributes, "value")
		if err != nil {
			return nil, err
		}
		return []shapes.Shape{t.shape.Clone()}, nil

	case optypes.ConstantLike:
		t, err := literalAttribute(opType, attributes, "value")
		if err != nil {
			return nil, err
		}
		if !t.shape.IsScalar() {
			return nil, errors.Errorf("attribute \"value\" of %s must be a scalar, got %s", opType, t.shape)
		}
		return single(shapeinference.ConstantLike(operands[0], t.shape.DType))

	case optypes.BroadcastCompare:
		broadcastDims, err := broadcastDimensionsAttribute(attributes)
		if err != nil {
			return nil, err
		}
		direction, ok := attributes["comparison_direction"].(types.ComparisonDirection)
		if !ok {
			return nil, errors.Errorf("%s requires the attribute \"comparison_direction\" (types.ComparisonDirection)", opType)
		}
		compareType := types.DefaultComparisonType(operands[0].DType)
		if attr, found := attributes["compare_type"]; found {
			compareType, ok = attr.(types.ComparisonType)
			if !ok {
				return nil, errors.Errorf("attribute \"compare_type\" of %s must be types.ComparisonType, got %T", opType, attr)
			}
		}
		return single(shapeinference.Compare(operands[0], operands[1], broadcastDims, direction, compareType, policy))

	case optypes.BroadcastSelect:
		return single(shapeinference.Select(operands[0], operands[1], operands[2], policy))

	case optypes.TopK:
		k, err := intAttribute(opType, attributes, "k")
		if err != nil {
			return nil, err
		}
		values, indices, err := shapeinference.TopK(operands[0], k)
		if err != nil {
			return nil, err
		}
		return []shapes.Shape{values, indices}, nil

	case optypes.DynamicReshape:
		return single(shapeinference.DynamicReshape(operands[0], operands[1], knownShapeValues(inputs[1])))

	case optypes.Reshape:
		if len(hints) != 1 || !hints[0].Ok() {
			return nil, errors.Errorf("%s requires the target shape", opType)
		}
		if hints[0].IsUnranked() {
			return nil, errors.Errorf("%s target shape must be ranked, got %s", opType, hints[0])
		}
		return single(shapeinference.Reshape(operands[0], hints[0].Dimensions))

	case optypes.MinimumBroadcastShapes:
		return shapeinference.MinimumBroadcastShapes(operands...)

	case optypes.ShapeOf:
		return single(shapeinference.ShapeOf(operands[0]))

	case optypes.ShapeBroadcast:
		return single(shapeinference.ShapeBroadcast(operands...))
	}

	switch {
	case opType.Has(optypes.Broadcasting):
		broadcastDims, err := broadcastDimensionsAttribute(attributes)
		if err != nil {
			return nil, err
		}
		return single(shapeinference.BroadcastOp(opType, operands[0], operands[1], broadcastDims, policy))
	case opType.Has(optypes.Elementwise) && info.NumOperands == 1:
		return single(shapeinference.UnaryOp(opType, operands[0]))
	case opType.Has(optypes.Elementwise) && info.NumOperands == 2:
		return single(shapeinference.BinaryOp(opType, operands[0], operands[1]))
	}
	return nil, errors.Errorf("shape inference not implemented for %s", opType)
}

// functionOf returns the function of the operands of an operation, and checks that they are all from the same one.
func functionOf(opType optypes.OpType, operands ...*Value) (*Function, error) {
	if len(operands) == 0 {
		return nil, errors.Errorf("%s requires at least one operand", opType)
	}
	for i, operand := range operands {
		if operand == nil {
			return nil, errors.Errorf("operand #%d of %s is nil", i, opType)
		}
	}
	fn := operands[0].fn
	for i, operand := range operands[1:] {
		if operand.fn != fn {
			return nil, errors.Errorf("cannot add operation %s to function %q, because operand #%d is from a different function (%q)",
				opType, fn.Name, i+1, operand.fn.Name)
		}
	}
	return fn, nil
}

// broadcastBinaryOp adds a binary broadcasting operation. broadcastDimensions is optional, see InferBroadcastShape.
func broadcastBinaryOp(opType optypes.OpType, lhs, rhs *Value, broadcastDimensions []int) (*Value, error) {
	fn, err := functionOf(opType, lhs, rhs)
	if err != nil {
		return nil, err
	}
	var attributes map[string]any
	if len(broadcastDimensions) > 0 {
		attributes = map[string]any{"broadcast_dimensions": types.BroadcastDimensions(broadcastDimensions)}
	}
	stmt, err := fn.addStatement(opType, attributes, []*Value{lhs, rhs})
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// unaryOp adds a new unary operation to the function.
func unaryOp(opType optypes.OpType, operand *Value) (*Value, error) {
	fn, err := functionOf(opType, operand)
	if err != nil {
		return nil, err
	}
	stmt, err := fn.addStatement(opType, nil, []*Value{operand})
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// binaryOp adds a new non-broadcasting binary operation to the function.
func binaryOp(opType optypes.OpType, lhs, rhs *Value) (*Value, error) {
	fn, err := functionOf(opType, lhs, rhs)
	if err != nil {
		return nil, err
	}
	stmt, err := fn.addStatement(opType, nil, []*Value{lhs, rhs})
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}
