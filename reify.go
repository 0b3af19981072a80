package chlo

import (
	"slices"

	"github.com/gomlx/chlo/types/optypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// shapeEmitter adds shape computations to a function, right after an anchor statement.
// The function may already be returned, since the new statements don't change its results.
type shapeEmitter struct {
	fn     *Function
	anchor *Statement
	added  []*Statement
}

func (e *shapeEmitter) emit(opType optypes.OpType, inputs ...*Value) ([]*Value, error) {
	outputShapes, err := inferShapes(e.fn.Builder.policy, opType, inputs, nil, nil)
	if err != nil {
		return nil, err
	}
	stmt := e.fn.appendStatement(opType, nil, inputs, outputShapes)
	e.added = append(e.added, stmt)
	return stmt.Outputs, nil
}

// commit moves the emitted statements, appended at the end of the function, to right after the anchor.
// If there is no anchor, they are moved to the start of the function.
func (e *shapeEmitter) commit() {
	if len(e.added) == 0 {
		return
	}
	statements := e.fn.Statements[:len(e.fn.Statements)-len(e.added)]
	position := 0
	if e.anchor != nil {
		position = slices.Index(statements, e.anchor) + 1
	}
	e.fn.Statements = slices.Insert(slices.Clone(statements), position, e.added...)
}

// discard removes the emitted statements, after a failure.
func (e *shapeEmitter) discard() {
	e.fn.Statements = e.fn.Statements[:len(e.fn.Statements)-len(e.added)]
	e.added = nil
}

// ReifyResultShape adds to the function of the statement the computation of the shape of its result, as a
// rank-1 Int64 value: the shape.shape_of its operand for unary element-wise operations, and the shape.broadcast
// of the shapes of the operands for broadcasting operations.
//
// The new statements are placed right after the statement. It returns an error for statements that
// can't be reified, like broadcasting operations with explicit broadcast dimensions.
func ReifyResultShape(stmt *Statement) (*Value, error) {
	fn := stmt.Function
	if fn.Parent != nil {
		return nil, errors.Errorf("cannot reify the result shape of %s in the body of a cluster", stmt.OpType)
	}
	switch {
	case stmt.OpType.Has(optypes.Broadcasting):
		if _, found := stmt.Attributes["broadcast_dimensions"]; found {
			return nil, errors.Errorf("cannot reify the result shape of %s with explicit broadcast dimensions", stmt.OpType)
		}
	case stmt.OpType.Has(optypes.Elementwise) && len(stmt.Outputs) == 1:
		// ConstantLike, unary and binary element-wise operations have the shape of their (first) operand.
	default:
		return nil, errors.Errorf("cannot reify the result shape of %s", stmt.OpType)
	}

	e := &shapeEmitter{fn: fn, anchor: stmt}
	operands := stmt.Inputs
	if !stmt.OpType.Has(optypes.Broadcasting) {
		operands = operands[:1]
	}
	shapeValues := make([]*Value, len(operands))
	for i, operand := range operands {
		outputs, err := e.emit(optypes.ShapeOf, operand)
		if err != nil {
			e.discard()
			return nil, errors.WithMessagef(err, "reifying the result shape of %s", stmt.OpType)
		}
		shapeValues[i] = outputs[0]
	}
	result := shapeValues[0]
	if len(shapeValues) > 1 {
		outputs, err := e.emit(optypes.ShapeBroadcast, shapeValues...)
		if err != nil {
			e.discard()
			return nil, errors.WithMessagef(err, "reifying the result shape of %s", stmt.OpType)
		}
		result = outputs[0]
	}
	e.commit()
	klog.V(2).Infof("function %q: reified the result shape of %s with %d statements", fn.Name, stmt.OpType, len(e.added))
	return result, nil
}

// ReifyMinimumBroadcastShapes adds to the function the computation of the minimum broadcast shapes of the
// operands (see MinimumBroadcastShapes), and returns one rank-1 Int64 shape value per operand.
//
// The new statements are placed right after the last statement producing an operand (or at the start of
// the function if they are all inputs).
func ReifyMinimumBroadcastShapes(operands ...*Value) ([]*Value, error) {
	fn, err := functionOf(optypes.MinimumBroadcastShapes, operands...)
	if err != nil {
		return nil, err
	}
	if fn.Parent != nil {
		return nil, errors.Errorf("cannot reify minimum broadcast shapes in the body of a cluster")
	}
	var anchor *Statement
	lastPosition := -1
	for _, operand := range operands {
		if operand.producer == nil {
			continue
		}
		if position := slices.Index(fn.Statements, operand.producer); position > lastPosition {
			lastPosition = position
			anchor = operand.producer
		}
	}
	e := &shapeEmitter{fn: fn, anchor: anchor}
	shapeValues := make([]*Value, len(operands))
	for i, operand := range operands {
		outputs, err := e.emit(optypes.ShapeOf, operand)
		if err != nil {
			e.discard()
			return nil, err
		}
		shapeValues[i] = outputs[0]
	}
	minimized, err := e.emit(optypes.MinimumBroadcastShapes, shapeValues...)
	if err != nil {
		e.discard()
		return nil, err
	}
	e.commit()
	return minimized, nil
}

// ShapeValueDimensions returns the dimensions held by a rank-1 shape value, if they are known at compile time:
// when the value is a constant, or the shape.shape_of a value with a static shape.
func ShapeValueDimensions(v *Value) ([]int, bool) {
	if v == nil || v.shape.Rank() != 1 || !v.shape.DType.IsInt() {
		return nil, false
	}
	dims := knownShapeValues(v)
	if dims == nil {
		return nil, false
	}
	return slices.Clone(dims), true
}

