package chlo

import (
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/gomlx/chlo/internal/utils"
	"github.com/gomlx/chlo/types/optypes"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/pkg/errors"
)

// Function represents a `func.func` in a chlo program, or the body of a rank specialization cluster.
type Function struct {
	Builder *Builder

	// Name of the function. It should not include the "@" prefix.
	Name string

	// Inputs to the function. For cluster bodies these are the block arguments.
	Inputs []*Value

	// Outputs types of the function.
	Outputs []shapes.Shape

	// Statements in the function body.
	Statements []*Statement

	// Parent is set for the body of a rank specialization cluster, and it's the function that owns the cluster.
	Parent *Function

	// names used by values in this function tree, only maintained in the root function.
	names utils.Set[string]

	// nextArgID is the next ID to be assigned to new input arguments.
	nextArgID int

	// nextTmpID is the next ID to be assigned to new intermediary values.
	nextTmpID int

	// nextBodyID is the next ID to be assigned to cluster bodies.
	nextBodyID int

	// Returned indicates if the function has a return statement, so it can no longer be changed.
	Returned bool
}

// findRootFn returns the root function of a function tree.
//
// There are no cases where it is more than 1-level deep, but it would work for more.
func (fn *Function) findRootFn() *Function {
	rootFn := fn
	for rootFn.Parent != nil {
		rootFn = rootFn.Parent
	}
	return rootFn
}

// reserveName registers the name in the root function, and reports whether it was free.
func (fn *Function) reserveName(name string) bool {
	rootFn := fn.findRootFn()
	if rootFn.names == nil {
		rootFn.names = utils.MakeSet[string]()
	}
	if rootFn.names.Has(name) {
		return false
	}
	rootFn.names.Insert(name)
	return true
}

// newValue creates a new value with the given shape and assigns it to the next available id.
func (fn *Function) newValue(shape shapes.Shape) *Value {
	rootFn := fn.findRootFn()
	name := strconv.Itoa(rootFn.nextTmpID)
	rootFn.nextTmpID++
	for !fn.reserveName(name) {
		name = strconv.Itoa(rootFn.nextTmpID)
		rootFn.nextTmpID++
	}
	return &Value{
		fn:    fn,
		name:  name,
		shape: shape,
	}
}

// Input creates a new input parameter for a function.
//
// If creating multiple inputs (one at a time), the order matters, since during execution of a compiled function,
// the input parameters must be given in the same order they were created.
//
// It picks a default unique name for the input parameter, you can also
// provide a name with NamedInput.
func (fn *Function) Input(shape shapes.Shape) *Value {
	rootFn := fn.findRootFn()
	name := fmt.Sprintf("arg%d", rootFn.nextArgID)
	rootFn.nextArgID++
	for !fn.reserveName(name) {
		name = fmt.Sprintf("arg%d", rootFn.nextArgID)
		rootFn.nextArgID++
	}
	return fn.appendInput(name, shape)
}

// NamedInput creates a new input parameter for a function with the given name.
//
// The name is passed through NormalizeIdentifier, which converts any non-digit or ASCII letter to an underscore.
// If the name is already used in the function, a numeric suffix is appended to make it unique.
//
// Names are used in the program text and may be helpful for debugging, but
// otherwise have no impact.
func (fn *Function) NamedInput(name string, shape shapes.Shape) *Value {
	name = NormalizeIdentifier(name)
	if name == "" {
		return fn.Input(shape)
	}
	uniqueName := name
	for ii := 1; !fn.reserveName(uniqueName); ii++ {
		uniqueName = fmt.Sprintf("%s_%d", name, ii)
	}
	return fn.appendInput(uniqueName, shape)
}

func (fn *Function) appendInput(name string, shape shapes.Shape) *Value {
	value := &Value{
		fn:    fn,
		name:  name,
		shape: shape,
	}
	fn.Inputs = append(fn.Inputs, value)
	return value
}

// ConstantFromScalar creates a new constant statement and returns the resulting value.
func (fn *Function) ConstantFromScalar(value any) (*Value, error) {
	if reflect.TypeOf(value) != nil && reflect.TypeOf(value).Kind() == reflect.Slice {
		return nil, errors.Errorf("ConstantFromScalar requires a scalar value, got %T -- use Constant instead", value)
	}
	return fn.Constant(value)
}

// Constant creates a new constant statement from a scalar or a (multi-level) slice of values of a basic
// Go type, and returns the resulting value.
//
// Example:
//
//	c, err := fn.Constant([][]float32{{1, 2, 3}, {4, 5, 6}}) // Shape (Float32)[2 3]
func (fn *Function) Constant(value any) (*Value, error) {
	t, err := newTensorLiteralFromValue(value)
	if err != nil {
		return nil, errors.WithMessage(err, "Constant")
	}
	return fn.addConstant(t)
}

// ConstantFromFlatAndDimensions creates a new constant statement from a flat slice with the raw values and the
// dimensions of the shape.
func (fn *Function) ConstantFromFlatAndDimensions(flat any, dimensions ...int) (*Value, error) {
	t, err := newTensorLiteralFromFlatAndDimensions(flat, dimensions...)
	if err != nil {
		return nil, err
	}
	return fn.addConstant(t)
}

func (fn *Function) addConstant(t tensorLiteral) (*Value, error) {
	stmt, err := fn.addStatement(optypes.Constant, map[string]any{"value": t}, nil)
	if err != nil {
		return nil, err
	}
	return stmt.Outputs[0], nil
}

// Return adds a return statement to the function with the given return values.
// There must be at least one return value.
//
// There can be only one return statement from a Function, and it must be the last
// operation of a function.
func (fn *Function) Return(firstValue *Value, otherValues ...*Value) error {
	if fn.Returned {
		return errors.Errorf("Function.Return already called for %q", fn.Name)
	}
	if fn.Parent != nil {
		return errors.Errorf("Function.Return cannot be used in the body of a cluster of %q", fn.Parent.Name)
	}
	allValues := make([]*Value, 1, len(otherValues)+1)
	allValues[0] = firstValue
	allValues = append(allValues, otherValues...)
	outputShapes := make([]shapes.Shape, len(allValues))
	for i, value := range allValues {
		if value.fn != fn {
			return errors.Errorf("Function.Return given values that are not owned by the function %q", fn.Name)
		}
		outputShapes[i] = value.shape
	}
	fn.appendStatement(optypes.FuncReturn, nil, allValues, nil)
	fn.Outputs = outputShapes
	fn.Returned = true
	return nil
}

// newBody creates the (unnamed) body of a rank specialization cluster of this function.
func (fn *Function) newBody() *Function {
	rootFn := fn.findRootFn()

	// The name is only used for debugging and error messages.
	name := fmt.Sprintf("%s_cluster%d", rootFn.Name, rootFn.nextBodyID)
	rootFn.nextBodyID++
	return &Function{
		Builder: fn.Builder,
		Name:    name,
		Parent:  fn,
	}
}

// users returns, for each value used in the function, the statements using it, in program order.
// Statements in the bodies of clusters are listed as their cluster statement.
func (fn *Function) users() map[*Value][]*Statement {
	users := make(map[*Value][]*Statement)
	var visit func(stmt *Statement, body *Function)
	visit = func(stmt *Statement, body *Function) {
		for _, bodyStmt := range body.Statements {
			for _, input := range bodyStmt.Inputs {
				users[input] = append(users[input], stmt)
			}
			if bodyStmt.Body != nil {
				visit(stmt, bodyStmt.Body)
			}
		}
	}
	for _, stmt := range fn.Statements {
		for _, input := range stmt.Inputs {
			users[input] = append(users[input], stmt)
		}
		if stmt.Body != nil {
			visit(stmt, stmt.Body)
		}
	}
	return users
}

// Write the function as text, with the given indentation.
func (fn *Function) Write(writer io.Writer, indentation string) error {
	// Create the formatting w() and we() internal functions to facilitate handling error while generating the statement code.
	var err error
	w := func(format string, args ...any) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		_, err = fmt.Fprintf(writer, format, args...)
	}
	we := func(e elementWriter, indentation string) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		err = e.Write(writer, indentation)
	}
	nextIndent := indentation + IndentationStep

	// Now write the function code.
	isBody := fn.Parent != nil
	if isBody {
		w("%s^bb0(", indentation)
	} else {
		w("%sfunc.func @%s(", indentation, fn.Name)
	}
	for i, input := range fn.Inputs {
		if i > 0 {
			w(", ")
		}
		we(input, nextIndent)
		w(": %s", input.shape.ToStableHLO())
	}

	if isBody {
		w("):\n")
	} else {
		w(") -> ")
		if len(fn.Outputs) != 1 {
			w("(")
		}
		for i, output := range fn.Outputs {
			if i > 0 {
				w(", ")
			}
			w("%s", output.ToStableHLO())
		}
		if len(fn.Outputs) != 1 {
			w(")")
		}
		w(" {\n")
	}

	for _, stmt := range fn.Statements {
		we(stmt, nextIndent)
		w("\n")
	}

	if !isBody {
		w("%s}", indentation)
	}
	return err
}
