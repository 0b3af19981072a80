package chlo

import (
	"fmt"
	"io"

	"github.com/gomlx/chlo/types/shapes"
)

// Value represents a value in a chlo program, like `%0` or `%arg0`.
// It has a name, a shape and is owned by one Function.
type Value struct {
	fn    *Function
	name  string // Composed of letters, digits and underscore.
	shape shapes.Shape

	// producer is the statement that defines the value, or nil for function (or cluster body) inputs.
	producer *Statement
}

// Shape returns the shape of the value.
func (v *Value) Shape() shapes.Shape {
	return v.shape
}

// Name of the value, without the "%" prefix.
func (v *Value) Name() string {
	return v.name
}

// Function that owns the value.
func (v *Value) Function() *Function {
	return v.fn
}

// Producer returns the statement that defines the value, or nil if it is an input of its function.
func (v *Value) Producer() *Statement {
	return v.producer
}

// Write writes the value in text format to the given writer.
func (v *Value) Write(w io.Writer, indentation string) error {
	_ = indentation
	_, err := fmt.Fprintf(w, "%%%s", v.name)
	return err
}

// String implements fmt.Stringer.
func (v *Value) String() string {
	return "%" + v.name
}
