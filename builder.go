package chlo

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gomlx/chlo/types"
	"github.com/pkg/errors"
)

// Builder is used to construct a chlo program (or "Module").
// See details in New.
type Builder struct {
	name string

	// functions holds all the functions created in the builder's scope.
	functions []*Function

	// policy used to combine dynamic and static extents in broadcast shape inference.
	policy types.BroadcastPolicy

	// minClusterSize is the minimum number of statements of a cluster rewritten by FormRankSpecializationClusters.
	minClusterSize int
}

// New creates a new Builder object holding a computation graph in construction.
//
// From a builder you can create functions.
// For each function you create operations (ops) one by one, until you defined the desired computation.
//
// You have to define the "main" function for your program: you can use Builder.Main to do so, or
// Builder.NewFunction("main"), it's the same.
//
// Once you are all set, call Builder.Build and it will verify the program and return it in text format.
func New(name string) *Builder {
	return &Builder{
		name:           name,
		policy:         types.BroadcastOptimistic,
		minClusterSize: 1,
	}
}

// Name of the program (module).
func (b *Builder) Name() string {
	return b.name
}

// WithBroadcastPolicy sets the policy used to combine a dynamic extent with a static one when inferring broadcast
// shapes. The default is types.BroadcastOptimistic.
//
// It should be set before any operation is added: the shapes of the values already created are not re-inferred,
// and they would fail verification if they don't match.
func (b *Builder) WithBroadcastPolicy(policy types.BroadcastPolicy) *Builder {
	b.policy = policy
	return b
}

// BroadcastPolicy returns the policy configured with WithBroadcastPolicy.
func (b *Builder) BroadcastPolicy() types.BroadcastPolicy {
	return b.policy
}

// WithMinClusterSize sets the minimum number of statements a rank specialization cluster must have to be formed
// by FormRankSpecializationClusters. The default is 1, that is, even single statements are wrapped in a cluster.
func (b *Builder) WithMinClusterSize(n int) *Builder {
	b.minClusterSize = max(n, 1)
	return b
}

// elementWriter represents elements of the program that know how to write themselves.
type elementWriter interface {
	Write(w io.Writer, indentation string) error
}

// NewFunction creates a new function and adds it to the program.
//
// The function name must be unique in the program.
//
// Inputs are created with Function.Input or Function.NamedInput, and the function body is defined by
// calling ops on its values. It must end with Function.Return.
//
// See Function.
func (b *Builder) NewFunction(name string) *Function {
	fn := &Function{
		Builder: b,
		Name:    NormalizeIdentifier(name),
	}
	b.functions = append(b.functions, fn)
	return fn
}

const MainFunctionName = "main"

// Main creates the main function of the program.
// It is an alias to Builder.NewFunction("main").
//
// Every program must have a main function.
func (b *Builder) Main() *Function {
	return b.NewFunction(MainFunctionName)
}

// Functions of the program, in the order they were created.
func (b *Builder) Functions() []*Function {
	return b.functions
}

// Function returns the function with the given name, or nil if there is none.
func (b *Builder) Function(name string) *Function {
	for _, fn := range b.functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

const IndentationStep = "  "

// Write the program (a readable string) to the given writer.
//
// It will write incomplete programs (without a main function or empty statements) without an error
// to help debugging.
//
// See Builder.Build to check and output the program.
func (b *Builder) Write(writer io.Writer) error {
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

	// Write module header
	w("module @%s {\n", NormalizeIdentifier(b.name))
	for i, fn := range b.functions {
		if i > 0 {
			w("\n\n")
		}
		we(fn, IndentationStep) // Indent functions inside module
	}
	w("\n}\n") // Close module block
	return err
}

// String returns the text of the program, even if incomplete.
func (b *Builder) String() string {
	var buf bytes.Buffer
	if err := b.Write(&buf); err != nil {
		return fmt.Sprintf("failed to write program %q: %v", b.name, err)
	}
	return buf.String()
}

// Build verifies the program and returns it in text format.
//
// If you want the output of an incomplete program (without the checking), use Builder.Write instead.
func (b *Builder) Build() ([]byte, error) {
	if b.Function(MainFunctionName) == nil {
		return nil, errors.New("program must have a main function")
	}
	if err := b.Verify(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err := b.Write(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
