package chlo

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/chlo/internal/utils"
	"github.com/gomlx/chlo/types/optypes"
	"github.com/gomlx/gopjrt/dtypes"
)

// Statement represents a single operation line in a chlo program.
type Statement struct {
	Builder  *Builder
	Function *Function

	// OpType is the type of the operation.
	OpType optypes.OpType

	// Inputs to the operation.
	Inputs []*Value

	// Attributes of the operation.
	Attributes map[string]any

	// Outputs of the operation. It may be nil for operations like func.return.
	Outputs []*Value

	// Body is the sub-function owned by a rank specialization cluster: its inputs are the block arguments
	// matching the cluster inputs, and it ends with a chlo.rank_specialization_cluster_yield.
	Body *Function
}

// Write writes a string representation of the statement to the given writer.
func (s *Statement) Write(writer io.Writer, indentation string) error {
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

	// Output values are written first:
	w("%s", indentation)
	if len(s.Outputs) > 0 {
		for i, output := range s.Outputs {
			if i > 0 {
				w(", ")
			}
			we(output, indentation)
		}
		w(" = ")
	}

	// Write op name and arguments:
	w("%q(", s.OpType.ToStableHLO())
	for i, input := range s.Inputs {
		if i > 0 {
			w(", ")
		}
		we(input, indentation)
	}
	w(")")

	// Region with the body of the cluster:
	if s.Body != nil {
		w(" ({\n")
		we(s.Body, indentation)
		w("%s})", indentation)
	}

	// Write attributes, sorted by name so the output is stable:
	if len(s.Attributes) > 0 {
		keys := make([]string, 0, len(s.Attributes))
		for key := range s.Attributes {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		w("{")
		for i, key := range keys {
			if i > 0 {
				w(", ")
			}
			w("%s = %s", key, literalToStableHLO(s.Attributes[key]))
		}
		w("}")
	}

	// Write signature:
	w(" : (")
	for i, input := range s.Inputs {
		if i > 0 {
			w(", ")
		}
		w("%s", input.shape.ToStableHLO())
	}
	w(") -> ")
	if len(s.Outputs) == 0 {
		w("()")
	} else {
		// There are outputs: we use "(" and ")" only if there are more than one.
		if len(s.Outputs) > 1 {
			w("(")
		}
		for i, output := range s.Outputs {
			if i > 0 {
				w(", ")
			}
			w("%s", output.shape.ToStableHLO())
		}
		if len(s.Outputs) > 1 {
			w(")")
		}
	}
	return err
}

type hasToStableHLO interface {
	ToStableHLO() string
}

// literalToStableHLO converts a literal value, usually used in attributes, to its text representation.
func literalToStableHLO(attr any) string {
	switch v := attr.(type) {
	case string:
		return strconv.Quote(v)
	case int:
		return fmt.Sprintf("%d : i64", v)
	case int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		dtype := dtypes.FromAny(v)
		return fmt.Sprintf("%d : %s", v, utils.DTypeToStableHLO(dtype))
	case bool:
		if v {
			return "true"
		}
		return "false"

	case hasToStableHLO:
		// For types that implement their own conversion to text, use that.
		return v.ToStableHLO()

	default:
		return fmt.Sprintf("Unknown literal type: %t %#v", v, v)
	}
}

// String implements fmt.Stringer, and returns the text of the statement without indentation.
func (s *Statement) String() string {
	var sb strings.Builder
	if err := s.Write(&sb, ""); err != nil {
		return fmt.Sprintf("%s: failed to write statement: %v", s.OpType, err)
	}
	return sb.String()
}
