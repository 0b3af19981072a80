// ops_generator generates gen_ops.go with the constructors of the trivial operations (broadcasting binary,
// unary and binary element-wise operations), from the metadata table in optypes.
//
// It should be run from the root of the repository, see `go generate` directive in chlo.go.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path"
	"text/template"

	"github.com/gomlx/chlo/types/optypes"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

const fileName = "gen_ops.go"

// OpInfo is the information passed to the template for each operation.
type OpInfo struct {
	Name, Doc string
}

// Data passed to the template.
type Data struct {
	BroadcastOps, UnaryOps, BinaryOps []OpInfo
}

// docs for each generated operation: they follow the name of the function in its doc comment.
var docs = map[optypes.OpType]string{
	optypes.BroadcastAdd:                  "returns the element-wise sum of lhs and rhs.",
	optypes.BroadcastAnd:                  "returns the element-wise logical (for booleans) or bitwise (for integers) \"and\" of lhs and rhs.",
	optypes.BroadcastAtan2:                "returns the element-wise arc tangent of lhs/rhs, using the signs of both to determine the quadrant.",
	optypes.BroadcastComplex:              "returns the complex value with lhs as the real part and rhs as the imaginary part.\n// They must be Float32 or Float64, and the result is Complex64 or Complex128 respectively.",
	optypes.BroadcastDivide:               "returns the element-wise division of lhs by rhs.",
	optypes.BroadcastMaximum:              "returns the element-wise maximum of lhs and rhs.",
	optypes.BroadcastMinimum:              "returns the element-wise minimum of lhs and rhs.",
	optypes.BroadcastMultiply:             "returns the element-wise product of lhs and rhs.",
	optypes.BroadcastNextAfter:            "returns the next representable value of lhs in the direction of rhs, element-wise.",
	optypes.BroadcastOr:                   "returns the element-wise logical (for booleans) or bitwise (for integers) \"or\" of lhs and rhs.",
	optypes.BroadcastPolygamma:            "returns the element-wise polygamma function of order lhs, evaluated at rhs.",
	optypes.BroadcastPower:                "returns lhs raised to the power of rhs, element-wise.",
	optypes.BroadcastRemainder:            "returns the element-wise remainder of the division of lhs by rhs.",
	optypes.BroadcastShiftLeft:            "returns lhs shifted left by rhs bits, element-wise.",
	optypes.BroadcastShiftRightArithmetic: "returns lhs shifted right by rhs bits, element-wise, preserving the sign.",
	optypes.BroadcastShiftRightLogical:    "returns lhs shifted right by rhs bits, element-wise, filling with zeros.",
	optypes.BroadcastSubtract:             "returns the element-wise difference of lhs and rhs.",
	optypes.BroadcastXor:                  "returns the element-wise logical (for booleans) or bitwise (for integers) \"xor\" of lhs and rhs.",
	optypes.BroadcastZeta:                 "returns the element-wise Hurwitz zeta function of lhs (the exponent) and rhs (the offset).",

	optypes.Acos:      "returns the element-wise arc cosine of the operand.",
	optypes.Acosh:     "returns the element-wise inverse hyperbolic cosine of the operand.",
	optypes.Asin:      "returns the element-wise arc sine of the operand.",
	optypes.Asinh:     "returns the element-wise inverse hyperbolic sine of the operand.",
	optypes.Atan:      "returns the element-wise arc tangent of the operand.",
	optypes.Atanh:     "returns the element-wise inverse hyperbolic tangent of the operand.",
	optypes.BesselI1e: "returns the element-wise exponentially scaled modified Bessel function of the first kind of order 1.",
	optypes.Conj:      "returns the element-wise complex conjugate of the operand.",
	optypes.Cosh:      "returns the element-wise hyperbolic cosine of the operand.",
	optypes.Digamma:   "returns the element-wise logarithmic derivative of the gamma function of the operand.",
	optypes.Erf:       "returns the element-wise error function of the operand.",
	optypes.ErfInv:    "returns the element-wise inverse error function of the operand.",
	optypes.Erfc:      "returns the element-wise complementary error function of the operand.",
	optypes.IsInf:     "returns whether each element of the operand is infinite (positive or negative).",
	optypes.IsNegInf:  "returns whether each element of the operand is the negative infinity.",
	optypes.IsPosInf:  "returns whether each element of the operand is the positive infinity.",
	optypes.Lgamma:    "returns the element-wise logarithm of the absolute value of the gamma function of the operand.",
	optypes.Sinh:      "returns the element-wise hyperbolic sine of the operand.",
	optypes.Square:    "returns the element-wise square of the operand.",
	optypes.Tan:       "returns the element-wise tangent of the operand.",

	optypes.NextAfter: "returns the next representable value of lhs in the direction of rhs, element-wise.",
	optypes.Polygamma: "returns the element-wise polygamma function of order lhs, evaluated at rhs.",
	optypes.Zeta:      "returns the element-wise Hurwitz zeta function of lhs (the exponent) and rhs (the offset).",
}

// collectOps selects the operations with trivial constructors from the metadata table.
// Operations with attributes or a special operand structure (compare, select, constant_like) are written by hand.
func collectOps() (data Data) {
	for op := optypes.Invalid + 1; op < optypes.Last; op++ {
		info := op.Info()
		var list *[]OpInfo
		switch {
		case op == optypes.BroadcastCompare || op == optypes.BroadcastSelect || op == optypes.ConstantLike:
			continue
		case op.Has(optypes.Broadcasting) && info.NumOperands == 2:
			list = &data.BroadcastOps
		case op.Has(optypes.Elementwise) && info.NumOperands == 1:
			list = &data.UnaryOps
		case op.Has(optypes.Elementwise) && info.NumOperands == 2:
			list = &data.BinaryOps
		default:
			continue
		}
		doc, found := docs[op]
		if !found {
			klog.Fatalf("missing documentation for %s", op)
		}
		*list = append(*list, OpInfo{Name: op.String(), Doc: doc})
	}
	return
}

var opsTemplate = template.Must(
	template.
		New(fileName).
		Parse(
			`/***** File generated by ./internal/cmd/ops_generator, based on the optypes metadata. Don't edit it directly. *****/

package chlo

import (
	"github.com/gomlx/chlo/types/optypes"
)

{{- range .BroadcastOps}}

// {{.Name}} {{.Doc}}
//
// The operands are broadcast to a common shape. broadcastDimensions is optional, and if given, it maps the axes
// of the lower-rank operand to the axes of the result, see shapeinference.InferBroadcastShape.
func {{.Name}}(lhs, rhs *Value, broadcastDimensions ...int) (*Value, error) {
	return broadcastBinaryOp(optypes.{{.Name}}, lhs, rhs, broadcastDimensions)
}
{{- end}}

{{- range .UnaryOps}}

// {{.Name}} {{.Doc}}
func {{.Name}}(operand *Value) (*Value, error) {
	return unaryOp(optypes.{{.Name}}, operand)
}
{{- end}}

{{- range .BinaryOps}}

// {{.Name}} {{.Doc}}
//
// The operands must have compatible shapes, they are not broadcast.
func {{.Name}}(lhs, rhs *Value) (*Value, error) {
	return binaryOp(optypes.{{.Name}}, lhs, rhs)
}
{{- end}}
`))

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	data := collectOps()
	klog.V(1).Infof("%d broadcasting, %d unary and %d binary operations", len(data.BroadcastOps), len(data.UnaryOps), len(data.BinaryOps))
	fullPath := path.Join(must.M1(os.Getwd()), fileName)
	f := must.M1(os.Create(fullPath))
	must.M(opsTemplate.Execute(f, data))
	must.M(f.Close())

	cmd := exec.Command("gofmt", "-w", fullPath)
	klog.V(1).Infof("\t%s\n", cmd)
	must.M(cmd.Run())
	fmt.Printf("✅ ops_generator:  \tsuccessfully generated %s\n", fullPath)
}
