package chlo

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/gomlx/chlo/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// tensorLiteral is the dense value of a constant: its shape and a flat slice (of the Go type of the dtype) with
// the values in row-major order.
type tensorLiteral struct {
	shape shapes.Shape
	flat  reflect.Value
}

// newTensorLiteralFromFlatAndDimensions creates a literal from a flat slice of a supported Go type and the
// dimensions. The size of the slice must match the dimensions.
func newTensorLiteralFromFlatAndDimensions(flat any, dimensions ...int) (t tensorLiteral, err error) {
	flatV := reflect.ValueOf(flat)
	if flatV.Kind() != reflect.Slice {
		err = errors.Errorf("flat values must be a slice, got %T", flat)
		return
	}
	dtype := dtypes.FromGoType(flatV.Type().Elem())
	if dtype == dtypes.InvalidDType {
		err = errors.Errorf("unsupported constant flat values type %T -- expected a slice of a basic data type", flat)
		return
	}
	for _, dim := range dimensions {
		if dim < 0 {
			err = errors.Errorf("constant dimensions %v must be static", dimensions)
			return
		}
	}
	shape := shapes.Make(dtype, dimensions...)
	if shape.Size() != flatV.Len() {
		err = errors.Errorf("flat values size %d doesn't match shape size %d (%s)", flatV.Len(), shape.Size(), shape)
		return
	}
	// Copy, so later changes to the slice given by the user don't change the program.
	flatCopy := reflect.MakeSlice(flatV.Type(), flatV.Len(), flatV.Len())
	reflect.Copy(flatCopy, flatV)
	return tensorLiteral{shape: shape, flat: flatCopy}, nil
}

// newTensorLiteralFromValue creates a literal from a scalar or a (multi-level) slice of a supported Go type.
func newTensorLiteralFromValue(value any) (tensorLiteral, error) {
	shape, flat, err := shapes.FlattenAnyValue(value)
	if err != nil {
		return tensorLiteral{}, err
	}
	return newTensorLiteralFromFlatAndDimensions(flat, shape.Dimensions...)
}

// Shape of the literal.
func (t tensorLiteral) Shape() shapes.Shape {
	return t.shape
}

// ints returns the values of an integer literal converted to int.
func (t tensorLiteral) ints() ([]int, bool) {
	if !t.shape.DType.IsInt() {
		return nil, false
	}
	values := make([]int, t.flat.Len())
	for ii := range values {
		elem := t.flat.Index(ii)
		if t.shape.DType.IsUnsigned() {
			values[ii] = int(elem.Uint())
		} else {
			values[ii] = int(elem.Int())
		}
	}
	return values, true
}

// isSplat returns whether the literal has more than one element, all equal.
func (t tensorLiteral) isSplat() bool {
	n := t.flat.Len()
	if n <= 1 {
		return false
	}
	first := t.flat.Index(0).Interface()
	for ii := 1; ii < n; ii++ {
		if t.flat.Index(ii).Interface() != first {
			return false
		}
	}
	return true
}

// ToStableHLO returns the text of the dense elements attribute, e.g. "dense<[1.0, 2.0]> : tensor<2xf32>".
// Literals with all equal values are written in the splat form "dense<1.0> : tensor<2x3xf32>".
func (t tensorLiteral) ToStableHLO() string {
	var sb strings.Builder
	sb.WriteString("dense<")
	switch {
	case t.flat.Len() == 0:
	case t.shape.IsScalar() || t.isSplat():
		sb.WriteString(formatElement(t.shape.DType, t.flat.Index(0)))
	default:
		var next int
		t.writeNested(&sb, 0, &next)
	}
	sb.WriteString("> : ")
	sb.WriteString(t.shape.ToStableHLO())
	return sb.String()
}

func (t tensorLiteral) writeNested(sb *strings.Builder, axis int, next *int) {
	sb.WriteString("[")
	for ii := range t.shape.Dimensions[axis] {
		if ii > 0 {
			sb.WriteString(", ")
		}
		if axis == t.shape.Rank()-1 {
			sb.WriteString(formatElement(t.shape.DType, t.flat.Index(*next)))
			*next++
		} else {
			t.writeNested(sb, axis+1, next)
		}
	}
	sb.WriteString("]")
}

// formatFloat formats a float so that it always has a decimal point, as required by the float literal grammar.
// Infinities and NaNs are written as the hexadecimal bits of the value.
func formatFloat(f float64, bitSize int, bits uint64, hexDigits int) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "0x" + strings.ToUpper(leftPad(strconv.FormatUint(bits, 16), hexDigits))
	}
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if strings.ContainsRune(s, '.') {
		return s
	}
	if idx := strings.IndexByte(s, 'e'); idx >= 0 {
		return s[:idx] + ".0" + s[idx:]
	}
	return s + ".0"
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func formatElement(dtype dtypes.DType, elem reflect.Value) string {
	switch dtype {
	case dtypes.Bool:
		return strconv.FormatBool(elem.Bool())
	case dtypes.Float64:
		f := elem.Float()
		return formatFloat(f, 64, math.Float64bits(f), 16)
	case dtypes.Float32:
		f := float32(elem.Float())
		return formatFloat(float64(f), 32, uint64(math.Float32bits(f)), 8)
	case dtypes.Float16:
		f16 := elem.Interface().(float16.Float16)
		return formatFloat(float64(f16.Float32()), 32, uint64(f16), 4)
	case dtypes.BFloat16:
		bf16 := elem.Interface().(bfloat16.BFloat16)
		return formatFloat(float64(bf16.Float32()), 32, uint64(bf16), 4)
	case dtypes.Complex64:
		c := complex64(elem.Complex())
		re, im := real(c), imag(c)
		return "(" + formatFloat(float64(re), 32, uint64(math.Float32bits(re)), 8) + "," +
			formatFloat(float64(im), 32, uint64(math.Float32bits(im)), 8) + ")"
	case dtypes.Complex128:
		c := elem.Complex()
		re, im := real(c), imag(c)
		return "(" + formatFloat(re, 64, math.Float64bits(re), 16) + "," +
			formatFloat(im, 64, math.Float64bits(im), 16) + ")"
	}
	if dtype.IsUnsigned() {
		return strconv.FormatUint(elem.Uint(), 10)
	}
	return strconv.FormatInt(elem.Int(), 10)
}

// parseFloatElement parses a float literal, or the hexadecimal bits of a float of the given bit size.
func parseFloatElement(text string, bitSize int) (float64, error) {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		bits, err := strconv.ParseUint(text[2:], 16, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid hexadecimal float %q", text)
		}
		switch bitSize {
		case 64:
			return math.Float64frombits(bits), nil
		case 32:
			return float64(math.Float32frombits(uint32(bits))), nil
		}
		return 0, errors.Errorf("hexadecimal float %q not supported for %d bits", text, bitSize)
	}
	f, err := strconv.ParseFloat(text, bitSize)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid float %q", text)
	}
	return f, nil
}

// parseElement converts the text of one element to a value of the Go type of dtype.
// Complex elements are given as "(re,im)".
func parseElement(dtype dtypes.DType, text string) (reflect.Value, error) {
	goType := dtype.GoType()
	value := reflect.New(goType).Elem()
	switch {
	case dtype == dtypes.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return value, errors.Wrapf(err, "invalid boolean %q", text)
		}
		value.SetBool(b)
	case dtype == dtypes.Float16 || dtype == dtypes.BFloat16:
		var f32 float32
		if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
			bits, err := strconv.ParseUint(text[2:], 16, 16)
			if err != nil {
				return value, errors.Wrapf(err, "invalid hexadecimal float %q", text)
			}
			value.SetUint(bits)
			return value, nil
		}
		f, err := parseFloatElement(text, 32)
		if err != nil {
			return value, err
		}
		f32 = float32(f)
		if dtype == dtypes.Float16 {
			value.Set(reflect.ValueOf(float16.Fromfloat32(f32)))
		} else {
			value.Set(reflect.ValueOf(bfloat16.FromFloat32(f32)))
		}
	case dtype.IsFloat():
		f, err := parseFloatElement(text, int(goType.Bits()))
		if err != nil {
			return value, err
		}
		value.SetFloat(f)
	case dtype.IsComplex():
		inner, found := strings.CutPrefix(text, "(")
		inner, found2 := strings.CutSuffix(inner, ")")
		reText, imText, found3 := strings.Cut(inner, ",")
		if !found || !found2 || !found3 {
			return value, errors.Errorf("invalid complex %q, expected (re,im)", text)
		}
		bitSize := int(goType.Bits()) / 2
		re, err := parseFloatElement(strings.TrimSpace(reText), bitSize)
		if err != nil {
			return value, err
		}
		im, err := parseFloatElement(strings.TrimSpace(imText), bitSize)
		if err != nil {
			return value, err
		}
		value.SetComplex(complex(re, im))
	case dtype.IsUnsigned():
		u, err := strconv.ParseUint(text, 10, int(goType.Bits()))
		if err != nil {
			return value, errors.Wrapf(err, "invalid %s %q", dtype, text)
		}
		value.SetUint(u)
	case dtype.IsInt():
		i, err := strconv.ParseInt(text, 10, int(goType.Bits()))
		if err != nil {
			return value, errors.Wrapf(err, "invalid %s %q", dtype, text)
		}
		value.SetInt(i)
	default:
		return value, errors.Errorf("literals of dtype %s not supported", dtype)
	}
	return value, nil
}

// newTensorLiteralFromText creates the literal of the given (static) shape from the text of its elements, in
// row-major order. A single element for a non-scalar shape is splatted.
func newTensorLiteralFromText(shape shapes.Shape, elements []string) (t tensorLiteral, err error) {
	if !shape.IsStatic() {
		err = errors.Errorf("dense literal requires a static shape, got %s", shape)
		return
	}
	size := shape.Size()
	if len(elements) != size && !(len(elements) == 1 && size > 1) {
		err = errors.Errorf("dense literal has %d elements, but its shape %s has %d", len(elements), shape, size)
		return
	}
	flat := reflect.MakeSlice(reflect.SliceOf(shape.DType.GoType()), size, size)
	for ii := range size {
		text := elements[0]
		if len(elements) > 1 {
			text = elements[ii]
		}
		var elem reflect.Value
		elem, err = parseElement(shape.DType, text)
		if err != nil {
			return
		}
		flat.Index(ii).Set(elem)
	}
	return tensorLiteral{shape: shape.Clone(), flat: flat}, nil
}
