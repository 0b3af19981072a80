package shapes

import (
	"reflect"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// FromAnyValue attempts to convert a Go "any" value to its expected shape.
// Accepted values are plain-old-data (POD) types (ints, floats, complex, bool), slices (or multiple level of slices) of POD.
//
// Example:
//
//	shape := shapes.FromAnyValue([][]float64{{0, 0}}) // Returns shape (Float64)[1 2]
func FromAnyValue(v any) (shape Shape, err error) {
	shape, _, err = FlattenAnyValue(v)
	return
}

// FlattenAnyValue returns the shape of v (see FromAnyValue) and its values as a flat slice of
// the POD element type (e.g. []float32), in row-major order.
func FlattenAnyValue(v any) (shape Shape, flat any, err error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return Invalid(), nil, errors.New("cannot convert nil to a shape")
	}
	elemType := t
	for elemType.Kind() == reflect.Slice {
		elemType = elemType.Elem()
	}
	flatV := reflect.MakeSlice(reflect.SliceOf(elemType), 0, 1)
	err = shapeForAnyValueRecursive(&shape, reflect.ValueOf(v), t, &flatV)
	if err != nil {
		return Invalid(), nil, err
	}
	return shape, flatV.Interface(), nil
}

func shapeForAnyValueRecursive(shape *Shape, v reflect.Value, t reflect.Type, flat *reflect.Value) error {
	if t.Kind() != reflect.Slice {
		// If it's not a slice, it must be one of the supported scalar types.
		shape.DType = dtypes.FromGoType(t)
		if shape.DType == dtypes.InvalidDType {
			return errors.Errorf("cannot convert type %q to a valid shape (maybe type not supported yet?)", t)
		}
		*flat = reflect.Append(*flat, v)
		return nil
	}

	// Slice: recurse into its element type (again slices or a supported POD).
	t = t.Elem()
	shape.Dimensions = append(shape.Dimensions, v.Len())
	shapePrefix := shape.Clone()

	// The first element is the reference
	if v.Len() == 0 {
		return errors.Errorf("value with empty slice not valid for shape conversion: %T: %v -- it wouldn't be possible to figure out the inner dimensions", v.Interface(), v)
	}
	err := shapeForAnyValueRecursive(shape, v.Index(0), t, flat)
	if err != nil {
		return err
	}

	// Test that other elements have the same shape as the first one.
	for ii := 1; ii < v.Len(); ii++ {
		shapeTest := shapePrefix.Clone()
		err = shapeForAnyValueRecursive(&shapeTest, v.Index(ii), t, flat)
		if err != nil {
			return err
		}
		if !shape.Equal(shapeTest) {
			return errors.Errorf("sub-slices have irregular shapes, found shapes %q, and %q", shape, shapeTest)
		}
	}
	return nil
}
