package chlo

import (
	"fmt"
	"testing"

	"github.com/gomlx/chlo/shapeinference"
	"github.com/gomlx/chlo/types"
	"github.com/gomlx/chlo/types/optypes"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Aliases to make the tests more readable.
const (
	F32 = dtypes.Float32
	F64 = dtypes.Float64
	I64 = dtypes.Int64
	Dyn = shapes.DynamicDim
)

var S = shapes.Make

func TestBuilder(t *testing.T) {
	t.Run("no inputs", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		c1 := must.M1(fn.ConstantFromScalar(1.0))
		c2 := must.M1(fn.ConstantFromScalar(2.0))
		sum := must.M1(BroadcastAdd(c1, c2))
		require.NoError(t, fn.Return(sum))
		program := string(must.M1(b.Build()))
		fmt.Printf("%s program:\n%s", t.Name(), program)
		assert.Equal(t, `module @test_program {
  func.func @main() -> tensor<f64> {
    %0 = "chlo.constant"(){value = dense<1.0> : tensor<f64>} : () -> tensor<f64>
    %1 = "chlo.constant"(){value = dense<2.0> : tensor<f64>} : () -> tensor<f64>
    %2 = "chlo.broadcast_add"(%0, %1) : (tensor<f64>, tensor<f64>) -> tensor<f64>
    "func.return"(%2) : (tensor<f64>) -> ()
  }
}
`, program)
	})

	t.Run("with inputs", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.NamedInput("x", S(F32, 2, 3))
		y := fn.NamedInput("y", S(F32, 3))
		product := must.M1(BroadcastMultiply(x, y, 1))
		require.NoError(t, fn.Return(product))
		program := string(must.M1(b.Build()))
		fmt.Printf("%s program:\n%s", t.Name(), program)
		assert.Contains(t, program,
			`  func.func @main(%x: tensor<2x3xf32>, %y: tensor<3xf32>) -> tensor<2x3xf32> {
    %0 = "chlo.broadcast_multiply"(%x, %y){broadcast_dimensions = array<i64: 1>} : (tensor<2x3xf32>, tensor<3xf32>) -> tensor<2x3xf32>
    "func.return"(%0) : (tensor<2x3xf32>) -> ()
  }`)
	})

	t.Run("dynamic shapes", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, Dyn, 3))
		y := fn.Input(shapes.MakeUnranked(F32))
		sum := must.M1(BroadcastAdd(x, x))
		cmp := must.M1(BroadcastCompare(sum, y, types.CompareLT, types.CompareFloat))
		require.NoError(t, fn.Return(sum, cmp))
		program := string(must.M1(b.Build()))
		fmt.Printf("%s program:\n%s", t.Name(), program)
		assert.Contains(t, program,
			`  func.func @main(%arg0: tensor<?x3xf32>, %arg1: tensor<*xf32>) -> (tensor<?x3xf32>, tensor<*xi1>) {
    %0 = "chlo.broadcast_add"(%arg0, %arg0) : (tensor<?x3xf32>, tensor<?x3xf32>) -> tensor<?x3xf32>
    %1 = "chlo.broadcast_compare"(%0, %arg1){compare_type = #chlo<comparison_type FLOAT>, comparison_direction = #chlo<comparison_direction LT>} : (tensor<?x3xf32>, tensor<*xf32>) -> tensor<*xi1>
    "func.return"(%0, %1) : (tensor<?x3xf32>, tensor<*xi1>) -> ()
  }`)
	})

	t.Run("unique names", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.NamedInput("x", S(F32))
		x2 := fn.NamedInput("x", S(F32))
		arg := fn.Input(S(F32))
		assert.Equal(t, "x", x.Name())
		assert.Equal(t, "x_1", x2.Name())
		assert.Equal(t, "arg0", arg.Name())
	})
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("no main", func(t *testing.T) {
		b := New("test_program")
		fn := b.NewFunction("not_main")
		c1 := must.M1(fn.ConstantFromScalar(1.0))
		require.NoError(t, fn.Return(c1))
		_, err := b.Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "program must have a main function")
	})

	t.Run("incompatible shapes", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 2, 3))
		y := fn.Input(S(F32, 4))
		_, err := BroadcastAdd(x, y)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shapeinference.ErrIncompatibleShapes))
		assert.Empty(t, fn.Statements, "a failed construction must not change the function")
	})

	t.Run("invalid broadcast dimensions", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 2, 3))
		y := fn.Input(S(F32, 3))
		_, err := BroadcastAdd(x, y, 2)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shapeinference.ErrInvalidBroadcastMapping))
	})

	t.Run("values from different functions", func(t *testing.T) {
		b := New("test_program")
		x := b.Main().Input(S(F32))
		y := b.NewFunction("other").Input(S(F32))
		_, err := BroadcastAdd(x, y)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "different function")
	})

	t.Run("after return", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32))
		require.NoError(t, fn.Return(x))
		_, err := Tan(x)
		require.Error(t, err)
		require.Error(t, fn.Return(x))
	})

	t.Run("operand types", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 3))
		_, err := BroadcastShiftLeft(x, x)
		require.Error(t, err)
		_, err = Conj(x)
		require.Error(t, err)
	})
}

func TestAddOp(t *testing.T) {
	b := New("test_program")
	fn := b.Main()
	x := fn.Input(S(F32, 2, 4))
	y := fn.Input(S(F32, 4))

	outputs, err := fn.AddOp(optypes.BroadcastAdd, nil, x, y)
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.NoError(t, outputs[0].Shape().Check(F32, 2, 4))

	outputs, err = fn.AddOp(optypes.BroadcastSubtract, map[string]any{"broadcast_dimensions": []int{1}}, x, y)
	require.NoError(t, err)
	assert.NoError(t, outputs[0].Shape().Check(F32, 2, 4))

	outputs, err = fn.AddOp(optypes.TopK, map[string]any{"k": 2}, x)
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	assert.NoError(t, outputs[0].Shape().Check(F32, 2, 2))
	assert.NoError(t, outputs[1].Shape().Check(dtypes.Int32, 2, 2))

	outputs, err = fn.AddOp(optypes.Constant, map[string]any{"value": [][]float32{{1, 2}, {3, 4}}})
	require.NoError(t, err)
	assert.NoError(t, outputs[0].Shape().Check(F32, 2, 2))

	outputs, err = fn.AddOp(optypes.ConstantLike, map[string]any{"value": float32(0)}, x)
	require.NoError(t, err)
	assert.NoError(t, outputs[0].Shape().Check(F32, 2, 4))

	// Errors: nothing is added.
	numStatements := len(fn.Statements)
	_, err = fn.AddOp(optypes.BroadcastAdd, map[string]any{"k": 1}, x, y)
	assert.ErrorContains(t, err, "not supported")
	_, err = fn.AddOp(optypes.BroadcastAdd, nil, x)
	assert.ErrorContains(t, err, "requires 2 operands")
	_, err = fn.AddOp(optypes.Reshape, nil, x)
	assert.Error(t, err)
	_, err = fn.AddOp(optypes.RankSpecializationCluster, nil, x)
	assert.Error(t, err)
	_, err = fn.AddOp(optypes.ConstantLike, map[string]any{"value": 1.0}, x)
	assert.Error(t, err, "value dtype must match the operand")
	_, err = fn.AddOp(optypes.BroadcastCompare, nil, x, y)
	assert.ErrorContains(t, err, "comparison_direction")
	assert.Len(t, fn.Statements, numStatements)
}

func TestShapeOps(t *testing.T) {
	b := New("test_program")
	fn := b.Main()
	x := fn.Input(S(F32, Dyn, 4))
	y := fn.Input(shapes.MakeUnranked(F32))

	xShape := must.M1(ShapeOf(x))
	assert.NoError(t, xShape.Shape().Check(I64, 2))
	yShape := must.M1(ShapeOf(y))
	assert.NoError(t, yShape.Shape().Check(I64, Dyn))

	broadcast := must.M1(ShapeBroadcast(xShape, yShape))
	assert.NoError(t, broadcast.Shape().Check(I64, Dyn))

	minimized := must.M1(MinimumBroadcastShapes(xShape, yShape))
	require.Len(t, minimized, 2)
	for _, v := range minimized {
		assert.NoError(t, v.Shape().Check(I64, Dyn))
	}

	_, err := ShapeBroadcast(x)
	assert.Error(t, err, "operands must be shape values")
}

func TestReshape(t *testing.T) {
	b := New("test_program")
	fn := b.Main()
	x := fn.Input(S(F32, 2, 3, 4))

	reshaped := must.M1(Reshape(x, 6, -1))
	assert.NoError(t, reshaped.Shape().Check(F32, 6, 4))

	_, err := Reshape(x, 5, -1)
	assert.True(t, errors.Is(err, shapeinference.ErrNonDivisibleReshape), "got %v", err)
	_, err = Reshape(x, -1, -1)
	assert.True(t, errors.Is(err, shapeinference.ErrMultipleWildcards), "got %v", err)
	_, err = Reshape(x, 5, 5)
	assert.True(t, errors.Is(err, shapeinference.ErrElementCountMismatch), "got %v", err)
	_, err = Reshape(x, 2, -3)
	assert.True(t, errors.Is(err, shapeinference.ErrNegativeExtent), "got %v", err)

	require.NoError(t, fn.Return(reshaped))
	program := string(must.M1(b.Build()))
	assert.Contains(t, program,
		`%0 = "stablehlo.reshape"(%arg0) : (tensor<2x3x4xf32>) -> tensor<6x4xf32>`)
}

func TestDynamicReshape(t *testing.T) {
	t.Run("constant target", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 2, 3))
		target := must.M1(fn.Constant([]int64{3, -1}))
		reshaped := must.M1(DynamicReshape(x, target))
		assert.NoError(t, reshaped.Shape().Check(F32, 3, 2))
		require.NoError(t, fn.Return(reshaped))
		require.NoError(t, b.Verify())
	})

	t.Run("constant target with dynamic operand", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, Dyn, 3))
		target := must.M1(fn.Constant([]int64{3, -1}))
		reshaped := must.M1(DynamicReshape(x, target))
		assert.True(t, reshaped.Shape().Equal(S(F32, 3, Dyn)), "got %s", reshaped.Shape())
	})

	t.Run("shape of static value", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 6))
		y := fn.Input(S(F32, 2, 3))
		reshaped := must.M1(DynamicReshape(x, must.M1(ShapeOf(y))))
		assert.NoError(t, reshaped.Shape().Check(F32, 2, 3))
	})

	t.Run("runtime target", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 6))
		target := fn.Input(S(I64, 2))
		reshaped := must.M1(DynamicReshape(x, target))
		assert.True(t, reshaped.Shape().Equal(S(F32, Dyn, Dyn)), "got %s", reshaped.Shape())

		unknownLength := fn.Input(S(I64, Dyn))
		reshaped = must.M1(DynamicReshape(x, unknownLength))
		assert.True(t, reshaped.Shape().IsUnranked())
	})

	t.Run("invalid target", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 2, 3))
		_, err := DynamicReshape(x, must.M1(fn.Constant([]int64{4, -1})))
		assert.True(t, errors.Is(err, shapeinference.ErrNonDivisibleReshape), "got %v", err)
		_, err = DynamicReshape(x, must.M1(fn.Constant([]int64{-1, -1})))
		assert.True(t, errors.Is(err, shapeinference.ErrMultipleWildcards), "got %v", err)
	})
}

func TestConstantLikeAndSelect(t *testing.T) {
	b := New("test_program")
	fn := b.Main()
	x := fn.Input(S(F32, Dyn, 3))
	pred := fn.Input(S(dtypes.Bool, 3))
	zeros := must.M1(ConstantLike(x, float32(0)))
	assert.True(t, zeros.Shape().Equal(x.Shape()))
	selected := must.M1(BroadcastSelect(pred, x, zeros))
	assert.True(t, selected.Shape().Equal(S(F32, Dyn, 3)), "got %s", selected.Shape())
	require.NoError(t, fn.Return(selected))
	program := string(must.M1(b.Build()))
	assert.Contains(t, program,
		`%0 = "chlo.constant_like"(%arg0){value = dense<0.0> : tensor<f32>} : (tensor<?x3xf32>) -> tensor<?x3xf32>`)

	_, err := BroadcastSelect(x, x, zeros)
	assert.Error(t, err, "predicate must be boolean")
}
