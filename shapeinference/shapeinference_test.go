package shapeinference

import (
	"testing"

	"github.com/gomlx/chlo/types"
	"github.com/gomlx/chlo/types/optypes"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Aliases
var (
	Bool = dtypes.Bool
	I8   = dtypes.Int8
	I32  = dtypes.Int32
	I64  = dtypes.Int64
	F32  = dtypes.Float32
	F64  = dtypes.Float64
	U64  = dtypes.Uint64

	S = shapes.Make

	Dyn = shapes.DynamicDim

	Optimistic   = types.BroadcastOptimistic
	Conservative = types.BroadcastConservative
)

// must1 panics if there is an error.
func must1[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}
	return value
}

func TestBroadcastOp(t *testing.T) {
	// Invalid data types check.
	var err error
	_, err = BroadcastOp(optypes.BroadcastAnd, S(F32), S(F32), nil, Optimistic)
	require.Error(t, err, "BroadcastAnd(F32, F32)")
	_, err = BroadcastOp(optypes.BroadcastMultiply, S(Bool, 1), S(Bool, 1), nil, Optimistic)
	require.Error(t, err, "BroadcastMultiply(Bool, Bool)")
	_, err = BroadcastOp(optypes.BroadcastShiftLeft, S(F32, 1), S(F32, 1), nil, Optimistic)
	require.Error(t, err, "BroadcastShiftLeft(F32, F32)")
	_, err = BroadcastOp(optypes.BroadcastAdd, S(F32, 1), S(I32, 1), nil, Optimistic)
	require.Error(t, err, "BroadcastAdd(F32, I32)")
	_, err = BroadcastOp(optypes.BroadcastZeta, S(I32, 1), S(I32, 1), nil, Optimistic)
	require.Error(t, err, "BroadcastZeta(I32, I32)")

	// Invalid operation type (not a binary broadcasting op).
	_, err = BroadcastOp(optypes.Acos, S(F32), S(F32), nil, Optimistic)
	require.Error(t, err)
	_, err = BroadcastOp(optypes.BroadcastSelect, S(F32), S(F32), nil, Optimistic)
	require.Error(t, err)
	_, err = BroadcastOp(optypes.Zeta, S(F32), S(F32), nil, Optimistic)
	require.Error(t, err)

	// Same shape.
	intMatrixShape := S(I8, 3, 3)
	output, err := BroadcastOp(optypes.BroadcastOr, intMatrixShape, intMatrixShape, nil, Optimistic)
	require.NoError(t, err)
	assert.True(t, intMatrixShape.Equal(output), "got %s", output)

	// Scalar with matrix, and matrix with scalar.
	assert.True(t, S(F32, 2, 3).Equal(must1(BroadcastOp(optypes.BroadcastAdd, S(F32), S(F32, 2, 3), nil, Optimistic))))
	assert.True(t, S(F32, 2, 3).Equal(must1(BroadcastOp(optypes.BroadcastSubtract, S(F32, 2, 3), S(F32), nil, Optimistic))))

	// Implicit broadcasting.
	assert.True(t, S(F32, 2, 4, 3).Equal(must1(BroadcastOp(optypes.BroadcastMultiply, S(F32, 2, 1, 3), S(F32, 4, 3), nil, Optimistic))))
	_, err = BroadcastOp(optypes.BroadcastAdd, S(F32, 2, 3), S(F32, 3, 2), nil, Optimistic)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompatibleShapes))

	// Result element types.
	assert.True(t, S(Bool, 2).Equal(must1(BroadcastOp(optypes.BroadcastCompare, S(I32, 2), S(I32), nil, Optimistic))))
	assert.True(t, S(dtypes.Complex128, 2).Equal(must1(BroadcastOp(optypes.BroadcastComplex, S(F64, 2), S(F64, 1), nil, Optimistic))))
	_, err = BroadcastOp(optypes.BroadcastComplex, S(dtypes.Float16, 2), S(dtypes.Float16, 2), nil, Optimistic)
	require.Error(t, err)
}

func TestInferBroadcastShape(t *testing.T) {
	t.Run("implicit", func(t *testing.T) {
		// Shapes are left-padded with 1s, so a leading 1 of the higher-rank operand is kept.
		output, err := InferBroadcastShape([]shapes.Shape{S(F32, 1, 5), S(F32, 5)}, nil, Optimistic)
		require.NoError(t, err)
		assert.NoError(t, output.Check(F32, 1, 5))

		_, err = InferBroadcastShape([]shapes.Shape{S(F32, 2), S(F32, 3)}, nil, Optimistic)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIncompatibleShapes))

		// Variadic: reduced pairwise from left to right.
		output, err = InferBroadcastShape([]shapes.Shape{S(F32, 3, 1, 1), S(F32, 4, 1), S(F32, 5)}, nil, Optimistic)
		require.NoError(t, err)
		assert.NoError(t, output.Check(F32, 3, 4, 5))

		_, err = InferBroadcastShape(nil, nil, Optimistic)
		require.Error(t, err)
	})

	t.Run("explicit", func(t *testing.T) {
		// Lower rank operand is the lhs.
		output, err := InferBroadcastShape([]shapes.Shape{S(F32, 3), S(F32, 2, 3, 4)}, []int{1}, Optimistic)
		require.NoError(t, err)
		assert.NoError(t, output.Check(F32, 2, 3, 4))

		// Equal ranks: the rhs is mapped.
		output, err = InferBroadcastShape([]shapes.Shape{S(F32, 2, 3), S(F32, 1, 3)}, []int{0, 1}, Optimistic)
		require.NoError(t, err)
		assert.NoError(t, output.Check(F32, 2, 3))

		// Mapping the other way than implicit broadcasting would.
		output, err = InferBroadcastShape([]shapes.Shape{S(F32, 2, 3), S(F32, 2)}, []int{0}, Optimistic)
		require.NoError(t, err)
		assert.NoError(t, output.Check(F32, 2, 3))
		_, err = InferBroadcastShape([]shapes.Shape{S(F32, 2, 3), S(F32, 2)}, nil, Optimistic)
		require.Error(t, err)

		for _, dims := range [][]int{{}, {1, 0}, {0, 0}, {0, 2}, {-1, 1}, {0}} {
			_, err = InferBroadcastShape([]shapes.Shape{S(F32, 2, 3), S(F32, 2, 3)}, dims, Optimistic)
			require.Error(t, err, "broadcast_dimensions=%v", dims)
			assert.True(t, errors.Is(err, ErrInvalidBroadcastMapping), "broadcast_dimensions=%v: %v", dims, err)
		}

		// Explicit mapping is pairwise only.
		_, err = InferBroadcastShape([]shapes.Shape{S(F32, 2), S(F32, 2), S(F32, 2)}, []int{0}, Optimistic)
		assert.True(t, errors.Is(err, ErrInvalidBroadcastMapping))

		// Incompatible extents in a mapped axis.
		_, err = InferBroadcastShape([]shapes.Shape{S(F32, 2, 3), S(F32, 3)}, []int{0}, Optimistic)
		assert.True(t, errors.Is(err, ErrIncompatibleShapes))
	})

	t.Run("dynamic", func(t *testing.T) {
		testCases := []struct {
			lhs, rhs                 []int
			optimistic, conservative []int
		}{
			{[]int{Dyn}, []int{1}, []int{Dyn}, []int{Dyn}},
			{[]int{Dyn}, []int{5}, []int{5}, []int{Dyn}},
			{[]int{5}, []int{Dyn}, []int{5}, []int{Dyn}},
			{[]int{Dyn}, []int{Dyn}, []int{Dyn}, []int{Dyn}},
			{[]int{2, Dyn}, []int{Dyn, 3}, []int{2, 3}, []int{Dyn, Dyn}},
			{[]int{Dyn, 1}, []int{7}, []int{Dyn, 7}, []int{Dyn, 7}},
		}
		for _, tc := range testCases {
			output := must1(InferBroadcastShape([]shapes.Shape{S(F32, tc.lhs...), S(F32, tc.rhs...)}, nil, Optimistic))
			assert.Equal(t, tc.optimistic, output.Dimensions, "optimistic %v, %v", tc.lhs, tc.rhs)
			output = must1(InferBroadcastShape([]shapes.Shape{S(F32, tc.lhs...), S(F32, tc.rhs...)}, nil, Conservative))
			assert.Equal(t, tc.conservative, output.Dimensions, "conservative %v, %v", tc.lhs, tc.rhs)
		}

		// Static extents of different operands must agree whatever the policy.
		for _, policy := range []types.BroadcastPolicy{Optimistic, Conservative} {
			_, err := InferBroadcastShape([]shapes.Shape{S(F32, Dyn), S(F32, 3), S(F32, 4)}, nil, policy)
			require.Error(t, err, "policy=%s", policy)
			assert.True(t, errors.Is(err, ErrIncompatibleShapes))
		}
		output := must1(InferBroadcastShape([]shapes.Shape{S(F32, Dyn), S(F32, 3), S(F32, 1, 3)}, nil, Conservative))
		assert.Equal(t, []int{1, Dyn}, output.Dimensions)
	})

	t.Run("unranked", func(t *testing.T) {
		output, err := InferBroadcastShape([]shapes.Shape{shapes.MakeUnranked(F32), S(F32, 2, 3)}, nil, Optimistic)
		require.NoError(t, err)
		assert.True(t, output.IsUnranked())
		assert.Equal(t, F32, output.DType)

		output, err = InferBroadcastShape([]shapes.Shape{S(F32, 2, 3), shapes.MakeUnranked(F32)}, []int{0, 1}, Optimistic)
		require.NoError(t, err)
		assert.True(t, output.IsUnranked())

		// Mapping order can still be checked.
		_, err = InferBroadcastShape([]shapes.Shape{S(F32, 2, 3), shapes.MakeUnranked(F32)}, []int{1, 0}, Optimistic)
		assert.True(t, errors.Is(err, ErrInvalidBroadcastMapping))
	})
}

func TestCompare(t *testing.T) {
	output, err := Compare(S(F32, 2, 1), S(F32, 3), nil, types.CompareLT, types.CompareFloat, Optimistic)
	require.NoError(t, err)
	assert.NoError(t, output.Check(Bool, 2, 3))

	_, err = Compare(S(I32, 2), S(I32, 2), nil, types.CompareEQ, types.CompareFloat, Optimistic)
	require.Error(t, err)
	_, err = Compare(S(U64, 2), S(U64, 2), nil, types.CompareEQ, types.CompareSigned, Optimistic)
	require.Error(t, err)
	_, err = Compare(S(Bool, 2), S(Bool, 2), nil, types.CompareNE, types.CompareUnsigned, Optimistic)
	require.NoError(t, err)
	_, err = Compare(S(F32, 2), S(F32, 2), nil, types.ComparisonDirection(17), types.CompareFloat, Optimistic)
	require.Error(t, err)
	_, err = Compare(S(F32, 2), S(I32, 2), nil, types.CompareEQ, types.CompareFloat, Optimistic)
	require.Error(t, err)
}

func TestSelect(t *testing.T) {
	output, err := Select(S(Bool, 2, 1), S(F32, 3), S(F32), Optimistic)
	require.NoError(t, err)
	assert.NoError(t, output.Check(F32, 2, 3))

	_, err = Select(S(F32, 2), S(F32, 2), S(F32, 2), Optimistic)
	require.Error(t, err, "pred must be boolean")
	_, err = Select(S(Bool, 2), S(F32, 2), S(F64, 2), Optimistic)
	require.Error(t, err, "onTrue and onFalse dtypes must match")
	_, err = Select(S(Bool, 2), S(F32, 3), S(F32, 3), Optimistic)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompatibleShapes))
}

func TestComplex(t *testing.T) {
	output, err := Complex(S(F32, 2), S(F32, 1), nil, Optimistic)
	require.NoError(t, err)
	assert.NoError(t, output.Check(dtypes.Complex64, 2))
	_, err = Complex(S(I32, 2), S(I32, 2), nil, Optimistic)
	require.Error(t, err)
}

func TestUnaryOp(t *testing.T) {
	// Invalid data types check.
	_, err := UnaryOp(optypes.Acos, S(I32))
	require.Error(t, err)
	_, err = UnaryOp(optypes.Conj, S(F32))
	require.Error(t, err)
	_, err = UnaryOp(optypes.Square, S(Bool))
	require.Error(t, err)
	_, err = UnaryOp(optypes.Lgamma, S(dtypes.Complex64))
	require.Error(t, err)

	// Invalid operation type (not unary op).
	_, err = UnaryOp(optypes.BroadcastAdd, S(F32))
	require.Error(t, err)
	_, err = UnaryOp(optypes.ConstantLike, S(F32))
	require.Error(t, err)

	// Valid operations
	floatShape := S(F32, 2, Dyn)
	assert.True(t, floatShape.Equal(must1(UnaryOp(optypes.Tan, floatShape))))
	assert.True(t, S(Bool, 2, Dyn).Equal(must1(UnaryOp(optypes.IsPosInf, floatShape))))
	assert.True(t, S(I8, 3).Equal(must1(UnaryOp(optypes.Square, S(I8, 3)))))
	assert.True(t, S(dtypes.Complex64, 3).Equal(must1(UnaryOp(optypes.Conj, S(dtypes.Complex64, 3)))))
	unranked := shapes.MakeUnranked(F32)
	assert.True(t, unranked.Equal(must1(UnaryOp(optypes.Erf, unranked))))
}

func TestBinaryOp(t *testing.T) {
	output, err := BinaryOp(optypes.Zeta, S(F32, 2, Dyn), S(F32, Dyn, 3))
	require.NoError(t, err)
	assert.NoError(t, output.Check(F32, 2, 3))
	assert.True(t, output.IsStatic())

	_, err = BinaryOp(optypes.NextAfter, S(F32, 2), S(F32, 1))
	require.Error(t, err, "non-broadcasting ops require compatible shapes")
	assert.True(t, errors.Is(err, ErrIncompatibleShapes))
	_, err = BinaryOp(optypes.Polygamma, S(F32, 2), S(F32, 2, 1))
	require.Error(t, err)
	_, err = BinaryOp(optypes.BroadcastZeta, S(F32, 2), S(F32, 2))
	require.Error(t, err)
}

func TestConstantLikeAndTopK(t *testing.T) {
	output, err := ConstantLike(S(F32, 2, Dyn), F32)
	require.NoError(t, err)
	assert.True(t, S(F32, 2, Dyn).Equal(output))
	_, err = ConstantLike(S(F32, 2), I32)
	require.Error(t, err)

	values, indices, err := TopK(S(F32, 4, 10), 3)
	require.NoError(t, err)
	assert.NoError(t, values.Check(F32, 4, 3))
	assert.NoError(t, indices.Check(I32, 4, 3))
	_, _, err = TopK(S(F32, 4, 2), 3)
	require.Error(t, err)
	_, _, err = TopK(S(F32), 1)
	require.Error(t, err)
	values, _, err = TopK(S(F32, Dyn, Dyn), 5)
	require.NoError(t, err)
	assert.Equal(t, []int{Dyn, 5}, values.Dimensions)
}
