package shapeinference

import (
	"math/rand/v2"
	"testing"

	"github.com/gomlx/chlo/types"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dimsOf(shapesList []shapes.Shape) [][]int {
	dims := make([][]int, len(shapesList))
	for ii, s := range shapesList {
		dims[ii] = s.Dimensions
		if dims[ii] == nil {
			dims[ii] = []int{}
		}
	}
	return dims
}

func TestMinimizeBroadcastShapes(t *testing.T) {
	testCases := []struct {
		name     string
		operands [][]int
		want     [][]int
	}{
		{"example", [][]int{{1, 2, 3, 1, 2, 1}, {1, 1, 1, 2, 3}}, [][]int{{6, 2, 1}, {2, 3}}},
		{"same shapes", [][]int{{2, 3, 4}, {2, 3, 4}}, [][]int{{24}, {24}}},
		{"scalar", [][]int{{}, {2, 3, 4}}, [][]int{{}, {24}}},
		{"all ones", [][]int{{1, 1}, {1}}, [][]int{{}, {}}},
		{"trailing broadcast", [][]int{{2, 3, 4}, {4}}, [][]int{{6, 4}, {4}}},
		{"leading broadcast", [][]int{{2, 3, 4}, {2, 1, 1}}, [][]int{{2, 12}, {2, 1}}},
		{"interleaved", [][]int{{2, 1, 3, 1}, {1, 5, 1, 7}}, [][]int{{2, 1, 3, 1}, {5, 1, 7}}},
		{"three operands", [][]int{{5, 1, 2, 3}, {1, 4, 2, 3}, {3}}, [][]int{{5, 1, 2, 3}, {4, 2, 3}, {3}}},
		{"one dynamic non-one", [][]int{{Dyn, 3}, {1, 1}}, [][]int{{Dyn}, {}}},
		{"dynamic with two non-ones", [][]int{{Dyn, 3}, {Dyn, 3}}, [][]int{{Dyn, 3}, {Dyn, 3}}},
		{"dynamic next to static", [][]int{{2, 3, Dyn}, {2, 3, Dyn}}, [][]int{{6, Dyn}, {6, Dyn}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			operands := make([]shapes.Shape, len(tc.operands))
			for ii, dims := range tc.operands {
				operands[ii] = S(F32, dims...)
			}
			outputs, err := MinimizeBroadcastShapes(operands, Optimistic)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, dimsOf(outputs)); diff != "" {
				t.Errorf("MinimizeBroadcastShapes(%v) mismatch (-want +got):\n%s", tc.operands, diff)
			}
			for _, output := range outputs {
				assert.Equal(t, F32, output.DType)
			}
		})
	}
}

func TestMinimizeBroadcastShapesErrors(t *testing.T) {
	_, err := MinimizeBroadcastShapes([]shapes.Shape{S(F32, 2), S(F32, 3)}, Optimistic)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompatibleShapes))

	_, err = MinimizeBroadcastShapes([]shapes.Shape{shapes.MakeUnranked(F32), S(F32, 3)}, Optimistic)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompatibleShapes))

	_, err = MinimizeBroadcastShapes(nil, Optimistic)
	require.Error(t, err)

	// Mixed dtypes are accepted: only extents are minimized.
	outputs, err := MinimizeBroadcastShapes([]shapes.Shape{S(Bool, 2, 3), S(F32, 2, 3)}, Optimistic)
	require.NoError(t, err)
	assert.True(t, S(Bool, 6).Equal(outputs[0]))
	assert.True(t, S(F32, 6).Equal(outputs[1]))
}

// randomCompatibleShapes generates between 1 and 4 static shapes that broadcast together.
func randomCompatibleShapes(rng *rand.Rand) []shapes.Shape {
	operands, _ := randomBroadcastOperands(rng)
	return operands
}

// randomBroadcastOperands generates between 1 and 4 static shapes that broadcast together, and the dimensions of
// the broadcast result.
func randomBroadcastOperands(rng *rand.Rand) (operands []shapes.Shape, result []int) {
	rank := rng.IntN(6)
	result = make([]int, rank)
	for axis := range result {
		result[axis] = 1 + rng.IntN(4)
	}
	operands = make([]shapes.Shape, 1+rng.IntN(4))
	for ii := range operands {
		operandRank := rng.IntN(rank + 1)
		dims := make([]int, operandRank)
		for axis := range dims {
			dim := result[rank-operandRank+axis]
			if rng.IntN(3) == 0 {
				dim = 1
			}
			dims[axis] = dim
		}
		operands[ii] = S(F64, dims...)
	}
	return operands, result
}

// broadcastSum evaluates the implicit broadcast of the sum of the operands, given their flat (row-major) values.
func broadcastSum(t *testing.T, operands []shapes.Shape, values [][]float64) (shapes.Shape, []float64) {
	output := must1(InferBroadcastShape(operands, nil, Optimistic))
	rank := output.Rank()
	result := make([]float64, output.Size())
	index := make([]int, rank)
	for flatIdx := range result {
		// Multi-dimensional index of flatIdx in output.
		remainder := flatIdx
		for axis := rank - 1; axis >= 0; axis-- {
			index[axis] = remainder % output.Dimensions[axis]
			remainder /= output.Dimensions[axis]
		}
		for ii, operand := range operands {
			offset := rank - operand.Rank()
			operandFlatIdx := 0
			for axis, dim := range operand.Dimensions {
				axisIdx := index[offset+axis]
				if dim == 1 {
					axisIdx = 0
				}
				operandFlatIdx = operandFlatIdx*dim + axisIdx
			}
			require.Less(t, operandFlatIdx, len(values[ii]))
			result[flatIdx] += values[ii][operandFlatIdx]
		}
	}
	return output, result
}

func totalRank(shapesList []shapes.Shape) int {
	var total int
	for _, s := range shapesList {
		total += s.Rank()
	}
	return total
}

func TestMinimizeBroadcastShapesProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 0))
	for range 500 {
		operands := randomCompatibleShapes(rng)
		minimized, err := MinimizeBroadcastShapes(operands, Optimistic)
		require.NoError(t, err, "operands=%v", operands)
		require.Len(t, minimized, len(operands))

		// Each minimized shape is a reshape of its operand.
		values := make([][]float64, len(operands))
		for ii, operand := range operands {
			require.Equal(t, operand.Size(), minimized[ii].Size(), "operand=%s, minimized=%s", operand, minimized[ii])
			require.LessOrEqual(t, minimized[ii].Rank(), operand.Rank())
			values[ii] = make([]float64, operand.Size())
			for jj := range values[ii] {
				// Each operand uses its own hexadecimal digit, so sums of different elements don't collide.
				values[ii][jj] = float64(rng.IntN(10)) * float64(int(1)<<(4*ii))
			}
		}

		// Broadcasting the minimized shapes yields the same values as broadcasting the original shapes.
		want, wantValues := broadcastSum(t, operands, values)
		got, gotValues := broadcastSum(t, minimized, values)
		require.Equal(t, want.Size(), got.Size(), "operands=%v, minimized=%v", operands, minimized)
		if diff := cmp.Diff(wantValues, gotValues); diff != "" {
			t.Fatalf("broadcast of minimized shapes %v differs from the broadcast of %v (-want +got):\n%s",
				minimized, operands, diff)
		}

		// Idempotence.
		again, err := MinimizeBroadcastShapes(minimized, Optimistic)
		require.NoError(t, err)
		assert.Equal(t, dimsOf(minimized), dimsOf(again))
		assert.GreaterOrEqual(t, totalRank(again), totalRank(minimized))
	}
}

// instantiate returns a copy of the operands where each dynamic extent is replaced either by 1 or by the extent
// of the broadcast result at that position, which is what the operands can be at runtime.
func instantiate(rng *rand.Rand, operands []shapes.Shape, result []int) []shapes.Shape {
	concrete := make([]shapes.Shape, len(operands))
	for ii, operand := range operands {
		concrete[ii] = operand.Clone()
		offset := len(result) - operand.Rank()
		for axis, dim := range operand.Dimensions {
			if shapes.IsDynamicDim(dim) {
				concrete[ii].Dimensions[axis] = 1
				if rng.IntN(2) == 0 {
					concrete[ii].Dimensions[axis] = result[offset+axis]
				}
			}
		}
	}
	return concrete
}

// runtimeMinimized returns the runtime extents of the minimized shapes for the given instantiation of the
// operands: each axis of a minimized shape is the product of the concrete extents of its run of positions.
func runtimeMinimized(t *testing.T, operands, minimized, concrete []shapes.Shape) []shapes.Shape {
	rank, runs := minimizationRuns(operands)
	outputs := make([]shapes.Shape, len(minimized))
	for ii, output := range minimized {
		stripped := len(runs) - output.Rank()
		require.GreaterOrEqual(t, stripped, 0, "minimized=%s, runs=%v", output, runs)
		dims := make([]int, output.Rank())
		for axis, dim := range output.Dimensions {
			dims[axis] = 1
			for _, position := range runs[stripped+axis] {
				dims[axis] *= alignedExtent(concrete[ii], rank, position)
			}
			if !shapes.IsDynamicDim(dim) {
				require.Equal(t, dim, dims[axis], "static extent of minimized %s changed at runtime (%s)",
					output, concrete[ii])
			}
		}
		outputs[ii] = S(output.DType, dims...)
	}
	return outputs
}

func TestMinimizeBroadcastShapesDynamic(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		operands, result := randomBroadcastOperands(rng)
		for _, operand := range operands {
			for axis := range operand.Dimensions {
				if rng.IntN(3) == 0 {
					operand.Dimensions[axis] = Dyn
				}
			}
		}
		// Sometimes change a static extent, so the operands may no longer broadcast together.
		perturbed := false
		if operand := operands[rng.IntN(len(operands))]; operand.Rank() > 0 && rng.IntN(5) == 0 {
			axis := rng.IntN(operand.Rank())
			if !shapes.IsDynamicDim(operand.Dimensions[axis]) {
				operand.Dimensions[axis]++
				perturbed = true
			}
		}

		var byPolicy [][]shapes.Shape
		for _, policy := range []types.BroadcastPolicy{Optimistic, Conservative} {
			_, inferErr := InferBroadcastShape(operands, nil, policy)
			minimized, err := MinimizeBroadcastShapes(operands, policy)
			if inferErr != nil {
				require.Error(t, err, "%s: minimized %v, but they don't broadcast: %v", policy, operands, inferErr)
				continue
			}
			require.NoError(t, err, "%s: operands=%v", policy, operands)
			byPolicy = append(byPolicy, minimized)
		}
		if len(byPolicy) == 0 {
			continue
		}
		require.Len(t, byPolicy, 2, "operands %v broadcast under only one of the policies", operands)
		if diff := cmp.Diff(dimsOf(byPolicy[0]), dimsOf(byPolicy[1])); diff != "" {
			t.Fatalf("minimized shapes of %v depend on the policy (-optimistic +conservative):\n%s", operands, diff)
		}
		if perturbed {
			continue
		}

		minimized := byPolicy[0]
		for range 3 {
			concrete := instantiate(rng, operands, result)
			runtime := runtimeMinimized(t, operands, minimized, concrete)
			_, err := InferBroadcastShape(runtime, nil, Optimistic)
			require.NoError(t, err, "minimized %v of %v don't broadcast at runtime as %v (operands %v)",
				minimized, operands, runtime, concrete)

			values := make([][]float64, len(concrete))
			for ii, operand := range concrete {
				require.Equal(t, operand.Size(), runtime[ii].Size(), "operand=%s, minimized=%s", operand, runtime[ii])
				values[ii] = make([]float64, operand.Size())
				for jj := range values[ii] {
					values[ii][jj] = float64(rng.IntN(10)) * float64(int(1)<<(4*ii))
				}
			}
			_, wantValues := broadcastSum(t, concrete, values)
			_, gotValues := broadcastSum(t, runtime, values)
			if diff := cmp.Diff(wantValues, gotValues); diff != "" {
				t.Fatalf("broadcast of minimized %v (runtime %v) differs from the broadcast of %v (-want +got):\n%s",
					minimized, runtime, concrete, diff)
			}
		}
	}
}

func TestInferBroadcastShapeCommutative(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for range 500 {
		operands := randomCompatibleShapes(rng)
		if len(operands) < 2 {
			continue
		}
		lhs, rhs := operands[0], operands[1]
		// Sprinkle some dynamic extents.
		if lhs.Rank() > 0 && rng.IntN(2) == 0 {
			lhs.Dimensions[rng.IntN(lhs.Rank())] = Dyn
		}
		for _, policy := range []types.BroadcastPolicy{Optimistic, Conservative} {
			ab, errAB := InferBroadcastShape([]shapes.Shape{lhs, rhs}, nil, policy)
			ba, errBA := InferBroadcastShape([]shapes.Shape{rhs, lhs}, nil, policy)
			require.NoError(t, errAB, "%s: %s, %s", policy, lhs, rhs)
			require.NoError(t, errBA, "%s: %s, %s", policy, rhs, lhs)
			assert.True(t, ab.Equal(ba), "%s: %s x %s -> %s, but %s x %s -> %s", policy, lhs, rhs, ab, rhs, lhs, ba)
		}
	}
}
