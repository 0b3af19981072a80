package chlo

import (
	"fmt"
	"testing"

	"github.com/gomlx/chlo/types"
	"github.com/gomlx/chlo/types/optypes"
	"github.com/google/go-cmp/cmp"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opTypesOf(statements []*Statement) []optypes.OpType {
	ops := make([]optypes.OpType, len(statements))
	for i, stmt := range statements {
		ops[i] = stmt.OpType
	}
	return ops
}

func TestFindRankSpecializationClusters(t *testing.T) {
	t.Run("chain", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 2, 3, 4))
		y := fn.Input(S(F32, 4))
		a := must.M1(BroadcastAdd(x, y))
		c := must.M1(BroadcastMultiply(must.M1(Tan(a)), y))
		require.NoError(t, fn.Return(c))

		clusters := FindRankSpecializationClusters(fn)
		require.Len(t, clusters, 1)
		cluster := clusters[0]
		assert.Equal(t, []optypes.OpType{optypes.BroadcastAdd, optypes.Tan, optypes.BroadcastMultiply},
			opTypesOf(cluster.Members))
		assert.Equal(t, []*Value{x, y}, cluster.Inputs)
		assert.Equal(t, []*Value{c}, cluster.Outputs)

		minimized, err := cluster.MinimizeInputShapes(types.BroadcastOptimistic)
		require.NoError(t, err)
		require.Len(t, minimized, 2)
		assert.Equal(t, []int{6, 4}, minimized[0].Dimensions)
		assert.Equal(t, []int{4}, minimized[1].Dimensions)

		// Finding clusters doesn't change the function.
		assert.Len(t, fn.Statements, 4)
	})

	t.Run("non-clusterable consumer closes the cluster", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 2, 4))
		y := fn.Input(S(F32, 4))
		a := must.M1(BroadcastAdd(x, y))
		values, _ := must.M2(TopK(a, 2))
		c := must.M1(BroadcastMultiply(a, y))
		require.NoError(t, fn.Return(c, values))

		clusters := FindRankSpecializationClusters(fn)
		require.Len(t, clusters, 2)
		assert.Equal(t, []optypes.OpType{optypes.BroadcastAdd}, opTypesOf(clusters[0].Members))
		assert.Equal(t, []*Value{a}, clusters[0].Outputs)
		assert.Equal(t, []optypes.OpType{optypes.BroadcastMultiply}, opTypesOf(clusters[1].Members))
		assert.Equal(t, []*Value{a, y}, clusters[1].Inputs)
	})

	t.Run("merging", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, Dyn))
		y := fn.Input(S(F32, 1))
		tanX := must.M1(Tan(x))
		tanY := must.M1(Tan(y))
		sum := must.M1(BroadcastAdd(tanX, tanY))
		require.NoError(t, fn.Return(sum, tanY))

		clusters := FindRankSpecializationClusters(fn)
		require.Len(t, clusters, 1)
		assert.Equal(t, []optypes.OpType{optypes.Tan, optypes.Tan, optypes.BroadcastAdd}, opTypesOf(clusters[0].Members))
		assert.Equal(t, []*Value{x, y}, clusters[0].Inputs)
		assert.Equal(t, []*Value{tanY, sum}, clusters[0].Outputs)
	})

	t.Run("explicit broadcast dimensions", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 2, 3))
		y := fn.Input(S(F32, 2))
		sum := must.M1(BroadcastAdd(x, y, 0))
		shapeValue := must.M1(ShapeOf(sum))
		require.NoError(t, fn.Return(sum, shapeValue))
		assert.Empty(t, FindRankSpecializationClusters(fn))
	})
}

func TestFormRankSpecializationClusters(t *testing.T) {
	t.Run("chain", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.NamedInput("x", S(F32, Dyn, 4))
		y := fn.NamedInput("y", S(F32, 4))
		a := must.M1(BroadcastAdd(x, y))
		c := must.M1(BroadcastMultiply(must.M1(Tan(a)), y))
		require.NoError(t, fn.Return(c))

		formed, err := FormRankSpecializationClusters(fn)
		require.NoError(t, err)
		require.Len(t, formed, 1)
		assert.Equal(t, formed[0], c.Producer())
		assert.Equal(t, []optypes.OpType{optypes.RankSpecializationCluster, optypes.FuncReturn}, opTypesOf(fn.Statements))

		program := string(must.M1(b.Build()))
		fmt.Printf("%s program:\n%s", t.Name(), program)
		want := `  func.func @main(%x: tensor<?x4xf32>, %y: tensor<4xf32>) -> tensor<?x4xf32> {
    %2 = "chlo.rank_specialization_cluster"(%x, %y) ({
    ^bb0(%arg0: tensor<?x4xf32>, %arg1: tensor<4xf32>):
      %3 = "chlo.broadcast_add"(%arg0, %arg1) : (tensor<?x4xf32>, tensor<4xf32>) -> tensor<?x4xf32>
      %4 = "chlo.tan"(%3) : (tensor<?x4xf32>) -> tensor<?x4xf32>
      %5 = "chlo.broadcast_multiply"(%4, %arg1) : (tensor<?x4xf32>, tensor<4xf32>) -> tensor<?x4xf32>
      "chlo.rank_specialization_cluster_yield"(%5) : (tensor<?x4xf32>) -> ()
    }) : (tensor<?x4xf32>, tensor<4xf32>) -> tensor<?x4xf32>
    "func.return"(%2) : (tensor<?x4xf32>) -> ()
  }`
		if diff := cmp.Diff(want, program[len("module @test_program {\n"):len(program)-len("\n}\n")]); diff != "" {
			t.Errorf("unexpected program (-want +got):\n%s", diff)
		}
	})

	t.Run("outside user keeps its operand", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 2, 4))
		y := fn.Input(S(F32, 4))
		a := must.M1(BroadcastAdd(x, y))
		values, _ := must.M2(TopK(a, 2))
		c := must.M1(BroadcastMultiply(a, y))
		require.NoError(t, fn.Return(c, values))

		formed := must.M1(FormRankSpecializationClusters(fn))
		require.Len(t, formed, 2)
		assert.Equal(t, []optypes.OpType{
			optypes.RankSpecializationCluster, optypes.TopK, optypes.RankSpecializationCluster, optypes.FuncReturn,
		}, opTypesOf(fn.Statements))

		// The TopK still uses a, now produced by the first cluster.
		assert.Same(t, a, fn.Statements[1].Inputs[0])
		assert.Same(t, formed[0], a.Producer())
		require.NoError(t, b.Verify())
	})

	t.Run("minimum cluster size", func(t *testing.T) {
		b := New("test_program").WithMinClusterSize(2)
		fn := b.Main()
		x := fn.Input(S(F32, 2, 4))
		y := fn.Input(S(F32, 4))
		a := must.M1(BroadcastAdd(x, y))
		values, _ := must.M2(TopK(a, 2))
		isInf := must.M1(IsInf(must.M1(Tan(values))))
		require.NoError(t, fn.Return(isInf))

		formed := must.M1(FormRankSpecializationClusters(fn))
		require.Len(t, formed, 1)
		assert.Equal(t, []optypes.OpType{
			optypes.BroadcastAdd, optypes.TopK, optypes.RankSpecializationCluster, optypes.FuncReturn,
		}, opTypesOf(fn.Statements))
		require.NoError(t, b.Verify())
	})

	t.Run("nothing to cluster", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 2, 4))
		values, _ := must.M2(TopK(x, 2))
		require.NoError(t, fn.Return(values))
		formed := must.M1(FormRankSpecializationClusters(fn))
		assert.Empty(t, formed)
		assert.Len(t, fn.Statements, 2)
	})

	t.Run("idempotent", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, Dyn))
		require.NoError(t, fn.Return(must.M1(Tan(must.M1(Cosh(x))))))
		require.Len(t, must.M1(FormRankSpecializationClusters(fn)), 1)
		text := b.String()
		assert.Empty(t, must.M1(FormRankSpecializationClusters(fn)))
		assert.Equal(t, text, b.String())
	})

	t.Run("body of a cluster", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, Dyn))
		require.NoError(t, fn.Return(must.M1(Tan(x))))
		formed := must.M1(FormRankSpecializationClusters(fn))
		_, err := FormRankSpecializationClusters(formed[0].Body)
		require.Error(t, err)
	})
}
