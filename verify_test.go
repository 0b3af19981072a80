package chlo

import (
	"strings"
	"testing"

	"github.com/gomlx/chlo/shapeinference"
	"github.com/gomlx/chlo/types"
	"github.com/gomlx/chlo/types/optypes"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestVerify(t *testing.T) {
	t.Run("valid program", func(t *testing.T) {
		b := buildTestProgram(t)
		require.NoError(t, b.Verify())
	})

	t.Run("wrong declared shape", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 2, 3))
		y := fn.Input(S(F32, 3))
		sum := must.M1(BroadcastAdd(x, y))
		require.NoError(t, fn.Return(sum))
		sum.shape = S(F32, 3, 3)
		fn.Outputs[0] = sum.shape
		err := b.Verify()
		require.Error(t, err)
		assert.True(t, errors.Is(err, shapeinference.ErrVerificationFailure))
		assert.Contains(t, err.Error(), "inferred shape")
	})

	t.Run("missing return", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32))
		must.M1(Tan(x))
		err := b.Verify()
		require.Error(t, err)
		assert.True(t, errors.Is(err, shapeinference.ErrVerificationFailure))
		assert.Contains(t, err.Error(), "missing func.return")
	})

	t.Run("all failures are reported", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 2))
		a := must.M1(Tan(x))
		c := must.M1(Cosh(a))
		require.NoError(t, fn.Return(c))
		a.shape = S(F32, 3)
		err := b.Verify()
		require.Error(t, err)
		// Tan's result doesn't match its operand, and Cosh's result doesn't match the (now wrong) operand.
		assert.Len(t, multierr.Errors(err), 2)
	})

	t.Run("invalid attribute", func(t *testing.T) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, 2))
		lt := must.M1(BroadcastCompare(x, x, types.CompareLT, types.CompareFloat))
		require.NoError(t, fn.Return(lt))
		lt.Producer().Attributes["compare_type"] = types.CompareSigned
		err := b.Verify()
		require.Error(t, err)
		assert.True(t, errors.Is(err, shapeinference.ErrVerificationFailure))
	})

	t.Run("dynamic reshape refinement", func(t *testing.T) {
		text := `module @m {
  func.func @main(%arg0: tensor<2x3xf32>) -> tensor<?x?xf32> {
    %0 = "chlo.constant"(){value = dense<[3, -1]> : tensor<2xi64>} : () -> tensor<2xi64>
    %1 = "chlo.dynamic_reshape"(%arg0, %0) : (tensor<2x3xf32>, tensor<2xi64>) -> tensor<?x?xf32>
    "func.return"(%1) : (tensor<?x?xf32>) -> ()
  }
}
`
		b := must.M1(Parse(text))
		require.NoError(t, b.Verify())

		// A declared static shape that contradicts the constant is not a refinement.
		b = must.M1(Parse(strings.ReplaceAll(text, "?x?", "2x3")))
		err := b.Verify()
		require.Error(t, err)
		assert.True(t, errors.Is(err, shapeinference.ErrVerificationFailure))
	})

	t.Run("terminator in the middle", func(t *testing.T) {
		text := `module @m {
  func.func @main(%arg0: tensor<f32>) -> tensor<f32> {
    "func.return"(%arg0) : (tensor<f32>) -> ()
    %0 = "chlo.tan"(%arg0) : (tensor<f32>) -> tensor<f32>
  }
}
`
		err := must.M1(Parse(text)).Verify()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a terminator")
	})

	t.Run("duplicate function", func(t *testing.T) {
		b := New("test_program")
		for range 2 {
			fn := b.Main()
			require.NoError(t, fn.Return(fn.Input(S(F32))))
		}
		err := b.Verify()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate function name")
	})
}

func TestVerify_Clusters(t *testing.T) {
	newProgram := func() (*Builder, *Statement) {
		b := New("test_program")
		fn := b.Main()
		x := fn.Input(S(F32, Dyn, 4))
		y := fn.Input(S(F32, 4))
		a := must.M1(BroadcastAdd(x, y))
		c := must.M1(BroadcastMultiply(must.M1(Tan(a)), y))
		require.NoError(t, fn.Return(c))
		formed := must.M1(FormRankSpecializationClusters(fn))
		require.Len(t, formed, 1)
		return b, formed[0]
	}

	t.Run("valid", func(t *testing.T) {
		b, _ := newProgram()
		require.NoError(t, b.Verify())
	})

	t.Run("argument mismatch", func(t *testing.T) {
		b, clusterStmt := newProgram()
		clusterStmt.Body.Inputs[1].shape = S(F32, 5)
		require.Error(t, b.Verify())
	})

	t.Run("yield mismatch", func(t *testing.T) {
		b, clusterStmt := newProgram()
		clusterStmt.Outputs[0].shape = shapes.MakeUnranked(F32)
		require.Error(t, b.Verify())
	})

	t.Run("non rank specializable in the body", func(t *testing.T) {
		b, clusterStmt := newProgram()
		body := clusterStmt.Body
		stmt := body.Statements[0]
		stmt.OpType = optypes.TopK
		err := b.Verify()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be part of a rank specialization cluster")
	})
}
