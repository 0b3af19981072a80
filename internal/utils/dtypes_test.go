package utils

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
)

func TestDTypeNames(t *testing.T) {
	for _, dtype := range []dtypes.DType{
		dtypes.Bool, dtypes.Int8, dtypes.Int16, dtypes.Int32, dtypes.Int64,
		dtypes.Uint8, dtypes.Uint16, dtypes.Uint32, dtypes.Uint64,
		dtypes.Float16, dtypes.BFloat16, dtypes.Float32, dtypes.Float64,
		dtypes.Complex64, dtypes.Complex128,
	} {
		name := DTypeToStableHLO(dtype)
		if got := DTypeFromStableHLO(name); got != dtype {
			t.Errorf("DTypeFromStableHLO(%q) = %s, want %s", name, got, dtype)
		}
	}
	if got := DTypeFromStableHLO("f8"); got != dtypes.InvalidDType {
		t.Errorf("DTypeFromStableHLO(\"f8\") = %s, want InvalidDType", got)
	}
}

func TestToSnakeCase(t *testing.T) {
	for camel, want := range map[string]string{
		"BroadcastAdd":                   "broadcast_add",
		"BroadcastShiftRightArithmetic":  "broadcast_shift_right_arithmetic",
		"BesselI1e":                      "bessel_i1e",
		"TopK":                           "top_k",
		"IsNegInf":                       "is_neg_inf",
		"RankSpecializationClusterYield": "rank_specialization_cluster_yield",
	} {
		if got := ToSnakeCase(camel); got != want {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", camel, got, want)
		}
	}
}
