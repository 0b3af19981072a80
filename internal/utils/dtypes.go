package utils

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
)

// DTypeToStableHLO returns the MLIR element type name used in tensor types, e.g. "f32" in "tensor<2xf32>".
func DTypeToStableHLO(dtype dtypes.DType) string {
	switch dtype {
	case dtypes.Float64:
		return "f64"
	case dtypes.Float32:
		return "f32"
	case dtypes.Float16:
		return "f16"
	case dtypes.BFloat16:
		return "bf16"
	case dtypes.Int64:
		return "i64"
	case dtypes.Int32:
		return "i32"
	case dtypes.Int16:
		return "i16"
	case dtypes.Int8:
		return "i8"
	case dtypes.Uint64:
		return "ui64"
	case dtypes.Uint32:
		return "ui32"
	case dtypes.Uint16:
		return "ui16"
	case dtypes.Uint8:
		return "ui8"
	case dtypes.Bool:
		return "i1"
	case dtypes.Complex64:
		return "complex<f32>"
	case dtypes.Complex128:
		return "complex<f64>"
	default:
		return fmt.Sprintf("unknown_dtype<%s>", dtype.String())
	}
}

// DTypeFromStableHLO is the inverse of DTypeToStableHLO.
// It returns dtypes.InvalidDType if the name is not known.
func DTypeFromStableHLO(name string) dtypes.DType {
	switch name {
	case "f64":
		return dtypes.Float64
	case "f32":
		return dtypes.Float32
	case "f16":
		return dtypes.Float16
	case "bf16":
		return dtypes.BFloat16
	case "i64":
		return dtypes.Int64
	case "i32":
		return dtypes.Int32
	case "i16":
		return dtypes.Int16
	case "i8":
		return dtypes.Int8
	case "ui64":
		return dtypes.Uint64
	case "ui32":
		return dtypes.Uint32
	case "ui16":
		return dtypes.Uint16
	case "ui8":
		return dtypes.Uint8
	case "i1":
		return dtypes.Bool
	case "complex<f32>":
		return dtypes.Complex64
	case "complex<f64>":
		return dtypes.Complex128
	}
	return dtypes.InvalidDType
}
