// Package shapes defines Shape, the type of values in a chlo program.
//
// A Shape is an element type (DType) plus an ordered list of extents (Dimensions). Each extent is either a
// non-negative static size or DynamicDim, when the size is only known at runtime. The rank (number of axes)
// of a ranked shape is always known: unknown rank is modeled explicitly with the Unranked marker, which
// renders as `tensor<*xf32>`.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a tensor.
//   - Axis: the index of a dimension.
//   - Dimension or extent: the size of a tensor in one of its axes, or DynamicDim if not known statically.
//   - DType: the data type of the unit element in a tensor. Enumeration defined in github.com/gomlx/gopjrt/dtypes
//   - Scalar: a ranked shape with no axes.
package shapes

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/gomlx/chlo/internal/utils"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// DynamicDim marks an extent that is not known at compile time.
// It renders as "?" in the textual form.
const DynamicDim = math.MinInt

// UnrankedRank is returned by Shape.Rank for unranked shapes.
const UnrankedRank = -1

// Shape represents the type of a value: its element type and its extents.
//
// Use Make or MakeUnranked to create a new shape.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int

	// Unranked marks a shape whose rank is not known. Dimensions is always empty for unranked shapes.
	Unranked bool
}

// Make returns a ranked Shape with the given element type and extents.
// Extents must be non-negative or DynamicDim, otherwise it panics.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{Dimensions: slices.Clone(dimensions), DType: dtype}
	for _, dim := range dimensions {
		if dim < 0 && dim != DynamicDim {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with a negative extent %d", s, dim)
		}
	}
	return s
}

// MakeUnranked returns an unranked Shape with the given element type.
func MakeUnranked(dtype dtypes.DType) Shape {
	return Shape{DType: dtype, Unranked: true}
}

// Invalid returns an invalid shape.
//
// Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{DType: dtypes.InvalidDType}
}

// Ok returns whether this is a valid Shape. A "zero" shape, that is just instantiating it with Shape{} will be invalid.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// Rank of the shape, that is, the number of dimensions. It returns UnrankedRank for unranked shapes.
func (s Shape) Rank() int {
	if s.Unranked {
		return UnrankedRank
	}
	return len(s.Dimensions)
}

// IsUnranked returns whether the rank of the shape is unknown.
func (s Shape) IsUnranked() bool { return s.Unranked }

// IsScalar returns whether the shape represents a scalar, that is there are no dimensions (rank==0).
func (s Shape) IsScalar() bool { return s.Ok() && !s.Unranked && len(s.Dimensions) == 0 }

// IsDynamicDim returns whether the extent is DynamicDim.
func IsDynamicDim(dim int) bool { return dim == DynamicDim }

// IsStatic returns whether the shape is ranked and all its extents are known.
func (s Shape) IsStatic() bool {
	if s.Unranked {
		return false
	}
	for _, dim := range s.Dimensions {
		if dim == DynamicDim {
			return false
		}
	}
	return true
}

// Dim returns the dimension of the given axis. axis can take negative numbers, in which
// case it counts as starting from the end -- so axis=-1 refers to the last axis.
// Like with a slice indexing, it panics for an out-of-bound axis.
func (s Shape) Dim(axis int) int {
	if s.Unranked {
		exceptions.Panicf("Shape.Dim(%d) called on unranked shape %s", axis, s)
	}
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// Shape returns a shallow copy of itself.
func (s Shape) Shape() Shape { return s }

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{DType: s.DType, Dimensions: slices.Clone(s.Dimensions), Unranked: s.Unranked}
}

// Equal compares two shapes for equality: dtype, rank and extents are compared.
// A DynamicDim is only equal to another DynamicDim.
func (s Shape) Equal(s2 Shape) bool {
	if s.DType != s2.DType || s.Unranked != s2.Unranked {
		return false
	}
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Size returns the number of elements of the shape: the product of all dimensions.
// It returns DynamicDim if the shape is not static.
func (s Shape) Size() int {
	if !s.IsStatic() {
		return DynamicDim
	}
	size := 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return size
}

// Memory returns the number of bytes used by a tensor of the shape, or 0 if the shape is not static.
func (s Shape) Memory() uintptr {
	if !s.IsStatic() {
		return 0
	}
	return s.DType.Memory() * uintptr(s.Size())
}

// DimString returns the string used for an extent: "?" for DynamicDim.
func DimString(dim int) string {
	if dim == DynamicDim {
		return "?"
	}
	return fmt.Sprintf("%d", dim)
}

// String implements stringer, pretty-prints the shape.
func (s Shape) String() string {
	if s.Unranked {
		return fmt.Sprintf("(%s)[*]", s.DType)
	}
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	parts := make([]string, len(s.Dimensions))
	for ii, dim := range s.Dimensions {
		parts[ii] = DimString(dim)
	}
	return fmt.Sprintf("(%s)[%s]", s.DType, strings.Join(parts, " "))
}

// ToStableHLO returns the MLIR tensor type of the shape, e.g. "tensor<2x?xf32>" or "tensor<*xf32>".
func (s Shape) ToStableHLO() string {
	var sb strings.Builder
	sb.WriteString("tensor<")
	if s.Unranked {
		sb.WriteString("*x")
	}
	for _, dim := range s.Dimensions {
		sb.WriteString(DimString(dim))
		sb.WriteString("x")
	}
	sb.WriteString(utils.DTypeToStableHLO(s.DType))
	sb.WriteString(">")
	return sb.String()
}

// Check that the shape has the given dtype and dimensions. Use DynamicDim to accept any extent in an axis.
func (s Shape) Check(dtype dtypes.DType, dimensions ...int) error {
	if s.DType != dtype {
		return errors.Errorf("shape %s has dtype %s, expected %s", s, s.DType, dtype)
	}
	return s.CheckDims(dimensions...)
}

// CheckDims checks that the shape is ranked and has the given dimensions. DynamicDim matches any extent.
func (s Shape) CheckDims(dimensions ...int) error {
	if s.Unranked {
		return errors.Errorf("shape %s is unranked, expected rank %d", s, len(dimensions))
	}
	if s.Rank() != len(dimensions) {
		return errors.Errorf("shape %s has rank %d, expected rank %d", s, s.Rank(), len(dimensions))
	}
	for axis, dim := range dimensions {
		if dim != DynamicDim && s.Dimensions[axis] != dim {
			return errors.Errorf("shape %s axis %d has dimension %s, expected %d", s, axis, DimString(s.Dimensions[axis]), dim)
		}
	}
	return nil
}
