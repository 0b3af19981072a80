// Package types defines the attribute types of chlo operations.
package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// ComparisonType enum defined for the BroadcastCompare op.
type ComparisonType int

//go:generate go tool enumer -type=ComparisonType -output=gen_comparisontype_enumer.go types.go

const (
	// CompareFloat are used for floating point comparisons.
	CompareFloat ComparisonType = iota

	// CompareTotalOrder version of the operation enforces `-NaN < -Inf < -Finite < -0 < +0 < +Finite < +Inf < +NaN`.
	CompareTotalOrder

	CompareSigned
	CompareUnsigned
)

var comparisonTypeNames = map[ComparisonType]string{
	CompareFloat:      "FLOAT",
	CompareTotalOrder: "TOTALORDER",
	CompareSigned:     "SIGNED",
	CompareUnsigned:   "UNSIGNED",
}

// ToStableHLO returns the textual representation of the comparison type attribute.
func (c ComparisonType) ToStableHLO() string {
	if name, ok := comparisonTypeNames[c]; ok {
		return "#chlo<comparison_type " + name + ">"
	}
	return fmt.Sprintf("#chlo<comparison_type UNKNOWN %d>", c)
}

// ComparisonTypeFromKeyword parses the keyword used in the attribute text (e.g. "FLOAT").
func ComparisonTypeFromKeyword(keyword string) (ComparisonType, error) {
	for c, name := range comparisonTypeNames {
		if name == keyword {
			return c, nil
		}
	}
	return 0, errors.Errorf("unknown comparison type %q", keyword)
}

// DefaultComparisonType returns the comparison type used when the compare_type attribute is not given:
// it is derived from the element type of the operands.
func DefaultComparisonType(dtype dtypes.DType) ComparisonType {
	switch {
	case dtype.IsFloat() || dtype.IsComplex():
		return CompareFloat
	case dtype == dtypes.Bool || dtype.IsUnsigned():
		return CompareUnsigned
	default:
		return CompareSigned
	}
}

// ComparisonDirection enum defined for the BroadcastCompare op.
type ComparisonDirection int

//go:generate go tool enumer -type=ComparisonDirection -trimprefix=Compare -output=gen_comparisondirection_enumer.go types.go

const (
	CompareEQ ComparisonDirection = iota
	CompareGE
	CompareGT
	CompareLE
	CompareLT
	CompareNE
)

// ToStableHLO returns the textual representation of the comparison direction attribute.
func (c ComparisonDirection) ToStableHLO() string {
	if !c.IsAComparisonDirection() {
		return fmt.Sprintf("#chlo<comparison_direction UNKNOWN %d>", c)
	}
	return "#chlo<comparison_direction " + c.String() + ">"
}

// BroadcastPolicy defines how a dynamic extent combines with a static one during broadcast shape inference.
//
// The same policy must be used when inferring broadcast shapes and when minimizing them, since the
// minimized shapes are only valid for the broadcast result they were derived from.
type BroadcastPolicy int

//go:generate go tool enumer -type=BroadcastPolicy -trimprefix=Broadcast -transform=snake -output=gen_broadcastpolicy_enumer.go types.go

const (
	// BroadcastOptimistic assumes a dynamic extent is compatible with a static extent n > 1 and yields n:
	// at runtime the dynamic extent must either be 1 or n for the program to be valid.
	// Combined with a static 1 or another dynamic extent it yields a dynamic extent.
	BroadcastOptimistic BroadcastPolicy = iota

	// BroadcastConservative yields a dynamic extent whenever any of the extents is dynamic.
	BroadcastConservative
)

// BroadcastDimensions is the broadcast_dimensions attribute: for each axis of the lower-rank operand,
// the axis of the result it maps to.
type BroadcastDimensions []int

// ToStableHLO returns the attribute as a dense i64 array, e.g. "array<i64: 1, 2>".
func (b BroadcastDimensions) ToStableHLO() string {
	if len(b) == 0 {
		return "array<i64>"
	}
	parts := make([]string, len(b))
	for ii, axis := range b {
		parts[ii] = strconv.Itoa(axis)
	}
	return "array<i64: " + strings.Join(parts, ", ") + ">"
}
