package shapeinference

import (
	"github.com/gomlx/chlo/types"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/pkg/errors"
)

// extentClass is the broadcast class of an extent at a position of a right-aligned shape.
type extentClass int

const (
	classOne extentClass = iota // Absent (left-padding) or static 1.
	classStatic
	classDynamic
)

func classOf(dim int) extentClass {
	switch {
	case dim == 1:
		return classOne
	case shapes.IsDynamicDim(dim):
		return classDynamic
	default:
		return classStatic
	}
}

// MinimizeBroadcastShapes returns for each operand a shape of minimal rank, such that broadcasting the returned
// shapes yields a shape that reshapes losslessly to the broadcast of the operands, and each returned shape
// reshapes losslessly to its corresponding operand.
//
// The operands are aligned to the right, against the maximum rank R. Positions where every operand has a 1 (or
// is absent) are dropped. Adjacent remaining positions are merged into one axis if every operand is either 1 in
// both or non-1 in both -- that is, no operand broadcasts in one of them and not in the other. If any operand has a
// dynamic extent in one of the two positions, they are only merged if there is exactly one non-1 operand there,
// since the dynamic extent may turn out to be 1 at runtime.
// The merged extent is the product of the merged extents, or shapes.DynamicDim if any of them is dynamic.
// Finally, leading 1s of each result are removed.
//
// Runs of merged positions are formed from left to right and are maximal, which makes the result unique, and the
// function idempotent.
//
// It first checks that the operands broadcast together (see InferBroadcastShape) with the given policy, and it
// returns the same error otherwise. Unranked operands yield an error wrapping ErrIncompatibleShapes.
//
// The operands may have different dtypes (e.g. the predicate of a select), only their extents matter.
// Each result keeps the dtype of its operand.
func MinimizeBroadcastShapes(operands []shapes.Shape, policy types.BroadcastPolicy) ([]shapes.Shape, error) {
	if len(operands) == 0 {
		return nil, errors.Wrapf(ErrIncompatibleShapes, "no operands given to minimize")
	}
	sameDType := make([]shapes.Shape, len(operands))
	for ii, operand := range operands {
		sameDType[ii] = operand
		if operand.Ok() {
			sameDType[ii].DType = operands[0].DType
		}
	}
	if _, err := InferBroadcastShape(sameDType, nil, policy); err != nil {
		return nil, err
	}
	for ii, operand := range operands {
		if operand.IsUnranked() {
			return nil, errors.Wrapf(ErrIncompatibleShapes,
				"cannot minimize the broadcast of unranked operand #%d (%s)", ii, operand)
		}
	}
	rank, runs := minimizationRuns(operands)

	outputs := make([]shapes.Shape, len(operands))
	for operandIdx, operand := range operands {
		dims := make([]int, 0, len(runs))
		for _, run := range runs {
			merged := 1
			for _, position := range run {
				dim := alignedExtent(operand, rank, position)
				if shapes.IsDynamicDim(dim) || shapes.IsDynamicDim(merged) {
					merged = shapes.DynamicDim
					continue
				}
				merged *= dim
			}
			dims = append(dims, merged)
		}
		for len(dims) > 0 && dims[0] == 1 {
			dims = dims[1:]
		}
		outputs[operandIdx] = shapes.Make(operand.DType, dims...)
	}
	return outputs, nil
}

// alignedExtent returns the extent of a ranked operand at position of the right-aligned frame of the given rank.
func alignedExtent(operand shapes.Shape, rank, position int) int {
	offset := rank - operand.Rank()
	if position < offset {
		return 1
	}
	return operand.Dimensions[position-offset]
}

// minimizationRuns returns the maximum rank of the (ranked) operands and the maximal runs of positions, in the
// right-aligned frame of that rank, that are merged into one axis by MinimizeBroadcastShapes.
// Positions where every operand is 1 are not part of any run.
func minimizationRuns(operands []shapes.Shape) (rank int, runs [][]int) {
	for _, operand := range operands {
		rank = max(rank, operand.Rank())
	}
	extentAt := func(operandIdx, position int) int {
		return alignedExtent(operands[operandIdx], rank, position)
	}

	// Positions where at least one of the operands is not 1.
	kept := make([]int, 0, rank)
	for position := range rank {
		for operandIdx := range operands {
			if classOf(extentAt(operandIdx, position)) != classOne {
				kept = append(kept, position)
				break
			}
		}
	}

	// canMerge checks whether position can join the run that ends at prevPosition.
	canMerge := func(prevPosition, position int) bool {
		var numNonOne int
		var hasDynamic bool
		for operandIdx := range operands {
			prevClass, class := classOf(extentAt(operandIdx, prevPosition)), classOf(extentAt(operandIdx, position))
			if (prevClass == classOne) != (class == classOne) {
				return false
			}
			if class != classOne {
				numNonOne++
			}
			if prevClass == classDynamic || class == classDynamic {
				hasDynamic = true
			}
		}
		return !hasDynamic || numNonOne == 1
	}

	// Group kept positions into maximal runs, left to right.
	for ii, position := range kept {
		if ii > 0 && canMerge(kept[ii-1], position) {
			runs[len(runs)-1] = append(runs[len(runs)-1], position)
			continue
		}
		runs = append(runs, []int{position})
	}
	return rank, runs
}
