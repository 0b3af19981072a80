package shapeinference

import "github.com/pkg/errors"

// Error kinds returned (wrapped with context) by the shape inference functions.
// Use errors.Is to check for them.
var (
	// ErrInvalidBroadcastMapping is returned when explicit broadcast dimensions don't map the lower-rank operand
	// into the result: wrong length, not strictly increasing or out of the result rank bounds.
	ErrInvalidBroadcastMapping = errors.New("invalid broadcast mapping")

	// ErrIncompatibleShapes is returned when shapes cannot be broadcast together.
	ErrIncompatibleShapes = errors.New("incompatible shapes")

	// ErrMultipleWildcards is returned when a reshape target has more than one wildcard (-1) entry.
	ErrMultipleWildcards = errors.New("multiple wildcards")

	// ErrNegativeExtent is returned when a reshape target has a negative entry that is not the wildcard.
	ErrNegativeExtent = errors.New("negative extent")

	// ErrNonDivisibleReshape is returned when the element count is not divisible by the product of the
	// known extents of a reshape target with a wildcard.
	ErrNonDivisibleReshape = errors.New("non-divisible reshape")

	// ErrElementCountMismatch is returned when a reshape target without wildcard doesn't have the number of
	// elements of the source.
	ErrElementCountMismatch = errors.New("element count mismatch")

	// ErrVerificationFailure is returned when the declared type of a statement doesn't match the inferred one,
	// or when a structural invariant of a program is broken.
	ErrVerificationFailure = errors.New("verification failure")
)
