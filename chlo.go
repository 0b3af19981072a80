// Package chlo builds, verifies and transforms programs of the client-facing tensor operations dialect ("chlo"):
// high-level operations with implicit broadcasting, transcendental helper functions and shape manipulation
// utilities, that are later lowered to a strictly-typed canonical operation set.
//
// Among its features:
//
//   - Construction: typed constructors (BroadcastAdd, BroadcastCompare, Acos, ...) and the generic Function.AddOp.
//     The result shapes are inferred (see package shapeinference), and construction fails if the operands
//     are not compatible.
//   - Verification: Builder.Verify re-derives the shape of every statement and checks the structure of the program.
//   - Text format: Builder.Write renders the program in the generic MLIR form, and Parse reads it back.
//   - Rank specialization: FindRankSpecializationClusters groups element-wise operations that can be
//     rank-specialized together, and FormRankSpecializationClusters rewrites them into
//     "chlo.rank_specialization_cluster" statements.
//   - Shape reification: ReifyResultShape and ReifyMinimumBroadcastShapes emit the operations that compute
//     shapes at runtime.
//
// Everything is written purely in Go, with no C/C++ external dependencies.
package chlo

import "github.com/gomlx/chlo/internal/utils"

// Generates some trivial functions (binary and unary operators) automatically.
//go:generate go run ./internal/cmd/ops_generator

// NormalizeIdentifier converts the name of an identifier (function name or function input parameter
// name, etc.) to a valid one: only letters, digits, and underscores are allowed.
//
// Invalid characters are replaced with underscores.
// If the name starts with a digit, it is prefixed with an underscore.
func NormalizeIdentifier(name string) string {
	return utils.NormalizeIdentifier(name)
}
