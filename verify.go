package chlo

import (
	"github.com/gomlx/chlo/internal/utils"
	"github.com/gomlx/chlo/shapeinference"
	"github.com/gomlx/chlo/types/optypes"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"
)

// verificationFailure returns an error wrapping shapeinference.ErrVerificationFailure.
func (s *Statement) verificationFailure(format string, args ...any) error {
	err := errors.Wrapf(shapeinference.ErrVerificationFailure, format, args...)
	return errors.WithMessagef(err, "function %q, %s", s.Function.Name, s.OpType)
}

// refines returns whether the inferred shape is the declared shape, or a refinement of it: declared
// dynamic extents (or an unranked declared shape) may be static in the inferred shape.
func refines(inferred, declared shapes.Shape) bool {
	if inferred.DType != declared.DType {
		return false
	}
	if declared.IsUnranked() {
		return true
	}
	if inferred.Rank() != declared.Rank() {
		return false
	}
	for axis, dim := range declared.Dimensions {
		if !shapes.IsDynamicDim(dim) && inferred.Dimensions[axis] != dim {
			return false
		}
	}
	return true
}

// Verify re-derives the shapes of the outputs of the statement from its inputs and attributes, and checks that
// they match the declared ones. Mismatches are not corrected, but reported as an error wrapping
// shapeinference.ErrVerificationFailure.
//
// For optypes.DynamicReshape the inferred shape may be a refinement of the declared one, since the inference
// can use the values of a constant shape operand.
//
// For rank specialization clusters it also verifies the body.
func (s *Statement) Verify() error {
	info := s.OpType.Info()
	if s.OpType <= optypes.Invalid || s.OpType >= optypes.Last {
		return s.verificationFailure("invalid operation type %d", int(s.OpType))
	}
	if info.NumResults != optypes.Variadic && len(s.Outputs) != info.NumResults {
		return s.verificationFailure("expected %d results, got %d", info.NumResults, len(s.Outputs))
	}
	for i, input := range s.Inputs {
		if input.fn != s.Function {
			return s.verificationFailure("operand #%d (%s) is not a value of the function", i, input)
		}
	}

	switch s.OpType {
	case optypes.RankSpecializationCluster:
		return s.verifyCluster()
	case optypes.FuncReturn:
		if s.Function.Parent != nil {
			return s.verificationFailure("cannot be used in the body of a cluster")
		}
		if len(s.Inputs) != len(s.Function.Outputs) {
			return s.verificationFailure("returns %d values, but the function has %d outputs",
				len(s.Inputs), len(s.Function.Outputs))
		}
		for i, input := range s.Inputs {
			if !input.shape.Equal(s.Function.Outputs[i]) {
				return s.verificationFailure("returned value #%d has shape %s, but the function output is %s",
					i, input.shape, s.Function.Outputs[i])
			}
		}
		return nil
	case optypes.RankSpecializationClusterYield:
		if s.Function.Parent == nil {
			return s.verificationFailure("can only be used in the body of a cluster")
		}
		return nil
	}

	declared := valuesToShapes(s.Outputs)
	inferred, err := inferShapes(s.Builder.policy, s.OpType, s.Inputs, s.Attributes, declared)
	if err != nil {
		return s.verificationFailure("shape inference failed: %v", err)
	}
	if len(inferred) != len(declared) {
		return s.verificationFailure("inferred %d results, but %d are declared", len(inferred), len(declared))
	}
	for i := range inferred {
		if inferred[i].Equal(declared[i]) {
			continue
		}
		if s.OpType == optypes.DynamicReshape && refines(inferred[i], declared[i]) {
			continue
		}
		return s.verificationFailure("result #%d is declared as %s, but its inferred shape is %s",
			i, declared[i], inferred[i])
	}
	return nil
}

// verifyCluster checks the boundary of a rank specialization cluster: the block arguments match the cluster
// inputs, the body only uses its arguments and its own values, and the yielded values match the cluster results.
func (s *Statement) verifyCluster() error {
	body := s.Body
	if body == nil {
		return s.verificationFailure("missing body")
	}
	if body.Parent != s.Function {
		return s.verificationFailure("body is not owned by the function")
	}
	if len(body.Inputs) != len(s.Inputs) {
		return s.verificationFailure("body has %d arguments, but the cluster has %d inputs", len(body.Inputs), len(s.Inputs))
	}
	for i, input := range s.Inputs {
		if !input.shape.Equal(body.Inputs[i].shape) {
			return s.verificationFailure("input #%d has shape %s, but the body argument %s has shape %s",
				i, input.shape, body.Inputs[i], body.Inputs[i].shape)
		}
	}
	if err := body.Verify(); err != nil {
		return err
	}
	yield := body.Statements[len(body.Statements)-1]
	if len(yield.Inputs) != len(s.Outputs) {
		return s.verificationFailure("body yields %d values, but the cluster has %d results", len(yield.Inputs), len(s.Outputs))
	}
	for i, output := range s.Outputs {
		if !output.shape.Equal(yield.Inputs[i].shape) {
			return s.verificationFailure("result #%d has shape %s, but the yielded value %s has shape %s",
				i, output.shape, yield.Inputs[i], yield.Inputs[i].shape)
		}
	}
	return nil
}

// Verify the function: every statement is verified (see Statement.Verify), values must be defined before they
// are used, and the function must end with its terminator (a return, or the yield of a cluster body).
// Statements in the body of a cluster must be rank specializable.
//
// All failures found are returned, combined with go.uber.org/multierr, each one wrapping
// shapeinference.ErrVerificationFailure.
func (fn *Function) Verify() error {
	var err error
	fail := func(format string, args ...any) {
		failure := errors.Wrapf(shapeinference.ErrVerificationFailure, format, args...)
		err = multierr.Append(err, errors.WithMessagef(failure, "function %q", fn.Name))
	}
	isBody := fn.Parent != nil
	terminator := optypes.FuncReturn
	if isBody {
		terminator = optypes.RankSpecializationClusterYield
	}

	defined := utils.MakeSet[*Value](len(fn.Inputs))
	for _, input := range fn.Inputs {
		defined.Insert(input)
	}
	for i, stmt := range fn.Statements {
		if stmt.Function != fn {
			fail("statement #%d (%s) is not owned by the function", i, stmt.OpType)
			continue
		}
		for j, input := range stmt.Inputs {
			if !defined.Has(input) {
				fail("statement #%d (%s) operand #%d (%s) is used before being defined", i, stmt.OpType, j, input)
			}
		}
		if stmt.OpType.Has(optypes.Terminator) && i != len(fn.Statements)-1 {
			fail("statement #%d (%s) is a terminator, but it is not the last statement", i, stmt.OpType)
		}
		if isBody && stmt.OpType != terminator && !stmt.OpType.Has(optypes.RankSpecializable) {
			fail("statement #%d (%s) cannot be part of a rank specialization cluster", i, stmt.OpType)
		}
		err = multierr.Append(err, stmt.Verify())
		for _, output := range stmt.Outputs {
			if output.fn != fn || output.producer != stmt {
				fail("statement #%d (%s) result %s is not owned by it", i, stmt.OpType, output)
			}
			defined.Insert(output)
		}
	}
	if len(fn.Statements) == 0 || fn.Statements[len(fn.Statements)-1].OpType != terminator {
		fail("missing %s at the end of the function", terminator.ToStableHLO())
	}
	return err
}

// Verify all functions of the program. See Function.Verify.
//
// All failures found are returned, combined with go.uber.org/multierr.
func (b *Builder) Verify() error {
	var err error
	names := utils.MakeSet[string](len(b.functions))
	for _, fn := range b.functions {
		if names.Has(fn.Name) {
			err = multierr.Append(err, errors.Wrapf(shapeinference.ErrVerificationFailure, "duplicate function name %q", fn.Name))
		}
		names.Insert(fn.Name)
		err = multierr.Append(err, fn.Verify())
	}
	if err != nil {
		klog.V(1).Infof("program %q: %d verification failures", b.name, len(multierr.Errors(err)))
		return err
	}
	klog.V(1).Infof("program %q: verified %d functions", b.name, len(b.functions))
	return nil
}
