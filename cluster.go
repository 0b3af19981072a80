package chlo

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/chlo/internal/utils"
	"github.com/gomlx/chlo/shapeinference"
	"github.com/gomlx/chlo/types"
	"github.com/gomlx/chlo/types/optypes"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Cluster is a group of statements of a function that can be rank-specialized together: a single decision on
// the rank (and a single minimum broadcast shape computation, see Cluster.MinimizeInputShapes) applies to all
// of them.
type Cluster struct {
	// Members of the cluster, in program order.
	Members []*Statement

	// Inputs are the operands of the members produced outside the cluster, in order of first use.
	Inputs []*Value

	// Outputs are the results of the members used outside the cluster, in program order.
	Outputs []*Value
}

// String implements fmt.Stringer.
func (c *Cluster) String() string {
	ops := make([]string, len(c.Members))
	for i, member := range c.Members {
		ops[i] = member.OpType.ToStableHLO()
	}
	return fmt.Sprintf("cluster(%v) -> %v: [%s]", c.Inputs, c.Outputs, strings.Join(ops, ", "))
}

// MinimizeInputShapes returns the shapes of minimum rank equivalent to the shapes of the inputs of the cluster,
// shared by all its members. See shapeinference.MinimizeBroadcastShapes.
//
// It fails with shapeinference.ErrIncompatibleShapes if any input is unranked.
func (c *Cluster) MinimizeInputShapes(policy types.BroadcastPolicy) ([]shapes.Shape, error) {
	return shapeinference.MinimizeBroadcastShapes(valuesToShapes(c.Inputs), policy)
}

// isClusterable returns whether the statement can be part of a rank specialization cluster: it must be a pure
// element-wise operation (see optypes.RankSpecializable) using the implicit broadcasting.
func isClusterable(stmt *Statement) bool {
	if !stmt.OpType.Has(optypes.RankSpecializable) || len(stmt.Outputs) != 1 || stmt.Body != nil {
		return false
	}
	_, explicitBroadcast := stmt.Attributes["broadcast_dimensions"]
	return !explicitBroadcast
}

// clusterCandidate is a cluster under construction.
type clusterCandidate struct {
	members []*Statement

	// open clusters can still grow.
	open bool

	// mergedInto is set when the candidate was merged into another one.
	mergedInto *clusterCandidate
}

func (c *clusterCandidate) root() *clusterCandidate {
	for c.mergedInto != nil {
		c = c.mergedInto
	}
	return c
}

// FindRankSpecializationClusters groups the statements of the function in rank specialization clusters,
// greedily in program order:
//
//   - A clusterable statement (see optypes.RankSpecializable) joins the open clusters that produce any of its
//     operands, merging them, or starts a new cluster if there is none.
//   - A statement that can't be clustered closes the clusters producing any of its operands: they can't grow
//     after it, so no member of a cluster depends on a value computed outside from the cluster results.
//
// Statements that are clusterable but don't connect to others form clusters of size one.
// The clusters are returned in the order of their first member, and the function is not changed.
func FindRankSpecializationClusters(fn *Function) []*Cluster {
	position := make(map[*Statement]int, len(fn.Statements))
	clusterOf := make(map[*Value]*clusterCandidate)
	var candidates []*clusterCandidate
	for idx, stmt := range fn.Statements {
		position[stmt] = idx
		var operandClusters []*clusterCandidate
		for _, input := range stmt.Inputs {
			c, found := clusterOf[input]
			if !found {
				continue
			}
			c = c.root()
			if c.open && !slices.Contains(operandClusters, c) {
				operandClusters = append(operandClusters, c)
			}
		}

		if !isClusterable(stmt) {
			for _, c := range operandClusters {
				c.open = false
				klog.V(2).Infof("function %q: statement #%d (%s) closes the cluster started by %s",
					fn.Name, idx, stmt.OpType, c.members[0].OpType)
			}
			continue
		}

		var c *clusterCandidate
		if len(operandClusters) == 0 {
			c = &clusterCandidate{open: true}
			candidates = append(candidates, c)
		} else {
			c = operandClusters[0]
			for _, other := range operandClusters[1:] {
				klog.V(2).Infof("function %q: statement #%d (%s) merges clusters of %d and %d statements",
					fn.Name, idx, stmt.OpType, len(c.members), len(other.members))
				c.members = append(c.members, other.members...)
				other.members = nil
				other.open = false
				other.mergedInto = c
			}
		}
		c.members = append(c.members, stmt)
		for _, output := range stmt.Outputs {
			clusterOf[output] = c
		}
	}

	users := fn.users()
	var clusters []*Cluster
	for _, c := range candidates {
		if c.mergedInto != nil {
			continue
		}
		slices.SortFunc(c.members, func(a, b *Statement) int { return position[a] - position[b] })
		clusters = append(clusters, newCluster(c.members, users))
	}
	slices.SortFunc(clusters, func(a, b *Cluster) int { return position[a.Members[0]] - position[b.Members[0]] })
	klog.V(1).Infof("function %q: found %d rank specialization clusters", fn.Name, len(clusters))
	return clusters
}

// newCluster computes the boundary of the cluster with the given members.
func newCluster(members []*Statement, users map[*Value][]*Statement) *Cluster {
	c := &Cluster{Members: members}
	memberSet := utils.SetWith(members...)
	inputSet := utils.MakeSet[*Value]()
	for _, member := range members {
		for _, input := range member.Inputs {
			if input.producer != nil && memberSet.Has(input.producer) {
				continue
			}
			if !inputSet.Has(input) {
				inputSet.Insert(input)
				c.Inputs = append(c.Inputs, input)
			}
		}
	}
	for _, member := range members {
		for _, output := range member.Outputs {
			for _, user := range users[output] {
				if !memberSet.Has(user) {
					c.Outputs = append(c.Outputs, output)
					break
				}
			}
		}
	}
	return c
}

// newClusterStatement creates the chlo.rank_specialization_cluster statement of the cluster: its body holds
// copies of the members, operating on block arguments that match the cluster inputs, and it yields the values
// matching the cluster outputs.
//
// The outputs of the cluster are taken over by the new statement, so their users don't change.
// The statement is not added to the function.
func (c *Cluster) newClusterStatement(fn *Function) *Statement {
	body := fn.newBody()
	mapping := make(map[*Value]*Value, len(c.Inputs)+len(c.Members))
	for _, input := range c.Inputs {
		mapping[input] = body.Input(input.shape)
	}
	for _, member := range c.Members {
		inputs := make([]*Value, len(member.Inputs))
		for i, input := range member.Inputs {
			inputs[i] = mapping[input]
		}
		var attributes map[string]any
		if len(member.Attributes) > 0 {
			attributes = cloneAttributes(member.Attributes)
		}
		clone := body.appendStatement(member.OpType, attributes, inputs, valuesToShapes(member.Outputs))
		for i, output := range member.Outputs {
			mapping[output] = clone.Outputs[i]
		}
	}
	yielded := make([]*Value, len(c.Outputs))
	for i, output := range c.Outputs {
		yielded[i] = mapping[output]
	}
	body.appendStatement(optypes.RankSpecializationClusterYield, nil, yielded, nil)

	stmt := &Statement{
		Builder:  fn.Builder,
		Function: fn,
		OpType:   optypes.RankSpecializationCluster,
		Inputs:   slices.Clone(c.Inputs),
		Outputs:  slices.Clone(c.Outputs),
		Body:     body,
	}
	for _, output := range stmt.Outputs {
		output.producer = stmt
	}
	return stmt
}

// FormRankSpecializationClusters finds the rank specialization clusters of the function (see
// FindRankSpecializationClusters) and rewrites each one into a single chlo.rank_specialization_cluster statement,
// placed at the position of its last member. The cluster statement owns a body with the members, and it makes its
// inputs and outputs explicit.
//
// Clusters with fewer statements than configured with Builder.WithMinClusterSize are left untouched.
//
// It returns the new cluster statements.
func FormRankSpecializationClusters(fn *Function) ([]*Statement, error) {
	if fn.Parent != nil {
		return nil, errors.Errorf("cannot form rank specialization clusters in the body of a cluster of %q", fn.Parent.Name)
	}
	clusters := FindRankSpecializationClusters(fn)
	minSize := fn.Builder.minClusterSize
	removed := utils.MakeSet[*Statement]()
	insertAt := make(map[*Statement]*Statement)
	var formed []*Statement
	for _, c := range clusters {
		if len(c.Members) < minSize {
			klog.V(2).Infof("function %q: skipping cluster of %d statements (minimum is %d)", fn.Name, len(c.Members), minSize)
			continue
		}
		stmt := c.newClusterStatement(fn)
		removed.Insert(c.Members...)
		insertAt[c.Members[len(c.Members)-1]] = stmt
		formed = append(formed, stmt)
	}
	if len(formed) == 0 {
		return nil, nil
	}

	statements := make([]*Statement, 0, len(fn.Statements)-len(removed)+len(formed))
	for _, stmt := range fn.Statements {
		if clusterStmt, found := insertAt[stmt]; found {
			statements = append(statements, clusterStmt)
		}
		if removed.Has(stmt) {
			continue
		}
		statements = append(statements, stmt)
	}
	fn.Statements = statements
	klog.V(1).Infof("function %q: formed %d rank specialization clusters with %d statements",
		fn.Name, len(formed), len(removed))
	return formed, nil
}
