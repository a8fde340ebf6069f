package constraints

import (
	"fmt"
	"strings"

	"github.com/fogplace/placement-optimizer/pkg/placement/environment"
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
)

// CoverageConstraint requires every service to have at least one replica
func CoverageConstraint(env *environment.Environment) framework.Constraint {
	services := env.ServiceCount()
	return func(c framework.Chromosome) bool {
		if c.Services() != services {
			return false
		}
		for s := range c {
			if c.Replicas(s) == 0 {
				return false
			}
		}
		return true
	}
}

// CapacityConstraint requires the demand placed on each node to fit its capacity
func CapacityConstraint(env *environment.Environment) framework.Constraint {
	capacities := env.NodeCapacities()
	demands := env.ServiceDemands()
	return func(c framework.Chromosome) bool {
		if c.Services() != len(demands) || c.Nodes() != len(capacities) {
			return false
		}
		for n, load := range c.NodeLoad(demands) {
			if load > capacities[n] {
				return false
			}
		}
		return true
	}
}

// AffinityConstraint requires every affinity pair to be deployed. A pair outside
// the chromosome's bounds can never be satisfied.
func AffinityConstraint(env *environment.Environment) framework.Constraint {
	affinities := env.Affinities()
	return func(c framework.Chromosome) bool {
		for _, a := range affinities {
			if a.Service >= c.Services() || a.Node >= c.Nodes() {
				return false
			}
			if !c[a.Service][a.Node] {
				return false
			}
		}
		return true
	}
}

// CombineConstraints combines multiple constraints into one, evaluated in order
func CombineConstraints(constraints ...framework.Constraint) framework.Constraint {
	return func(c framework.Chromosome) bool {
		for _, constraint := range constraints {
			if !constraint(c) {
				return false
			}
		}
		return true
	}
}

// FeasibilityConstraint checks coverage, capacity and affinity, stopping at the
// first failure.
func FeasibilityConstraint(env *environment.Environment) framework.Constraint {
	return CombineConstraints(
		CoverageConstraint(env),
		CapacityConstraint(env),
		AffinityConstraint(env),
	)
}

// NodeOverload describes a node whose placed demand exceeds its capacity
type NodeOverload struct {
	Node     int
	Load     float64
	Capacity float64
}

// Report lists every constraint violation of a chromosome
type Report struct {
	ShapeError          error
	UncoveredServices   []int
	OverloadedNodes     []NodeOverload
	MissingAffinities   []framework.Affinity
	SatisfiedAffinities int
}

// Feasible reports whether no violation was found
func (r *Report) Feasible() bool {
	return r.ShapeError == nil &&
		len(r.UncoveredServices) == 0 &&
		len(r.OverloadedNodes) == 0 &&
		len(r.MissingAffinities) == 0
}

// Violations returns one human readable line per violation
func (r *Report) Violations(env *environment.Environment) []string {
	var out []string
	if r.ShapeError != nil {
		out = append(out, r.ShapeError.Error())
	}
	for _, s := range r.UncoveredServices {
		svc := env.Service(s)
		out = append(out, fmt.Sprintf("module %s (app %s) has no replica", svc.Module, svc.App))
	}
	for _, o := range r.OverloadedNodes {
		out = append(out, fmt.Sprintf("node %d is overloaded: load %g > capacity %g", env.Node(o.Node).ID, o.Load, o.Capacity))
	}
	for _, a := range r.MissingAffinities {
		if a.Node >= env.NodeCount() {
			out = append(out, fmt.Sprintf("module %s (app %s) requires node index %d which is out of range", a.Module, a.App, a.Node))
			continue
		}
		out = append(out, fmt.Sprintf("module %s (app %s) is not deployed on user node %d", a.Module, a.App, env.Node(a.Node).ID))
	}
	return out
}

func (r *Report) String() string {
	if r.Feasible() {
		return fmt.Sprintf("feasible, %d affinity constraints satisfied", r.SatisfiedAffinities)
	}
	var parts []string
	if r.ShapeError != nil {
		parts = append(parts, "shape mismatch")
	}
	if n := len(r.UncoveredServices); n > 0 {
		parts = append(parts, fmt.Sprintf("%d uncovered services", n))
	}
	if n := len(r.OverloadedNodes); n > 0 {
		parts = append(parts, fmt.Sprintf("%d overloaded nodes", n))
	}
	if n := len(r.MissingAffinities); n > 0 {
		parts = append(parts, fmt.Sprintf("%d missing affinities", n))
	}
	return "infeasible: " + strings.Join(parts, ", ")
}

// Verify evaluates every constraint without short-circuiting
func Verify(env *environment.Environment, c framework.Chromosome) *Report {
	r := &Report{}
	if c.Services() != env.ServiceCount() || c.Nodes() != env.NodeCount() {
		r.ShapeError = fmt.Errorf("chromosome is %dx%d, environment is %dx%d",
			c.Services(), c.Nodes(), env.ServiceCount(), env.NodeCount())
		return r
	}

	for s := range c {
		if c.Replicas(s) == 0 {
			r.UncoveredServices = append(r.UncoveredServices, s)
		}
	}

	capacities := env.NodeCapacities()
	for n, load := range c.NodeLoad(env.ServiceDemands()) {
		if load > capacities[n] {
			r.OverloadedNodes = append(r.OverloadedNodes, NodeOverload{Node: n, Load: load, Capacity: capacities[n]})
		}
	}

	for _, a := range env.Affinities() {
		if a.Service >= c.Services() || a.Node >= c.Nodes() || !c[a.Service][a.Node] {
			r.MissingAffinities = append(r.MissingAffinities, a)
			continue
		}
		r.SatisfiedAffinities++
	}
	return r
}
