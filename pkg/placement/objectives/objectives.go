package objectives

import (
	"fmt"

	"github.com/fogplace/placement-optimizer/pkg/api/v1alpha1"
	"github.com/fogplace/placement-optimizer/pkg/placement/environment"
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
	"github.com/fogplace/placement-optimizer/pkg/placement/objectives/balance"
	"github.com/fogplace/placement-optimizer/pkg/placement/objectives/distance"
	"github.com/fogplace/placement-optimizer/pkg/placement/objectives/replication"
	"github.com/fogplace/placement-optimizer/pkg/placement/objectives/usage"
)

// Objective is a named objective bound to an environment
type Objective struct {
	Name v1alpha1.ObjectiveName
	Func framework.ObjectiveFunc
}

// New returns the objective registered under name
func New(name v1alpha1.ObjectiveName, env *environment.Environment) (Objective, error) {
	var fn framework.ObjectiveFunc
	switch name {
	case v1alpha1.MeanResourceUsage:
		fn = usage.MeanResourceUsageObjective(env)
	case v1alpha1.MeanReplicaCount:
		fn = replication.MeanReplicaCountObjective()
	case v1alpha1.MeanEdgeDistance:
		fn = distance.MeanEdgeDistanceObjective(env)
	case v1alpha1.UsageBalance:
		fn = balance.UsageBalanceObjective(env)
	default:
		return Objective{}, fmt.Errorf("unknown objective %q", name)
	}
	return Objective{Name: name, Func: fn}, nil
}

// Build resolves an ordered list of objective names
func Build(env *environment.Environment, names []v1alpha1.ObjectiveName) ([]Objective, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one objective is required")
	}
	out := make([]Objective, 0, len(names))
	for _, name := range names {
		obj, err := New(name, env)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// Funcs extracts the objective functions, preserving order
func Funcs(objs []Objective) []framework.ObjectiveFunc {
	out := make([]framework.ObjectiveFunc, len(objs))
	for i, o := range objs {
		out[i] = o.Func
	}
	return out
}

// Names extracts the objective names, preserving order
func Names(objs []Objective) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = string(o.Name)
	}
	return out
}
