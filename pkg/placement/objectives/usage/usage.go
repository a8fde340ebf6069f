package usage

import (
	"github.com/fogplace/placement-optimizer/pkg/placement/environment"
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
)

// NodeUsage is the resource usage of a single node under a placement
type NodeUsage struct {
	Node        int
	ID          int
	Load        float64
	Capacity    float64
	Utilization float64 // Load/Capacity, 0 for nodes without capacity
	Services    int
}

// MeanResourceUsage averages load/capacity over all nodes. Nodes with no
// capacity contribute 0.
func MeanResourceUsage(c framework.Chromosome, capacities, demands []float64) float64 {
	if len(capacities) == 0 {
		return 0
	}
	load := c.NodeLoad(demands)
	total := 0.0
	for n, capacity := range capacities {
		if capacity > 0 {
			total += load[n] / capacity
		}
	}
	return total / float64(len(capacities))
}

// MeanResourceUsageObjective returns a function compatible with the optimization framework
func MeanResourceUsageObjective(env *environment.Environment) framework.ObjectiveFunc {
	capacities := env.NodeCapacities()
	demands := env.ServiceDemands()
	return func(c framework.Chromosome) float64 {
		return MeanResourceUsage(c, capacities, demands)
	}
}

// NodeUsageDetails returns per-node load, utilization and replica counts
func NodeUsageDetails(c framework.Chromosome, env *environment.Environment) []NodeUsage {
	load := c.NodeLoad(env.ServiceDemands())
	out := make([]NodeUsage, env.NodeCount())
	for n := range out {
		node := env.Node(n)
		out[n] = NodeUsage{
			Node:     n,
			ID:       node.ID,
			Load:     load[n],
			Capacity: node.Capacity,
		}
		if node.Capacity > 0 {
			out[n].Utilization = load[n] / node.Capacity
		}
		for s := range c {
			if c[s][n] {
				out[n].Services++
			}
		}
	}
	return out
}
