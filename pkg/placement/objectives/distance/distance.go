// Package distance measures how far user traffic travels to reach the closest
// replica of each service, in network hops.
package distance

import (
	"math"

	"github.com/fogplace/placement-optimizer/pkg/placement/environment"
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
)

// closest returns the hop distance from client to the nearest replica of s
func closest(c framework.Chromosome, env *environment.Environment, s, client int) float64 {
	best := math.Inf(1)
	for n, deployed := range c[s] {
		if deployed {
			if d := env.Distance(n, client); d < best {
				best = d
			}
		}
	}
	return best
}

// MeanEdgeDistance sums, for each service, the distance from every client node
// to the closest replica, divides it by the replica count and averages the
// result over services. A service without replicas is infinitely far away.
func MeanEdgeDistance(c framework.Chromosome, env *environment.Environment) float64 {
	if c.Services() == 0 {
		return 0
	}
	clients := env.ClientNodes()
	total := 0.0
	for s := range c {
		replicas := c.Replicas(s)
		if replicas == 0 {
			total += math.Inf(1)
			continue
		}
		sum := 0.0
		for _, client := range clients {
			sum += closest(c, env, s, client)
		}
		total += sum / float64(replicas)
	}
	return total / float64(c.Services())
}

// MeanEdgeDistanceObjective returns a function compatible with the optimization framework
func MeanEdgeDistanceObjective(env *environment.Environment) framework.ObjectiveFunc {
	return func(c framework.Chromosome) float64 {
		return MeanEdgeDistance(c, env)
	}
}

// Histogram counts, per hop distance, the (service, client node) requests
// served at that distance. Unreachable requests are left out.
func Histogram(c framework.Chromosome, env *environment.Environment) map[float64]int {
	out := make(map[float64]int)
	clients := env.ClientNodes()
	for s := range c {
		for _, client := range clients {
			if d := closest(c, env, s, client); !math.IsInf(d, 1) {
				out[d]++
			}
		}
	}
	return out
}
