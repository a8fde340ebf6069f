package balance

import (
	"gonum.org/v1/gonum/stat"

	"github.com/fogplace/placement-optimizer/pkg/placement/environment"
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
)

// MaxStdDev normalizes the standard deviation of utilization percentages.
// It is the theoretical maximum for the 0-100% range.
const MaxStdDev = 50.0

// Result contains detailed balance metrics
type Result struct {
	StdDev           float64
	NormalizedStdDev float64
	Utilizations     []float64 // percentage (0-100) per node
}

// UsageBalance returns the normalized standard deviation of node utilization.
// Lower is better, 0 means every node is equally loaded.
func UsageBalance(c framework.Chromosome, capacities, demands []float64) float64 {
	return UsageBalanceWithDetails(c, capacities, demands).NormalizedStdDev
}

// UsageBalanceWithDetails returns both the cost and the per-node utilization
func UsageBalanceWithDetails(c framework.Chromosome, capacities, demands []float64) Result {
	if len(capacities) == 0 {
		return Result{}
	}

	load := c.NodeLoad(demands)
	utils := make([]float64, len(capacities))
	for n, capacity := range capacities {
		if capacity > 0 {
			utils[n] = load[n] / capacity * 100
		}
	}

	_, std := stat.PopMeanStdDev(utils, nil)
	return Result{
		StdDev:           std,
		NormalizedStdDev: std / MaxStdDev,
		Utilizations:     utils,
	}
}

// UsageBalanceObjective returns a function compatible with the optimization framework
func UsageBalanceObjective(env *environment.Environment) framework.ObjectiveFunc {
	capacities := env.NodeCapacities()
	demands := env.ServiceDemands()
	return func(c framework.Chromosome) float64 {
		return UsageBalance(c, capacities, demands)
	}
}
