package replication

import (
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
)

// MeanReplicaCount is the average number of replicas per service
func MeanReplicaCount(c framework.Chromosome) float64 {
	if c.Services() == 0 {
		return 0
	}
	total := 0
	for s := range c {
		total += c.Replicas(s)
	}
	return float64(total) / float64(c.Services())
}

// MeanReplicaCountObjective returns a function compatible with the optimization framework
func MeanReplicaCountObjective() framework.ObjectiveFunc {
	return MeanReplicaCount
}
