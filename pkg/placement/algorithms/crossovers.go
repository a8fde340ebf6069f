package algorithms

import (
	"golang.org/x/exp/rand"

	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
)

// RowCrossoverFunc recombines one service row of two parents
type RowCrossoverFunc func(rng *rand.Rand, p1, p2 []bool) (child1, child2 []bool)

// TwoPointRowCrossover draws p1 uniformly in [0, n) and p2 uniformly in [p1, n).
// Columns p1..p2 (inclusive) are taken from the other parent.
func TwoPointRowCrossover(rng *rand.Rand, p1, p2 []bool) ([]bool, []bool) {
	child1 := make([]bool, len(p1))
	child2 := make([]bool, len(p2))
	if len(p1) == 0 {
		return child1, child2
	}

	point1 := rng.Intn(len(p1))
	point2 := point1 + rng.Intn(len(p1)-point1)

	for i := range p1 {
		if i < point1 || i > point2 {
			child1[i] = p1[i]
			child2[i] = p2[i]
		} else {
			child1[i] = p2[i]
			child2[i] = p1[i]
		}
	}

	return child1, child2
}

// ServiceCrossover applies a row crossover independently to every service
func ServiceCrossover(rng *rand.Rand, a, b framework.Chromosome, crossover RowCrossoverFunc) (framework.Chromosome, framework.Chromosome) {
	child1 := make(framework.Chromosome, len(a))
	child2 := make(framework.Chromosome, len(b))
	for s := range a {
		child1[s], child2[s] = crossover(rng, a[s], b[s])
	}
	return child1, child2
}
