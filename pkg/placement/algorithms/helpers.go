package algorithms

import (
	"errors"

	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
)

// ErrGenerationExhausted is returned when no feasible chromosome could be
// generated within the configured number of attempts.
var ErrGenerationExhausted = errors.New("could not generate a feasible placement")

// Less compares fitness vectors lexicographically. With a single objective it
// is the plain scalar comparison.
func Less(a, b framework.ObjectiveSpacePoint) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] < b[i] {
			return true
		}
		if a[i] > b[i] {
			return false
		}
	}
	return len(a) < len(b)
}

// Dominates checks if point a dominates point b
func Dominates(a, b framework.ObjectiveSpacePoint) bool {
	better := false
	for i := 0; i < len(a); i++ {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			better = true
		}
	}
	return better
}

// MeanFitness averages each objective over a set of points
func MeanFitness(points []framework.ObjectiveSpacePoint) framework.ObjectiveSpacePoint {
	if len(points) == 0 {
		return nil
	}
	mean := make(framework.ObjectiveSpacePoint, len(points[0]))
	for _, p := range points {
		for i, v := range p {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(len(points))
	}
	return mean
}
