package algorithms

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
	"github.com/fogplace/placement-optimizer/pkg/tracing"
)

// Individual is a read-only view of a population member
type Individual struct {
	Chromosome framework.Chromosome
	Fitness    framework.ObjectiveSpacePoint
}

// Population is a fixed-size set of solutions replaced wholesale each generation
type Population struct {
	problem     *Problem
	size        int
	individuals []*Solution
}

// NewPopulation returns an empty population of the given size
func NewPopulation(p *Problem, size int) *Population {
	return &Population{problem: p, size: size}
}

// Initialize fills the population with random feasible solutions and
// evaluates them.
func (pop *Population) Initialize(ctx context.Context) error {
	_, span := tracing.Tracer().Start(ctx, "Population.Initialize", trace.WithAttributes(attribute.Int("size", pop.size)))
	defer span.End()

	logger := pop.problem.logger
	pop.individuals = make([]*Solution, 0, pop.size)
	for i := 0; i < pop.size; i++ {
		sol, err := NewSolution(pop.problem)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("initializing individual %d: %w", i, err)
		}
		sol.CalculateFitness()
		pop.individuals = append(pop.individuals, sol)
		if (i+1)%10 == 0 || i+1 == pop.size {
			logger.V(1).Info("Population initialization progress", "initialized", i+1, "size", pop.size)
		}
	}
	return nil
}

// Size returns the number of individuals
func (pop *Population) Size() int {
	return len(pop.individuals)
}

// Individuals returns the current members
func (pop *Population) Individuals() []*Solution {
	return append([]*Solution(nil), pop.individuals...)
}

// TournamentSelect draws two distinct individuals and returns the fitter one.
// Ties go to the second draw.
func (pop *Population) TournamentSelect() *Solution {
	if len(pop.individuals) == 1 {
		return pop.individuals[0]
	}
	pick := pop.problem.rng.Perm(len(pop.individuals))
	a, b := pop.individuals[pick[0]], pop.individuals[pick[1]]
	if Less(a.fitness, b.fitness) {
		return a
	}
	return b
}

// EvolveOneGeneration replaces the population with the offspring of
// tournament-selected parents. Each child is mutated with probability
// mutationProbability.
func (pop *Population) EvolveOneGeneration(ctx context.Context, mutationProbability float64) error {
	_, span := tracing.Tracer().Start(ctx, "Population.EvolveOneGeneration")
	defer span.End()

	p := pop.problem
	if len(pop.individuals) == 0 {
		return fmt.Errorf("population is not initialized")
	}
	best := pop.Best().Fitness()

	next := make([]*Solution, 0, pop.size)
	for len(next) < pop.size {
		parent1 := pop.TournamentSelect()
		parent2 := pop.TournamentSelect()
		child1, child2, err := parent1.Crossover(parent2)
		if err != nil {
			span.RecordError(err)
			return err
		}
		for _, child := range []*Solution{child1, child2} {
			if p.rng.Float64() < mutationProbability {
				if err := child.Mutate(); err != nil {
					span.RecordError(err)
					return err
				}
			}
			child.CalculateFitness()
			next = append(next, child)
			if Less(child.fitness, best) {
				p.logger.V(2).Info("New best solution found", "fitness", child.fitness)
			}
			if len(next) >= pop.size {
				break
			}
		}
	}
	pop.individuals = next
	return nil
}

// Best returns the individual with the lowest fitness, the first one on ties
func (pop *Population) Best() *Solution {
	if len(pop.individuals) == 0 {
		return nil
	}
	best := pop.individuals[0]
	for _, sol := range pop.individuals[1:] {
		if Less(sol.fitness, best.fitness) {
			best = sol
		}
	}
	return best
}

// Snapshot returns the chromosome and fitness of every individual
func (pop *Population) Snapshot() []Individual {
	out := make([]Individual, len(pop.individuals))
	for i, sol := range pop.individuals {
		out[i] = Individual{Chromosome: sol.Chromosome(), Fitness: sol.Fitness()}
	}
	return out
}
