package algorithms

import (
	"fmt"

	"golang.org/x/exp/rand"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"

	"github.com/fogplace/placement-optimizer/pkg/placement/constraints"
	"github.com/fogplace/placement-optimizer/pkg/placement/environment"
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
	"github.com/fogplace/placement-optimizer/pkg/placement/metrics"
)

const (
	minReplicas = 1
	maxReplicas = 3
)

// SolutionConfig bounds the retry loops of the solution operators
type SolutionConfig struct {
	MaxGenerationAttempts int
	MaxMutationAttempts   int
	MaxCrossoverAttempts  int
}

type namedConstraint struct {
	name string
	fn   framework.Constraint
}

// Problem is the state shared by every solution of a run: the environment,
// the objectives, the feasibility rules and the random stream.
type Problem struct {
	env         *environment.Environment
	objectives  []framework.ObjectiveFunc
	constraints []namedConstraint
	rng         *rand.Rand
	config      SolutionConfig
	logger      klog.Logger

	capacities   []float64
	demands      []float64
	freeNodes    []int
	freeServices []int
}

// NewProblem binds an environment, its objectives and a random stream
func NewProblem(logger klog.Logger, env *environment.Environment, objectives []framework.ObjectiveFunc, rng *rand.Rand, config SolutionConfig) *Problem {
	return &Problem{
		env:        env,
		objectives: objectives,
		constraints: []namedConstraint{
			{name: "coverage", fn: constraints.CoverageConstraint(env)},
			{name: "capacity", fn: constraints.CapacityConstraint(env)},
			{name: "affinity", fn: constraints.AffinityConstraint(env)},
		},
		rng:          rng,
		config:       config,
		logger:       logger,
		capacities:   env.NodeCapacities(),
		demands:      env.ServiceDemands(),
		freeNodes:    env.FreeNodes(),
		freeServices: env.FreeServices(),
	}
}

// Environment returns the problem instance
func (p *Problem) Environment() *environment.Environment {
	return p.env
}

// Solution is one candidate placement with its fitness vector
type Solution struct {
	problem    *Problem
	chromosome framework.Chromosome
	fitness    framework.ObjectiveSpacePoint
}

// NewSolution draws a random feasible solution
func NewSolution(p *Problem) (*Solution, error) {
	s := &Solution{problem: p}
	if err := s.GenerateRandom(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSolutionFromChromosome wraps an existing chromosome. The chromosome is copied.
func NewSolutionFromChromosome(p *Problem, c framework.Chromosome) *Solution {
	return &Solution{problem: p, chromosome: c.Clone()}
}

// GenerateRandom replaces the chromosome with random placements until one is
// feasible, up to MaxGenerationAttempts times.
func (s *Solution) GenerateRandom() error {
	p := s.problem
	for attempt := 1; attempt <= p.config.MaxGenerationAttempts; attempt++ {
		metrics.GenerationAttempts.Inc()
		s.chromosome = s.randomChromosome()
		if s.CheckConstraints() {
			p.logger.V(4).Info("Generated feasible chromosome", "attempts", attempt)
			return nil
		}
		if attempt%100 == 0 {
			p.logger.V(4).Info("Still looking for a feasible chromosome", "attempts", attempt)
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrGenerationExhausted, p.config.MaxGenerationAttempts)
}

// randomChromosome places affinity services on their nodes first, then draws
// 1 to 3 replicas for every other service on nodes that still fit it.
func (s *Solution) randomChromosome() framework.Chromosome {
	p := s.problem
	nodes := len(p.capacities)
	c := framework.NewChromosome(len(p.demands), nodes)

	capacity := append([]float64(nil), p.capacities...)
	forced := sets.New[int]()
	for _, a := range p.env.Affinities() {
		if a.Node >= nodes {
			continue
		}
		if capacity[a.Node] >= p.demands[a.Service] {
			c[a.Service][a.Node] = true
			capacity[a.Node] -= p.demands[a.Service]
			forced.Insert(a.Service)
		}
	}

	for svc := range c {
		if forced.Has(svc) {
			continue
		}
		replicas := minReplicas + p.rng.Intn(maxReplicas-minReplicas+1)
		if replicas > nodes {
			replicas = nodes
		}

		var candidates []int
		for n := 0; n < nodes; n++ {
			if capacity[n] >= p.demands[svc] {
				candidates = append(candidates, n)
			}
		}

		var chosen []int
		if len(candidates) < replicas {
			chosen = p.rng.Perm(nodes)[:replicas]
		} else {
			for _, i := range p.rng.Perm(len(candidates))[:replicas] {
				chosen = append(chosen, candidates[i])
			}
		}
		for _, n := range chosen {
			c[svc][n] = true
			capacity[n] -= p.demands[svc]
		}
	}
	return c
}

// CheckConstraints evaluates coverage, capacity and affinity in that order
func (s *Solution) CheckConstraints() bool {
	for _, c := range s.problem.constraints {
		if !c.fn(s.chromosome) {
			s.problem.logger.V(5).Info("Constraint not satisfied", "constraint", c.name)
			return false
		}
	}
	return true
}

// EnforceAffinity sets every affinity bit regardless of capacity
func (s *Solution) EnforceAffinity() {
	for _, a := range s.problem.env.Affinities() {
		if a.Service < s.chromosome.Services() && a.Node < s.chromosome.Nodes() {
			s.chromosome[a.Service][a.Node] = true
		}
	}
}

// Repair removes replicas from overloaded nodes, never touching affinity
// pairs or the last replica of a service, then places every uncovered
// service on the first node with room for it.
func (s *Solution) Repair() {
	p := s.problem
	c := s.chromosome
	load := c.NodeLoad(p.demands)

	for n := range p.capacities {
		for load[n] > p.capacities[n] {
			removed := false
			for svc := range c {
				if !c[svc][n] || p.env.IsAffinityPair(svc, n) {
					continue
				}
				if c.Replicas(svc) > 1 {
					c[svc][n] = false
					load[n] -= p.demands[svc]
					removed = true
					break
				}
			}
			if !removed {
				break
			}
		}
	}

	for svc := range c {
		if c.Replicas(svc) > 0 {
			continue
		}
		for n := range p.capacities {
			if load[n]+p.demands[svc] <= p.capacities[n] {
				c[svc][n] = true
				load[n] += p.demands[svc]
				break
			}
		}
	}
}

// swapNodes exchanges two nodes outside every affinity pair, for every
// service without affinity.
func (s *Solution) swapNodes() {
	p := s.problem
	if len(p.freeNodes) < 2 {
		return
	}
	pick := p.rng.Perm(len(p.freeNodes))
	n1, n2 := p.freeNodes[pick[0]], p.freeNodes[pick[1]]
	for _, svc := range p.freeServices {
		s.chromosome[svc][n1], s.chromosome[svc][n2] = s.chromosome[svc][n2], s.chromosome[svc][n1]
	}
}

// swapServices exchanges the placement rows of two services without affinity
func (s *Solution) swapServices() {
	p := s.problem
	if len(p.freeServices) < 2 {
		return
	}
	pick := p.rng.Perm(len(p.freeServices))
	s1, s2 := p.freeServices[pick[0]], p.freeServices[pick[1]]
	s.chromosome[s1], s.chromosome[s2] = s.chromosome[s2], s.chromosome[s1]
}

// Mutate applies a random swap operator followed by enforce, repair and check,
// accumulating changes until the chromosome is feasible. After
// MaxMutationAttempts failures the solution is regenerated from scratch.
func (s *Solution) Mutate() error {
	p := s.problem
	operators := []func(){s.swapNodes, s.swapServices}
	for attempt := 1; attempt <= p.config.MaxMutationAttempts; attempt++ {
		metrics.MutationAttempts.Inc()
		operators[p.rng.Intn(len(operators))]()
		s.EnforceAffinity()
		s.Repair()
		if s.CheckConstraints() {
			return nil
		}
	}

	p.logger.V(4).Info("Mutation found no feasible chromosome, regenerating", "attempts", p.config.MaxMutationAttempts)
	metrics.Regenerations.WithLabelValues("mutation").Inc()
	return s.GenerateRandom()
}

// Crossover recombines s with partner row by row. Both children are enforced,
// repaired and checked; the recombination is retried until both are feasible.
// Children still infeasible after MaxCrossoverAttempts are regenerated.
func (s *Solution) Crossover(partner *Solution) (*Solution, *Solution, error) {
	p := s.problem
	var child1, child2 *Solution
	var ok1, ok2 bool
	for attempt := 1; attempt <= p.config.MaxCrossoverAttempts; attempt++ {
		metrics.CrossoverAttempts.Inc()
		c1, c2 := ServiceCrossover(p.rng, s.chromosome, partner.chromosome, TwoPointRowCrossover)
		child1 = &Solution{problem: p, chromosome: c1}
		child2 = &Solution{problem: p, chromosome: c2}

		child1.EnforceAffinity()
		child1.Repair()
		ok1 = child1.CheckConstraints()
		child2.EnforceAffinity()
		child2.Repair()
		ok2 = child2.CheckConstraints()
		if ok1 && ok2 {
			return child1, child2, nil
		}
		p.logger.V(4).Info("Crossover produced an infeasible child, retrying", "attempt", attempt)
	}

	p.logger.V(4).Info("Crossover retries exhausted, regenerating infeasible children", "attempts", p.config.MaxCrossoverAttempts)
	for _, child := range []struct {
		sol *Solution
		ok  bool
	}{{child1, ok1}, {child2, ok2}} {
		if child.ok {
			continue
		}
		metrics.Regenerations.WithLabelValues("crossover").Inc()
		if err := child.sol.GenerateRandom(); err != nil {
			return nil, nil, err
		}
	}
	return child1, child2, nil
}

// CalculateFitness evaluates every objective on the current chromosome
func (s *Solution) CalculateFitness() {
	fitness := make(framework.ObjectiveSpacePoint, len(s.problem.objectives))
	for i, obj := range s.problem.objectives {
		fitness[i] = obj(s.chromosome)
	}
	s.fitness = fitness
}

// Fitness returns a copy of the last computed fitness vector
func (s *Solution) Fitness() framework.ObjectiveSpacePoint {
	return append(framework.ObjectiveSpacePoint(nil), s.fitness...)
}

// Chromosome returns a copy of the placement matrix
func (s *Solution) Chromosome() framework.Chromosome {
	return s.chromosome.Clone()
}

// DominatesTo reports whether s is no worse than other in every objective and
// strictly better in at least one.
func (s *Solution) DominatesTo(other *Solution) bool {
	return Dominates(s.fitness, other.fitness)
}

// Clone returns an independent copy sharing the same problem
func (s *Solution) Clone() *Solution {
	return &Solution{
		problem:    s.problem,
		chromosome: s.chromosome.Clone(),
		fitness:    s.Fitness(),
	}
}
