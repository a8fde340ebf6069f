package algorithms

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"

	"github.com/fogplace/placement-optimizer/pkg/api/v1alpha1"
	"github.com/fogplace/placement-optimizer/pkg/placement/environment"
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
	"github.com/fogplace/placement-optimizer/pkg/placement/metrics"
	"github.com/fogplace/placement-optimizer/pkg/placement/objectives"
	"github.com/fogplace/placement-optimizer/pkg/tracing"
)

// Name identifies the algorithm in logs
const Name = "GA"

// GAConfig holds configuration parameters for the genetic search
type GAConfig struct {
	PopulationSize      int
	Generations         int
	MutationProbability float64
	Seed                int64
	SolutionConfig
}

// ConfigFromAPI converts a defaulted configuration
func ConfigFromAPI(cfg *v1alpha1.PlacementOptimizerConfiguration) GAConfig {
	config := GAConfig{
		PopulationSize: cfg.PopulationSize,
		SolutionConfig: SolutionConfig{
			MaxGenerationAttempts: cfg.MaxGenerationAttempts,
			MaxMutationAttempts:   cfg.MaxMutationAttempts,
			MaxCrossoverAttempts:  cfg.MaxCrossoverAttempts,
		},
	}
	if cfg.Generations != nil {
		config.Generations = *cfg.Generations
	}
	if cfg.MutationProbability != nil {
		config.MutationProbability = *cfg.MutationProbability
	}
	if cfg.Seed != nil {
		config.Seed = *cfg.Seed
	}
	return config
}

// GenerationStats summarizes one population. Generation 0 is the initial one.
type GenerationStats struct {
	Generation  int
	BestFitness framework.ObjectiveSpacePoint
	MeanFitness framework.ObjectiveSpacePoint
	Duration    time.Duration
}

// Result is the outcome of a run
type Result struct {
	Chromosome framework.Chromosome
	Fitness    framework.ObjectiveSpacePoint
	History    []GenerationStats
	Population []Individual
}

// GA evolves placements of one environment
type GA struct {
	config     GAConfig
	env        *environment.Environment
	objectives []objectives.Objective
}

// NewGA creates a new instance of the genetic search with given parameters
func NewGA(config GAConfig, env *environment.Environment, objs []objectives.Objective) *GA {
	return &GA{
		config:     config,
		env:        env,
		objectives: objs,
	}
}

func (g *GA) validate() error {
	if g.config.PopulationSize < 2 {
		return fmt.Errorf("population size must be at least 2, got %d", g.config.PopulationSize)
	}
	if g.config.Generations < 0 {
		return fmt.Errorf("generations must be >= 0, got %d", g.config.Generations)
	}
	if g.config.MaxGenerationAttempts < 1 || g.config.MaxMutationAttempts < 1 || g.config.MaxCrossoverAttempts < 1 {
		return fmt.Errorf("attempt bounds must be at least 1, got %+v", g.config.SolutionConfig)
	}
	if len(g.objectives) == 0 {
		return fmt.Errorf("at least one objective is required")
	}
	return nil
}

func (g *GA) stats(gen int, pop *Population, d time.Duration) GenerationStats {
	points := make([]framework.ObjectiveSpacePoint, 0, pop.Size())
	for _, sol := range pop.individuals {
		points = append(points, sol.fitness)
	}
	return GenerationStats{
		Generation:  gen,
		BestFitness: pop.Best().Fitness(),
		MeanFitness: MeanFitness(points),
		Duration:    d,
	}
}

func (g *GA) record(s GenerationStats) {
	for i, o := range g.objectives {
		metrics.BestFitness.WithLabelValues(string(o.Name)).Set(s.BestFitness[i])
	}
}

// Run initializes the population once and evolves it for the configured
// number of generations. Cancellation is honoured between generations.
func (g *GA) Run(ctx context.Context) (*Result, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	ctx, span := tracing.Tracer().Start(ctx, "GA.Run", trace.WithAttributes(
		attribute.Int("populationSize", g.config.PopulationSize),
		attribute.Int("generations", g.config.Generations),
		attribute.Int64("seed", g.config.Seed),
	))
	defer span.End()

	logger := klog.FromContext(ctx).WithValues("algorithm", Name)
	startTime := time.Now()

	rng := rand.New(rand.NewSource(uint64(g.config.Seed)))
	problem := NewProblem(logger, g.env, objectives.Funcs(g.objectives), rng, g.config.SolutionConfig)

	logger.Info("Starting evolution",
		"populationSize", g.config.PopulationSize,
		"generations", g.config.Generations,
		"mutationProbability", g.config.MutationProbability,
		"seed", g.config.Seed,
		"objectives", objectives.Names(g.objectives),
		"services", g.env.ServiceCount(),
		"nodes", g.env.NodeCount(),
		"affinities", len(g.env.Affinities()))

	pop := NewPopulation(problem, g.config.PopulationSize)
	if err := pop.Initialize(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}
	initial := g.stats(0, pop, time.Since(startTime))
	g.record(initial)
	history := []GenerationStats{initial}
	logger.V(1).Info("Initial population ready", "bestFitness", initial.BestFitness, "meanFitness", initial.MeanFitness)

	for gen := 1; gen <= g.config.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			logger.Info("Evolution cancelled", "generation", gen)
			return nil, err
		}

		genStart := time.Now()
		if err := pop.EvolveOneGeneration(ctx, g.config.MutationProbability); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("generation %d: %w", gen, err)
		}
		elapsed := time.Since(genStart)

		s := g.stats(gen, pop, elapsed)
		history = append(history, s)
		g.record(s)
		metrics.GenerationsCompleted.Inc()
		metrics.GenerationDuration.Observe(elapsed.Seconds())

		logger.V(2).Info("Generation complete",
			"generation", gen,
			"bestFitness", s.BestFitness,
			"meanFitness", s.MeanFitness,
			"duration", elapsed)
	}

	best := pop.Best()
	elapsedTime := time.Since(startTime)
	logger.Info("Evolution complete", "bestFitness", best.fitness, "duration", elapsedTime)
	if g.config.Generations > 0 {
		logger.V(1).Info("Time per generation", "duration", elapsedTime/time.Duration(g.config.Generations))
	}

	return &Result{
		Chromosome: best.Chromosome(),
		Fitness:    best.Fitness(),
		History:    history,
		Population: pop.Snapshot(),
	}, nil
}
