/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const (
	// PlacementSubsystem - subsystem name used by the optimizer
	PlacementSubsystem = "placement_optimizer"
)

var (
	GenerationAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: PlacementSubsystem,
			Name:      "chromosome_generation_attempts_total",
			Help:      "Number of random chromosomes drawn while looking for a feasible one.",
		},
	)

	MutationAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: PlacementSubsystem,
			Name:      "mutation_attempts_total",
			Help:      "Number of mutation operator applications.",
		},
	)

	CrossoverAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: PlacementSubsystem,
			Name:      "crossover_attempts_total",
			Help:      "Number of crossover attempts, successful or not.",
		},
	)

	Regenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: PlacementSubsystem,
			Name:      "regenerations_total",
			Help:      "Number of individuals regenerated from scratch, by the operator that gave up.",
		}, []string{"operator"})

	GenerationsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: PlacementSubsystem,
			Name:      "generations_total",
			Help:      "Number of completed generations.",
		},
	)

	BestFitness = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: PlacementSubsystem,
			Name:      "best_fitness",
			Help:      "Fitness of the best individual of the current population, per objective.",
		}, []string{"objective"})

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Subsystem: PlacementSubsystem,
			Name:      "generation_duration_seconds",
			Help:      "Time taken to evolve one generation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)

	metricsList = []prometheus.Collector{
		GenerationAttempts,
		MutationAttempts,
		CrossoverAttempts,
		Regenerations,
		GenerationsCompleted,
		BestFitness,
		GenerationDuration,
	}

	// Registry holds every optimizer collector
	Registry = prometheus.NewRegistry()
)

func init() {
	Registry.MustRegister(metricsList...)
}

// WriteTextFile dumps the registry in the Prometheus text exposition format
func WriteTextFile(path string) (err error) {
	families, err := Registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating metrics file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
