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

package v1alpha1

import (
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"
)

var knownObjectives = sets.New(MeanResourceUsage, MeanReplicaCount, MeanEdgeDistance, UsageBalance)

// ValidatePlacementOptimizerConfiguration validates a defaulted configuration
func ValidatePlacementOptimizerConfiguration(cfg *PlacementOptimizerConfiguration) error {
	var errs []error

	if cfg.Kind != "" && cfg.Kind != Kind {
		errs = append(errs, fmt.Errorf("kind must be %s, got %q", Kind, cfg.Kind))
	}
	if cfg.APIVersion != "" && cfg.APIVersion != SchemeGroupVersion.String() {
		errs = append(errs, fmt.Errorf("apiVersion must be %s, got %q", SchemeGroupVersion.String(), cfg.APIVersion))
	}

	// A tournament draws two distinct individuals
	if cfg.PopulationSize < 2 {
		errs = append(errs, fmt.Errorf("populationSize must be at least 2, got %d", cfg.PopulationSize))
	}
	if cfg.Generations == nil {
		errs = append(errs, fmt.Errorf("generations must be set"))
	} else if *cfg.Generations < 0 {
		errs = append(errs, fmt.Errorf("generations must be >= 0, got %d", *cfg.Generations))
	}
	if cfg.MutationProbability == nil {
		errs = append(errs, fmt.Errorf("mutationProbability must be set"))
	} else if p := *cfg.MutationProbability; p < 0 || p > 1 {
		errs = append(errs, fmt.Errorf("mutationProbability must be between 0 and 1, got %v", p))
	}
	if cfg.Seed == nil {
		errs = append(errs, fmt.Errorf("seed must be set"))
	}
	if cfg.MaxGenerationAttempts < 1 {
		errs = append(errs, fmt.Errorf("maxGenerationAttempts must be at least 1, got %d", cfg.MaxGenerationAttempts))
	}
	if cfg.MaxMutationAttempts < 1 {
		errs = append(errs, fmt.Errorf("maxMutationAttempts must be at least 1, got %d", cfg.MaxMutationAttempts))
	}
	if cfg.MaxCrossoverAttempts < 1 {
		errs = append(errs, fmt.Errorf("maxCrossoverAttempts must be at least 1, got %d", cfg.MaxCrossoverAttempts))
	}

	if len(cfg.Objectives) == 0 {
		errs = append(errs, fmt.Errorf("at least one objective is required"))
	}
	seen := sets.New[ObjectiveName]()
	for _, name := range cfg.Objectives {
		if !knownObjectives.Has(name) {
			errs = append(errs, fmt.Errorf("unknown objective %q, expected one of %v", name, sets.List(knownObjectives)))
			continue
		}
		if seen.Has(name) {
			errs = append(errs, fmt.Errorf("objective %q listed more than once", name))
		}
		seen.Insert(name)
	}

	if cfg.Inputs.Applications == "" {
		errs = append(errs, fmt.Errorf("inputs.applications must be set"))
	}
	if cfg.Inputs.Network == "" {
		errs = append(errs, fmt.Errorf("inputs.network must be set"))
	}
	if cfg.Inputs.Users == "" {
		errs = append(errs, fmt.Errorf("inputs.users must be set"))
	}

	if r := cfg.Tracing.SampleRate; r != nil && (*r < 0 || *r > 1) {
		errs = append(errs, fmt.Errorf("tracing.sampleRate must be between 0 and 1, got %v", *r))
	}

	return utilerrors.NewAggregate(errs)
}
