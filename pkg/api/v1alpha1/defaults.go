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
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"
)

const (
	DefaultPopulationSize        = 10
	DefaultGenerations           = 5
	DefaultMutationProbability   = 0.2
	DefaultSeed                  = int64(42)
	DefaultMaxGenerationAttempts = 1000
	DefaultMaxMutationAttempts   = 100
	DefaultMaxCrossoverAttempts  = 100
	DefaultServiceName           = "placement-optimizer"
)

func SetDefaults_PlacementOptimizerConfiguration(obj *PlacementOptimizerConfiguration) {
	klog.V(5).InfoS("Defaulting configuration", "kind", Kind)

	if obj.APIVersion == "" {
		obj.APIVersion = SchemeGroupVersion.String()
	}
	if obj.Kind == "" {
		obj.Kind = Kind
	}
	if obj.PopulationSize == 0 {
		obj.PopulationSize = DefaultPopulationSize
	}
	if obj.Generations == nil {
		obj.Generations = ptr.To(DefaultGenerations)
	}
	if obj.MutationProbability == nil {
		obj.MutationProbability = ptr.To(DefaultMutationProbability)
	}
	if obj.Seed == nil {
		obj.Seed = ptr.To(DefaultSeed)
	}
	if obj.MaxGenerationAttempts == 0 {
		obj.MaxGenerationAttempts = DefaultMaxGenerationAttempts
	}
	if obj.MaxMutationAttempts == 0 {
		obj.MaxMutationAttempts = DefaultMaxMutationAttempts
	}
	if obj.MaxCrossoverAttempts == 0 {
		obj.MaxCrossoverAttempts = DefaultMaxCrossoverAttempts
	}
	if len(obj.Objectives) == 0 {
		obj.Objectives = []ObjectiveName{MeanResourceUsage}
	}
	if obj.Inputs.Applications == "" {
		obj.Inputs.Applications = "data/appDefinition.json"
	}
	if obj.Inputs.Network == "" {
		obj.Inputs.Network = "data/networkDefinition.json"
	}
	if obj.Inputs.Users == "" {
		obj.Inputs.Users = "data/usersDefinition.json"
	}
	if obj.Output.AllocationFile == "" {
		obj.Output.AllocationFile = "data/allocDefinitionGA.json"
	}
	if obj.Tracing.ServiceName == "" {
		obj.Tracing.ServiceName = DefaultServiceName
	}
	if obj.Tracing.SampleRate == nil {
		obj.Tracing.SampleRate = ptr.To(1.0)
	}
}
