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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	GroupName = "placement.fogplace.io"
	Version   = "v1alpha1"
	Kind      = "PlacementOptimizerConfiguration"
)

// SchemeGroupVersion is the group version used for the configuration kind
var SchemeGroupVersion = metav1.GroupVersion{Group: GroupName, Version: Version}

// ObjectiveName selects one of the built-in objective functions
type ObjectiveName string

const (
	MeanResourceUsage ObjectiveName = "meanResourceUsage"
	MeanReplicaCount  ObjectiveName = "meanReplicaCount"
	MeanEdgeDistance  ObjectiveName = "meanEdgeDistance"
	UsageBalance      ObjectiveName = "usageBalance"
)

// PlacementOptimizerConfiguration holds the parameters of one optimization run
type PlacementOptimizerConfiguration struct {
	metav1.TypeMeta `json:",inline"`

	// PopulationSize is the number of candidate placements kept per generation
	PopulationSize int `json:"populationSize,omitempty"`

	// Generations is the fixed number of generations to evolve. 0 keeps the
	// initial population.
	Generations *int `json:"generations,omitempty"`

	// MutationProbability is the chance that a freshly bred child is mutated
	MutationProbability *float64 `json:"mutationProbability,omitempty"`

	// Seed initializes the pseudo-random stream owned by the run
	Seed *int64 `json:"seed,omitempty"`

	// MaxGenerationAttempts bounds the random construction of one individual
	MaxGenerationAttempts int `json:"maxGenerationAttempts,omitempty"`

	// MaxMutationAttempts bounds mutation retries before the individual is regenerated
	MaxMutationAttempts int `json:"maxMutationAttempts,omitempty"`

	// MaxCrossoverAttempts bounds crossover retries before infeasible children are regenerated
	MaxCrossoverAttempts int `json:"maxCrossoverAttempts,omitempty"`

	// Objectives lists the objective functions forming the fitness vector.
	// The first one drives selection.
	Objectives []ObjectiveName `json:"objectives,omitempty"`

	// Inputs locates the definition documents
	Inputs InputFiles `json:"inputs,omitempty"`

	// Output controls what is written after the run
	Output OutputFiles `json:"output,omitempty"`

	// Tracing configures OpenTelemetry export
	Tracing TracingConfiguration `json:"tracing,omitempty"`
}

// InputFiles locates the application, network and user definition documents
type InputFiles struct {
	Applications string `json:"applications,omitempty"`
	Network      string `json:"network,omitempty"`
	Users        string `json:"users,omitempty"`
}

// OutputFiles locates the documents produced by a run. Empty paths are skipped.
type OutputFiles struct {
	AllocationFile      string `json:"allocationFile,omitempty"`
	ConvergencePlotFile string `json:"convergencePlotFile,omitempty"`
	PopulationPlotFile  string `json:"populationPlotFile,omitempty"`
	MetricsFile         string `json:"metricsFile,omitempty"`
}

// TracingConfiguration configures the OTLP trace exporter
type TracingConfiguration struct {
	// CollectorEndpoint is the OTLP gRPC endpoint. Tracing is disabled when empty.
	CollectorEndpoint string `json:"collectorEndpoint,omitempty"`

	// ServiceName is reported as the service.name resource attribute
	ServiceName string `json:"serviceName,omitempty"`

	// SampleRate is the fraction of traces sampled
	SampleRate *float64 `json:"sampleRate,omitempty"`

	// Insecure disables transport security towards the collector
	Insecure bool `json:"insecure,omitempty"`
}
