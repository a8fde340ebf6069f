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

// Package options provides the flags used for the placement optimizer.
package options

import (
	"github.com/spf13/pflag"
	logsapi "k8s.io/component-base/logs/api/v1"
	"k8s.io/utils/ptr"

	"github.com/fogplace/placement-optimizer/pkg/api/v1alpha1"
)

// PlacementOptimizerServer holds the command line settings. Values other
// than ConfigFile override the configuration file only when the
// corresponding flag was set explicitly.
type PlacementOptimizerServer struct {
	ConfigFile string

	Applications          string
	Network               string
	Users                 string
	AllocationFile        string
	PopulationSize        int
	Generations           int
	MutationProbability   float64
	Seed                  int64
	Objectives            []string
	ConvergencePlotFile   string
	PopulationPlotFile    string
	MetricsFile           string
	OTelCollectorEndpoint string

	Logs *logsapi.LoggingConfiguration
}

// NewPlacementOptimizerServer creates a new PlacementOptimizerServer with default parameters
func NewPlacementOptimizerServer() *PlacementOptimizerServer {
	return &PlacementOptimizerServer{
		PopulationSize:      v1alpha1.DefaultPopulationSize,
		Generations:         v1alpha1.DefaultGenerations,
		MutationProbability: v1alpha1.DefaultMutationProbability,
		Seed:                v1alpha1.DefaultSeed,
		Logs:                logsapi.NewLoggingConfiguration(),
	}
}

// AddInputFlags adds the flags locating the configuration and the definition documents
func (s *PlacementOptimizerServer) AddInputFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.ConfigFile, "config", s.ConfigFile, "File with the optimizer configuration (YAML or JSON).")
	fs.StringVar(&s.Applications, "applications", s.Applications, "Application definition document.")
	fs.StringVar(&s.Network, "network", s.Network, "Network definition document.")
	fs.StringVar(&s.Users, "users", s.Users, "Users definition document.")
}

// AddFlags adds flags for a specific PlacementOptimizerServer to the specified FlagSet
func (s *PlacementOptimizerServer) AddFlags(fs *pflag.FlagSet) {
	s.AddInputFlags(fs)
	fs.StringVar(&s.AllocationFile, "output", s.AllocationFile, "File the resulting allocation document is written to.")
	fs.IntVar(&s.PopulationSize, "population-size", s.PopulationSize, "Number of candidate placements per generation.")
	fs.IntVar(&s.Generations, "generations", s.Generations, "Number of generations to evolve.")
	fs.Float64Var(&s.MutationProbability, "mutation-probability", s.MutationProbability, "Probability that a child is mutated.")
	fs.Int64Var(&s.Seed, "seed", s.Seed, "Seed of the random number generator.")
	fs.StringArrayVar(&s.Objectives, "objective", s.Objectives, "Objective to minimize. May be repeated; the first one drives selection.")
	fs.StringVar(&s.ConvergencePlotFile, "convergence-plot", s.ConvergencePlotFile, "HTML file for the convergence chart. Disabled when empty.")
	fs.StringVar(&s.PopulationPlotFile, "population-plot", s.PopulationPlotFile, "HTML file for the final population chart. Needs two objectives. Disabled when empty.")
	fs.StringVar(&s.MetricsFile, "metrics-file", s.MetricsFile, "File the prometheus metrics are dumped to after the run. Disabled when empty.")
	fs.StringVar(&s.OTelCollectorEndpoint, "otel-collector-endpoint", s.OTelCollectorEndpoint, "OTLP gRPC endpoint traces are exported to. Disabled when empty.")

	logsapi.AddFlags(s.Logs, fs)
}

// ApplyTo overlays the explicitly set flags onto cfg. Flags missing from fs
// are left alone.
func (s *PlacementOptimizerServer) ApplyTo(fs *pflag.FlagSet, cfg *v1alpha1.PlacementOptimizerConfiguration) {
	if fs.Changed("applications") {
		cfg.Inputs.Applications = s.Applications
	}
	if fs.Changed("network") {
		cfg.Inputs.Network = s.Network
	}
	if fs.Changed("users") {
		cfg.Inputs.Users = s.Users
	}
	if fs.Changed("output") {
		cfg.Output.AllocationFile = s.AllocationFile
	}
	if fs.Changed("population-size") {
		cfg.PopulationSize = s.PopulationSize
	}
	if fs.Changed("generations") {
		cfg.Generations = ptr.To(s.Generations)
	}
	if fs.Changed("mutation-probability") {
		cfg.MutationProbability = ptr.To(s.MutationProbability)
	}
	if fs.Changed("seed") {
		cfg.Seed = ptr.To(s.Seed)
	}
	if fs.Changed("objective") {
		cfg.Objectives = make([]v1alpha1.ObjectiveName, len(s.Objectives))
		for i, name := range s.Objectives {
			cfg.Objectives[i] = v1alpha1.ObjectiveName(name)
		}
	}
	if fs.Changed("convergence-plot") {
		cfg.Output.ConvergencePlotFile = s.ConvergencePlotFile
	}
	if fs.Changed("population-plot") {
		cfg.Output.PopulationPlotFile = s.PopulationPlotFile
	}
	if fs.Changed("metrics-file") {
		cfg.Output.MetricsFile = s.MetricsFile
	}
	if fs.Changed("otel-collector-endpoint") {
		cfg.Tracing.CollectorEndpoint = s.OTelCollectorEndpoint
	}
}
