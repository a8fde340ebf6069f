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

// Package app implements a Server object for running the placement optimizer.
package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/component-base/featuregate"
	logsapi "k8s.io/component-base/logs/api/v1"
	"k8s.io/klog/v2"

	"github.com/fogplace/placement-optimizer/cmd/placement-optimizer/app/options"
	"github.com/fogplace/placement-optimizer/pkg/api/v1alpha1"
	"github.com/fogplace/placement-optimizer/pkg/placement/algorithms"
	"github.com/fogplace/placement-optimizer/pkg/placement/allocation"
	"github.com/fogplace/placement-optimizer/pkg/placement/constraints"
	"github.com/fogplace/placement-optimizer/pkg/placement/environment"
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
	"github.com/fogplace/placement-optimizer/pkg/placement/loader"
	"github.com/fogplace/placement-optimizer/pkg/placement/metrics"
	"github.com/fogplace/placement-optimizer/pkg/placement/objectives"
	"github.com/fogplace/placement-optimizer/pkg/placement/objectives/distance"
	"github.com/fogplace/placement-optimizer/pkg/placement/objectives/usage"
	"github.com/fogplace/placement-optimizer/pkg/placement/util"
	"github.com/fogplace/placement-optimizer/pkg/tracing"
)

var featureGate = featuregate.NewFeatureGate()

func init() {
	runtime.Must(logsapi.AddFeatureGates(featureGate))
}

// NewPlacementOptimizerCommand creates a *cobra.Command object with default parameters
func NewPlacementOptimizerCommand(out io.Writer) *cobra.Command {
	s := options.NewPlacementOptimizerServer()
	cmd := &cobra.Command{
		Use:   "placement-optimizer",
		Short: "placement-optimizer",
		Long: `The placement optimizer searches a replica placement of application modules
on the nodes of a fog network with a genetic algorithm and writes it as an
allocation document.`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return logsapi.ValidateAndApply(s.Logs, featureGate)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader.LoadConfiguration(s.ConfigFile)
			if err != nil {
				return err
			}
			s.ApplyTo(cmd.Flags(), cfg)
			return Run(cmd.Context(), cfg, out)
		},
	}
	cmd.SetOut(out)

	flags := cmd.Flags()
	s.AddFlags(flags)
	featureGate.AddFlag(flags)

	cmd.AddCommand(NewVerifyCommand(out))
	return cmd
}

// Run validates cfg, optimizes the placement it describes and writes the
// configured outputs.
func Run(ctx context.Context, cfg *v1alpha1.PlacementOptimizerConfiguration, out io.Writer) error {
	if err := v1alpha1.ValidatePlacementOptimizerConfiguration(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := klog.FromContext(ctx)

	shutdown, err := tracing.NewTracerProvider(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error(err, "Failed to shut down the tracer provider")
		}
	}()

	ctx, span := tracing.Tracer().Start(ctx, "placement-optimizer", trace.WithAttributes(
		attribute.String("applications", cfg.Inputs.Applications),
		attribute.String("network", cfg.Inputs.Network),
		attribute.String("users", cfg.Inputs.Users),
	))
	defer span.End()

	defs, err := loader.LoadDefinitions(logger, cfg.Inputs)
	if err != nil {
		return err
	}
	env, err := environment.NewFromDefinitions(ctx, defs.Applications, defs.Network, defs.Users)
	if err != nil {
		return fmt.Errorf("building environment: %w", err)
	}
	objs, err := objectives.Build(env, cfg.Objectives)
	if err != nil {
		return err
	}

	result, err := algorithms.NewGA(algorithms.ConfigFromAPI(cfg), env, objs).Run(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	report := constraints.Verify(env, result.Chromosome)
	if !report.Feasible() {
		// The search only keeps feasible individuals
		return fmt.Errorf("best placement is infeasible: %s", report)
	}

	def, err := allocation.Export(env, defs.Applications, result.Chromosome)
	if err != nil {
		return err
	}
	if err := allocation.Write(cfg.Output.AllocationFile, def); err != nil {
		return err
	}
	logger.Info("Allocation written", "path", cfg.Output.AllocationFile, "records", len(def.InitialAllocation))

	names := objectives.Names(objs)
	printSummary(out, env, names, result.Fitness, result.Chromosome, report)

	if path := cfg.Output.ConvergencePlotFile; path != "" {
		if err := util.PlotConvergence(result.History, names, path); err != nil {
			return fmt.Errorf("plotting convergence: %w", err)
		}
		logger.V(1).Info("Convergence plot written", "path", path)
	}
	if path := cfg.Output.PopulationPlotFile; path != "" {
		if err := util.PlotPopulation(result.Population, names, path); err != nil {
			return fmt.Errorf("plotting population: %w", err)
		}
		logger.V(1).Info("Population plot written", "path", path)
	}
	if path := cfg.Output.MetricsFile; path != "" {
		if err := metrics.WriteTextFile(path); err != nil {
			return err
		}
		logger.V(1).Info("Metrics written", "path", path)
	}
	return nil
}

func formatFitness(names []string, fitness framework.ObjectiveSpacePoint) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%.4f", name, fitness[i])
	}
	return strings.Join(parts, " ")
}

func printSummary(out io.Writer, env *environment.Environment, names []string, fitness framework.ObjectiveSpacePoint, c framework.Chromosome, report *constraints.Report) {
	fmt.Fprintf(out, "Fitness: %s\n", formatFitness(names, fitness))
	fmt.Fprintf(out, "Constraints: %s\n", report)

	fmt.Fprintln(out, "Node usage:")
	for _, u := range usage.NodeUsageDetails(c, env) {
		fmt.Fprintf(out, "  node %d: %.2f/%.2f (%.1f%%), %d services\n", u.ID, u.Load, u.Capacity, 100*u.Utilization, u.Services)
	}

	hist := distance.Histogram(c, env)
	if len(hist) == 0 {
		return
	}
	hops := make([]float64, 0, len(hist))
	for h := range hist {
		hops = append(hops, h)
	}
	sort.Float64s(hops)
	fmt.Fprintln(out, "Request distances:")
	for _, h := range hops {
		fmt.Fprintf(out, "  %v hops: %d\n", h, hist[h])
	}
}
