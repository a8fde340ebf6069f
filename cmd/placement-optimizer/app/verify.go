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

package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	logsapi "k8s.io/component-base/logs/api/v1"
	"k8s.io/klog/v2"

	"github.com/fogplace/placement-optimizer/cmd/placement-optimizer/app/options"
	"github.com/fogplace/placement-optimizer/pkg/api/v1alpha1"
	"github.com/fogplace/placement-optimizer/pkg/placement/allocation"
	"github.com/fogplace/placement-optimizer/pkg/placement/constraints"
	"github.com/fogplace/placement-optimizer/pkg/placement/environment"
	"github.com/fogplace/placement-optimizer/pkg/placement/loader"
	"github.com/fogplace/placement-optimizer/pkg/placement/objectives"
)

var allObjectives = []v1alpha1.ObjectiveName{
	v1alpha1.MeanResourceUsage,
	v1alpha1.MeanReplicaCount,
	v1alpha1.MeanEdgeDistance,
	v1alpha1.UsageBalance,
}

// NewVerifyCommand creates the command checking an existing allocation document
func NewVerifyCommand(out io.Writer) *cobra.Command {
	s := options.NewPlacementOptimizerServer()
	var allocationFile string
	cmd := &cobra.Command{
		Use:          "verify",
		Short:        "Check an allocation document against the placement constraints",
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
			if allocationFile == "" {
				allocationFile = cfg.Output.AllocationFile
			}
			return Verify(cmd.Context(), cfg.Inputs, allocationFile, out)
		},
	}
	cmd.SetOut(out)

	flags := cmd.Flags()
	s.AddInputFlags(flags)
	flags.StringVar(&allocationFile, "allocation", allocationFile, "Allocation document to verify. Defaults to the configured output file.")
	logsapi.AddFlags(s.Logs, flags)
	return cmd
}

// Verify prints the constraint report and objective values of an allocation
// document. It fails when any constraint is violated.
func Verify(ctx context.Context, inputs v1alpha1.InputFiles, allocationFile string, out io.Writer) error {
	logger := klog.FromContext(ctx)

	defs, err := loader.LoadDefinitions(logger, inputs)
	if err != nil {
		return err
	}
	env, err := environment.NewFromDefinitions(ctx, defs.Applications, defs.Network, defs.Users)
	if err != nil {
		return fmt.Errorf("building environment: %w", err)
	}
	def, err := loader.LoadAllocation(allocationFile)
	if err != nil {
		return err
	}
	c, err := allocation.ToChromosome(env, defs.Applications, def)
	if err != nil {
		return err
	}

	objs, err := objectives.Build(env, allObjectives)
	if err != nil {
		return err
	}
	fitness := make([]float64, len(objs))
	for i, o := range objs {
		fitness[i] = o.Func(c)
	}

	report := constraints.Verify(env, c)
	printSummary(out, env, objectives.Names(objs), fitness, c, report)

	violations := report.Violations(env)
	for _, v := range violations {
		fmt.Fprintf(out, "  violation: %s\n", v)
	}
	if !report.Feasible() {
		return fmt.Errorf("allocation %s violates %d constraints", allocationFile, len(violations))
	}
	logger.V(1).Info("Allocation satisfies all constraints", "path", allocationFile)
	return nil
}
