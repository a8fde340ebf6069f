package util_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fogplace/placement-optimizer/pkg/placement/algorithms"
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
	"github.com/fogplace/placement-optimizer/pkg/placement/util"
)

func TestPlotConvergence(t *testing.T) {
	history := []algorithms.GenerationStats{
		{Generation: 0, BestFitness: framework.ObjectiveSpacePoint{0.6, 2}, MeanFitness: framework.ObjectiveSpacePoint{0.8, math.Inf(1)}},
		{Generation: 1, BestFitness: framework.ObjectiveSpacePoint{0.5, 1.5}, MeanFitness: framework.ObjectiveSpacePoint{0.7, 2.5}},
	}
	names := []string{"meanResourceUsage", "meanEdgeDistance"}

	path := filepath.Join(t.TempDir(), "convergence.html")
	if err := util.PlotConvergence(history, names, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read plot: %v", err)
	}
	for _, want := range []string{"best meanResourceUsage", "mean meanEdgeDistance"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("plot does not contain series %q", want)
		}
	}
}

func TestPlotConvergenceErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convergence.html")
	testCases := []struct {
		name    string
		history []algorithms.GenerationStats
		names   []string
	}{
		{name: "EmptyHistory", names: []string{"a"}},
		{
			name: "ObjectiveCountMismatch",
			history: []algorithms.GenerationStats{
				{BestFitness: framework.ObjectiveSpacePoint{1}, MeanFitness: framework.ObjectiveSpacePoint{1}},
			},
			names: []string{"a", "b"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := util.PlotConvergence(tc.history, tc.names, path); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestPlotPopulation(t *testing.T) {
	population := []algorithms.Individual{
		{Fitness: framework.ObjectiveSpacePoint{0.5, 1}},
		{Fitness: framework.ObjectiveSpacePoint{0.4, math.Inf(1)}},
	}
	dir := t.TempDir()

	if err := util.PlotPopulation(population, []string{"meanResourceUsage", "meanEdgeDistance"}, filepath.Join(dir, "population.html")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "population.html")); err != nil {
		t.Errorf("plot was not written: %v", err)
	}
	if err := util.PlotPopulation(population, []string{"meanResourceUsage"}, filepath.Join(dir, "single.html")); err == nil {
		t.Errorf("expected an error for a single objective")
	}
}
