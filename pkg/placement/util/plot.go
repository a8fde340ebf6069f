package util

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/fogplace/placement-optimizer/pkg/placement/algorithms"
)

// value drops non-finite points, which the chart renders as gaps
func value(v float64) interface{} {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return v
}

// PlotConvergence writes a line chart of the best and mean value of every
// objective per generation.
func PlotConvergence(history []algorithms.GenerationStats, objectiveNames []string, outputPath string) error {
	if len(history) == 0 {
		return fmt.Errorf("history is empty")
	}
	for _, s := range history {
		if len(s.BestFitness) != len(objectiveNames) || len(s.MeanFitness) != len(objectiveNames) {
			return fmt.Errorf("generation %d has %d objective values, expected %d", s.Generation, len(s.BestFitness), len(objectiveNames))
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "GA convergence",
			Subtitle: fmt.Sprintf("%d generations", len(history)-1),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "generation",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "fitness",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}))

	generations := make([]string, len(history))
	for i, s := range history {
		generations[i] = strconv.Itoa(s.Generation)
	}
	line.SetXAxis(generations)

	for o, name := range objectiveNames {
		best := make([]opts.LineData, len(history))
		mean := make([]opts.LineData, len(history))
		for i, s := range history {
			best[i] = opts.LineData{Value: value(s.BestFitness[o])}
			mean[i] = opts.LineData{Value: value(s.MeanFitness[o])}
		}
		line.AddSeries(fmt.Sprintf("best %s", name), best).
			AddSeries(fmt.Sprintf("mean %s", name), mean)
	}
	line.SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{
			Show: opts.Bool(false),
		}),
	)

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return line.Render(f)
}

// PlotPopulation writes a scatter plot of the final population in the plane
// of the first two objectives.
func PlotPopulation(population []algorithms.Individual, objectiveNames []string, outputPath string) error {
	if len(population) == 0 {
		return fmt.Errorf("population is empty")
	}
	if len(objectiveNames) < 2 {
		return fmt.Errorf("can only plot populations of at least 2 objectives, got %d", len(objectiveNames))
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Final population",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: objectiveNames[0],
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: objectiveNames[1],
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}))

	points := make([]opts.ScatterData, 0, len(population))
	for _, ind := range population {
		if len(ind.Fitness) < 2 || value(ind.Fitness[0]) == nil || value(ind.Fitness[1]) == nil {
			continue
		}
		points = append(points, opts.ScatterData{
			Value:      []float64{ind.Fitness[0], ind.Fitness[1]},
			Symbol:     "triangle",
			SymbolSize: 8,
		})
	}
	scatter.AddSeries("GA Solutions", points)

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return scatter.Render(f)
}
