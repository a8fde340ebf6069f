package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fogplace/placement-optimizer/pkg/placement/metrics"
)

func TestWriteTextFile(t *testing.T) {
	metrics.GenerationsCompleted.Inc()
	metrics.BestFitness.WithLabelValues("meanResourceUsage").Set(0.5)
	metrics.Regenerations.WithLabelValues("mutation").Inc()

	path := filepath.Join(t.TempDir(), "metrics.prom")
	if err := metrics.WriteTextFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read metrics file: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"placement_optimizer_generations_total",
		`placement_optimizer_best_fitness{objective="meanResourceUsage"} 0.5`,
		`placement_optimizer_regenerations_total{operator="mutation"}`,
		"# TYPE placement_optimizer_generation_duration_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestWriteTextFileBadPath(t *testing.T) {
	if err := metrics.WriteTextFile(filepath.Join(t.TempDir(), "missing", "metrics.prom")); err == nil {
		t.Errorf("expected an error for a missing directory")
	}
}
