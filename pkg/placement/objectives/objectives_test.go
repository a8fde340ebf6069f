package objectives_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fogplace/placement-optimizer/pkg/api/v1alpha1"
	"github.com/fogplace/placement-optimizer/pkg/placement/environment"
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
	"github.com/fogplace/placement-optimizer/pkg/placement/objectives"
)

func TestBuild(t *testing.T) {
	env, err := environment.New([]float64{2, 2}, []float64{1, 1}, nil, environment.WithLinks([2]int{0, 1}), environment.WithClientNodes(0))
	if err != nil {
		t.Fatalf("failed to build environment: %v", err)
	}
	c, _ := framework.ParseChromosome("11", "01")

	objs, err := objectives.Build(env, []v1alpha1.ObjectiveName{
		v1alpha1.MeanResourceUsage,
		v1alpha1.MeanReplicaCount,
		v1alpha1.MeanEdgeDistance,
		v1alpha1.UsageBalance,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"meanResourceUsage", "meanReplicaCount", "meanEdgeDistance", "usageBalance"}, objectives.Names(objs)); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	var got []float64
	for _, fn := range objectives.Funcs(objs) {
		got = append(got, fn(c))
	}
	// usage: (1/2 + 2/2) / 2, replicas: 3/2, distance: (0/2 + 1/1) / 2,
	// balance: utilizations 50% and 100%
	want := []float64{0.75, 1.5, 0.5, 0.5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildErrors(t *testing.T) {
	env, err := environment.New([]float64{1}, []float64{1}, nil)
	if err != nil {
		t.Fatalf("failed to build environment: %v", err)
	}
	if _, err := objectives.Build(env, nil); err == nil {
		t.Errorf("expected an error for an empty objective list")
	}
	if _, err := objectives.Build(env, []v1alpha1.ObjectiveName{"latency"}); err == nil {
		t.Errorf("expected an error for an unknown objective")
	}
}
