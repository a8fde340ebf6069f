package distance_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fogplace/placement-optimizer/pkg/placement/environment"
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
	"github.com/fogplace/placement-optimizer/pkg/placement/objectives/distance"
)

// line topology 0 - 1 - 2 - 3 with users on nodes 0 and 3
func newLineEnv(t *testing.T) *environment.Environment {
	t.Helper()
	env, err := environment.New(
		[]float64{10, 10, 10, 10},
		[]float64{1, 1},
		nil,
		environment.WithLinks([2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}),
		environment.WithClientNodes(0, 3),
	)
	if err != nil {
		t.Fatalf("failed to build environment: %v", err)
	}
	return env
}

func TestMeanEdgeDistance(t *testing.T) {
	env := newLineEnv(t)

	testCases := []struct {
		name string
		rows []string
		want float64
	}{
		{
			// service 0: (0 + 3) / 1, service 1: (3 + 0) / 1
			name: "SingleReplicasAtTheEdges",
			rows: []string{"1000", "0001"},
			want: 3,
		},
		{
			// service 0: (0 + 0) / 2, service 1: (1 + 2) / 1
			name: "ReplicatedService",
			rows: []string{"1001", "0100"},
			want: 1.5,
		},
		{
			name: "MissingReplica",
			rows: []string{"1000", "0000"},
			want: math.Inf(1),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := framework.ParseChromosome(tc.rows...)
			if err != nil {
				t.Fatalf("failed to parse chromosome: %v", err)
			}
			if got := distance.MeanEdgeDistanceObjective(env)(c); got != tc.want {
				t.Errorf("MeanEdgeDistance() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHistogram(t *testing.T) {
	env := newLineEnv(t)
	c, _ := framework.ParseChromosome("1001", "0100", "0000")

	want := map[float64]int{0: 2, 1: 1, 2: 1}
	if diff := cmp.Diff(want, distance.Histogram(c, env)); diff != "" {
		t.Errorf("histogram mismatch (-want +got):\n%s", diff)
	}
}

func TestUnreachableClient(t *testing.T) {
	env, err := environment.New([]float64{1, 1}, []float64{1}, nil, environment.WithClientNodes(1))
	if err != nil {
		t.Fatalf("failed to build environment: %v", err)
	}
	c, _ := framework.ParseChromosome("10")
	if got := distance.MeanEdgeDistance(c, env); !math.IsInf(got, 1) {
		t.Errorf("expected +Inf for an unreachable client, got %v", got)
	}
	if got := distance.Histogram(c, env); len(got) != 0 {
		t.Errorf("expected an empty histogram, got %v", got)
	}
}
