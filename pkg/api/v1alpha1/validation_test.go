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
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"k8s.io/utils/ptr"
)

func defaulted() *PlacementOptimizerConfiguration {
	cfg := &PlacementOptimizerConfiguration{}
	SetDefaults_PlacementOptimizerConfiguration(cfg)
	return cfg
}

func TestSetDefaults(t *testing.T) {
	got := defaulted()
	want := &PlacementOptimizerConfiguration{
		PopulationSize:        10,
		Generations:           ptr.To(5),
		MutationProbability:   ptr.To(0.2),
		Seed:                  ptr.To(int64(42)),
		MaxGenerationAttempts: 1000,
		MaxMutationAttempts:   100,
		MaxCrossoverAttempts:  100,
		Objectives:            []ObjectiveName{MeanResourceUsage},
		Inputs: InputFiles{
			Applications: "data/appDefinition.json",
			Network:      "data/networkDefinition.json",
			Users:        "data/usersDefinition.json",
		},
		Output: OutputFiles{AllocationFile: "data/allocDefinitionGA.json"},
		Tracing: TracingConfiguration{
			ServiceName: "placement-optimizer",
			SampleRate:  ptr.To(1.0),
		},
	}
	want.APIVersion = "placement.fogplace.io/v1alpha1"
	want.Kind = "PlacementOptimizerConfiguration"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}

	// explicit zero values behind pointers survive defaulting
	cfg := &PlacementOptimizerConfiguration{
		Generations:         ptr.To(0),
		MutationProbability: ptr.To(0.0),
		Seed:                ptr.To(int64(0)),
	}
	SetDefaults_PlacementOptimizerConfiguration(cfg)
	if *cfg.Generations != 0 || *cfg.MutationProbability != 0 || *cfg.Seed != 0 {
		t.Errorf("explicit zero values were overwritten: %v %v %v", *cfg.Generations, *cfg.MutationProbability, *cfg.Seed)
	}
	if err := ValidatePlacementOptimizerConfiguration(cfg); err != nil {
		t.Errorf("zero generations should be valid: %v", err)
	}
}

func TestValidatePlacementOptimizerConfiguration(t *testing.T) {
	testCases := []struct {
		name    string
		modify  func(*PlacementOptimizerConfiguration)
		wantErr []string
	}{
		{
			name:   "Defaults",
			modify: func(*PlacementOptimizerConfiguration) {},
		},
		{
			name: "AllObjectives",
			modify: func(cfg *PlacementOptimizerConfiguration) {
				cfg.Objectives = []ObjectiveName{MeanEdgeDistance, MeanResourceUsage, MeanReplicaCount, UsageBalance}
			},
		},
		{
			name: "PopulationTooSmall",
			modify: func(cfg *PlacementOptimizerConfiguration) {
				cfg.PopulationSize = 1
			},
			wantErr: []string{"populationSize must be at least 2"},
		},
		{
			name: "SeveralProblemsAreAggregated",
			modify: func(cfg *PlacementOptimizerConfiguration) {
				cfg.Generations = ptr.To(-1)
				cfg.MutationProbability = ptr.To(1.5)
				cfg.MaxCrossoverAttempts = -1
				cfg.Tracing.SampleRate = ptr.To(-0.1)
			},
			wantErr: []string{
				"generations must be >= 0",
				"mutationProbability must be between 0 and 1",
				"maxCrossoverAttempts must be at least 1",
				"tracing.sampleRate must be between 0 and 1",
			},
		},
		{
			name: "UnknownAndDuplicateObjectives",
			modify: func(cfg *PlacementOptimizerConfiguration) {
				cfg.Objectives = []ObjectiveName{"latency", MeanResourceUsage, MeanResourceUsage}
			},
			wantErr: []string{`unknown objective "latency"`, `objective "meanResourceUsage" listed more than once`},
		},
		{
			name: "MissingInputs",
			modify: func(cfg *PlacementOptimizerConfiguration) {
				cfg.Inputs = InputFiles{}
			},
			wantErr: []string{"inputs.applications must be set", "inputs.network must be set", "inputs.users must be set"},
		},
		{
			name: "WrongKind",
			modify: func(cfg *PlacementOptimizerConfiguration) {
				cfg.Kind = "DeschedulerPolicy"
			},
			wantErr: []string{"kind must be PlacementOptimizerConfiguration"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaulted()
			tc.modify(cfg)
			err := ValidatePlacementOptimizerConfiguration(cfg)
			if len(tc.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected an error")
			}
			for _, want := range tc.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not contain %q", err, want)
				}
			}
		})
	}
}

func TestIDUnmarshalJSON(t *testing.T) {
	testCases := []struct {
		input   string
		want    ID
		wantErr bool
	}{
		{input: `"app"`, want: "app"},
		{input: `3`, want: "3"},
		{input: ` 12 `, want: "12"},
		{input: `true`, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			var got ID
			err := json.Unmarshal([]byte(tc.input), &got)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Unmarshal() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestApplicationKey(t *testing.T) {
	if got := (Application{ID: "3", Name: "web"}).Key(); got != "web" {
		t.Errorf("Key() = %q, want the name", got)
	}
	if got := (Application{ID: "3"}).Key(); got != "3" {
		t.Errorf("Key() = %q, want the id", got)
	}
}
