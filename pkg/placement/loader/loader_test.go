package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"

	"github.com/fogplace/placement-optimizer/pkg/api/v1alpha1"
	"github.com/fogplace/placement-optimizer/pkg/placement/loader"
)

func testInputs() v1alpha1.InputFiles {
	return v1alpha1.InputFiles{
		Applications: "testdata/appDefinition.json",
		Network:      "testdata/networkDefinition.json",
		Users:        "testdata/usersDefinition.json",
	}
}

func TestLoadDefinitions(t *testing.T) {
	defs, err := loader.LoadDefinitions(klog.Background(), testInputs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantApps := []v1alpha1.Application{
		{
			ID:   "0",
			Name: "0",
			Modules: []v1alpha1.Module{
				{Name: "0_01", RAM: ptr.To(2.0)},
				{Name: "0_02"},
			},
			Messages: []v1alpha1.Message{
				{Name: "M.USER.APP.0", S: "None", D: "0_01", Instructions: 120, Bytes: 2000},
				{Name: "M.0_01.0_02", S: "0_01", D: "0_02", Instructions: 80, Bytes: 1000},
			},
			Transmission: []v1alpha1.Transmission{
				{Module: "0_01", MessageIn: "M.USER.APP.0", MessageOut: "M.0_01.0_02"},
				{Module: "0_02", MessageIn: "M.0_01.0_02"},
			},
		},
		{
			ID:   "1",
			Name: "1",
			Modules: []v1alpha1.Module{
				{Name: "1_01", RAM: ptr.To(3.0)},
			},
			Messages: []v1alpha1.Message{
				{Name: "M.USER.APP.1", S: "None", D: "1_01"},
			},
		},
	}
	if diff := cmp.Diff(wantApps, defs.Applications); diff != "" {
		t.Errorf("applications mismatch (-want +got):\n%s", diff)
	}

	wantNetwork := v1alpha1.NetworkDefinition{
		Entities: []v1alpha1.Entity{
			{ID: 0, RAM: ptr.To(8.0)},
			{ID: 1},
			{ID: 2, RAM: ptr.To(4.0)},
		},
		Links: []v1alpha1.Link{
			{S: 0, D: 1, PR: 2, BW: 75000},
			{S: 1, D: 2, PR: 3, BW: 50000},
		},
	}
	if diff := cmp.Diff(wantNetwork, defs.Network); diff != "" {
		t.Errorf("network mismatch (-want +got):\n%s", diff)
	}

	wantUsers := v1alpha1.UsersDefinition{
		Sources: []v1alpha1.Source{
			{App: "0", IDResource: 2, Message: "M.USER.APP.0", Lambda: 100},
			{App: "1", IDResource: 0, Message: "M.USER.APP.1", Lambda: 50},
		},
	}
	if diff := cmp.Diff(wantUsers, defs.Users); diff != "" {
		t.Errorf("users mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefinitionsMissingFile(t *testing.T) {
	inputs := testInputs()
	inputs.Users = "testdata/missing.json"
	if _, err := loader.LoadDefinitions(klog.Background(), inputs); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestLoadApplicationsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.json")
	if err := os.WriteFile(path, []byte(`{"id": 0`), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := loader.LoadApplications(path); err == nil {
		t.Errorf("expected a decoding error")
	}
}

func TestLoadConfiguration(t *testing.T) {
	cfg, err := loader.LoadConfiguration("testdata/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &v1alpha1.PlacementOptimizerConfiguration{}
	want.APIVersion = "placement.fogplace.io/v1alpha1"
	want.Kind = "PlacementOptimizerConfiguration"
	want.PopulationSize = 20
	want.Generations = ptr.To(10)
	want.MutationProbability = ptr.To(0.3)
	want.Seed = ptr.To(int64(7))
	want.MaxGenerationAttempts = v1alpha1.DefaultMaxGenerationAttempts
	want.MaxMutationAttempts = v1alpha1.DefaultMaxMutationAttempts
	want.MaxCrossoverAttempts = v1alpha1.DefaultMaxCrossoverAttempts
	want.Objectives = []v1alpha1.ObjectiveName{v1alpha1.MeanResourceUsage, v1alpha1.MeanEdgeDistance}
	want.Inputs = testInputs()
	want.Output.AllocationFile = "out/alloc.json"
	want.Tracing.ServiceName = v1alpha1.DefaultServiceName
	want.Tracing.SampleRate = ptr.To(0.5)

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("configuration mismatch (-want +got):\n%s", diff)
	}
	if err := v1alpha1.ValidatePlacementOptimizerConfiguration(cfg); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	cfg, err := loader.LoadConfiguration("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PopulationSize != v1alpha1.DefaultPopulationSize || *cfg.Seed != v1alpha1.DefaultSeed {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.Inputs.Applications != "data/appDefinition.json" || cfg.Output.AllocationFile != "data/allocDefinitionGA.json" {
		t.Errorf("unexpected default paths: %+v %+v", cfg.Inputs, cfg.Output)
	}
}

func TestLoadConfigurationZeroGenerations(t *testing.T) {
	cfg, err := loader.LoadConfiguration("testdata/zero-generations.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Generations == nil || *cfg.Generations != 0 {
		t.Errorf("expected 0 generations to survive defaulting, got %v", cfg.Generations)
	}
	if cfg.PopulationSize != 4 {
		t.Errorf("populationSize = %d, want 4", cfg.PopulationSize)
	}
}

func TestLoadConfigurationUnknownField(t *testing.T) {
	if _, err := loader.LoadConfiguration("testdata/unknown-field.yaml"); err == nil {
		t.Errorf("expected an error for an unknown field")
	}
}

func TestLoadAllocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alloc.json")
	content := `{"initialAllocation": [{"module_name": "0_01", "app": "0", "id_resource": 2}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	def, err := loader.LoadAllocation(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &v1alpha1.AllocationDefinition{InitialAllocation: []v1alpha1.Allocation{{ModuleName: "0_01", App: "0", IDResource: 2}}}
	if diff := cmp.Diff(want, def); diff != "" {
		t.Errorf("allocation mismatch (-want +got):\n%s", diff)
	}
}
