package loader

import (
	"fmt"
	"os"

	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"

	"github.com/fogplace/placement-optimizer/pkg/api/v1alpha1"
)

// Definitions are the three input documents of a run
type Definitions struct {
	Applications []v1alpha1.Application
	Network      v1alpha1.NetworkDefinition
	Users        v1alpha1.UsersDefinition
}

func decode(path string, into interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// LoadApplications reads an application definition document
func LoadApplications(path string) ([]v1alpha1.Application, error) {
	var apps []v1alpha1.Application
	if err := decode(path, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// LoadNetwork reads a network definition document
func LoadNetwork(path string) (v1alpha1.NetworkDefinition, error) {
	var network v1alpha1.NetworkDefinition
	err := decode(path, &network)
	return network, err
}

// LoadUsers reads a users definition document
func LoadUsers(path string) (v1alpha1.UsersDefinition, error) {
	var users v1alpha1.UsersDefinition
	err := decode(path, &users)
	return users, err
}

// LoadAllocation reads an allocation document
func LoadAllocation(path string) (*v1alpha1.AllocationDefinition, error) {
	def := &v1alpha1.AllocationDefinition{}
	if err := decode(path, def); err != nil {
		return nil, err
	}
	return def, nil
}

// LoadDefinitions reads the three input documents named by inputs
func LoadDefinitions(logger klog.Logger, inputs v1alpha1.InputFiles) (*Definitions, error) {
	apps, err := LoadApplications(inputs.Applications)
	if err != nil {
		return nil, err
	}
	network, err := LoadNetwork(inputs.Network)
	if err != nil {
		return nil, err
	}
	users, err := LoadUsers(inputs.Users)
	if err != nil {
		return nil, err
	}
	logger.V(1).Info("Loaded definitions",
		"applications", len(apps),
		"entities", len(network.Entities),
		"links", len(network.Links),
		"sources", len(users.Sources))
	return &Definitions{Applications: apps, Network: network, Users: users}, nil
}

// LoadConfiguration reads a configuration file, rejecting unknown fields. An
// empty path yields the defaults. The result is defaulted but not validated,
// so that command line overrides can still be applied.
func LoadConfiguration(path string) (*v1alpha1.PlacementOptimizerConfiguration, error) {
	cfg := &v1alpha1.PlacementOptimizerConfiguration{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading configuration %s: %w", path, err)
		}
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("decoding configuration %s: %w", path, err)
		}
	}
	v1alpha1.SetDefaults_PlacementOptimizerConfiguration(cfg)
	return cfg, nil
}
