// Package allocation converts between chromosomes and the allocation document
// consumed by the fog simulator.
package allocation

import (
	"encoding/json"
	"fmt"
	"os"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/fogplace/placement-optimizer/pkg/api/v1alpha1"
	"github.com/fogplace/placement-optimizer/pkg/placement/environment"
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
)

type serviceRef struct {
	app    string
	module string
}

// appIDs maps application keys to the identifier written in allocation records
func appIDs(apps []v1alpha1.Application) map[string]string {
	out := make(map[string]string, len(apps))
	for _, app := range apps {
		if _, ok := out[app.Key()]; ok {
			continue
		}
		id := string(app.ID)
		if id == "" {
			id = app.Key()
		}
		out[app.Key()] = id
	}
	return out
}

// Export emits one record per deployed replica, in service then node order.
// Affinity placements missing from the chromosome are appended afterwards so
// that user traffic always finds its destination module.
func Export(env *environment.Environment, apps []v1alpha1.Application, c framework.Chromosome) (*v1alpha1.AllocationDefinition, error) {
	if c.Services() != env.ServiceCount() || c.Nodes() != env.NodeCount() {
		return nil, fmt.Errorf("chromosome is %dx%d, environment is %dx%d",
			c.Services(), c.Nodes(), env.ServiceCount(), env.NodeCount())
	}

	ids := appIDs(apps)
	def := &v1alpha1.AllocationDefinition{InitialAllocation: []v1alpha1.Allocation{}}
	seen := sets.New[serviceRef]()
	for _, app := range apps {
		for _, m := range app.Modules {
			ref := serviceRef{app: app.Key(), module: m.Name}
			if seen.Has(ref) {
				continue
			}
			seen.Insert(ref)
			svc, ok := env.ServiceIndex(ref.app, ref.module)
			if !ok {
				return nil, fmt.Errorf("module %s of app %s is not part of the environment", ref.module, ref.app)
			}
			for n, deployed := range c[svc] {
				if deployed {
					def.InitialAllocation = append(def.InitialAllocation, v1alpha1.Allocation{
						ModuleName: m.Name,
						App:        ids[ref.app],
						IDResource: env.Node(n).ID,
					})
				}
			}
		}
	}

	existing := sets.New[v1alpha1.Allocation](def.InitialAllocation...)
	for _, a := range env.Affinities() {
		rec := v1alpha1.Allocation{
			ModuleName: a.Module,
			App:        ids[a.App],
			IDResource: env.Node(a.Node).ID,
		}
		if existing.Has(rec) {
			continue
		}
		existing.Insert(rec)
		def.InitialAllocation = append(def.InitialAllocation, rec)
	}
	return def, nil
}

// Write stores the allocation document as indented JSON
func Write(path string, def *v1alpha1.AllocationDefinition) error {
	data, err := json.MarshalIndent(def, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding allocation: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing allocation %s: %w", path, err)
	}
	return nil
}

// ToChromosome rebuilds the placement matrix described by an allocation
// document. Every record must resolve to a known service and node.
func ToChromosome(env *environment.Environment, apps []v1alpha1.Application, def *v1alpha1.AllocationDefinition) (framework.Chromosome, error) {
	keys := make(map[string]string, len(apps))
	for key, id := range appIDs(apps) {
		keys[id] = key
	}

	c := framework.NewChromosome(env.ServiceCount(), env.NodeCount())
	var errs []error
	for i, rec := range def.InitialAllocation {
		key, ok := keys[rec.App]
		if !ok {
			key = rec.App
		}
		svc, ok := env.ServiceIndex(key, rec.ModuleName)
		if !ok {
			errs = append(errs, fmt.Errorf("record %d: unknown module %s of app %s", i, rec.ModuleName, rec.App))
			continue
		}
		node, ok := env.NodeIndex(rec.IDResource)
		if !ok {
			errs = append(errs, fmt.Errorf("record %d: unknown resource %d", i, rec.IDResource))
			continue
		}
		c[svc][node] = true
	}
	if len(errs) > 0 {
		return nil, utilerrors.NewAggregate(errs)
	}
	return c, nil
}
