// Package environment derives the fixed inputs of the placement optimizer from
// application, network and user definitions: node capacities, service demands,
// the service index and the hard affinity constraints implied by user traffic.
//
// An Environment is immutable once built and is shared read-only by every
// candidate solution of a run. Accessors hand out copies of its vectors.
package environment

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"

	"github.com/fogplace/placement-optimizer/pkg/api/v1alpha1"
	"github.com/fogplace/placement-optimizer/pkg/placement/framework"
)

type serviceKey struct {
	app    string
	module string
}

// Environment is the read-only problem instance
type Environment struct {
	nodes     []framework.NodeInfo
	services  []framework.ServiceInfo
	nodeIndex map[int]int
	svcIndex  map[serviceKey]int

	affinities       []framework.Affinity
	affinityPairs    sets.Set[[2]int]
	affinityServices sets.Set[int]
	affinityNodes    sets.Set[int]

	clientNodes []int
	distances   [][]float64
}

// Option customizes an Environment built from raw vectors
type Option func(*options)

type options struct {
	links       [][2]int
	clientNodes []int
}

// WithLinks adds undirected links between node indices, used for hop distances
func WithLinks(links ...[2]int) Option {
	return func(o *options) {
		o.links = append(o.links, links...)
	}
}

// WithClientNodes sets the nodes hosting users. It defaults to the affinity nodes.
func WithClientNodes(nodes ...int) Option {
	return func(o *options) {
		o.clientNodes = append(o.clientNodes, nodes...)
	}
}

// New builds an environment directly from capacity and demand vectors. Services
// are named "s<idx>" in an application named after the empty string.
// Affinity pairs must reference existing services and nodes.
func New(capacities, demands []float64, affinities []framework.Affinity, opts ...Option) (*Environment, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	nodes := make([]framework.NodeInfo, len(capacities))
	for i, c := range capacities {
		nodes[i] = framework.NodeInfo{Idx: i, ID: i, Capacity: c}
	}
	services := make([]framework.ServiceInfo, len(demands))
	for i, d := range demands {
		services[i] = framework.ServiceInfo{Idx: i, Module: fmt.Sprintf("s%d", i), Demand: d}
	}

	for _, a := range affinities {
		if a.Service < 0 || a.Service >= len(demands) {
			return nil, fmt.Errorf("affinity references unknown service %d", a.Service)
		}
		if a.Node < 0 || a.Node >= len(capacities) {
			return nil, fmt.Errorf("affinity references unknown node %d", a.Node)
		}
	}
	resolved := make([]framework.Affinity, len(affinities))
	for i, a := range affinities {
		resolved[i] = a
		if resolved[i].Module == "" {
			resolved[i].Module = services[a.Service].Module
		}
	}

	clients := o.clientNodes
	if clients == nil {
		seen := sets.New[int]()
		for _, a := range resolved {
			if !seen.Has(a.Node) {
				seen.Insert(a.Node)
				clients = append(clients, a.Node)
			}
		}
	}

	return build(nodes, services, resolved, o.links, clients)
}

// NewFromDefinitions builds an environment from the definition documents.
// Services are indexed by enumerating applications, then their modules, in
// document order. User sources whose application, message, destination module
// or node cannot be resolved are skipped.
func NewFromDefinitions(ctx context.Context, apps []v1alpha1.Application, network v1alpha1.NetworkDefinition, users v1alpha1.UsersDefinition) (*Environment, error) {
	logger := klog.FromContext(ctx).WithValues("component", "environment")

	nodes := make([]framework.NodeInfo, len(network.Entities))
	nodeIndex := make(map[int]int, len(network.Entities))
	for i, e := range network.Entities {
		capacity := v1alpha1.DefaultNodeCapacity
		if e.RAM != nil {
			capacity = *e.RAM
		}
		if _, dup := nodeIndex[e.ID]; dup {
			return nil, fmt.Errorf("network entity id %d is defined more than once", e.ID)
		}
		nodeIndex[e.ID] = i
		nodes[i] = framework.NodeInfo{Idx: i, ID: e.ID, Capacity: capacity}
	}

	var services []framework.ServiceInfo
	svcIndex := make(map[serviceKey]int)
	appsByKey := make(map[string]*v1alpha1.Application, len(apps))
	for a := range apps {
		app := &apps[a]
		key := app.Key()
		if _, dup := appsByKey[key]; !dup {
			appsByKey[key] = app
		}
		for _, m := range app.Modules {
			k := serviceKey{app: key, module: m.Name}
			if _, dup := svcIndex[k]; dup {
				continue
			}
			demand := v1alpha1.DefaultModuleDemand
			if m.RAM != nil {
				demand = *m.RAM
			}
			svcIndex[k] = len(services)
			services = append(services, framework.ServiceInfo{
				Idx:    len(services),
				App:    key,
				Module: m.Name,
				Demand: demand,
			})
		}
	}

	var affinities []framework.Affinity
	seenPairs := sets.New[[2]int]()
	seenClients := sets.New[int]()
	var clients []int
	for i, src := range users.Sources {
		node, ok := nodeIndex[src.IDResource]
		if !ok {
			logger.V(2).Info("Skipping user source on unknown node", "source", i, "node", src.IDResource)
			continue
		}
		if !seenClients.Has(node) {
			seenClients.Insert(node)
			clients = append(clients, node)
		}

		app, ok := appsByKey[string(src.App)]
		if !ok {
			logger.V(2).Info("Skipping user source of unknown application", "source", i, "app", src.App)
			continue
		}
		var dst string
		for _, msg := range app.Messages {
			if msg.Name == src.Message {
				dst = msg.D
				break
			}
		}
		if dst == "" {
			logger.V(2).Info("Skipping user source with unknown message", "source", i, "app", src.App, "message", src.Message)
			continue
		}
		svc, ok := svcIndex[serviceKey{app: app.Key(), module: dst}]
		if !ok {
			logger.V(2).Info("Skipping user source whose destination module is not deployable", "source", i, "app", src.App, "module", dst)
			continue
		}
		pair := [2]int{svc, node}
		if seenPairs.Has(pair) {
			continue
		}
		seenPairs.Insert(pair)
		affinities = append(affinities, framework.Affinity{Service: svc, Node: node, App: app.Key(), Module: dst})
	}

	var links [][2]int
	for _, l := range network.Links {
		s, okS := nodeIndex[l.S]
		d, okD := nodeIndex[l.D]
		if !okS || !okD {
			logger.V(2).Info("Skipping link to unknown entity", "s", l.S, "d", l.D)
			continue
		}
		links = append(links, [2]int{s, d})
	}

	env, err := build(nodes, services, affinities, links, clients)
	if err != nil {
		return nil, err
	}

	logger.V(1).Info("Environment built",
		"nodes", env.NodeCount(),
		"services", env.ServiceCount(),
		"affinities", len(env.affinities),
		"clientNodes", len(env.clientNodes))
	return env, nil
}

func build(nodes []framework.NodeInfo, services []framework.ServiceInfo, affinities []framework.Affinity, links [][2]int, clients []int) (*Environment, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("environment needs at least one node")
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("environment needs at least one service")
	}
	for _, n := range nodes {
		if n.Capacity < 0 || math.IsNaN(n.Capacity) {
			return nil, fmt.Errorf("node %d has invalid capacity %v", n.ID, n.Capacity)
		}
	}
	for _, s := range services {
		if s.Demand < 0 || math.IsNaN(s.Demand) {
			return nil, fmt.Errorf("service %s/%s has invalid demand %v", s.App, s.Module, s.Demand)
		}
	}
	for _, c := range clients {
		if c < 0 || c >= len(nodes) {
			return nil, fmt.Errorf("client node %d out of range", c)
		}
	}

	env := &Environment{
		nodes:            nodes,
		services:         services,
		nodeIndex:        make(map[int]int, len(nodes)),
		svcIndex:         make(map[serviceKey]int, len(services)),
		affinities:       affinities,
		affinityPairs:    sets.New[[2]int](),
		affinityServices: sets.New[int](),
		affinityNodes:    sets.New[int](),
		clientNodes:      clients,
	}
	for _, n := range nodes {
		env.nodeIndex[n.ID] = n.Idx
	}
	for _, s := range services {
		env.svcIndex[serviceKey{app: s.App, module: s.Module}] = s.Idx
	}
	for _, a := range affinities {
		env.affinityPairs.Insert([2]int{a.Service, a.Node})
		env.affinityServices.Insert(a.Service)
		env.affinityNodes.Insert(a.Node)
	}
	env.distances = hopDistances(len(nodes), links)
	return env, nil
}

// hopDistances computes all-pairs shortest hop counts. Unreachable pairs are +Inf.
func hopDistances(numNodes int, links [][2]int) [][]float64 {
	g := simple.NewUndirectedGraph()
	for i := 0; i < numNodes; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, l := range links {
		if l[0] == l[1] || g.HasEdgeBetween(int64(l[0]), int64(l[1])) {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(l[0]), simple.Node(l[1])))
	}

	shortest := path.DijkstraAllPaths(g)
	dist := make([][]float64, numNodes)
	for i := range dist {
		dist[i] = make([]float64, numNodes)
		for j := range dist[i] {
			if i == j {
				continue
			}
			dist[i][j] = shortest.Weight(int64(i), int64(j))
		}
	}
	return dist
}

// NodeCount returns the number of candidate nodes
func (e *Environment) NodeCount() int {
	return len(e.nodes)
}

// ServiceCount returns the number of services
func (e *Environment) ServiceCount() int {
	return len(e.services)
}

// Node returns the node with index idx
func (e *Environment) Node(idx int) framework.NodeInfo {
	return e.nodes[idx]
}

// Service returns the service with index idx
func (e *Environment) Service(idx int) framework.ServiceInfo {
	return e.services[idx]
}

// NodeCapacities returns a copy of the per-node capacity vector
func (e *Environment) NodeCapacities() []float64 {
	out := make([]float64, len(e.nodes))
	for i, n := range e.nodes {
		out[i] = n.Capacity
	}
	return out
}

// ServiceDemands returns a copy of the per-service demand vector
func (e *Environment) ServiceDemands() []float64 {
	out := make([]float64, len(e.services))
	for i, s := range e.services {
		out[i] = s.Demand
	}
	return out
}

// ServiceIndex resolves an application module to its service index
func (e *Environment) ServiceIndex(app, module string) (int, bool) {
	idx, ok := e.svcIndex[serviceKey{app: app, module: module}]
	return idx, ok
}

// NodeIndex resolves a network entity id to its node index
func (e *Environment) NodeIndex(entityID int) (int, bool) {
	idx, ok := e.nodeIndex[entityID]
	return idx, ok
}

// Affinities returns a copy of the affinity constraints, in discovery order
func (e *Environment) Affinities() []framework.Affinity {
	return append([]framework.Affinity(nil), e.affinities...)
}

// IsAffinityPair reports whether service s is required on node n
func (e *Environment) IsAffinityPair(s, n int) bool {
	return e.affinityPairs.Has([2]int{s, n})
}

// HasAffinity reports whether service s appears in any affinity constraint
func (e *Environment) HasAffinity(s int) bool {
	return e.affinityServices.Has(s)
}

// IsAffinityNode reports whether node n appears in any affinity constraint
func (e *Environment) IsAffinityNode(n int) bool {
	return e.affinityNodes.Has(n)
}

// FreeNodes returns, in index order, the nodes referenced by no affinity constraint
func (e *Environment) FreeNodes() []int {
	var out []int
	for n := range e.nodes {
		if !e.affinityNodes.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// FreeServices returns, in index order, the services with no affinity constraint
func (e *Environment) FreeServices() []int {
	var out []int
	for s := range e.services {
		if !e.affinityServices.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// ClientNodes returns the nodes hosting user traffic sources
func (e *Environment) ClientNodes() []int {
	return append([]int(nil), e.clientNodes...)
}

// Distance returns the hop distance between two nodes, +Inf when unreachable
func (e *Environment) Distance(from, to int) float64 {
	return e.distances[from][to]
}

// ServicesOfApp returns the service indices of an application in index order
func (e *Environment) ServicesOfApp(app string) []int {
	var out []int
	for _, s := range e.services {
		if s.App == app {
			out = append(out, s.Idx)
		}
	}
	return out
}
