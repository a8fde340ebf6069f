package framework

// NodeInfo contains node information for optimization
type NodeInfo struct {
	Idx      int
	ID       int     // entity id in the network definition
	Capacity float64 // resource units (RAM in the definitions)
}

// ServiceInfo contains service (application module) information for optimization
type ServiceInfo struct {
	Idx    int
	App    string
	Module string
	Demand float64 // resource units (RAM in the definitions)
}

// Affinity is a hard requirement that Service runs a replica on Node.
// App and Module are kept for reporting only.
type Affinity struct {
	Service int
	Node    int
	App     string
	Module  string
}

// ObjectiveSpacePoint is the value of a chromosome in the objective space.
type ObjectiveSpacePoint []float64

// Constraint reports whether a chromosome satisfies a feasibility rule.
type Constraint func(Chromosome) bool

// ObjectiveFunc maps a chromosome to a value to be minimized.
type ObjectiveFunc func(Chromosome) float64
