package dag

import (
	"fmt"
	"sort"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]struct{}),
		dependents: make(map[string]struct{}),
	}
	g.order = append(g.order, id)
}

// HasNode reports whether id is a node of the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns the node IDs in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node,
// meaning `fromID` must be ordered before `toID`. An error is returned if
// either node does not exist or if the edge would create a self-reference.
// Adding the same edge twice is harmless.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = struct{}{}
	fromNode.dependents[toID] = struct{}{}
	return nil
}

// Dependencies returns the sorted IDs of the nodes that must precede id.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.deps), nil
}

// Dependents returns the sorted IDs of the nodes that must follow id.
func (g *Graph) Dependents(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.dependents), nil
}

// Edges returns the forward edge map of the graph.
func (g *Graph) Edges() map[string]map[string]struct{} {
	edges := make(map[string]map[string]struct{}, len(g.nodes))
	for id, n := range g.nodes {
		if len(n.dependents) == 0 {
			continue
		}
		targets := make(map[string]struct{}, len(n.dependents))
		for to := range n.dependents {
			targets[to] = struct{}{}
		}
		edges[id] = targets
	}
	return edges
}

// Sort orders the graph topologically. See the package-level Sort.
func (g *Graph) Sort() ([]string, error) {
	return Sort(g.order, g.Edges())
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
