package dag

// Graph is a collection of named nodes and directed edges between them.
// It is not safe for concurrent use.
type Graph struct {
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order remembers insertion order for Nodes.
	order []string
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	// id is the unique identifier for the node.
	id string
	// deps holds the set of nodes that must come before this node.
	deps map[string]struct{}
	// dependents holds the set of nodes that must come after this node.
	dependents map[string]struct{}
}
