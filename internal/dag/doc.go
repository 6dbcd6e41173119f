// Package dag provides the single topological-sort primitive used to order
// config items, bundles and modules, and to validate the stall and
// update-sequence graphs of a module.
//
// Sort works purely on a node list and a forward edge map. When the graph has
// a cycle, Sort reports every node left with a non-zero in-degree after
// Kahn's algorithm stalls. That set over-approximates the actual cycle (nodes
// downstream of a cycle are included); callers present it as "these items are
// mutually circular", never as a cycle path.
//
// Graph is a small builder on top of Sort for callers that assemble a graph
// edge by edge and want self-loops and dangling endpoints rejected up front.
package dag
