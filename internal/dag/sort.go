package dag

import (
	"container/heap"
	"fmt"
	"sort"
	"strings"
)

// CycleError is returned by Sort when the graph is not acyclic. Nodes holds
// every node with residual in-degree, sorted.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular references among: %s", strings.Join(e.Nodes, ", "))
}

// Sort returns nodes in an order where, for every edge from -> to in edges,
// from appears before to. Only edges whose both endpoints are in nodes are
// considered. Among nodes that are ready at the same time the lexically
// smallest is emitted first, so the result is deterministic.
func Sort(nodes []string, edges map[string]map[string]struct{}) ([]string, error) {
	inDegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		inDegree[n] = 0
	}
	for from, targets := range edges {
		if _, ok := inDegree[from]; !ok {
			continue
		}
		for to := range targets {
			if _, ok := inDegree[to]; ok {
				inDegree[to]++
			}
		}
	}

	ready := &stringHeap{}
	for n, d := range inDegree {
		if d == 0 {
			heap.Push(ready, n)
		}
	}

	order := make([]string, 0, len(inDegree))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(string)
		order = append(order, n)
		for to := range edges[n] {
			if _, ok := inDegree[to]; !ok {
				continue
			}
			inDegree[to]--
			if inDegree[to] == 0 {
				heap.Push(ready, to)
			}
		}
	}

	if len(order) == len(inDegree) {
		return order, nil
	}

	var residual []string
	for n, d := range inDegree {
		if d > 0 {
			residual = append(residual, n)
		}
	}
	sort.Strings(residual)
	return nil, &CycleError{Nodes: residual}
}

// stringHeap is a min-heap of strings.
type stringHeap []string

func (h stringHeap) Len() int           { return len(h) }
func (h stringHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h stringHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *stringHeap) Push(x any)        { *h = append(*h, x.(string)) }
func (h *stringHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
