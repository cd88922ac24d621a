// SPDX-License-Identifier: MPL-2.0

// Package dag orders setups so that every prerequisite runs before the setup
// that requires it.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError reports setups whose prerequisites form a loop.
	CycleError struct {
		// Cycle holds the nodes left unordered, in insertion order.
		Cycle []string
	}

	// UnknownNodeError reports a prerequisite that Expand could not resolve.
	UnknownNodeError struct {
		Name       string
		RequiredBy string
	}

	// Graph is a directed graph. An edge from A to B means A must run before B.
	Graph struct {
		adjacency map[string][]string
		nodes     []string
		nodeSet   map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("%q requires unknown %q", e.RequiredBy, e.Name)
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// AddNode adds name if it is not present yet.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge records that from must run before to. Repeated edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if slices.Contains(g.adjacency[from], to) {
		return
	}
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// TopologicalSort returns an order that respects every edge (Kahn's
// algorithm). Nodes that become ready together keep their insertion order.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	queue := make([]string, 0, len(g.nodes))
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var cycle []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycle = append(cycle, node)
			}
		}
		return nil, &CycleError{Cycle: cycle}
	}

	return result, nil
}

// Expand builds the graph of roots plus everything they transitively require
// and returns it in run order. requires reports a node's prerequisites and
// whether the node exists at all.
func Expand(roots []string, requires func(name string) ([]string, bool)) ([]string, error) {
	g := New()
	seen := make(map[string]bool)
	stack := slices.Clone(roots)
	for _, root := range roots {
		g.AddNode(root)
	}

	for len(stack) > 0 {
		name := stack[0]
		stack = stack[1:]
		if seen[name] {
			continue
		}
		seen[name] = true

		prereqs, ok := requires(name)
		if !ok {
			return nil, &UnknownNodeError{Name: name}
		}
		for _, prereq := range prereqs {
			if _, known := requires(prereq); !known {
				return nil, &UnknownNodeError{Name: prereq, RequiredBy: name}
			}
			g.AddEdge(prereq, name)
			stack = append(stack, prereq)
		}
	}

	return g.TopologicalSort()
}
