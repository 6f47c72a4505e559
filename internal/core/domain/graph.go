// Package domain contains the core domain models of the planarity pipeline.
package domain

import "iter"

// Edge is an undirected edge between two node identifiers.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	// Conflict marks edges that lie on the Kuratowski subdivision of a non-planar graph.
	Conflict bool `json:"is_conflict,omitempty"`
}

// Graph is an immutable undirected simple graph.
// Nodes keep the order in which they first appeared in the input and edges
// keep the order of their first occurrence, which fixes every tie-break made
// by the algorithms that consume it.
type Graph struct {
	nodes     []string
	index     map[string]int
	edges     [][2]int
	selfLoops int
}

// Nodes returns the node identifiers in input order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Node returns the identifier of the node at index i.
func (g *Graph) Node(i int) string {
	return g.nodes[i]
}

// IndexOf returns the index of the named node.
func (g *Graph) IndexOf(name string) (int, bool) {
	i, ok := g.index[name]
	return i, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct non-loop edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// SelfLoops returns how many self-loop records were dropped while building the graph.
func (g *Graph) SelfLoops() int {
	return g.selfLoops
}

// Endpoints returns the node indices of edge i.
func (g *Graph) Endpoints(i int) (u, v int) {
	e := g.edges[i]
	return e[0], e[1]
}

// EdgeIndices yields the endpoint indices of every edge in input order.
func (g *Graph) EdgeIndices() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for _, e := range g.edges {
			if !yield(e[0], e[1]) {
				return
			}
		}
	}
}

// Edges returns the edges in input order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	for i, e := range g.edges {
		out[i] = Edge{Source: g.nodes[e[0]], Target: g.nodes[e[1]]}
	}
	return out
}

// GraphBuilder accumulates nodes and edges into a Graph.
// Parallel edges collapse onto their first occurrence and self-loops only
// register their node.
type GraphBuilder struct {
	g    *Graph
	seen map[[2]int]struct{}
}

// NewGraphBuilder creates an empty builder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		g:    &Graph{index: make(map[string]int)},
		seen: make(map[[2]int]struct{}),
	}
}

// AddNode registers a node and returns its index.
func (b *GraphBuilder) AddNode(name string) int {
	if i, ok := b.g.index[name]; ok {
		return i
	}
	i := len(b.g.nodes)
	b.g.nodes = append(b.g.nodes, name)
	b.g.index[name] = i
	return i
}

// AddEdge registers an undirected edge. It reports whether a new edge was added.
func (b *GraphBuilder) AddEdge(source, target string) bool {
	u := b.AddNode(source)
	v := b.AddNode(target)
	if u == v {
		b.g.selfLoops++
		return false
	}

	key := [2]int{min(u, v), max(u, v)}
	if _, dup := b.seen[key]; dup {
		return false
	}
	b.seen[key] = struct{}{}
	b.g.edges = append(b.g.edges, [2]int{u, v})
	return true
}

// Build returns the finished graph. The builder must not be used afterwards.
func (b *GraphBuilder) Build() *Graph {
	g := b.g
	b.g = nil
	b.seen = nil
	return g
}

// Subgraph returns the graph induced by keeping only the listed edge indices.
// Nodes without a remaining edge are dropped; order is preserved.
func (g *Graph) Subgraph(edgeIndices []int) *Graph {
	b := NewGraphBuilder()
	for _, i := range edgeIndices {
		u, v := g.Endpoints(i)
		b.AddEdge(g.nodes[u], g.nodes[v])
	}
	return b.Build()
}
