package planarity

import (
	"slices"

	"go.trai.ch/planar/internal/core/domain"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Block is a biconnected component: a maximal set of edges in which every two
// edges lie on a common simple cycle, or a single bridge.
// Nodes and Edges hold graph indices in ascending order.
type Block struct {
	Nodes []int
	Edges []int
}

// adjacency lists the incident edges of every node in edge input order.
func adjacency(g *domain.Graph) [][]arc {
	adj := make([][]arc, g.NodeCount())
	id := 0
	for u, v := range g.EdgeIndices() {
		adj[u] = append(adj[u], arc{to: v, edge: id})
		adj[v] = append(adj[v], arc{to: u, edge: id})
		id++
	}
	return adj
}

// Blocks returns the biconnected components of g in the order the depth-first
// search closes them. Nodes without edges belong to no block.
func Blocks(g *domain.Graph) []Block {
	n := g.NodeCount()
	adj := adjacency(g)
	disc := filled(n, none)
	low := make([]int, n)

	type frame struct {
		v, parentEdge, next int
	}

	var (
		blocks    []Block
		edgeStack []int
		timer     int
	)
	for root := range n {
		if disc[root] != none || len(adj[root]) == 0 {
			continue
		}
		disc[root], low[root] = timer, timer
		timer++
		stack := []frame{{v: root, parentEdge: none}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(adj[top.v]) {
				a := adj[top.v][top.next]
				top.next++
				switch {
				case a.edge == top.parentEdge:
				case disc[a.to] == none:
					edgeStack = append(edgeStack, a.edge)
					disc[a.to], low[a.to] = timer, timer
					timer++
					stack = append(stack, frame{v: a.to, parentEdge: a.edge})
				case disc[a.to] < disc[top.v]:
					edgeStack = append(edgeStack, a.edge)
					low[top.v] = min(low[top.v], disc[a.to])
				}
				continue
			}

			child := *top
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				break
			}
			parent := stack[len(stack)-1].v
			low[parent] = min(low[parent], low[child.v])
			if low[child.v] < disc[parent] {
				continue
			}

			// parent separates child's subtree: everything above the tree edge is one block
			var edges []int
			for {
				e := edgeStack[len(edgeStack)-1]
				edgeStack = edgeStack[:len(edgeStack)-1]
				edges = append(edges, e)
				if e == child.parentEdge {
					break
				}
			}
			blocks = append(blocks, newBlock(g, edges))
		}
	}
	return blocks
}

func newBlock(g *domain.Graph, edges []int) Block {
	slices.Sort(edges)
	var nodes []int
	for _, e := range edges {
		u, v := g.Endpoints(e)
		nodes = append(nodes, u, v)
	}
	slices.Sort(nodes)
	return Block{Nodes: slices.Compact(nodes), Edges: edges}
}

// ConnectedComponents counts the connected components of g, isolated nodes included.
func ConnectedComponents(g *domain.Graph) int {
	ug := simple.NewUndirectedGraph()
	for i := range g.NodeCount() {
		ug.AddNode(simple.Node(i))
	}
	for u, v := range g.EdgeIndices() {
		ug.SetEdge(ug.NewEdge(simple.Node(u), simple.Node(v)))
	}
	return len(topo.ConnectedComponents(ug))
}
