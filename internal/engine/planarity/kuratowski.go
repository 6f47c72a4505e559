package planarity

import (
	"context"
	"slices"

	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/zerr"
)

// minimalNonPlanar shrinks a non-planar edge set to an edge-minimal
// non-planar subset, which by Kuratowski's theorem is a subdivision of K5 or
// K3,3. Edges are dropped in blocks of halving size while the remainder stays
// non-planar; the final single-edge pass leaves every kept edge essential.
// The returned positions index into endpoints and are in ascending order.
func minimalNonPlanar(ctx context.Context, n int, endpoints [][2]int) ([]int, error) {
	keep := make([]int, len(endpoints))
	for i := range keep {
		keep[i] = i
	}

	scratch := make([][2]int, 0, len(endpoints))
	subset := func(ids []int, skipFrom, skipTo int) [][2]int {
		scratch = scratch[:0]
		for i, id := range ids {
			if i >= skipFrom && i < skipTo {
				continue
			}
			scratch = append(scratch, endpoints[id])
		}
		return scratch
	}

	for chunk := max(len(keep)/2, 1); ; chunk /= 2 {
		for i := 0; i < len(keep); {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			end := min(i+chunk, len(keep))
			if isPlanar(n, subset(keep, i, end)) {
				i = end
				continue
			}
			keep = slices.Delete(keep, i, end)
		}
		if chunk == 1 {
			break
		}
	}
	return keep, nil
}

// kuratowski contracts a Kuratowski subdivision into its branch graph.
// witness lists graph edge indices; every vertex of the subdivision must have
// degree 2 except the branch vertices.
func kuratowski(g *domain.Graph, witness []int) (*domain.Obstruction, error) {
	adj := make(map[int][]arc)
	for _, id := range witness {
		u, v := g.Endpoints(id)
		adj[u] = append(adj[u], arc{to: v, edge: id})
		adj[v] = append(adj[v], arc{to: u, edge: id})
	}

	var branch []int
	for v, arcs := range adj {
		switch d := len(arcs); {
		case d >= 3:
			branch = append(branch, v)
		case d != 2:
			return nil, zerr.With(zerr.Wrap(domain.ErrObstructionNotFound, "dangling vertex in witness"), "node", g.Node(v))
		}
	}
	slices.Sort(branch)

	var (
		kind      domain.ObstructionKind
		wantDeg   int
		wantEdges int
	)
	switch len(branch) {
	case 5:
		kind, wantDeg, wantEdges = domain.KindK5, 4, 10
	case 6:
		kind, wantDeg, wantEdges = domain.KindK33, 3, 9
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrObstructionNotFound, "unexpected branch vertex count"), "branch_vertices", len(branch))
	}

	rank := make(map[int]int, len(branch))
	for i, v := range branch {
		if len(adj[v]) != wantDeg {
			return nil, zerr.With(zerr.Wrap(domain.ErrObstructionNotFound, "unexpected branch vertex degree"), "node", g.Node(v))
		}
		rank[v] = i
	}

	var paths []branchPath
	used := make(map[int]bool, len(witness))
	for _, b := range branch {
		for _, start := range adj[b] {
			if used[start.edge] {
				continue
			}
			used[start.edge] = true
			nodes := []int{b}
			prevEdge, cur := start.edge, start.to
			for {
				nodes = append(nodes, cur)
				if _, ok := rank[cur]; ok {
					break
				}
				next := adj[cur][0]
				if next.edge == prevEdge {
					next = adj[cur][1]
				}
				used[next.edge] = true
				prevEdge, cur = next.edge, next.to
			}
			if cur == b {
				return nil, zerr.With(zerr.Wrap(domain.ErrObstructionNotFound, "cycle through a single branch vertex"), "node", g.Node(b))
			}
			paths = append(paths, branchPath{from: b, to: cur, nodes: nodes})
		}
	}
	if len(paths) != wantEdges {
		return nil, zerr.With(zerr.Wrap(domain.ErrObstructionNotFound, "unexpected branch edge count"), "branch_edges", len(paths))
	}
	slices.SortFunc(paths, func(a, b branchPath) int {
		if c := rank[a.from] - rank[b.from]; c != 0 {
			return c
		}
		return rank[a.to] - rank[b.to]
	})
	for i := 1; i < len(paths); i++ {
		if paths[i].from == paths[i-1].from && paths[i].to == paths[i-1].to {
			return nil, zerr.With(zerr.Wrap(domain.ErrObstructionNotFound, "parallel branch paths"), "node", g.Node(paths[i].from))
		}
	}

	obs := &domain.Obstruction{Kind: kind}
	for _, v := range branch {
		obs.Nodes = append(obs.Nodes, g.Node(v))
	}
	for _, p := range paths {
		obs.Edges = append(obs.Edges, domain.Edge{Source: g.Node(p.from), Target: g.Node(p.to)})
		names := make([]string, len(p.nodes))
		for i, v := range p.nodes {
			names[i] = g.Node(v)
		}
		obs.Paths = append(obs.Paths, names)
	}

	if kind == domain.KindK33 {
		part, err := bipartition(branch, rank, paths)
		if err != nil {
			return nil, err
		}
		for _, side := range part {
			names := make([]string, len(side))
			for i, v := range side {
				names[i] = g.Node(v)
			}
			obs.Partition = append(obs.Partition, names)
		}
	}
	return obs, nil
}

// branchPath is a subdivided branch edge: nodes runs from one branch vertex
// to another through degree-2 vertices.
type branchPath struct {
	from, to int
	nodes    []int
}

// bipartition two-colours the K3,3 branch graph. The side holding the first
// branch vertex comes first; both sides keep node order.
func bipartition(branch []int, rank map[int]int, paths []branchPath) ([][]int, error) {
	colour := make([]int, len(branch))
	for i := range colour {
		colour[i] = none
	}
	colour[0] = 0
	for changed := true; changed; {
		changed = false
		for _, p := range paths {
			a, b := rank[p.from], rank[p.to]
			switch {
			case colour[a] != none && colour[b] == none:
				colour[b] = 1 - colour[a]
				changed = true
			case colour[b] != none && colour[a] == none:
				colour[a] = 1 - colour[b]
				changed = true
			}
		}
	}

	sides := make([][]int, 2)
	for i, v := range branch {
		if colour[i] == none {
			return nil, zerr.Wrap(domain.ErrObstructionNotFound, "disconnected branch graph")
		}
		sides[colour[i]] = append(sides[colour[i]], v)
	}
	for _, p := range paths {
		if colour[rank[p.from]] == colour[rank[p.to]] {
			return nil, zerr.Wrap(domain.ErrObstructionNotFound, "branch graph is not bipartite")
		}
	}
	if len(sides[0]) != 3 || len(sides[1]) != 3 {
		return nil, zerr.Wrap(domain.ErrObstructionNotFound, "unbalanced bipartition")
	}
	return sides, nil
}
