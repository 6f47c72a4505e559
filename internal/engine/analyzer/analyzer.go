// Package analyzer implements the compute path for one graph input: parsing,
// resource checks, planarity testing and result assembly.
package analyzer

import (
	"context"
	"time"

	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/planar/internal/engine/planarity"
	"go.trai.ch/zerr"
)

// Analyzer glues the graph parser to the planarity engine.
type Analyzer struct {
	parser ports.GraphParser
	engine *planarity.Engine
	limits domain.Limits
}

var _ ports.Analyzer = (*Analyzer)(nil)

// New creates a new Analyzer. A zero limit disables that check.
func New(parser ports.GraphParser, engine *planarity.Engine, limits domain.Limits) *Analyzer {
	return &Analyzer{
		parser: parser,
		engine: engine,
		limits: limits,
	}
}

// Analyze parses input, tests it and assembles the result stamped with fp.
func (a *Analyzer) Analyze(ctx context.Context, fp domain.Fingerprint, input string) (*domain.PlanarityResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, err := a.parser.Parse(input)
	if err != nil {
		return nil, err
	}
	if err := a.checkLimits(g); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := a.engine.Test(ctx, g)
	if err != nil {
		return nil, err
	}

	conflict := make(map[int]bool, len(out.Witness))
	for _, id := range out.Witness {
		conflict[id] = true
	}

	res := &domain.PlanarityResult{
		Fingerprint:         fp,
		IsPlanar:            out.Planar,
		Nodes:               g.Nodes(),
		Edges:               markedEdges(g, conflict),
		Obstruction:         out.Obstruction,
		ConnectedComponents: planarity.ConnectedComponents(g),
	}
	for i, b := range planarity.Blocks(g) {
		res.Biconnected = append(res.Biconnected, subgraph(g, i, b, conflict))
	}
	if res.Biconnected == nil {
		res.Biconnected = []domain.Subgraph{}
	}
	res.ExecutionTime = time.Since(start)
	return res, nil
}

func (a *Analyzer) checkLimits(g *domain.Graph) error {
	if a.limits.MaxNodes > 0 && g.NodeCount() > a.limits.MaxNodes {
		err := zerr.With(zerr.Wrap(domain.ErrResourceExceeded, "too many nodes"), "nodes", g.NodeCount())
		return zerr.With(err, "max_nodes", a.limits.MaxNodes)
	}
	if a.limits.MaxEdges > 0 && g.EdgeCount() > a.limits.MaxEdges {
		err := zerr.With(zerr.Wrap(domain.ErrResourceExceeded, "too many edges"), "edges", g.EdgeCount())
		return zerr.With(err, "max_edges", a.limits.MaxEdges)
	}
	return nil
}

func markedEdges(g *domain.Graph, conflict map[int]bool) []domain.Edge {
	edges := g.Edges()
	for i := range edges {
		edges[i].Conflict = conflict[i]
	}
	return edges
}

func subgraph(g *domain.Graph, id int, b planarity.Block, conflict map[int]bool) domain.Subgraph {
	sg := domain.Subgraph{
		ID:    id,
		Nodes: make([]string, len(b.Nodes)),
		Edges: make([]domain.Edge, len(b.Edges)),
	}
	for i, v := range b.Nodes {
		sg.Nodes[i] = g.Node(v)
	}
	for i, e := range b.Edges {
		u, v := g.Endpoints(e)
		sg.Edges[i] = domain.Edge{Source: g.Node(u), Target: g.Node(v), Conflict: conflict[e]}
	}
	return sg
}
