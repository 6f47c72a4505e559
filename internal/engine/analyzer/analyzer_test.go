package analyzer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/planar/internal/adapters/edgelist"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports/mocks"
	"go.trai.ch/planar/internal/engine/analyzer"
	"go.trai.ch/planar/internal/engine/planarity"
	"go.uber.org/mock/gomock"
)

func newAnalyzer(limits domain.Limits) *analyzer.Analyzer {
	return analyzer.New(edgelist.NewParser(), planarity.New(), limits)
}

func TestAnalyze_Planar(t *testing.T) {
	t.Parallel()

	res, err := newAnalyzer(domain.Limits{}).Analyze(context.Background(), "fp-triangle", "A-B,B-C,C-A")
	require.NoError(t, err)

	assert.Equal(t, domain.Fingerprint("fp-triangle"), res.Fingerprint)
	assert.True(t, res.IsPlanar)
	assert.Nil(t, res.Obstruction)
	assert.Equal(t, []string{"A", "B", "C"}, res.Nodes)
	assert.Equal(t, []domain.Edge{
		{Source: "A", Target: "B"},
		{Source: "B", Target: "C"},
		{Source: "C", Target: "A"},
	}, res.Edges)
	assert.Equal(t, 1, res.ConnectedComponents)
	require.Len(t, res.Biconnected, 1)
	assert.Equal(t, []string{"A", "B", "C"}, res.Biconnected[0].Nodes)
}

func TestAnalyze_Empty(t *testing.T) {
	t.Parallel()

	res, err := newAnalyzer(domain.Limits{}).Analyze(context.Background(), "fp-empty", "")
	require.NoError(t, err)

	assert.True(t, res.IsPlanar)
	assert.Empty(t, res.Nodes)
	assert.Empty(t, res.Edges)
	assert.Zero(t, res.ConnectedComponents)
	assert.NotNil(t, res.Biconnected)
	assert.Empty(t, res.Biconnected)
}

func TestAnalyze_K5MarksEveryEdge(t *testing.T) {
	t.Parallel()

	res, err := newAnalyzer(domain.Limits{}).Analyze(context.Background(), "fp-k5", "A-B,A-C,A-D,A-E,B-C,B-D,B-E,C-D,C-E,D-E")
	require.NoError(t, err)

	assert.False(t, res.IsPlanar)
	require.NotNil(t, res.Obstruction)
	assert.Equal(t, domain.KindK5, res.Obstruction.Kind)
	for _, e := range res.Edges {
		assert.True(t, e.Conflict, "%s-%s", e.Source, e.Target)
	}
}

func TestAnalyze_ConflictFlagsOnlyOnWitness(t *testing.T) {
	t.Parallel()

	input := "A-X,A-Y,A-Z,B-X,B-Y,B-Z,C-X,C-Y,C-Z\nZ-P"
	res, err := newAnalyzer(domain.Limits{}).Analyze(context.Background(), "fp-k33", input)
	require.NoError(t, err)

	assert.False(t, res.IsPlanar)
	assert.Equal(t, domain.KindK33, res.Obstruction.Kind)
	require.Len(t, res.Edges, 10)
	for _, e := range res.Edges[:9] {
		assert.True(t, e.Conflict)
	}
	assert.False(t, res.Edges[9].Conflict)

	// The bridge Z-P forms its own block and carries no conflict flag.
	require.Len(t, res.Biconnected, 2)
	var bridge domain.Subgraph
	for _, b := range res.Biconnected {
		if len(b.Edges) == 1 {
			bridge = b
		}
	}
	assert.Equal(t, []domain.Edge{{Source: "Z", Target: "P"}}, bridge.Edges)
}

func TestAnalyze_ParseError(t *testing.T) {
	t.Parallel()

	_, err := newAnalyzer(domain.Limits{}).Analyze(context.Background(), "fp", "A-B,C-")
	require.ErrorIs(t, err, domain.ErrParse)
	assert.Equal(t, domain.KindParseError, domain.KindOf(err))
}

func TestAnalyze_Limits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		limits domain.Limits
		input  string
		ok     bool
	}{
		{name: "within limits", limits: domain.Limits{MaxNodes: 3, MaxEdges: 3}, input: "A-B,B-C,C-A", ok: true},
		{name: "too many nodes", limits: domain.Limits{MaxNodes: 2}, input: "A-B,B-C"},
		{name: "too many edges", limits: domain.Limits{MaxEdges: 1}, input: "A-B,B-C"},
		{name: "zero disables", limits: domain.Limits{}, input: "A-B,B-C,C-D,D-E", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newAnalyzer(tt.limits).Analyze(context.Background(), "fp", tt.input)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrResourceExceeded)
			assert.Equal(t, domain.KindResourceExceeded, domain.KindOf(err))
		})
	}
}

func TestAnalyze_UsesParserPort(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	parser := mocks.NewMockGraphParser(ctrl)
	parseErr := errors.New("boom")
	parser.EXPECT().Parse("anything").Return(nil, parseErr).Times(1)

	a := analyzer.New(parser, planarity.New(), domain.Limits{})
	_, err := a.Analyze(context.Background(), "fp", "anything")
	require.ErrorIs(t, err, parseErr)
}

func TestAnalyze_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAnalyzer(domain.Limits{}).Analyze(ctx, "fp", "A-B")
	require.ErrorIs(t, err, context.Canceled)
}
