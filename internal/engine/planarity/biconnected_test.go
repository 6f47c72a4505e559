package planarity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/planar/internal/engine/planarity"
)

func TestBlocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []planarity.Block
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "isolated node",
			input: "A-A",
			want:  nil,
		},
		{
			name:  "path is a chain of bridges",
			input: "A-B,B-C",
			want: []planarity.Block{
				{Nodes: []int{1, 2}, Edges: []int{1}},
				{Nodes: []int{0, 1}, Edges: []int{0}},
			},
		},
		{
			name:  "triangle with pendant",
			input: "A-B,B-C,C-A,C-D",
			want: []planarity.Block{
				{Nodes: []int{2, 3}, Edges: []int{3}},
				{Nodes: []int{0, 1, 2}, Edges: []int{0, 1, 2}},
			},
		},
		{
			name:  "bowtie",
			input: "A-B,B-C,C-A,C-D,D-E,E-C",
			want: []planarity.Block{
				{Nodes: []int{2, 3, 4}, Edges: []int{3, 4, 5}},
				{Nodes: []int{0, 1, 2}, Edges: []int{0, 1, 2}},
			},
		},
		{
			name:  "two components",
			input: "A-B,B-C,C-A\nX-Y",
			want: []planarity.Block{
				{Nodes: []int{0, 1, 2}, Edges: []int{0, 1, 2}},
				{Nodes: []int{3, 4}, Edges: []int{3}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, planarity.Blocks(parse(t, tt.input)))
		})
	}
}

func TestBlocks_PetersenIsBiconnected(t *testing.T) {
	t.Parallel()

	blocks := planarity.Blocks(parse(t, petersen))
	if assert.Len(t, blocks, 1) {
		assert.Len(t, blocks[0].Nodes, 10)
		assert.Len(t, blocks[0].Edges, 15)
	}
}

func TestConnectedComponents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty", input: "", want: 0},
		{name: "single edge", input: "A-B", want: 1},
		{name: "isolated node counts", input: "A-B\nC-C", want: 2},
		{name: "three pieces", input: "A-B,B-C\nX-Y\nP-Q,Q-R,R-P", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, planarity.ConnectedComponents(parse(t, tt.input)))
		})
	}
}
