package ndjson_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/planar/internal/adapters/ndjson"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/zerr"
)

type flushRecorder struct {
	bytes.Buffer
	flushes int
}

func (f *flushRecorder) Flush() { f.flushes++ }

func TestEncoder(t *testing.T) {
	t.Parallel()

	out := &flushRecorder{}
	enc := ndjson.NewEncoder(out)

	records := []domain.Record{
		{
			Index:       1,
			Fingerprint: "3f2a",
			Source:      domain.SourceCache,
			Result: &domain.PlanarityResult{
				Fingerprint: "3f2a",
				IsPlanar:    true,
				Nodes:       []string{"A", "B", "C"},
				Edges: []domain.Edge{
					{Source: "A", Target: "B"},
					{Source: "B", Target: "C"},
					{Source: "A", Target: "C"},
				},
				ConnectedComponents: 1,
				Biconnected: []domain.Subgraph{{
					ID:    0,
					Nodes: []string{"A", "B", "C"},
					Edges: []domain.Edge{
						{Source: "A", Target: "B"},
						{Source: "B", Target: "C"},
						{Source: "A", Target: "C"},
					},
				}},
			},
		},
		domain.NewErrorRecord(0, "", zerr.Wrap(domain.ErrParse, "line 1")),
	}
	for _, rec := range records {
		require.NoError(t, enc.Encode(rec))
	}

	assert.Equal(t, 2, out.flushes)
	goldie.New(t).Assert(t, "stream", out.Bytes())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestEncoder_WriteError(t *testing.T) {
	t.Parallel()

	err := ndjson.NewEncoder(failingWriter{}).Encode(domain.Record{Index: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}
