package domain

import "time"

// ObstructionKind names the Kuratowski graph an obstruction is a subdivision of.
type ObstructionKind string

const (
	// KindK5 is the complete graph on five vertices.
	KindK5 ObstructionKind = "K5"
	// KindK33 is the complete bipartite graph on three plus three vertices.
	KindK33 ObstructionKind = "K3,3"
)

// Obstruction is a Kuratowski witness for non-planarity.
//
// Nodes and Edges form the branch graph: exactly K5 (5 nodes, 10 edges) or
// K3,3 (6 nodes, 9 edges). Paths[i] lists the original-graph nodes of the
// subdivided path that realises Edges[i].
type Obstruction struct {
	Kind      ObstructionKind `json:"type"`
	Nodes     []string        `json:"nodes"`
	Edges     []Edge          `json:"edges"`
	Partition [][]string      `json:"partition,omitempty"`
	Paths     [][]string      `json:"paths"`
}

// Subgraph is a named portion of a result graph.
type Subgraph struct {
	ID    int      `json:"id"`
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// PlanarityResult is the outcome of analysing one graph input.
type PlanarityResult struct {
	Fingerprint         Fingerprint   `json:"fingerprint"`
	IsPlanar            bool          `json:"is_planar"`
	Nodes               []string      `json:"nodes"`
	Edges               []Edge        `json:"edges"`
	Obstruction         *Obstruction  `json:"obstruction,omitempty"`
	ConnectedComponents int           `json:"connected_components"`
	Biconnected         []Subgraph    `json:"biconnected_subgraphs"`
	ExecutionTime       time.Duration `json:"execution_time"`
}

// Source tells which side of a race produced a result.
type Source string

const (
	// SourceCache means the result came from the result cache.
	SourceCache Source = "cache"
	// SourceCompute means the result was computed by a worker.
	SourceCompute Source = "compute"
)

// Outcome is the resolved value of a single request's race.
type Outcome struct {
	Result *PlanarityResult
	Source Source
	// Shared is set for requests that attached to another in-flight request
	// with the same fingerprint in the same batch.
	Shared bool
}

// RecordError is the inline error carried by a failed record.
type RecordError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Record is one streamed per-item result.
type Record struct {
	Index       int              `json:"index"`
	Fingerprint Fingerprint      `json:"fingerprint,omitempty"`
	Source      Source           `json:"source,omitempty"`
	Shared      bool             `json:"shared,omitempty"`
	Result      *PlanarityResult `json:"result,omitempty"`
	Error       *RecordError     `json:"error,omitempty"`
}

// NewErrorRecord builds a failed record for the item at index.
func NewErrorRecord(index int, fp Fingerprint, err error) Record {
	return Record{
		Index:       index,
		Fingerprint: fp,
		Error: &RecordError{
			Kind:    KindOf(err),
			Message: err.Error(),
		},
	}
}
