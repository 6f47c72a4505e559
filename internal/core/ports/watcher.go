package ports

import (
	"context"
	"iter"
)

// EdgeFileOp classifies a change to an edge-list file.
type EdgeFileOp uint8

const (
	// EdgeFileChanged means the file was created or written and can be re-read.
	EdgeFileChanged EdgeFileOp = iota
	// EdgeFileGone means the file was removed or renamed away.
	EdgeFileGone
)

// EdgeFileEvent is one change to an edge-list file.
type EdgeFileEvent struct {
	// Path is absolute.
	Path string
	Op   EdgeFileOp
}

// Watcher reports changes to edge-list files (names ending in
// domain.EdgeFileExt) below a root directory. Other files are never
// reported. Directories created after Start are picked up as they appear;
// dot directories, node_modules and the planar cache directory are not
// descended into.
type Watcher interface {
	Start(ctx context.Context, root string) error
	Stop() error
	// Events yields changes until the watcher stops or the Start context ends.
	Events() iter.Seq[EdgeFileEvent]
}
