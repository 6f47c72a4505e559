package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/planar/internal/adapters/linear"
	"go.trai.ch/planar/internal/adapters/ndjson"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/zerr"
)

// StdinPath names standard input in a list of paths.
const StdinPath = "-"

// CheckOptions configuration for the Check method.
type CheckOptions struct {
	PipelineOptions

	// WholeFile treats each file as one graph instead of one graph per line.
	WholeFile bool
	// JSON prints NDJSON records instead of the linear renderer.
	JSON bool
}

type item struct {
	label string
	input string
}

// Check tests every graph found in paths and prints one record per graph.
// Directories are searched for edge-list files. With no paths, graphs are
// read from stdin.
func (a *App) Check(ctx context.Context, paths []string, opts CheckOptions) error {
	cfg, err := a.loadConfig(opts.PipelineOptions)
	if err != nil {
		return err
	}

	items, err := a.collect(paths, opts.WholeFile)
	if err != nil {
		return err
	}

	p, err := a.openPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			a.logger.Warn("pipeline shutdown failed", "error", err)
		}
	}()

	return a.check(ctx, p, items, opts.JSON)
}

func (a *App) check(ctx context.Context, p *pipeline, items []item, asJSON bool) error {
	inputs := make([]string, len(items))
	for i, it := range items {
		inputs[i] = it.input
	}
	if err := p.processor.Validate(inputs); err != nil {
		return err
	}

	out := a.newSink(asJSON)
	start := time.Now()
	failed := 0
	for rec := range p.processor.Process(ctx, inputs) {
		if rec.Error != nil {
			failed++
		}
		if err := out.emit(rec, items[rec.Index].label); err != nil {
			return err
		}
	}
	out.finish(time.Since(start))

	if failed > 0 {
		return zerr.With(zerr.Wrap(domain.ErrBatchFailed, "check failed"), "failed", failed)
	}
	return nil
}

// sink receives records in completion order.
type sink interface {
	emit(rec domain.Record, label string) error
	finish(elapsed time.Duration)
}

func (a *App) newSink(asJSON bool) sink {
	if asJSON {
		return jsonSink{enc: ndjson.NewEncoder(a.stdout)}
	}
	return linearSink{r: linear.NewRenderer(a.stdout, a.stderr)}
}

type linearSink struct {
	r *linear.Renderer
}

func (s linearSink) emit(rec domain.Record, label string) error {
	s.r.Render(rec, label)
	return nil
}

func (s linearSink) finish(elapsed time.Duration) {
	s.r.PrintSummary(elapsed)
}

type jsonSink struct {
	enc *ndjson.Encoder
}

func (s jsonSink) emit(rec domain.Record, _ string) error {
	return s.enc.Encode(rec)
}

func (jsonSink) finish(time.Duration) {}

func (a *App) collect(paths []string, wholeFile bool) ([]item, error) {
	if len(paths) == 0 {
		paths = []string{StdinPath}
	}

	items := []item{}
	for _, path := range paths {
		if path == StdinPath {
			data, err := io.ReadAll(a.stdin)
			if err != nil {
				return nil, zerr.Wrap(err, "failed to read stdin")
			}
			items = append(items, split("stdin", string(data), wholeFile)...)
			continue
		}

		files, err := graphFiles(path)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to read graph file"), "path", file)
			}
			items = append(items, split(file, string(data), wholeFile)...)
		}
	}
	return items, nil
}

// split turns file content into items. In line mode blank lines and lines
// starting with '#' are skipped; labels carry 1-based line numbers.
func split(name, data string, wholeFile bool) []item {
	if wholeFile {
		return []item{{label: name, input: data}}
	}

	var items []item
	for i, line := range strings.Split(data, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		items = append(items, item{label: fmt.Sprintf("%s:%d", name, i+1), input: line})
	}
	return items
}

// graphFiles returns path itself for files, or the edge-list files below it
// for directories, sorted. Hidden directories are skipped.
func graphFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", path)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) == domain.EdgeFileExt {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to walk directory"), "path", path)
	}
	slices.Sort(files)
	return files, nil
}
