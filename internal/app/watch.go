package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/planar/internal/adapters/watcher"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/zerr"
)

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	CheckOptions

	// Window is the debounce window. Zero selects the default.
	Window time.Duration
}

// Watch checks every edge-list file under dir, then re-checks files as they
// change until ctx is done. The pipeline and its cache live for the whole
// session, so unchanged graphs are answered from the cache.
func (a *App) Watch(ctx context.Context, dir string, opts WatchOptions) error {
	cfg, err := a.loadConfig(opts.PipelineOptions)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve directory"), "dir", dir)
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

	var (
		mu      sync.Mutex
		stopped bool
	)
	recheck := func(paths []string) {
		mu.Lock()
		defer mu.Unlock()
		if stopped || ctx.Err() != nil {
			return
		}

		items, err := a.collect(paths, opts.WholeFile)
		if err != nil {
			a.logger.Warn("failed to read changed files", "error", err)
			return
		}
		if len(items) == 0 {
			return
		}
		if err := a.check(ctx, p, items, opts.JSON); err != nil && !errors.Is(err, domain.ErrBatchFailed) {
			a.logger.Error(err)
		}
	}

	recheck([]string{root})

	if err := a.watcher.Start(ctx, root); err != nil {
		return err
	}
	defer func() {
		_ = a.watcher.Stop()
	}()
	a.logger.Info("watching for changes", "dir", root)

	window := opts.Window
	if window <= 0 {
		window = watcher.DefaultDebounceWindow
	}
	debouncer := watcher.NewDebouncer(window, recheck)

	for event := range a.watcher.Events() {
		if event.Op == ports.EdgeFileGone {
			continue
		}
		debouncer.Add(event.Path)
	}

	debouncer.Stop()
	mu.Lock()
	stopped = true
	mu.Unlock()
	return nil
}
