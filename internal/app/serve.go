package app

import (
	"context"
	"net"

	"github.com/gin-gonic/gin"
	"go.trai.ch/planar/internal/adapters/httpapi"
	"go.trai.ch/planar/internal/adapters/telemetry"
	"go.trai.ch/zerr"
)

// ServeOptions configuration for the Serve method.
type ServeOptions struct {
	PipelineOptions

	// Addr overrides server.addr from the config.
	Addr string
	// JSONLog forces structured logs.
	JSONLog bool
	// OnListen, when set, receives the bound address once the listener is open.
	OnListen func(net.Addr)
}

// Serve runs the HTTP ingress until ctx is done.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	cfg, err := a.loadConfig(opts.PipelineOptions)
	if err != nil {
		return err
	}
	if lc, ok := a.logger.(logControl); ok {
		lc.SetJSON(cfg.Log.JSON || opts.JSONLog)
	}

	shutdown := telemetry.Install(telemetry.NewBridge(a.logger))
	defer func() {
		_ = shutdown(context.WithoutCancel(ctx))
	}()

	p, err := a.openPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			a.logger.Warn("pipeline shutdown failed", "error", err)
		}
	}()

	addr := cfg.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen"), "addr", addr)
	}
	if opts.OnListen != nil {
		opts.OnListen(ln.Addr())
	}

	gin.SetMode(gin.ReleaseMode)
	srv := httpapi.New(p.processor, a.metrics.Registry(), a.logger, cfg.Server)
	return srv.Serve(ctx, ln)
}
