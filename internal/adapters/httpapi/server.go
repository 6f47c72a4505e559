// Package httpapi exposes batch processing over HTTP. Results are streamed
// back as NDJSON, one record per line, in completion order.
package httpapi

import (
	"context"
	"errors"
	"iter"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.trai.ch/planar/internal/adapters/ndjson"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	// RequestIDHeader carries the request correlation id.
	RequestIDHeader = "X-Request-ID"

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Processor validates and streams a batch.
type Processor interface {
	Validate(inputs []string) error
	Process(ctx context.Context, inputs []string) iter.Seq[domain.Record]
}

// Server is the HTTP ingress.
type Server struct {
	processor Processor
	gatherer  prometheus.Gatherer
	logger    ports.Logger
	handler   http.Handler
}

// New creates a new Server. CORS is allowed for cfg.CORSOrigins only.
func New(processor Processor, gatherer prometheus.Gatherer, logger ports.Logger, cfg domain.ServerConfig) *Server {
	s := &Server{
		processor: processor,
		gatherer:  gatherer,
		logger:    logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware("planar"), s.requestID(), s.accessLog())

	router.GET("/", s.root)
	router.GET("/healthz", s.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.POST("/process-batch", s.processBatch)

	s.handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RequestIDHeader},
	}).Handler(router)

	return s
}

// Handler returns the root handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. Streams in flight see their request context canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return zerr.Wrap(err, "http server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return zerr.Wrap(err, "http server shutdown failed")
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"Hello": "World"})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) processBatch(c *gin.Context) {
	var inputs []string
	if err := c.ShouldBindJSON(&inputs); err != nil {
		s.reject(c, zerr.Wrap(domain.ErrMalformedBatch, "batch is not a list of strings"))
		return
	}
	if err := s.processor.Validate(inputs); err != nil {
		s.reject(c, err)
		return
	}

	c.Header("Content-Type", ndjson.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	enc := ndjson.NewEncoder(c.Writer)
	for rec := range s.processor.Process(c.Request.Context(), inputs) {
		if err := enc.Encode(rec); err != nil {
			s.logger.Warn("stream aborted", "request_id", c.GetString("request_id"), "error", err)
			return
		}
	}
}

func (s *Server) reject(c *gin.Context, err error) {
	s.logger.Debug("batch rejected", "request_id", c.GetString("request_id"), "error", err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
	}
}
