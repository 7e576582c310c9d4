// Package web serves the browser front-end: a server-rendered single page
// whose content follows the session's presentation state, plus a small
// JSON API for scripted use.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/logger"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
	telem "github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/otel"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// SessionCookie names the cookie that carries the session ID.
const SessionCookie = "photo_mentor_session"

// multipartOverhead is allowed on top of MaxUploadBytes for form framing.
const multipartOverhead = 64 << 10

// Options configures a Server.
type Options struct {
	// MaxUploadBytes limits the size of one photo.
	MaxUploadBytes int64
	// RequestTimeout bounds one analysis. Zero means no limit.
	RequestTimeout time.Duration
	// SessionTTL expires idle browser sessions. Zero disables expiry.
	SessionTTL time.Duration
	// DefaultMode is selected in new sessions.
	DefaultMode model.EvaluationMode
	// Version is reported by /healthz.
	Version string
}

// Server is the HTTP front-end.
type Server struct {
	opts     Options
	analyzer session.Analyzer
	sessions *session.Store
	metrics  *telem.Metrics
	log      logrus.FieldLogger
	engine   *gin.Engine
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and diagnostics logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics records session transitions on m.
func WithMetrics(m *telem.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New builds a Server that analyzes photos with a.
func New(a session.Analyzer, opts Options, options ...Option) *Server {
	s := &Server{opts: opts, analyzer: a, now: time.Now}
	for _, o := range options {
		o(s)
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	s.sessions = session.NewStore(opts.SessionTTL, func() *session.Machine {
		return session.NewMachine(opts.DefaultMode,
			session.WithMetrics(s.metrics),
			session.WithLogger(s.log),
		)
	})
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(template.FuncMap{
		"tier": model.TierFor,
	}).ParseFS(templateFS, "templates/*.html")))

	r.Use(
		gin.Recovery(),
		requestLogger(s.log),
		requestSizeLimiter(s.opts.MaxUploadBytes+multipartOverhead),
	)

	r.GET("/healthz", s.healthCheck)
	r.GET("/", s.index)
	r.GET("/preview", s.preview)
	r.POST("/mode", s.selectMode)
	r.POST("/analyze", s.analyze)
	r.POST("/reset", s.reset)
	r.POST("/api/analyze", s.apiAnalyze)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("address", addr).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}
