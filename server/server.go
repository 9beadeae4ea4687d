package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/modelgate/errors"
	"github.com/kbukum/modelgate/logger"
	"github.com/kbukum/modelgate/server/middleware"
)

// Server is the modelgate HTTP server: a Gin engine behind the middleware
// chain, served over HTTP/1.1 and h2c on one port.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	handler    http.Handler
	config     Config
	log        *logger.Logger
}

// New creates a server. Routes are registered on Engine() before Start.
func New(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log = log.WithComponent("server")

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		RespondWithError(c, errors.New(errors.ErrCodeNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path))
	})
	engine.NoMethod(func(c *gin.Context) {
		RespondWithError(c, errors.New(errors.ErrCodeMethodNotAllowed, c.Request.Method+" is not allowed on "+c.Request.URL.Path))
	})

	handler := middleware.Chain(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.CORS(cfg.CORS),
		middleware.BodySizeLimit(cfg.MaxBodySize),
		middleware.Auth(cfg.Auth),
	)(engine)

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           h2c.NewHandler(handler, h2s),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout:      time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:       time.Duration(cfg.IdleTimeout) * time.Second,
		},
		engine:  engine,
		handler: handler,
		config:  cfg,
		log:     log,
	}
}

// Engine returns the Gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the engine wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the port and serves in a goroutine. It returns once the
// listener is bound.
func (s *Server) Start(ctx context.Context) error {
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.ErrorFields("serve", err))
		}
	}()

	s.log.Info("HTTP server started", map[string]any{"addr": listener.Addr().String()})
	return nil
}

// Stop shuts down gracefully, waiting at most 10 seconds for in-flight
// generations.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", logger.ErrorFields("shutdown", err))
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server shut down")
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
