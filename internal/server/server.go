package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pollapp/config"
	"pollapp/internal/handler"
	"pollapp/internal/middleware"
	"pollapp/internal/transport/httpdto"
	"pollapp/internal/websocket"
	"pollapp/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Users       *handler.UserHandler
	Polls       *handler.PollHandler
	VoteOptions *handler.VoteOptionHandler
	Votes       *handler.VoteHandler
	Live        *websocket.Handler
}

// HealthReporter tells whether the optional results cache is reachable.
type HealthReporter interface {
	CacheEnabled() bool
	CacheHealthy(ctx context.Context) bool
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Handler exposes the routed engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) SetupRoutes(handlers *Handlers, health HealthReporter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	// The cache is optional, so its state is reported but never fails the check.
	s.engine.GET("/health", func(c *gin.Context) {
		cache := "disabled"
		if health != nil && health.CacheEnabled() {
			cache = "unavailable"
			if health.CacheHealthy(c.Request.Context()) {
				cache = "ok"
			}
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy", "cache": cache}))
	})

	v1 := s.engine.Group("/v1")

	users := v1.Group("/users")
	{
		users.GET("", handlers.Users.List)
		users.POST("", handlers.Users.Create)
		users.GET("/:id", handlers.Users.Get)
		users.DELETE("/:id", handlers.Users.Delete)
	}

	polls := v1.Group("/polls")
	{
		polls.GET("", handlers.Polls.List)
		polls.POST("", handlers.Polls.Create)
		polls.GET("/:id", handlers.Polls.Get)
		polls.DELETE("/:id", handlers.Polls.Delete)
		polls.GET("/:id/options", handlers.Polls.Options)
		polls.GET("/:id/results", handlers.Polls.Results)
		if handlers.Live != nil {
			polls.GET("/:id/live", handlers.Live.Live)
		}
	}

	options := v1.Group("/voteoptions")
	{
		options.GET("", handlers.VoteOptions.List)
		options.POST("", handlers.VoteOptions.Create)
		options.GET("/:id", handlers.VoteOptions.Get)
	}

	votes := v1.Group("/votes")
	{
		votes.GET("", handlers.Votes.List)
		votes.POST("", handlers.Votes.Create)
		votes.GET("/:id", handlers.Votes.Get)
		votes.DELETE("/:id", handlers.Votes.Delete)
	}
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errCh:
		s.logger.Errorf("Error in starting the server: %s", err)
		return err
	case <-quit:
	}

	s.logger.Infof("Quitting signal received.. Shutting down within %s", s.config.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Errorf("Error in the graceful shutdown of the server: %s", err)
		return err
	}

	s.logger.Infof("Server stopped gracefully")
	return nil
}
