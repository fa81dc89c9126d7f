package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"telemed-chat/config"
	"telemed-chat/internal/handler"
	"telemed-chat/internal/middleware"
	"telemed-chat/internal/services"
	"telemed-chat/internal/session"
	"telemed-chat/internal/transport/httpdto"
	"telemed-chat/pkg/logger"

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
	Chat       *handler.ChatHandler
	Attachment *handler.AttachmentHandler
}

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

type Dependencies struct {
	Auth     *services.AuthService
	Sessions session.Store

	// Nil limits are not enforced.
	MessageLimit middleware.LimitFunc
	UploadLimit  middleware.LimitFunc

	HealthChecks map[string]HealthCheck
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
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, deps Dependencies) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		names := make([]string, 0, len(deps.HealthChecks))
		for name := range deps.HealthChecks {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if err := deps.HealthChecks[name](c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(fmt.Sprintf("%s: %v", name, err), "UNHEALTHY"))
				return
			}
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	sessions := middleware.SessionMiddleware(deps.Sessions, middleware.SessionOptions{
		CookieName: s.config.SessionCookie,
		TTL:        s.config.SessionTTL,
		Secure:     s.config.AppMode == ReleaseMode,
	}, s.logger)

	api := s.engine.Group("/api/chat", middleware.AuthMiddleware(deps.Auth), sessions)
	{
		api.GET("/room", handlers.Chat.ListRooms)
		api.POST("/room", handlers.Chat.CreateRoom)
		api.GET("/room/:roomId", handlers.Chat.LoadMessages)
		api.POST("/room/:roomId", handlers.Chat.MarkAsRead)
		api.GET("/poll", handlers.Chat.Poll)
		api.POST("/message", middleware.RateLimitMiddleware(deps.MessageLimit, s.logger), handlers.Chat.SendMessage)
		if handlers.Attachment != nil {
			api.POST("/attachment", middleware.RateLimitMiddleware(deps.UploadLimit, s.logger), handlers.Attachment.Presign)
		}
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
