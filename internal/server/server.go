package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"assistant-chat/config"
	"assistant-chat/internal/handler"
	"assistant-chat/internal/middleware"
	"assistant-chat/internal/redis"
	"assistant-chat/internal/services"
	"assistant-chat/internal/transport/httpdto"
	"assistant-chat/pkg/database"
	"assistant-chat/pkg/logger"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	pool       *pgxpool.Pool
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	User         *handler.UserHandler
	Conversation *handler.ConversationHandler
	Chat         *handler.ChatHandler
}

func New(cfg *config.Config, l *logger.Logger, pool *pgxpool.Pool) *Server {
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
		pool:   pool,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, users *services.UserService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), s.pool); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	api := s.engine.Group("/api")

	usersGroup := api.Group("/users")
	{
		usersGroup.POST("/register", middleware.AuthRateLimitMiddleware(limiter), handlers.User.Register)
		usersGroup.POST("/login", middleware.AuthRateLimitMiddleware(limiter), handlers.User.Login)

		usersGroup.GET("/:userId/conversations", handlers.Conversation.List)
		usersGroup.POST("/:userId/conversations", handlers.Conversation.Create)
		usersGroup.DELETE("/conversations/:conversationId", handlers.Conversation.Delete)
		usersGroup.GET("/conversations/:conversationId/messages", handlers.Conversation.ListMessages)
		usersGroup.POST("/conversations/:conversationId/messages", handlers.Conversation.SaveMessage)
	}

	chat := api.Group("/chat")
	{
		chat.GET("/message", handlers.Chat.Message)
		chat.POST("/streaming", handlers.Chat.Streaming)
		chat.POST("/conversations/:conversationId/streaming",
			middleware.AuthMiddleware(users),
			middleware.MessageRateLimitMiddleware(limiter),
			handlers.Chat.StreamReply,
		)
	}
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

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
