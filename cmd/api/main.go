package main

import (
	"context"
	"log"

	"assistant-chat/config"
	"assistant-chat/internal/handler"
	"assistant-chat/internal/llm"
	"assistant-chat/internal/redis"
	"assistant-chat/internal/repository"
	"assistant-chat/internal/server"
	"assistant-chat/internal/services"
	"assistant-chat/pkg/database"
	"assistant-chat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := repository.InitSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	redisClient := redis.NewClient(cfg)
	if err := redis.Ping(ctx, redisClient); err != nil {
		l.Errorf("Redis unavailable, rate limiting and caching disabled: %s", err)
		redisClient = nil
	}

	userRepo := repository.NewUserRepository(pool)
	convRepo := repository.NewConversationRepository(pool)
	msgRepo := repository.NewMessageRepository(pool)

	var cache *redis.CacheStore
	var limiter *redis.RateLimiter
	if redisClient != nil {
		cache = redis.NewCacheStore(redisClient, redis.DefaultCacheConfig())
		limiter = redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())
	}

	userService := services.NewUserService(userRepo, cfg)
	conversationService := services.NewConversationService(convRepo, msgRepo, cache, l)

	provider, err := llm.New(cfg, l)
	if err != nil {
		log.Fatalf("Failed to create chat-completion client: %v", err)
	}
	chatService := services.NewChatService(provider, conversationService)

	srv := server.New(cfg, l, pool)
	srv.SetupRoutes(&server.Handlers{
		User:         handler.NewUserHandler(userService),
		Conversation: handler.NewConversationHandler(conversationService),
		Chat:         handler.NewChatHandler(chatService, l),
	}, userService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
